// Licensed to Elasticsearch B.V. under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Elasticsearch B.V. licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var level string
	log := logrus.New()

	cmd := &cobra.Command{
		Use:          "sprofiler",
		Short:        "seccomp profiler",
		Long:         `sprofiler statically derives seccomp profiles from C and Go binaries.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logrus.ParseLevel(level)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			log.SetOutput(cmd.ErrOrStderr())
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return nil
		},
	}

	cmd.AddCommand(
		newCCommand(log),
		newGoCommand(log),
		newProfileCommand(log),
		newMergeCommand(log),
		newDiffCommand(),
		newDumpCommand(),
		newExecCommand(log),
	)

	cmd.PersistentFlags().StringVar(&level, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

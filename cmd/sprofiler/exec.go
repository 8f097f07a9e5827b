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
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	seccomp "github.com/elastic/go-seccomp-profiler"
	"github.com/elastic/go-seccomp-profiler/arch"
)

func newExecCommand(log logrus.FieldLogger) (cmd *cobra.Command) {
	var (
		profileFile string
		noNewPrivs  bool
	)

	cmd = &cobra.Command{
		Use:     "exec --profile PROFILE -- COMMAND [ARG...]",
		Short:   "Run a command under a profile",
		Example: `sprofiler exec --profile app.json -- ./app --listen :8080`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := loadFilter(profileFile, noNewPrivs, log)
			if err != nil {
				return err
			}

			// Load the BPF filter using the seccomp system call.
			if err = seccomp.LoadFilter(*filter); err != nil {
				return fmt.Errorf("error loading filter: %w", err)
			}

			// Execute the specified command (requires execve).
			c := exec.Command(args[0], args[1:]...)
			c.Stdout = cmd.OutOrStdout()
			c.Stderr = cmd.ErrOrStderr()
			c.Stdin = os.Stdin
			return c.Run()
		},
	}

	cmd.Flags().StringVar(&profileFile, "profile", "", "seccomp profile file")
	cmd.Flags().BoolVar(&noNewPrivs, "no-new-privs", true, "set no new privs bit")
	mustMarkRequired(cmd, "profile")

	return cmd
}

// loadFilter compiles the profile for the architecture of this process.
func loadFilter(path string, noNewPrivs bool, log logrus.FieldLogger) (*seccomp.Filter, error) {
	p, err := seccomp.ReadProfile(path)
	if err != nil {
		return nil, err
	}

	info, err := arch.GetInfo(runtime.GOARCH)
	if err != nil {
		return nil, err
	}

	if names, err := seccomp.SyscallNames(p); err == nil && !slices.Contains(names, "execve") {
		log.Warnf("Profile %v does not allow execve, the command can not be started", path)
	}

	policy, err := seccomp.Compile(p, info)
	if err != nil {
		return nil, err
	}

	return &seccomp.Filter{
		NoNewPrivs: noNewPrivs,
		Flag:       seccomp.FilterFlagTSync,
		Policy:     *policy,
	}, nil
}

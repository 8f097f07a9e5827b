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
	"github.com/elastic/go-ucfg"
	"github.com/elastic/go-ucfg/yaml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/elastic/go-seccomp-profiler/profiler"
)

func newCCommand(log logrus.FieldLogger) (cmd *cobra.Command) {
	c := profiler.DefaultConfig()
	c.Language = profiler.LanguageC

	cmd = &cobra.Command{
		Use:     "c BINARY",
		Short:   "Profile a C binary",
		Long:    `Maps the dynamic symbols of a C binary to syscalls using a function to syscall map.`,
		Example: `sprofiler c --map libc.json -o tool.json /usr/bin/tool`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Target = args[0]
			return runProfiler(c, log)
		},
	}

	cmd.Flags().StringVarP(&c.Destination, "output", "o", "", "profile destination")
	cmd.Flags().StringVar(&c.SyscallMap, "map", "", "function to syscall map (JSON or YAML)")
	cmd.Flags().StringVar(&c.Arch, "arch", c.Arch, "architecture declared in the profile")
	mustMarkRequired(cmd, "output", "map")

	return cmd
}

func newGoCommand(log logrus.FieldLogger) (cmd *cobra.Command) {
	c := profiler.DefaultConfig()
	c.Language = profiler.LanguageGo

	cmd = &cobra.Command{
		Use:     "go BINARY",
		Short:   "Profile a Go binary",
		Long:    `Finds the syscalls referenced by the symbol table of a Go binary.`,
		Example: `sprofiler go -o app.json ./app`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Target = args[0]
			return runProfiler(c, log)
		},
	}

	cmd.Flags().StringVarP(&c.Destination, "output", "o", "", "profile destination")
	cmd.Flags().StringVar(&c.Arch, "arch", c.Arch, "syscall catalog architecture")
	mustMarkRequired(cmd, "output")

	return cmd
}

func newProfileCommand(log logrus.FieldLogger) (cmd *cobra.Command) {
	var configFile string

	cmd = &cobra.Command{
		Use:     "profile",
		Short:   "Profile a binary described by a config file",
		Example: `sprofiler profile --config sprofiler.yml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			return runProfiler(c, log)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "sprofiler.yml", "profiler config file")

	return cmd
}

// loadConfig reads a profiler config. Settings may sit at the top level or
// under a profiler key.
func loadConfig(path string) (profiler.Config, error) {
	c := profiler.DefaultConfig()

	conf, err := yaml.NewConfigWithFile(path, ucfg.PathSep("."))
	if err != nil {
		return c, err
	}
	if conf.HasField("profiler") {
		if conf, err = conf.Child("profiler", -1, ucfg.PathSep(".")); err != nil {
			return c, err
		}
	}

	if err = conf.Unpack(&c); err != nil {
		return c, err
	}
	return c, nil
}

func runProfiler(c profiler.Config, log logrus.FieldLogger) error {
	p, err := profiler.New(c, log)
	if err != nil {
		return err
	}
	if err = p.Output(); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"language": c.Language,
		"binary":   c.Target,
	}).Infof("Wrote profile to %v", c.Destination)
	return nil
}

func mustMarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

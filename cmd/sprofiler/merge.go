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
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	seccomp "github.com/elastic/go-seccomp-profiler"
	"github.com/elastic/go-seccomp-profiler/arch"
)

func newMergeCommand(log logrus.FieldLogger) (cmd *cobra.Command) {
	var destination string

	cmd = &cobra.Command{
		Use:     "merge PROFILE...",
		Short:   "Merge profiles into one allow list",
		Example: `sprofiler merge -o all.json app.json tool.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, err := seccomp.MergeFiles(args...)
			if merged == nil {
				return err
			}

			var skipped *multierror.Error
			if errors.As(err, &skipped) {
				for _, e := range skipped.Errors {
					log.Warnf("Merge input ignored: %v", e)
				}
			} else if err != nil {
				return err
			}

			if destination == "" {
				return writeIndent(cmd.OutOrStdout(), merged)
			}
			if err = seccomp.WriteProfile(destination, merged); err != nil {
				return err
			}
			log.Infof("Merged %d profiles into %v", len(args), destination)
			return nil
		},
	}

	cmd.Flags().StringVarP(&destination, "output", "o", "", "merged profile destination, stdout when empty")

	return cmd
}

func writeIndent(out io.Writer, p *seccomp.Profile) error {
	data, err := seccomp.EncodeIndent(p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func newDiffCommand() (cmd *cobra.Command) {
	var format string

	cmd = &cobra.Command{
		Use:     "diff LEFT RIGHT",
		Short:   "Compare the syscalls allowed by two profiles",
		Example: `sprofiler diff --format json app.json tool.json`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			diff, err := seccomp.DiffFiles(args[0], args[1])
			if err != nil {
				return err
			}
			return printDiff(cmd.OutOrStdout(), format, seccomp.SortedDiff(diff))
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (text, json, yaml)")

	return cmd
}

func printDiff(out io.Writer, format string, entries []seccomp.DiffEntry) error {
	switch format {
	case "text":
		for _, e := range entries {
			if _, err := fmt.Fprintf(out, "%-10s %s\n", e.Status, e.Name); err != nil {
				return err
			}
		}
		return nil
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format: %v", format)
	}
}

func newDumpCommand() (cmd *cobra.Command) {
	var archName string

	cmd = &cobra.Command{
		Use:     "dump PROFILE",
		Short:   "Print the BPF program of a profile",
		Example: `sprofiler dump --arch x86_64 app.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := arch.GetInfo(archName)
			if err != nil {
				return err
			}
			p, err := seccomp.ReadProfile(args[0])
			if err != nil {
				return err
			}
			return seccomp.Dump(cmd.OutOrStdout(), p, info)
		},
	}

	cmd.Flags().StringVar(&archName, "arch", arch.X86_64.Name, "architecture to compile for")

	return cmd
}

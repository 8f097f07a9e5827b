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

package profiler

import (
	"regexp"
	"slices"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/sirupsen/logrus"

	seccomp "github.com/elastic/go-seccomp-profiler"
	"github.com/elastic/go-seccomp-profiler/arch"
	"github.com/elastic/go-seccomp-profiler/symbols"
)

// Every kernel entry of the Go standard library goes through the syscall
// package, so its symbols name the syscalls a binary can make.
var syscallSymbol = regexp.MustCompile(`syscall\.([a-zA-Z]\w+)`)

// GoProfiler profiles Go binaries.
type GoProfiler struct {
	Destination string
	Target      string
	Arch        *arch.Info         // Catalog validating the matches, x86_64 when nil.
	Log         logrus.FieldLogger // Standard logger when nil.
}

// Analyze derives the profile from the symbol table of the target.
func (p *GoProfiler) Analyze() (*seccomp.Profile, error) {
	log := logger(p.Log).WithField("binary", p.Target)
	info := archOrDefault(p.Arch)

	names, err := symbols.Symbols(p.Target)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		log.Warn("Binary has no symbol table, the profile only allows the runtime baseline")
	} else {
		log.Debugf("Read %d symbols", len(names))
	}

	syscalls := SyscallsFromSymbols(names, info)
	log.Debugf("Found %d syscalls", len(syscalls))

	return seccomp.NewAllowProfile([]specs.Arch{info.Seccomp}, syscalls), nil
}

// Output derives the profile and writes it to the destination.
func (p *GoProfiler) Output() error {
	return output(p.Destination, p.Analyze)
}

// SyscallsFromSymbols scans the symbol names for references to the syscall
// package and returns the sorted set of referenced syscalls known to the
// catalog, together with the runtime baseline.
func SyscallsFromSymbols(names []string, info *arch.Info) []string {
	blob := strings.Join(names, "\n")

	found := make(map[string]struct{})
	for _, match := range syscallSymbol.FindAllStringSubmatch(blob, -1) {
		name := strings.ToLower(match[1])
		if info.IsSyscall(name) {
			found[name] = struct{}{}
		}
	}
	for _, name := range runtimeBaseline {
		found[name] = struct{}{}
	}

	keys := make([]string, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

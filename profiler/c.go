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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	seccomp "github.com/elastic/go-seccomp-profiler"
	"github.com/elastic/go-seccomp-profiler/arch"
	"github.com/elastic/go-seccomp-profiler/symbols"
)

// FunctionSyscallMap maps exported function names to the syscalls they may
// invoke.
type FunctionSyscallMap map[string][]string

// LoadFunctionMap reads a function to syscall map. The file is a flat JSON
// object; files with a .yml or .yaml extension are read as YAML.
func LoadFunctionMap(path string) (FunctionSyscallMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &seccomp.Error{Kind: seccomp.ErrConfig, Op: "read syscall map", Path: path, Err: err}
	}

	var m FunctionSyscallMap
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.UnmarshalStrict(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, &seccomp.Error{Kind: seccomp.ErrConfig, Op: "decode syscall map", Path: path, Err: err}
	}
	return m, nil
}

// AllowList returns the syscalls of every symbol found in the map, in symbol
// order. Duplicates are kept and nothing is sorted.
func (m FunctionSyscallMap) AllowList(names []string) []string {
	syscalls := []string{}
	for _, symbol := range names {
		if allowed, found := m[symbol]; found {
			syscalls = append(syscalls, allowed...)
		}
	}
	return syscalls
}

// CProfiler profiles C binaries. The syscalls of a binary are looked up per
// imported function in an operator supplied map, so the result is only as
// complete as that map.
type CProfiler struct {
	Destination string
	Target      string
	SyscallMap  string
	Arch        *arch.Info         // Declared architecture, x86_64 when nil.
	Log         logrus.FieldLogger // Standard logger when nil.
}

// Analyze derives the profile from the dynamic symbols of the target.
func (p *CProfiler) Analyze() (*seccomp.Profile, error) {
	log := logger(p.Log).WithField("binary", p.Target)

	names, err := symbols.DynamicSymbols(p.Target)
	if err != nil {
		return nil, err
	}
	log.Debugf("Read %d dynamic symbols", len(names))

	m, err := LoadFunctionMap(p.SyscallMap)
	if err != nil {
		return nil, err
	}

	syscalls := m.AllowList(names)
	log.WithField("syscalls", syscalls).Debugf("Mapped %d syscalls", len(syscalls))

	return seccomp.NewAllowProfile([]specs.Arch{archOrDefault(p.Arch).Seccomp}, syscalls), nil
}

// Output derives the profile and writes it to the destination.
func (p *CProfiler) Output() error {
	return output(p.Destination, p.Analyze)
}

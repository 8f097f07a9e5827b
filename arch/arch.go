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

// Package arch holds the per-architecture syscall catalogs used to validate
// syscall names and to resolve them to numbers.
package arch

import (
	"fmt"
	"slices"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"
)

const (
	// X32SyscallBit is OR'ed into syscall numbers by the x32 ABI on x86_64.
	X32SyscallBit = 0x40000000

	auditArch64Bit = 0x80000000
	auditArchLE    = 0x40000000
	emX86_64       = 62
)

// Info contains the syscall catalog of one architecture. The catalog tables
// are fixed at init and only reachable through lookups.
type Info struct {
	Name        string     // Kernel architecture name.
	ID          uint32     // AUDIT_ARCH value found in seccomp_data.
	Seccomp     specs.Arch // Architecture identifier used in profiles.
	SeccompMask int        // Mask OR'ed into every syscall number.

	names   map[string]int
	numbers map[int]string
}

// X86_64 is the catalog for 64-bit x86.
var X86_64 = newInfo("x86_64", auditArch64Bit|auditArchLE|emX86_64, specs.ArchX86_64, 0, syscallsX86_64)

var (
	infos = []*Info{X86_64}

	aliases = map[string]*Info{
		"amd64": X86_64,
	}
)

func newInfo(name string, id uint32, seccomp specs.Arch, mask int, numbers map[int]string) *Info {
	names := make(map[string]int, len(numbers))
	for nr, name := range numbers {
		names[name] = nr
	}
	return &Info{
		Name:        name,
		ID:          id,
		Seccomp:     seccomp,
		SeccompMask: mask,
		names:       names,
		numbers:     numbers,
	}
}

// GetInfo returns the catalog for the named architecture. The name may be a
// kernel name (x86_64), a Go GOARCH value (amd64) or a profile architecture
// identifier (SCMP_ARCH_X86_64).
func GetInfo(name string) (*Info, error) {
	if name == "" {
		return nil, fmt.Errorf("architecture name must not be empty")
	}

	for _, info := range infos {
		if strings.EqualFold(name, info.Name) || name == string(info.Seccomp) {
			return info, nil
		}
	}
	if info, found := aliases[strings.ToLower(name)]; found {
		return info, nil
	}
	return nil, fmt.Errorf("unsupported architecture: %v", name)
}

// IsSyscall reports whether name is a syscall of the architecture. It is safe
// to call on a nil Info.
func (i *Info) IsSyscall(name string) bool {
	if i == nil {
		return false
	}
	_, found := i.names[name]
	return found
}

// SyscallNumber returns the number of the named syscall.
func (i *Info) SyscallNumber(name string) (int, bool) {
	nr, found := i.names[name]
	return nr, found
}

// SyscallName returns the name of the syscall with the given number.
func (i *Info) SyscallName(nr int) (string, bool) {
	name, found := i.numbers[nr]
	return name, found
}

// SyscallNumbers returns the numbers of all syscalls in the catalog, sorted.
func (i *Info) SyscallNumbers() []int {
	keys := make([]int, 0, len(i.numbers))
	for k := range i.numbers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsSyscall reports whether name is a syscall of the named architecture.
// Unsupported architectures report false.
func IsSyscall(name, arch string) bool {
	info, err := GetInfo(arch)
	if err != nil {
		return false
	}
	return info.IsSyscall(name)
}

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

package seccomp

import (
	"slices"

	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Profile is a seccomp policy in the container runtime specification format.
type Profile = specs.LinuxSeccomp

// SyscallRule is a single rule of a Profile.
type SyscallRule = specs.LinuxSyscall

// MergeArchitectures are the architectures declared by every merged profile.
func MergeArchitectures() []specs.Arch {
	return []specs.Arch{specs.ArchX86, specs.ArchX86_64}
}

// NewAllowProfile returns a profile that denies everything except the given
// syscall names. The names are used as given; callers decide about ordering
// and duplicates.
func NewAllowProfile(archs []specs.Arch, names []string) *Profile {
	if names == nil {
		names = []string{}
	}
	return &Profile{
		DefaultAction: specs.ActErrno,
		Architectures: archs,
		Syscalls: []SyscallRule{
			{
				Names:  names,
				Action: specs.ActAllow,
			},
		},
	}
}

// SyscallNames returns the sorted and deduplicated names of all rules in the
// profile. A profile without rules or without any names is an ErrProfile.
func SyscallNames(p *Profile) ([]string, error) {
	if p == nil || len(p.Syscalls) == 0 {
		return nil, &Error{Kind: ErrProfile, Op: "extract syscall names", Err: errNoRules}
	}

	var names []string
	for _, rule := range p.Syscalls {
		names = append(names, rule.Names...)
	}
	if len(names) == 0 {
		return nil, &Error{Kind: ErrProfile, Op: "extract syscall names", Err: errNoNames}
	}

	slices.Sort(names)
	return slices.Compact(names), nil
}

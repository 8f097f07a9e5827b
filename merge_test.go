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
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeEmpty(t *testing.T) {
	// Merging nothing allows everything, unlike every other generated profile.
	p, err := Merge()
	require.NoError(t, err)

	assert.Equal(t, specs.ActAllow, p.DefaultAction)
	assert.Nil(t, p.Syscalls)
	assert.Nil(t, p.Architectures)

	data, err := EncodeProfile(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"defaultAction":"SCMP_ACT_ALLOW"}`, string(data))
}

func TestMerge(t *testing.T) {
	testCases := []struct {
		name     string
		profiles []*Profile
		expected []string
	}{
		{"single", []*Profile{genProfile("mkdir")}, []string{"mkdir"}},
		{"two", []*Profile{genProfile("mkdir"), genProfile("chdir")}, []string{"chdir", "mkdir"}},
		{
			"three",
			[]*Profile{genProfile("mkdir", "chdir"), genProfile("accept", "bind"), genProfile("getuid", "getgid")},
			[]string{"accept", "bind", "chdir", "getgid", "getuid", "mkdir"},
		},
		{
			"shared syscall",
			[]*Profile{genProfile("mkdir", "chdir"), genProfile("chdir", "getpid")},
			[]string{"chdir", "getpid", "mkdir"},
		},
		{
			"duplicated rules",
			[]*Profile{genDuplicateRulesProfile("ptrace"), genDuplicateRulesProfile("chroot")},
			[]string{"chroot", "ptrace"},
		},
		{
			"unsorted input",
			[]*Profile{NewAllowProfile(nil, []string{"write", "read", "write"})},
			[]string{"read", "write"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Merge(tc.profiles...)
			require.NoError(t, err)

			expected := genProfile(tc.expected...)
			assert.Equal(t, specs.ActErrno, p.DefaultAction)
			assert.Equal(t, expected.Architectures, p.Architectures)
			assert.Equal(t, expected.Syscalls, p.Syscalls)
		})
	}
}

func TestMergeNormalizesArchitectures(t *testing.T) {
	p, err := Merge(NewAllowProfile([]specs.Arch{specs.ArchAARCH64}, []string{"read"}))
	require.NoError(t, err)
	assert.Equal(t, []specs.Arch{specs.ArchX86, specs.ArchX86_64}, p.Architectures)
}

func TestMergeKeepsOtherRules(t *testing.T) {
	p := &Profile{
		DefaultAction: specs.ActAllow,
		Syscalls: []SyscallRule{
			{Names: []string{"ptrace"}, Action: specs.ActErrno},
			{Names: []string{"kill"}, Action: specs.ActNotify, Args: []specs.LinuxSeccompArg{{Index: 1, Value: 9, Op: specs.OpEqualTo}}},
		},
	}

	merged, err := Merge(p, genProfile("read"))
	require.NoError(t, err)
	assert.Equal(t, genProfile("kill", "ptrace", "read").Syscalls, merged.Syscalls)
}

func TestMergeCommutativeAndIdempotent(t *testing.T) {
	a := genProfile("mkdir", "chdir", "read")
	b := genProfile("accept", "bind", "read")

	ab, err := Merge(a, b)
	require.NoError(t, err)
	ba, err := Merge(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)

	aa, err := Merge(a, a)
	require.NoError(t, err)
	single, err := Merge(a)
	require.NoError(t, err)
	assert.Equal(t, single, aa)

	// Merging a merge result changes nothing.
	again, err := Merge(ab)
	require.NoError(t, err)
	assert.Equal(t, ab, again)
}

func TestMergeSkipsProfilesWithoutSyscalls(t *testing.T) {
	p, err := Merge(
		genProfile("mkdir"),
		&Profile{DefaultAction: specs.ActErrno},
		nil,
		genProfile("chdir"),
	)

	// The result is complete despite the skipped inputs.
	assert.Equal(t, genProfile("chdir", "mkdir"), p)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfile)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.Contains(t, merr.Errors[0].Error(), "profile 1 skipped")
	assert.Contains(t, merr.Errors[1].Error(), "profile 2 skipped")
}

func TestMergeOnlyEmptyProfiles(t *testing.T) {
	p, err := Merge(&Profile{DefaultAction: specs.ActErrno})
	assert.ErrorIs(t, err, ErrProfile)

	assert.Equal(t, specs.ActErrno, p.DefaultAction)
	require.Len(t, p.Syscalls, 1)
	assert.Empty(t, p.Syscalls[0].Names)
}

func TestMergeFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	require.NoError(t, WriteProfile(first, genProfile("read", "write")))
	require.NoError(t, WriteProfile(second, genProfile("close", "read")))

	p, err := MergeFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, genProfile("close", "read", "write"), p)

	// Unreadable inputs fail the merge instead of being skipped.
	_, err = MergeFiles(first, filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrIO)
}

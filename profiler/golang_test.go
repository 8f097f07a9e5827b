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
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seccomp "github.com/elastic/go-seccomp-profiler"
	"github.com/elastic/go-seccomp-profiler/arch"
	"github.com/elastic/go-seccomp-profiler/internal/fixture"
)

var goFixture, strippedFixture string

func TestMain(m *testing.M) {
	os.Exit(runTests(m))
}

func runTests(m *testing.M) int {
	dir, err := os.MkdirTemp("", "profiler")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer os.RemoveAll(dir)

	if goFixture, err = fixture.BuildGo(dir, false); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if strippedFixture, err = fixture.BuildGo(dir, true); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return m.Run()
}

func TestRuntimeBaseline(t *testing.T) {
	baseline := RuntimeBaseline()
	assert.True(t, slices.IsSorted(baseline))
	assert.Len(t, slices.Compact(slices.Clone(baseline)), len(baseline))

	for _, name := range baseline {
		assert.True(t, arch.X86_64.IsSyscall(name), "baseline syscall %v is not in the catalog", name)
	}

	// Callers get a copy.
	baseline[0] = "modified"
	assert.NotEqual(t, "modified", RuntimeBaseline()[0])
}

func TestSyscallsFromSymbols(t *testing.T) {
	names := []string{
		"main.main",
		"syscall.Socket",
		"syscall.Bind",
		"syscall.Getpid.abi0",
		"syscall.RawSyscall",
		"syscall.Frobnicate",
		"internal/poll.(*FD).Read",
		"syscall.socket",
	}

	syscalls := SyscallsFromSymbols(names, arch.X86_64)

	assert.True(t, slices.IsSorted(syscalls))
	assert.Contains(t, syscalls, "socket")
	assert.Contains(t, syscalls, "bind")
	assert.Contains(t, syscalls, "getpid")
	assert.NotContains(t, syscalls, "rawsyscall")
	assert.NotContains(t, syscalls, "frobnicate")
	for _, name := range RuntimeBaseline() {
		assert.Contains(t, syscalls, name)
	}

	// Each name is listed once.
	assert.Len(t, slices.Compact(slices.Clone(syscalls)), len(syscalls))
}

func TestSyscallsFromSymbolsDeterministic(t *testing.T) {
	names := []string{"syscall.Socket", "syscall.Bind", "syscall.Listen", "syscall.Accept4"}
	reversed := slices.Clone(names)
	slices.Reverse(reversed)

	first := SyscallsFromSymbols(names, arch.X86_64)
	assert.Equal(t, first, SyscallsFromSymbols(names, arch.X86_64))
	assert.Equal(t, first, SyscallsFromSymbols(reversed, arch.X86_64))
}

func TestSyscallsFromSymbolsBaselineOnly(t *testing.T) {
	assert.Equal(t, RuntimeBaseline(), SyscallsFromSymbols(nil, arch.X86_64))
	assert.Equal(t, RuntimeBaseline(), SyscallsFromSymbols([]string{"main.main"}, arch.X86_64))
}

func TestGoProfilerAnalyze(t *testing.T) {
	p := &GoProfiler{Target: goFixture}

	profile, err := p.Analyze()
	require.NoError(t, err)
	assert.Equal(t, specs.ActErrno, profile.DefaultAction)
	assert.Equal(t, []specs.Arch{specs.ArchX86_64}, profile.Architectures)
	require.Len(t, profile.Syscalls, 1)

	names := profile.Syscalls[0].Names
	assert.True(t, slices.IsSorted(names))
	assert.Subset(t, names, RuntimeBaseline())
	for _, name := range fixture.GoSyscalls {
		assert.NotContains(t, RuntimeBaseline(), name)
		assert.Contains(t, names, name)
	}
	for _, name := range names {
		assert.True(t, arch.X86_64.IsSyscall(name), name)
	}

	again, err := p.Analyze()
	require.NoError(t, err)
	assert.Equal(t, profile, again)
}

func TestGoProfilerStrippedBinary(t *testing.T) {
	log, hook := test.NewNullLogger()
	p := &GoProfiler{Target: strippedFixture, Log: log}

	profile, err := p.Analyze()
	require.NoError(t, err)
	assert.Equal(t, RuntimeBaseline(), profile.Syscalls[0].Names)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "no symbol table")
}

func TestGoProfilerOutput(t *testing.T) {
	destination := filepath.Join(t.TempDir(), "profile.json")
	p := &GoProfiler{Target: goFixture, Destination: destination}
	require.NoError(t, p.Output())

	profile, err := seccomp.ReadProfile(destination)
	require.NoError(t, err)

	expected, err := p.Analyze()
	require.NoError(t, err)
	assert.Equal(t, expected, profile)
}

func TestGoProfilerOutputUnwritable(t *testing.T) {
	p := &GoProfiler{
		Target:      goFixture,
		Destination: filepath.Join(t.TempDir(), "missing", "profile.json"),
	}
	assert.ErrorIs(t, p.Output(), seccomp.ErrIO)
}

func TestGoProfilerNotABinary(t *testing.T) {
	p := &GoProfiler{Target: writeFile(t, "hello.txt", "hello")}

	_, err := p.Analyze()
	assert.ErrorIs(t, err, seccomp.ErrParse)

	p.Destination = filepath.Join(t.TempDir(), "profile.json")
	assert.ErrorIs(t, p.Output(), seccomp.ErrParse)
	assert.NoFileExists(t, p.Destination)
}

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

package symbols

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seccomp "github.com/elastic/go-seccomp-profiler"
	"github.com/elastic/go-seccomp-profiler/internal/fixture"
)

var goFixture, strippedFixture string

func TestMain(m *testing.M) {
	os.Exit(runTests(m))
}

func runTests(m *testing.M) int {
	dir, err := os.MkdirTemp("", "symbols")
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

func TestOpen(t *testing.T) {
	f, err := Open(goFixture)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, FormatELF, f.Format)
	assert.Equal(t, "elf", f.Format.String())
}

func TestSymbols(t *testing.T) {
	names, err := Symbols(goFixture)
	require.NoError(t, err)

	assert.Contains(t, names, "runtime.main")
	assert.Contains(t, names, "main.main")
	assert.Contains(t, names, "syscall.Socket")
	assert.Contains(t, names, "syscall.Chroot")
	assert.NotContains(t, names, "")
}

func TestSymbolsStripped(t *testing.T) {
	names, err := Symbols(strippedFixture)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDynamicSymbols(t *testing.T) {
	f, err := Open(goFixture)
	require.NoError(t, err)
	defer f.Close()

	// The fixture is linked statically, which is not an error.
	dynamic, err := f.DynamicSymbols()
	require.NoError(t, err)
	assert.Empty(t, dynamic)

	all, err := f.Symbols()
	require.NoError(t, err)
	assert.NotEmpty(t, all)
}

func TestDynamicSymbolsSystemBinary(t *testing.T) {
	path := fixture.DynamicBinary()
	if path == "" {
		t.Skip("no system binary found")
	}

	names, err := DynamicSymbols(path)
	require.NoError(t, err)
	assert.NotContains(t, names, "")
}

func TestOpenUnrecognizedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hello\n"), 0o755))

	_, err := Open(path)
	assert.ErrorIs(t, err, seccomp.ErrParse)

	_, err = Symbols(path)
	assert.ErrorIs(t, err, seccomp.ErrParse)

	_, err = DynamicSymbols(path)
	assert.ErrorIs(t, err, seccomp.ErrParse)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, seccomp.ErrParse)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "macho", FormatMachO.String())
	assert.Equal(t, "pe", FormatPE.String())
	assert.Equal(t, "unknown", Format(0).String())
}

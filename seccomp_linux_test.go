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

//go:build linux && amd64

package seccomp

import (
	"net"
	"os"
	"os/exec"
	"testing"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/elastic/go-seccomp-profiler/arch"
)

const loadFilterChildEnv = "SECCOMP_PROFILER_LOAD_FILTER_CHILD"

// TestLoadFilter installs a filter in a child process, a loaded filter can
// not be removed from the test binary.
func TestLoadFilter(t *testing.T) {
	if os.Getenv(loadFilterChildEnv) == "1" {
		loadFilterChild(t)
		return
	}
	if !Supported() {
		t.Skip("seccomp not supported by kernel")
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestLoadFilter$", "-test.v")
	cmd.Env = append(os.Environ(), loadFilterChildEnv+"=1")
	out, err := cmd.CombinedOutput()
	assert.NoError(t, err, string(out))
}

func loadFilterChild(t *testing.T) {
	p := &Profile{
		DefaultAction: specs.ActAllow,
		Architectures: []specs.Arch{specs.ArchX86_64},
		Syscalls: []SyscallRule{
			{Names: []string{"bind", "listen", "execve"}, Action: specs.ActErrno},
		},
	}
	policy, err := Compile(p, arch.X86_64)
	require.NoError(t, err)

	filter := Filter{
		NoNewPrivs: true,
		Flag:       FilterFlagTSync,
		Policy:     *policy,
	}
	require.NoError(t, LoadFilter(filter))

	// Perform restricted syscalls.
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		assert.Contains(t, err.Error(), unix.EPERM.Error())
	} else {
		l.Close()
		t.Error("expected to receive an EPERM error when listening on socket")
	}

	_, err = exec.Command(os.Args[0], "-test.run=^$").Output()
	if err != nil {
		assert.Contains(t, err.Error(), unix.EPERM.Error())
	} else {
		t.Error("expected to receive an EPERM error when exec'ing")
	}
}

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

//go:build linux

package seccomp

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/net/bpf"
	linux "golang.org/x/sys/unix"

	"github.com/elastic/go-seccomp-profiler/internal/unix"
)

// Supported returns true if the seccomp syscall is supported by the kernel.
func Supported() bool {
	if err := linux.Prctl(unix.PR_GET_SECCOMP, 0, 0, 0, 0); errors.Is(err, linux.EINVAL) {
		return false
	}
	// A filter mode probe with a NULL program fails with EFAULT when filters
	// are available.
	_, _, errno := linux.Syscall(linux.SYS_SECCOMP, uintptr(unix.SECCOMP_SET_MODE_FILTER), 0, 0)
	return errno == linux.EFAULT
}

// SetNoNewPrivs sets the no_new_privs bit on the calling thread.
func SetNoNewPrivs() error {
	if err := linux.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("failed to set no_new_privs: %w", err)
	}
	return nil
}

// LoadFilter assembles the policy of the filter and installs it on the calling
// process. Once loaded, a filter can not be removed.
func LoadFilter(filter Filter) error {
	if !Supported() {
		return errors.New("seccomp filters are not supported by the kernel")
	}

	assembled, err := filter.Policy.Assemble()
	if err != nil {
		return fmt.Errorf("failed to assemble policy: %w", err)
	}

	instructions, err := bpf.Assemble(assembled)
	if err != nil {
		return fmt.Errorf("failed to assemble BPF instructions: %w", err)
	}
	if len(instructions) > 0xffff {
		return fmt.Errorf("filter has %d instructions, more than the kernel accepts", len(instructions))
	}

	if filter.NoNewPrivs {
		if err = SetNoNewPrivs(); err != nil {
			return err
		}
	}

	sockFilters := make([]linux.SockFilter, len(instructions))
	for i, inst := range instructions {
		sockFilters[i] = linux.SockFilter{Code: inst.Op, Jt: inst.Jt, Jf: inst.Jf, K: inst.K}
	}
	program := linux.SockFprog{
		Len:    uint16(len(sockFilters)),
		Filter: &sockFilters[0],
	}

	_, _, errno := linux.Syscall(linux.SYS_SECCOMP,
		uintptr(unix.SECCOMP_SET_MODE_FILTER),
		uintptr(filter.Flag),
		uintptr(unsafe.Pointer(&program)))
	if errno != 0 {
		return fmt.Errorf("seccomp(SECCOMP_SET_MODE_FILTER) failed: %w", errno)
	}
	return nil
}

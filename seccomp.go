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

// Package seccomp models seccomp profiles as defined by the container runtime
// specification and implements the operations over them: reading and writing,
// merging, diffing and compiling a profile into a BPF program.
package seccomp

import (
	"errors"

	"github.com/elastic/go-seccomp-profiler/internal/unix"
)

const (
	errnoEPERM  = uint16(unix.EPERM)
	errnoENOSYS = uint16(unix.ENOSYS)

	sizeOfUint32 = 4
)

var (
	errNoRules = errors.New("profile has no syscall rules")
	errNoNames = errors.New("profile has no syscall names")
)

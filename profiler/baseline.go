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

import "slices"

// Syscalls the Go runtime and the container runtime issue on behalf of every
// process without going through the syscall package: scheduling, memory
// management, signal handling, process control and basic I/O.
var runtimeBaseline = [...]string{
	"arch_prctl",
	"brk",
	"capget",
	"capset",
	"chdir",
	"clone",
	"close",
	"epoll_create1",
	"epoll_ctl",
	"epoll_pwait",
	"execve",
	"exit",
	"exit_group",
	"fcntl",
	"fstat",
	"futex",
	"getdents64",
	"getpid",
	"getppid",
	"gettid",
	"madvise",
	"mincore",
	"mmap",
	"mprotect",
	"munmap",
	"nanosleep",
	"newfstatat",
	"openat",
	"pipe2",
	"prctl",
	"prlimit64",
	"read",
	"readlinkat",
	"rt_sigaction",
	"rt_sigprocmask",
	"rt_sigreturn",
	"sched_getaffinity",
	"sched_yield",
	"setgid",
	"setgroups",
	"setuid",
	"sigaltstack",
	"tgkill",
	"uname",
	"write",
}

// RuntimeBaseline returns the syscalls every Go profile allows regardless of
// the symbols found in the binary, sorted.
func RuntimeBaseline() []string {
	return slices.Clone(runtimeBaseline[:])
}

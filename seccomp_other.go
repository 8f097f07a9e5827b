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

//go:build !linux

package seccomp

import "errors"

var errUnsupported = errors.New("seccomp filters are only supported on linux")

// Supported returns true if the seccomp syscall is supported by the kernel.
func Supported() bool { return false }

// SetNoNewPrivs sets the no_new_privs bit on the calling thread.
func SetNoNewPrivs() error { return errUnsupported }

// LoadFilter assembles the policy of the filter and installs it on the calling
// process.
func LoadFilter(filter Filter) error { return errUnsupported }

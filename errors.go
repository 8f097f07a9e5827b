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
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this module matches one of them with
// errors.Is.
var (
	ErrParse         = errors.New("unrecognized object file")
	ErrConfig        = errors.New("invalid configuration")
	ErrIO            = errors.New("i/o failure")
	ErrSerialization = errors.New("profile serialization failure")
	ErrProfile       = errors.New("invalid profile")
)

// Error describes a failed operation on a file or profile.
type Error struct {
	Kind error  // One of the Err* kinds.
	Op   string // Operation that failed, e.g. "read profile".
	Path string // File involved, if any.
	Err  error  // Underlying cause, if any.
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %v", msg, e.Kind)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

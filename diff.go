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
	"fmt"
	"sort"
)

// DiffStatus tells in which of two compared profiles a syscall name appears.
type DiffStatus uint8

const (
	OnlyLeft DiffStatus = iota + 1
	OnlyRight
	Both
)

var diffStatusNames = map[DiffStatus]string{
	OnlyLeft:  "only_left",
	OnlyRight: "only_right",
	Both:      "both",
}

// String returns a string representation of the DiffStatus.
func (s DiffStatus) String() string {
	if name, found := diffStatusNames[s]; found {
		return name
	}
	return "unknown"
}

// MarshalText marshals the value to text.
func (s DiffStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diff classifies every syscall name of the two profiles. Names found in both
// map to Both regardless of how often or in which rule they appear. It fails
// with ErrProfile if either profile has no syscall names.
func Diff(left, right *Profile) (map[string]DiffStatus, error) {
	leftNames, err := SyscallNames(left)
	if err != nil {
		return nil, fmt.Errorf("left profile: %w", err)
	}
	rightNames, err := SyscallNames(right)
	if err != nil {
		return nil, fmt.Errorf("right profile: %w", err)
	}

	diff := make(map[string]DiffStatus, len(leftNames)+len(rightNames))
	for _, name := range leftNames {
		diff[name] = OnlyLeft
	}
	for _, name := range rightNames {
		if _, found := diff[name]; found {
			diff[name] = Both
		} else {
			diff[name] = OnlyRight
		}
	}
	return diff, nil
}

// DiffFiles reads the two profiles stored at the given paths and diffs them.
func DiffFiles(leftPath, rightPath string) (map[string]DiffStatus, error) {
	left, err := ReadProfile(leftPath)
	if err != nil {
		return nil, err
	}
	right, err := ReadProfile(rightPath)
	if err != nil {
		return nil, err
	}
	return Diff(left, right)
}

// DiffEntry is one syscall name of a diff.
type DiffEntry struct {
	Name   string     `json:"name"   yaml:"name"`
	Status DiffStatus `json:"status" yaml:"status"`
}

// SortedDiff returns the entries of the diff ordered by syscall name.
func SortedDiff(diff map[string]DiffStatus) []DiffEntry {
	entries := make([]DiffEntry, 0, len(diff))
	for name, status := range diff {
		entries = append(entries, DiffEntry{Name: name, Status: status})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

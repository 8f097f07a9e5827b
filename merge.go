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
	"slices"

	"github.com/hashicorp/go-multierror"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// EmptyMergeAction is the default action of the profile returned when merging
// no profiles at all. Every other merge result defaults to SCMP_ACT_ERRNO.
const EmptyMergeAction = specs.ActAllow

// Merge combines the profiles into one profile whose single allow rule holds
// the sorted union of every syscall name of every input rule. The result
// always declares MergeArchitectures, whatever the inputs declare.
//
// A profile without extractable syscall names contributes nothing and does not
// stop the merge. The returned profile is always usable; the error, if not
// nil, is a *multierror.Error listing the inputs that were skipped.
func Merge(profiles ...*Profile) (*Profile, error) {
	if len(profiles) == 0 {
		return &Profile{DefaultAction: EmptyMergeAction}, nil
	}

	var (
		names   []string
		skipped *multierror.Error
	)
	for i, p := range profiles {
		profileNames, err := SyscallNames(p)
		if err != nil {
			skipped = multierror.Append(skipped, fmt.Errorf("profile %d skipped: %w", i, err))
			continue
		}
		names = append(names, profileNames...)
	}

	slices.Sort(names)
	names = slices.Compact(names)

	return NewAllowProfile(MergeArchitectures(), names), skipped.ErrorOrNil()
}

// MergeFiles reads the profiles stored at paths and merges them. Unlike
// skipped inputs, a profile that cannot be read fails the whole operation.
func MergeFiles(paths ...string) (*Profile, error) {
	profiles, err := ReadProfiles(paths)
	if err != nil {
		return nil, err
	}
	return Merge(profiles...)
}

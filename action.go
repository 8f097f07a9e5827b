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
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/elastic/go-seccomp-profiler/internal/unix"
)

// FilterFlag is a flag that is passed to the seccomp. Multiple flags can be
// OR'ed together.
type FilterFlag uint32

const (
	FilterFlagTSync FilterFlag = unix.SECCOMP_FILTER_FLAG_TSYNC
	FilterFlagLog   FilterFlag = unix.SECCOMP_FILTER_FLAG_LOG
)

var filterFlagNames = map[FilterFlag]string{
	FilterFlagTSync: "tsync",
	FilterFlagLog:   "log",
}

// String returns a string representation of the FilterFlag.
func (f FilterFlag) String() string {
	if name, found := filterFlagNames[f]; found {
		return name
	}

	var list []string
	for flag, name := range filterFlagNames {
		if f&flag != 0 {
			f ^= flag
			list = append(list, name)
		}
	}
	if f != 0 {
		list = append(list, "unknown")
	}
	return strings.Join(list, "|")
}

// Action is the value a BPF seccomp program returns for a syscall.
type Action uint32

const (
	ActionKillThread  Action = unix.SECCOMP_RET_KILL_THREAD
	ActionKillProcess Action = unix.SECCOMP_RET_KILL_PROCESS
	ActionTrap        Action = unix.SECCOMP_RET_TRAP
	ActionErrno       Action = unix.SECCOMP_RET_ERRNO
	ActionTrace       Action = unix.SECCOMP_RET_TRACE
	ActionLog         Action = unix.SECCOMP_RET_LOG
	ActionAllow       Action = unix.SECCOMP_RET_ALLOW
)

var actionNames = map[Action]string{
	ActionKillThread:  "kill_thread",
	ActionKillProcess: "kill_process",
	ActionTrap:        "trap",
	ActionErrno:       "errno",
	ActionTrace:       "trace",
	ActionLog:         "log",
	ActionAllow:       "allow",
}

// Profile actions that can be expressed in a BPF program. SCMP_ACT_NOTIFY
// needs a listener and is left out.
var profileActions = map[specs.LinuxSeccompAction]Action{
	specs.ActKill:        ActionKillThread,
	specs.ActKillThread:  ActionKillThread,
	specs.ActKillProcess: ActionKillProcess,
	specs.ActTrap:        ActionTrap,
	specs.ActErrno:       ActionErrno,
	specs.ActTrace:       ActionTrace,
	specs.ActLog:         ActionLog,
	specs.ActAllow:       ActionAllow,
}

// ParseAction returns the Action of a profile action such as SCMP_ACT_ALLOW.
func ParseAction(a specs.LinuxSeccompAction) (Action, error) {
	if action, found := profileActions[a]; found {
		return action, nil
	}
	return 0, fmt.Errorf("unsupported action: %v", a)
}

// Unpack sets the Action value based on the string. Both the short form
// ("allow") and the profile form ("SCMP_ACT_ALLOW") are accepted.
func (a *Action) Unpack(s string) error {
	if action, err := ParseAction(specs.LinuxSeccompAction(strings.ToUpper(s))); err == nil {
		*a = action
		return nil
	}

	s = strings.ToLower(s)
	for action, name := range actionNames {
		if name == s {
			*a = action
			return nil
		}
	}
	return fmt.Errorf("invalid action: %v", s)
}

// String returns a string representation of the Action.
func (a Action) String() string {
	name, found := actionNames[a]
	if found {
		return name
	}
	return "unknown"
}

// SplitRet splits a value returned by a filter into its action and its data.
func SplitRet(ret uint32) (Action, uint16) {
	return Action(ret & unix.SECCOMP_RET_ACTION_FULL), uint16(ret & unix.SECCOMP_RET_DATA)
}

// MarshalText marshals the value to text.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

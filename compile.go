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
	"io"
	"slices"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/net/bpf"

	"github.com/elastic/go-seccomp-profiler/arch"
)

var operations = map[specs.LinuxSeccompOperator]Operation{
	specs.OpEqualTo:      Equal,
	specs.OpNotEqual:     NotEqual,
	specs.OpGreaterThan:  GreaterThan,
	specs.OpGreaterEqual: GreaterOrEqual,
	specs.OpLessThan:     LessThan,
	specs.OpLessEqual:    LessOrEqual,
}

// Compile resolves the profile against the catalog of one architecture. A
// profile that declares architectures must declare the requested one. Rule
// names are deduplicated; argument conditions of a rule apply to each of its
// names.
func Compile(p *Profile, info *arch.Info) (*Policy, error) {
	if p == nil {
		return nil, compileError(errNoRules)
	}
	if info == nil {
		return nil, compileError(fmt.Errorf("no architecture given"))
	}
	if len(p.Architectures) > 0 && !slices.Contains(p.Architectures, info.Seccomp) {
		return nil, compileError(fmt.Errorf("profile does not declare architecture %v", info.Seccomp))
	}

	defaultAction, err := ParseAction(p.DefaultAction)
	if err != nil {
		return nil, compileError(err)
	}

	policy := &Policy{
		DefaultAction:   defaultAction,
		DefaultErrnoRet: errnoRet(p.DefaultErrnoRet),
		arch:            info,
	}
	for i, rule := range p.Syscalls {
		group, err := compileRule(rule, info)
		if err != nil {
			return nil, compileError(fmt.Errorf("rule %d: %w", i, err))
		}
		policy.Syscalls = append(policy.Syscalls, group)
	}

	if err = policy.Validate(); err != nil {
		return nil, compileError(err)
	}
	return policy, nil
}

func compileRule(rule SyscallRule, info *arch.Info) (SyscallGroup, error) {
	action, err := ParseAction(rule.Action)
	if err != nil {
		return SyscallGroup{}, err
	}

	group := SyscallGroup{
		Action:   action,
		ErrnoRet: errnoRet(rule.ErrnoRet),
		arch:     info,
	}

	names := slices.Clone(rule.Names)
	slices.Sort(names)
	names = slices.Compact(names)

	if len(rule.Args) == 0 {
		group.Names = names
		return group, nil
	}

	conditions := make(ArgumentConditions, 0, len(rule.Args))
	for _, arg := range rule.Args {
		op, found := operations[arg.Op]
		if !found {
			return SyscallGroup{}, fmt.Errorf("unsupported operator %v", arg.Op)
		}
		conditions = append(conditions, Condition{
			Argument:  uint32(arg.Index),
			Operation: op,
			Value:     arg.Value,
		})
	}
	for _, name := range names {
		group.NamesWithConditions = append(group.NamesWithConditions, NameWithConditions{
			Name:       name,
			Conditions: conditions,
		})
	}
	return group, nil
}

func errnoRet(ret *uint) uint16 {
	if ret == nil {
		return 0
	}
	return uint16(*ret)
}

func compileError(err error) error {
	return &Error{Kind: ErrProfile, Op: "compile profile", Err: err}
}

// Assemble compiles the profile for the architecture and assembles it into a
// list of BPF instructions.
func Assemble(p *Profile, info *arch.Info) ([]bpf.Instruction, error) {
	policy, err := Compile(p, info)
	if err != nil {
		return nil, err
	}

	program, err := policy.Assemble()
	if err != nil {
		return nil, compileError(err)
	}
	return program, nil
}

// Dump writes a textual representation of the BPF program of the profile to
// out.
func Dump(out io.Writer, p *Profile, info *arch.Info) error {
	policy, err := Compile(p, info)
	if err != nil {
		return err
	}
	if err = policy.Dump(out); err != nil {
		return compileError(err)
	}
	return nil
}

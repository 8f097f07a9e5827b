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
	"io"
	"strings"

	"golang.org/x/net/bpf"

	"github.com/elastic/go-seccomp-profiler/arch"
)

const (
	syscallNumOffset = 0
	archOffset       = 4
)

// Filter contains all the parameters necessary to install a Linux seccomp
// filter for the process.
type Filter struct {
	NoNewPrivs bool       // Set the process's no new privs bit.
	Flag       FilterFlag // Flag to pass to the seccomp call.
	Policy     Policy     // Policy that will be assembled into a BPF filter.
}

// Policy is a profile resolved against one architecture, ready to be
// assembled into a BPF program. Use Compile to obtain one from a Profile.
type Policy struct {
	DefaultAction   Action         // Action when no syscalls match.
	DefaultErrnoRet uint16         // Errno returned by a default ActionErrno.
	Syscalls        []SyscallGroup // Groups of syscalls and actions.

	arch *arch.Info
}

// Arch returns the architecture the policy was compiled for.
func (p *Policy) Arch() *arch.Info { return p.arch }

// SyscallGroup is a logical block within a Policy that contains a set of
// syscalls to match against and an action to take.
type SyscallGroup struct {
	Names               []string             // List of syscall names (all must exist).
	NamesWithConditions []NameWithConditions // List of syscalls with argument filters.
	Action              Action               // Action to take upon a match.
	ErrnoRet            uint16               // Errno returned by ActionErrno.

	arch *arch.Info
}

// ArgumentConditions consist of a list of up to six conditions for the six arguments.
type ArgumentConditions []Condition

func (a ArgumentConditions) Validate() []string {
	var problems []string
	for _, condition := range a {
		if condition.Argument > 5 {
			problems = append(problems, fmt.Sprintf("argument must be between 0 and 5 (inclusive), but is %v", condition.Argument))
		}
	}
	return problems
}

type NameWithConditions struct {
	Name       string
	Conditions ArgumentConditions
}

type Condition struct {
	Argument  uint32
	Operation Operation
	Value     uint64
}

type Operation string

const (
	Equal          Operation = "Equal"
	NotEqual       Operation = "NotEqual"
	GreaterThan    Operation = "GreaterThan"
	LessThan       Operation = "LessThan"
	GreaterOrEqual Operation = "GreaterOrEqual"
	LessOrEqual    Operation = "LessOrEqual"
)

// Validate validates that the policy has a known default action, a set of
// syscalls and an architecture.
func (p *Policy) Validate() error {
	if _, found := actionNames[p.DefaultAction]; !found {
		return fmt.Errorf("invalid default action value %d", p.DefaultAction)
	}

	if len(p.Syscalls) == 0 {
		return errors.New("syscalls must not be empty")
	}

	if p.arch == nil {
		return errors.New("architecture must be set")
	}

	return nil
}

// Assemble assembles the policy into a list of BPF instructions. If the policy
// contains any unknown syscalls or invalid actions an error will be returned.
func (p *Policy) Assemble() ([]bpf.Instruction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// Build the syscall filters.
	var instructions []bpf.Instruction
	for _, group := range p.Syscalls {
		if group.arch == nil {
			group.arch = p.arch
		}

		groupInsts, err := group.Assemble()
		if err != nil {
			return nil, err
		}

		instructions = append(instructions, groupInsts...)
	}
	instructions = append(instructions, bpf.RetConstant{Val: retValue(p.DefaultAction, p.DefaultErrnoRet)})

	// Filter out x32 to prevent bypassing the allow list by using the 32-bit ABI.
	var x32Filter []bpf.Instruction
	if p.arch.ID == arch.X86_64.ID {
		x32Filter = []bpf.Instruction{
			bpf.JumpIf{Cond: bpf.JumpGreaterOrEqual, Val: uint32(arch.X32SyscallBit), SkipFalse: 1},
			bpf.RetConstant{Val: uint32(ActionErrno) | uint32(errnoENOSYS)},
		}
	}

	program := make([]bpf.Instruction, 0, len(x32Filter)+len(instructions)+5)

	program = append(program, bpf.LoadAbsolute{Off: archOffset, Size: sizeOfUint32})

	// If the loaded arch ID is not equal p.arch.ID, jump to the final Ret instruction.
	jumpN := len(x32Filter) + len(instructions)
	if jumpN <= 255 {
		program = append(program, bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: p.arch.ID, SkipTrue: uint8(jumpN)})
	} else {
		// JumpIf can not handle long jumps, so we switch to two instructions for this case.
		program = append(program, bpf.JumpIf{Cond: bpf.JumpEqual, Val: p.arch.ID, SkipTrue: 1})
		program = append(program, bpf.Jump{Skip: uint32(jumpN)})
	}

	program = append(program, bpf.LoadAbsolute{Off: syscallNumOffset, Size: sizeOfUint32})
	program = append(program, x32Filter...)
	program = append(program, instructions...)
	return program, nil
}

// Dump writes a textual representation of the BPF instructions to out.
func (p *Policy) Dump(out io.Writer) error {
	assembled, err := p.Assemble()
	if err != nil {
		return err
	}

	for n, instruction := range assembled {
		fmt.Fprintf(out, "%d: %v\n", n, instruction)
	}
	return nil
}

// SyscallWithConditions consists of a syscall number and optional conditions.
//
// The conditions are applied to the arguments of the syscall.
// So, conditions consist of a list of up to six argument conditions.
// This filter matches if all argument conditions match for any Conditions.
type SyscallWithConditions struct {
	Num        uint32
	Conditions []ArgumentConditions
}

// getSyscall searches the syscall in the list.
// Do not use a map to keep the ordering of the profile.
func getSyscall(syscalls []SyscallWithConditions, syscall uint32) *SyscallWithConditions {
	for i := range syscalls {
		s := &syscalls[i]
		if s.Num == syscall {
			return s
		}
	}
	return nil
}

// toSyscallsWithConditions transforms a syscall group to syscalls with conditions.
func (g *SyscallGroup) toSyscallsWithConditions() ([]SyscallWithConditions, error) {
	var (
		syscalls []SyscallWithConditions
		problems []string
	)
	for _, name := range g.Names {
		if num, found := g.arch.SyscallNumber(name); found {
			syscall := uint32(num | g.arch.SeccompMask)
			if getSyscall(syscalls, syscall) == nil {
				syscalls = append(syscalls, SyscallWithConditions{Num: syscall})
			} else {
				problems = append(problems, fmt.Sprintf("found duplicate syscall %v", name))
			}
		} else {
			problems = append(problems, fmt.Sprintf("found unknown syscalls for arch %v: %v", g.arch.Name, name))
		}
	}

	for _, nc := range g.NamesWithConditions {
		if num, found := g.arch.SyscallNumber(nc.Name); found {
			syscall := uint32(num | g.arch.SeccompMask)
			check := getSyscall(syscalls, syscall)

			invalidArguments := nc.Conditions.Validate()
			if len(invalidArguments) > 0 {
				problems = append(problems, invalidArguments...)
				continue
			}
			if check == nil {
				conditions := []ArgumentConditions{nc.Conditions}
				syscalls = append(syscalls, SyscallWithConditions{Num: syscall, Conditions: conditions})
			} else {
				if len(check.Conditions) == 0 {
					// Unconditional check found.
					problems = append(problems, fmt.Sprintf("found conditional and unconditional check: %v", nc.Name))
				} else {
					check.Conditions = append(check.Conditions, nc.Conditions)
				}
			}
		} else {
			problems = append(problems, fmt.Sprintf("found unknown syscalls for arch %v: %v", g.arch.Name, nc.Name))
		}
	}

	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "\n"))
	}

	return syscalls, nil
}

// Assemble assembles the group. Syscalls that do not match continue with the
// instruction following the group.
func (g *SyscallGroup) Assemble() ([]bpf.Instruction, error) {
	if len(g.Names) == 0 && len(g.NamesWithConditions) == 0 {
		return nil, nil
	}

	syscalls, err := g.toSyscallsWithConditions()
	if err != nil {
		return nil, err
	}

	p := NewProgram()

	action := p.NewLabel()
	for _, syscall := range syscalls {
		syscall.Assemble(&p, action)
	}

	// No match, skip the action.
	p.Skip(1)

	p.SetLabel(action)
	p.Ret(g.Action, g.ErrnoRet)

	return p.Assemble()
}

func (s SyscallWithConditions) Assemble(p *Program, action Label) {
	if len(s.Conditions) == 0 {
		// If no conditions are set, compare to the syscall number and jump to action if it matches.
		p.JmpIfTrue(bpf.JumpEqual, s.Num, action)
		return
	}

	nextSyscall := p.NewLabel()
	p.JmpIfTrue(bpf.JumpNotEqual, s.Num, nextSyscall)

	for _, conditions := range s.Conditions {
		noMatch := p.NewLabel()
		for i, c := range conditions {
			nextArgument := p.NewLabel()

			// All argument checks must match, so if this argument check matches, jump to the next argument
			// or if it is the last check to the action.
			match := nextArgument
			if i == len(conditions)-1 {
				match = action
			}

			// Perform the 64-bit operation with multiple 32-bit operations.
			switch c.Operation {
			case Equal:
				// Arg_hi == Val_hi && Arg_lo == Val_lo
				p.LdHi(c.Argument)
				p.JmpIfTrue(bpf.JumpNotEqual, uint32(c.Value>>32), noMatch)
				p.LdLo(c.Argument)
				p.JmpIf(bpf.JumpEqual, uint32(c.Value), match, noMatch)
			case NotEqual:
				// Arg_hi != Val_hi || Arg_lo != Val_lo
				p.LdHi(c.Argument)
				p.JmpIfTrue(bpf.JumpNotEqual, uint32(c.Value>>32), match)
				p.LdLo(c.Argument)
				p.JmpIf(bpf.JumpNotEqual, uint32(c.Value), match, noMatch)
			case GreaterThan:
				// Arg_hi > Val_hi || (Arg_hi == Val_hi && Arg_lo > Val_lo)
				p.LdHi(c.Argument)
				p.JmpIfTrue(bpf.JumpGreaterThan, uint32(c.Value>>32), match)
				p.JmpIfTrue(bpf.JumpNotEqual, uint32(c.Value>>32), noMatch)
				p.LdLo(c.Argument)
				p.JmpIf(bpf.JumpGreaterThan, uint32(c.Value), match, noMatch)
			case GreaterOrEqual:
				// Arg_hi > Val_hi || (Arg_hi == Val_hi && Arg_lo >= Val_lo)
				p.LdHi(c.Argument)
				p.JmpIfTrue(bpf.JumpGreaterThan, uint32(c.Value>>32), match)
				p.JmpIfTrue(bpf.JumpNotEqual, uint32(c.Value>>32), noMatch)
				p.LdLo(c.Argument)
				p.JmpIf(bpf.JumpGreaterOrEqual, uint32(c.Value), match, noMatch)
			case LessThan:
				// Arg_hi < Val_hi || (Arg_hi == Val_hi && Arg_lo < Val_lo)
				p.LdHi(c.Argument)
				p.JmpIfTrue(bpf.JumpLessThan, uint32(c.Value>>32), match)
				p.JmpIfTrue(bpf.JumpNotEqual, uint32(c.Value>>32), noMatch)
				p.LdLo(c.Argument)
				p.JmpIf(bpf.JumpLessThan, uint32(c.Value), match, noMatch)
			case LessOrEqual:
				// Arg_hi < Val_hi || (Arg_hi == Val_hi && Arg_lo <= Val_lo)
				p.LdHi(c.Argument)
				p.JmpIfTrue(bpf.JumpLessThan, uint32(c.Value>>32), match)
				p.JmpIfTrue(bpf.JumpNotEqual, uint32(c.Value>>32), noMatch)
				p.LdLo(c.Argument)
				p.JmpIf(bpf.JumpLessOrEqual, uint32(c.Value), match, noMatch)
			}
			p.SetLabel(nextArgument)
		}
		p.SetLabel(noMatch)
	}
	// The argument checks overwrote the syscall number.
	p.LdSyscall()
	p.SetLabel(nextSyscall)
}

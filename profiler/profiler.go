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

// Package profiler derives seccomp profiles from compiled binaries by static
// analysis of their symbol tables.
package profiler

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	seccomp "github.com/elastic/go-seccomp-profiler"
	"github.com/elastic/go-seccomp-profiler/arch"
)

// Profiler derives a profile from one binary.
type Profiler interface {
	// Analyze derives the profile without side effects.
	Analyze() (*seccomp.Profile, error)
	// Output derives the profile and writes it to the destination.
	Output() error
}

// Language selects how a binary is analyzed.
type Language uint8

const (
	LanguageC Language = iota + 1
	LanguageGo
)

var languageNames = map[Language]string{
	LanguageC:  "c",
	LanguageGo: "go",
}

// Unpack sets the Language value based on the string.
func (l *Language) Unpack(s string) error {
	s = strings.ToLower(s)
	if s == "golang" {
		s = "go"
	}
	for lang, name := range languageNames {
		if name == s {
			*l = lang
			return nil
		}
	}
	return fmt.Errorf("invalid language: %v", s)
}

// String returns a string representation of the Language.
func (l Language) String() string {
	if name, found := languageNames[l]; found {
		return name
	}
	return "unknown"
}

// MarshalText marshals the value to text.
func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Config holds the parameters of a profiler run.
type Config struct {
	Language    Language `config:"language"    validate:"required" json:"language"`
	Target      string   `config:"target"      validate:"required" json:"target"`      // Binary to analyze.
	Destination string   `config:"destination" validate:"required" json:"destination"` // Profile output path.
	SyscallMap  string   `config:"syscall_map"                     json:"syscall_map"` // Function to syscall map, C only.
	Arch        string   `config:"arch"                            json:"arch"`        // Catalog architecture.
}

// DefaultConfig returns the default profiler configuration.
func DefaultConfig() Config {
	return Config{Arch: arch.X86_64.Name}
}

// Validate validates the language specific settings.
func (c *Config) Validate() error {
	switch c.Language {
	case LanguageC:
		if c.SyscallMap == "" {
			return fmt.Errorf("syscall_map is required for language %v", c.Language)
		}
	case LanguageGo:
	default:
		return fmt.Errorf("invalid language value %d", c.Language)
	}

	if c.Arch != "" {
		if _, err := arch.GetInfo(c.Arch); err != nil {
			return err
		}
	}
	return nil
}

// New returns the profiler selected by the configuration.
func New(c Config, log logrus.FieldLogger) (Profiler, error) {
	if err := c.Validate(); err != nil {
		return nil, &seccomp.Error{Kind: seccomp.ErrConfig, Op: "create profiler", Err: err}
	}

	info := arch.X86_64
	if c.Arch != "" {
		info, _ = arch.GetInfo(c.Arch)
	}

	switch c.Language {
	case LanguageC:
		return &CProfiler{
			Destination: c.Destination,
			Target:      c.Target,
			SyscallMap:  c.SyscallMap,
			Arch:        info,
			Log:         log,
		}, nil
	default:
		return &GoProfiler{
			Destination: c.Destination,
			Target:      c.Target,
			Arch:        info,
			Log:         log,
		}, nil
	}
}

func logger(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}

func archOrDefault(info *arch.Info) *arch.Info {
	if info == nil {
		return arch.X86_64
	}
	return info
}

// output derives the profile with analyze and writes it to destination.
func output(destination string, analyze func() (*seccomp.Profile, error)) error {
	profile, err := analyze()
	if err != nil {
		return err
	}
	return seccomp.WriteProfile(destination, profile)
}

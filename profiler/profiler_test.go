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

import (
	"testing"

	"github.com/elastic/go-ucfg"
	"github.com/elastic/go-ucfg/yaml"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seccomp "github.com/elastic/go-seccomp-profiler"
	"github.com/elastic/go-seccomp-profiler/arch"
)

func TestLanguageUnpack(t *testing.T) {
	cases := map[string]Language{
		"c":      LanguageC,
		"C":      LanguageC,
		"go":     LanguageGo,
		"golang": LanguageGo,
		"Go":     LanguageGo,
	}
	for in, expected := range cases {
		var l Language
		if assert.NoError(t, l.Unpack(in), in) {
			assert.Equal(t, expected, l, in)
		}
	}

	var l Language
	assert.Error(t, l.Unpack("rust"))
	assert.Equal(t, "unknown", l.String())
}

func TestConfigUnpack(t *testing.T) {
	cfg, err := yaml.NewConfig([]byte(`
language: c
target: /usr/bin/true
destination: true.json
syscall_map: libc.json
`))
	require.NoError(t, err)

	c := DefaultConfig()
	require.NoError(t, cfg.Unpack(&c))

	assert.Equal(t, Config{
		Language:    LanguageC,
		Target:      "/usr/bin/true",
		Destination: "true.json",
		SyscallMap:  "libc.json",
		Arch:        "x86_64",
	}, c)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]struct {
		settings map[string]interface{}
		valid    bool
	}{
		"go": {
			settings: map[string]interface{}{"language": "go", "target": "app", "destination": "app.json"},
			valid:    true,
		},
		"go with arch alias": {
			settings: map[string]interface{}{"language": "golang", "target": "app", "destination": "app.json", "arch": "amd64"},
			valid:    true,
		},
		"c without syscall map": {
			settings: map[string]interface{}{"language": "c", "target": "app", "destination": "app.json"},
		},
		"missing target": {
			settings: map[string]interface{}{"language": "go", "destination": "app.json"},
		},
		"invalid language": {
			settings: map[string]interface{}{"language": "rust", "target": "app", "destination": "app.json"},
		},
		"unsupported arch": {
			settings: map[string]interface{}{"language": "go", "target": "app", "destination": "app.json", "arch": "mips"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := ucfg.NewFrom(tc.settings)
			require.NoError(t, err)

			c := DefaultConfig()
			err = cfg.Unpack(&c)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	log, _ := test.NewNullLogger()

	p, err := New(Config{Language: LanguageGo, Target: "app", Destination: "app.json"}, log)
	require.NoError(t, err)
	if assert.IsType(t, &GoProfiler{}, p) {
		g := p.(*GoProfiler)
		assert.Equal(t, "app", g.Target)
		assert.Equal(t, "app.json", g.Destination)
		assert.Same(t, arch.X86_64, g.Arch)
	}

	p, err = New(Config{Language: LanguageC, Target: "app", Destination: "app.json", SyscallMap: "libc.json", Arch: "amd64"}, log)
	require.NoError(t, err)
	if assert.IsType(t, &CProfiler{}, p) {
		c := p.(*CProfiler)
		assert.Equal(t, "libc.json", c.SyscallMap)
		assert.Same(t, arch.X86_64, c.Arch)
	}

	_, err = New(Config{Language: LanguageC, Target: "app", Destination: "app.json"}, log)
	assert.ErrorIs(t, err, seccomp.ErrConfig)
}

func TestAnalyzeLogging(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	p, err := New(Config{Language: LanguageGo, Target: goFixture, Destination: "unused.json"}, log)
	require.NoError(t, err)

	_, err = p.Analyze()
	require.NoError(t, err)

	require.NotEmpty(t, hook.AllEntries())
	for _, entry := range hook.AllEntries() {
		assert.Equal(t, logrus.DebugLevel, entry.Level)
		assert.Equal(t, goFixture, entry.Data["binary"])
	}
}

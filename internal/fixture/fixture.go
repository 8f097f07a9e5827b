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

// Package fixture builds the binaries analyzed by the tests.
package fixture

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GoSyscalls are referenced by the Go fixture and are not part of the Go
// runtime baseline.
var GoSyscalls = []string{"chroot", "socket"}

// BuildGo builds testdata/gofixture as a linux/amd64 ELF binary into dir and
// returns its path. A stripped binary has no symbol table.
func BuildGo(dir string, stripped bool) (string, error) {
	root, err := moduleRoot()
	if err != nil {
		return "", err
	}

	name := "gofixture"
	args := []string{"build", "-trimpath"}
	if stripped {
		name += "-stripped"
		args = append(args, "-ldflags=-s -w")
	}
	out := filepath.Join(dir, name)
	args = append(args, "-o", out, "./testdata/gofixture")

	cmd := exec.Command("go", args...)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS=linux", "GOARCH=amd64", "GOFLAGS=")
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("go build failed: %w: %s", err, output)
	}
	return out, nil
}

func moduleRoot() (string, error) {
	out, err := exec.Command("go", "env", "GOMOD").Output()
	if err != nil {
		return "", fmt.Errorf("go env GOMOD failed: %w", err)
	}
	gomod := strings.TrimSpace(string(out))
	if gomod == "" || gomod == os.DevNull {
		return "", fmt.Errorf("not inside a module")
	}
	return filepath.Dir(gomod), nil
}

// DynamicBinary returns the path of a dynamically linked system binary, or an
// empty string when none of the usual candidates exists.
func DynamicBinary() string {
	for _, path := range []string{"/bin/true", "/usr/bin/true", "/bin/ls", "/usr/bin/ls"} {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

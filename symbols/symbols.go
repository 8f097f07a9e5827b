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

// Package symbols reads symbol names from compiled object files (ELF, Mach-O
// and PE) without executing them or shelling out to external tools.
package symbols

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	seccomp "github.com/elastic/go-seccomp-profiler"
)

// Format identifies the object file format of a File.
type Format uint8

const (
	FormatELF Format = iota + 1
	FormatMachO
	FormatPE
)

var formatNames = map[Format]string{
	FormatELF:   "elf",
	FormatMachO: "macho",
	FormatPE:    "pe",
}

// String returns a string representation of the Format.
func (f Format) String() string {
	if name, found := formatNames[f]; found {
		return name
	}
	return "unknown"
}

// File is an object file opened for symbol reading.
type File struct {
	Path   string
	Format Format

	file  *os.File
	elf   *elf.File
	macho *macho.File
	pe    *pe.File
}

// Open opens the object file at path and detects its format. A file that
// cannot be opened or is not a recognized object file yields an error
// matching seccomp.ErrParse.
func Open(path string) (*File, error) {
	osFile, err := os.Open(path)
	if err != nil {
		return nil, &seccomp.Error{Kind: seccomp.ErrParse, Op: "open binary", Path: path, Err: err}
	}

	f := &File{Path: path, file: osFile}
	if err = f.detect(osFile); err != nil {
		osFile.Close()
		return nil, &seccomp.Error{Kind: seccomp.ErrParse, Op: "parse binary", Path: path, Err: err}
	}
	return f, nil
}

func (f *File) detect(r io.ReaderAt) error {
	if ef, err := elf.NewFile(r); err == nil {
		f.elf, f.Format = ef, FormatELF
		return nil
	}
	if mf, err := macho.NewFile(r); err == nil {
		f.macho, f.Format = mf, FormatMachO
		return nil
	}
	if pf, err := pe.NewFile(r); err == nil {
		f.pe, f.Format = pf, FormatPE
		return nil
	}
	return errors.New("not a recognized object file format")
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.file.Close()
}

// DynamicSymbols returns the names of the symbols resolved through dynamic
// linking, in file order. A statically linked file returns an empty list.
func (f *File) DynamicSymbols() ([]string, error) {
	switch f.Format {
	case FormatELF:
		syms, err := f.elf.DynamicSymbols()
		if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
			return nil, f.parseError("read dynamic symbols", err)
		}
		return elfNames(syms), nil
	case FormatMachO:
		names, err := f.macho.ImportedSymbols()
		if err != nil {
			return nil, f.parseError("read dynamic symbols", err)
		}
		return nonEmpty(names), nil
	case FormatPE:
		imports, err := f.pe.ImportedSymbols()
		if err != nil {
			return nil, f.parseError("read dynamic symbols", err)
		}
		names := make([]string, 0, len(imports))
		for _, imp := range imports {
			// Imported PE symbols are reported as "name:library".
			name, _, _ := strings.Cut(imp, ":")
			names = append(names, name)
		}
		return nonEmpty(names), nil
	}
	return nil, f.parseError("read dynamic symbols", fmt.Errorf("unsupported format %v", f.Format))
}

// Symbols returns the names of all entries of the symbol table, in file
// order. A stripped file returns an empty list.
func (f *File) Symbols() ([]string, error) {
	switch f.Format {
	case FormatELF:
		syms, err := f.elf.Symbols()
		if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
			return nil, f.parseError("read symbols", err)
		}
		return elfNames(syms), nil
	case FormatMachO:
		if f.macho.Symtab == nil {
			return nil, nil
		}
		names := make([]string, 0, len(f.macho.Symtab.Syms))
		for _, sym := range f.macho.Symtab.Syms {
			names = append(names, sym.Name)
		}
		return nonEmpty(names), nil
	case FormatPE:
		names := make([]string, 0, len(f.pe.Symbols))
		for _, sym := range f.pe.Symbols {
			names = append(names, sym.Name)
		}
		return nonEmpty(names), nil
	}
	return nil, f.parseError("read symbols", fmt.Errorf("unsupported format %v", f.Format))
}

func (f *File) parseError(op string, err error) error {
	return &seccomp.Error{Kind: seccomp.ErrParse, Op: op, Path: f.Path, Err: err}
}

// DynamicSymbols opens the object file at path and returns its dynamic
// symbol names.
func DynamicSymbols(path string) ([]string, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.DynamicSymbols()
}

// Symbols opens the object file at path and returns its symbol table names.
func Symbols(path string) ([]string, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.Symbols()
}

func elfNames(syms []elf.Symbol) []string {
	names := make([]string, 0, len(syms))
	for _, sym := range syms {
		if sym.Name != "" {
			names = append(names, sym.Name)
		}
	}
	return names
}

func nonEmpty(names []string) []string {
	out := names[:0]
	for _, name := range names {
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

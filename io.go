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
	"encoding/json"
	"os"
)

// EncodeProfile encodes the profile into its compact JSON wire format. The
// output depends only on the profile content.
func EncodeProfile(p *Profile) ([]byte, error) {
	return encodeProfile("", p)
}

func encodeProfile(path string, p *Profile) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, &Error{Kind: ErrSerialization, Op: "encode profile", Path: path, Err: err}
	}
	return data, nil
}

// EncodeIndent encodes the profile into indented JSON for human consumption.
func EncodeIndent(p *Profile) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, &Error{Kind: ErrSerialization, Op: "encode profile", Err: err}
	}
	return data, nil
}

// DecodeProfile decodes a profile from its JSON wire format. Rules are kept as
// they are, unsorted names and duplicates included.
func DecodeProfile(data []byte) (*Profile, error) {
	return decodeProfile("", data)
}

func decodeProfile(path string, data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &Error{Kind: ErrSerialization, Op: "decode profile", Path: path, Err: err}
	}
	return &p, nil
}

// ReadProfile reads the profile stored at path.
func ReadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Op: "read profile", Path: path, Err: err}
	}

	return decodeProfile(path, data)
}

// ReadProfiles reads the profiles stored at paths, in order. It stops at the
// first profile that cannot be read.
func ReadProfiles(paths []string) ([]*Profile, error) {
	profiles := make([]*Profile, 0, len(paths))
	for _, path := range paths {
		p, err := ReadProfile(path)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// WriteProfile encodes the profile and writes it to path, replacing any
// existing file. The write is not atomic.
func WriteProfile(path string, p *Profile) error {
	data, err := encodeProfile(path, p)
	if err != nil {
		return err
	}

	if err = os.WriteFile(path, data, 0o644); err != nil {
		return &Error{Kind: ErrIO, Op: "write profile", Path: path, Err: err}
	}
	return nil
}

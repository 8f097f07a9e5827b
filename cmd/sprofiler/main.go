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

// sprofiler derives seccomp profiles from compiled binaries and works with
// the resulting profiles.
//
//	sprofiler go -o app.json ./app
//	sprofiler c --map libc.json -o tool.json ./tool
//	sprofiler profile --config sprofiler.yml
//	sprofiler merge -o all.json app.json tool.json
//	sprofiler diff app.json tool.json
//	sprofiler dump app.json
//	sprofiler exec --profile app.json -- ./app --flag
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

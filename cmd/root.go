// Copyright 2024 The OpenIndex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd is the openindex command line: a thin cobra layer over
// the crawler and parser packages.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use: "openindex",
	Long: `openindex discovers and enumerates the complete tree of directories
and files reachable from one or more open-directory URLs.

Point it at a publicly browsable file listing and it classifies the
listing dialect (Apache or Nginx autoindex, IIS, h5ai, HFS, Snif,
script-drawn pages, JSON-backed frontends, and more), extracts every
entry, and recursively walks the subdirectories it finds. The result is
a structured inventory of names, URLs and sizes suitable for later
retrieval.

To index a directory:

	$ openindex scan http://example.com/files/

Several roots can be given at once, and a TOML config file can replace
the flags:

	$ openindex scan --config crawl.toml
`,
	Example: `  $ openindex scan http://example.com/files/
  $ openindex scan --threads 10 http://example.com/files/
  $ openindex version`,

	// help text on every provisioning error gets old fast
	SilenceUsage: true,
}

// Main is the entry point of the openindex command.
func Main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

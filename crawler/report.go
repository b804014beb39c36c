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

package crawler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/openindex/openindex"
)

// Stats aggregates a finished crawl.
type Stats struct {
	Directories int
	Files       int
	TotalSize   int64
	Errors      int
	Dialects    map[string]int
}

// Collect walks the result trees and tallies totals.
func Collect(roots []*openindex.Directory) Stats {
	stats := Stats{Dialects: make(map[string]int)}
	var walk func(*openindex.Directory)
	walk = func(dir *openindex.Directory) {
		stats.Directories++
		if dir.Error {
			stats.Errors++
		}
		if dir.Parser != "" {
			stats.Dialects[dir.Parser]++
		}
		stats.Files += len(dir.Files)
		stats.TotalSize += dir.TotalFileSize()
		for _, sub := range dir.Subdirectories {
			walk(sub)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return stats
}

// Summary renders the stats for the terminal.
func (s Stats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d directories, %d files, %s",
		s.Directories, s.Files, humanize.IBytes(uint64(s.TotalSize)))
	if s.Errors > 0 {
		fmt.Fprintf(&b, ", %d errors", s.Errors)
	}

	dialects := make([]string, 0, len(s.Dialects))
	for dialect := range s.Dialects {
		dialects = append(dialects, dialect)
	}
	sort.Strings(dialects)
	for _, dialect := range dialects {
		fmt.Fprintf(&b, "\n  %6d  %s", s.Dialects[dialect], dialect)
	}
	return b.String()
}

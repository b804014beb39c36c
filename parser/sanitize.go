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

package parser

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/openindex/openindex"
	"github.com/openindex/openindex/remote"
)

// maxSymlinkDepth is how many ancestor levels the loop detector walks.
const maxSymlinkDepth = 8

var crawlableSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ftps":  true,
}

// sanitize is the mandatory post-extraction pass: it strips sort queries
// and fragments, enforces host/path containment, prunes Linux
// pseudo-filesystems, and detects symlink loops. It is idempotent.
func sanitize(dir *openindex.Directory, checkParents bool) {
	if dir.Error {
		dir.ClearEntries()
		return
	}

	for _, sub := range dir.Subdirectories {
		sub.URL = StripURL(sub.URL)
	}

	if checkParents {
		filterToScope(dir)
	}

	cleanFragments(dir)
	pruneDynamicEntries(dir)

	if hasSymlinkLoop(dir) {
		openindex.Log().Warn("directory repeats an ancestor's contents; assuming symlink loop",
			zap.String("url", dir.URL))
		dir.Error = true
		dir.ClearEntries()
	}
}

// filterToScope drops entries that escape the directory's own host and
// path prefix, except entries on whitelisted remote-backend hosts.
func filterToScope(dir *openindex.Directory) {
	base, err := url.Parse(dir.URL)
	if err != nil {
		return
	}

	keptSubs := dir.Subdirectories[:0]
	for _, sub := range dir.Subdirectories {
		u, err := url.Parse(sub.URL)
		if err != nil {
			continue
		}
		if remote.IsWhitelistedHost(u.Hostname()) ||
			(crawlableSchemes[strings.ToLower(u.Scheme)] && sameHostAndDirectoryDirectory(base, u)) {
			keptSubs = append(keptSubs, sub)
		}
	}
	dir.Subdirectories = keptSubs

	keptFiles := dir.Files[:0]
	for _, f := range dir.Files {
		u, err := url.Parse(f.URL)
		if err != nil {
			continue
		}
		if remote.IsWhitelistedHost(u.Hostname()) ||
			(crawlableSchemes[strings.ToLower(u.Scheme)] && sameHostAndDirectoryFile(base, u)) {
			keptFiles = append(keptFiles, f)
		}
	}
	dir.Files = keptFiles
}

// cleanFragments strips "#..." from entry URLs on HTTP(S) directories
// and deduplicates what collapses together. FTP(S) URLs keep fragments
// verbatim: on FTP servers "#" is a legal filename character.
func cleanFragments(dir *openindex.Directory) {
	base, err := url.Parse(dir.URL)
	if err != nil {
		return
	}
	scheme := strings.ToLower(base.Scheme)
	if scheme != "http" && scheme != "https" {
		return
	}

	seenSubs := make(map[string]bool, len(dir.Subdirectories))
	keptSubs := dir.Subdirectories[:0]
	for _, sub := range dir.Subdirectories {
		sub.URL = stripFragment(sub.URL)
		if seenSubs[sub.URL] {
			continue
		}
		seenSubs[sub.URL] = true
		keptSubs = append(keptSubs, sub)
	}
	dir.Subdirectories = keptSubs

	seenFiles := make(map[string]bool, len(dir.Files))
	keptFiles := dir.Files[:0]
	for _, f := range dir.Files {
		f.URL = stripFragment(f.URL)
		if seenFiles[f.URL] {
			continue
		}
		seenFiles[f.URL] = true
		keptFiles = append(keptFiles, f)
	}
	dir.Files = keptFiles
}

// pseudoFilesystemRules describe Linux directories whose listings are
// kernel-generated and worthless to crawl. When a directory's name and
// contents match a rule, its entries are dropped.
var pseudoFilesystemRules = map[string][]string{
	"dev":  {"bus", "cpu", "disk"},
	"lib":  {"firmware", "modules"},
	"run":  {"sudo", "user"},
	"snap": {"bin"},
	"sys":  {"dev", "kernel"},
	"var":  {"lib", "run"},
}

// usrPseudoSubdirs are the /usr children that get dropped individually;
// unlike the other pseudo-filesystems, /usr may also hold real content.
var usrPseudoSubdirs = map[string]bool{
	"bin": true, "include": true, "lib": true,
	"lib32": true, "share": true, "src": true,
}

func pruneDynamicEntries(dir *openindex.Directory) {
	keptFiles := dir.Files[:0]
	for _, f := range dir.Files {
		if f.FileName == "core" {
			continue
		}
		keptFiles = append(keptFiles, f)
	}
	dir.Files = keptFiles

	entryNames := make(map[string]bool, len(dir.Subdirectories)+len(dir.Files))
	for _, sub := range dir.Subdirectories {
		entryNames[sub.Name] = true
	}
	for _, f := range dir.Files {
		entryNames[f.FileName] = true
	}

	switch dir.Name {
	case "dev", "lib", "run", "snap", "sys", "var":
		for _, marker := range pseudoFilesystemRules[dir.Name] {
			if entryNames[marker] {
				dir.ClearEntries()
				return
			}
		}
	case "proc":
		for _, sub := range dir.Subdirectories {
			if isAllDigits(sub.Name) {
				dir.ClearEntries()
				return
			}
		}
	case "usr":
		kept := dir.Subdirectories[:0]
		for _, sub := range dir.Subdirectories {
			if usrPseudoSubdirs[sub.Name] {
				continue
			}
			kept = append(kept, sub)
		}
		dir.Subdirectories = kept
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// hasSymlinkLoop reports whether the directory's contents exactly repeat
// those of one of its ancestors (same file name/size sequence and same
// subdirectory name sequence, order-sensitive), the signature of a
// filesystem symlink cycle or a virtual mirror.
func hasSymlinkLoop(dir *openindex.Directory) bool {
	if len(dir.Subdirectories) == 0 && len(dir.Files) == 0 {
		return false
	}

	depth := 0
	loop := false
	dir.Ancestors(func(ancestor *openindex.Directory) bool {
		depth++
		if depth > maxSymlinkDepth {
			return false
		}
		if sameContents(dir, ancestor) {
			loop = true
			return false
		}
		return true
	})
	return loop
}

func sameContents(a, b *openindex.Directory) bool {
	if len(a.Files) != len(b.Files) || len(a.Subdirectories) != len(b.Subdirectories) {
		return false
	}
	for i, f := range a.Files {
		if f.FileName != b.Files[i].FileName || f.FileSize != b.Files[i].FileSize {
			return false
		}
	}
	for i, sub := range a.Subdirectories {
		if sub.Name != b.Subdirectories[i].Name {
			return false
		}
	}
	return true
}

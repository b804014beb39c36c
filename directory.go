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

package openindex

import (
	"net/url"
	"path"
	"strings"
	"time"
)

// Directory is one parsed directory listing. The crawler creates it as a
// shell holding only URL and Parent, hands it to the parser which fills in
// the entries, and attaches the timing fields when the fetch completes.
type Directory struct {
	// URL is absolute and ends with a slash for HTTP(S) directories.
	URL string

	// Name is the decoded final path segment, or "ROOT" for the
	// root of a host.
	Name string

	// Parent points back at the directory whose listing produced this
	// one. It is a non-owning reference; only the crawler's result tree
	// owns directories. Nil for crawl roots.
	Parent *Directory

	Subdirectories []*Directory
	Files          []*File

	// Description is free-form text some listing dialects attach to a
	// directory row.
	Description string

	// Parser names the extractor that produced the entries, for
	// diagnostics only.
	Parser string

	ParsedSuccessfully bool

	// Error marks a directory the parser gave up on. An Error directory
	// holds no entries and must not be recursed into.
	Error bool

	// HeaderCount is the number of named header columns the table
	// extractor recognized; the dispatcher uses it to pick between
	// competing tables.
	HeaderCount int

	StartTime  time.Time
	FinishTime time.Time
	Finished   bool
}

// File is a single file entry inside a Directory.
type File struct {
	URL      string
	FileName string

	// FileSize is in bytes. 0 means "unknown", not "empty"; listings
	// that show no size, a "-" placeholder, or a wrapped negative
	// value all end up here as 0.
	FileSize int64

	Description string
}

// UnknownFileSize is the sentinel FileSize for listings that carry no
// usable size column.
const UnknownFileSize int64 = 0

// NewDirectory builds a shell directory for rawURL with the given parent.
// The URL is normalized to carry a trailing slash and the name is derived
// from the final path segment.
func NewDirectory(rawURL string, parent *Directory) *Directory {
	d := &Directory{
		URL:    rawURL,
		Parent: parent,
	}
	if u, err := url.Parse(rawURL); err == nil {
		if u.Path == "" {
			u.Path = "/"
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		d.URL = u.String()
		d.Name = DirectoryNameFromURL(u)
	}
	return d
}

// DirectoryNameFromURL returns the decoded final path segment of u, or
// "ROOT" when the path is empty or "/".
func DirectoryNameFromURL(u *url.URL) string {
	p := strings.TrimSuffix(u.Path, "/")
	if p == "" {
		return "ROOT"
	}
	seg := path.Base(p)
	if decoded, err := url.PathUnescape(seg); err == nil {
		seg = decoded
	}
	if seg == "" || seg == "/" || seg == "." {
		return "ROOT"
	}
	return seg
}

// Ancestors walks the Parent chain upward, nearest first, calling fn for
// each ancestor until fn returns false or the chain ends.
func (d *Directory) Ancestors(fn func(*Directory) bool) {
	for p := d.Parent; p != nil; p = p.Parent {
		if !fn(p) {
			return
		}
	}
}

// ClearEntries drops all subdirectories and files.
func (d *Directory) ClearEntries() {
	d.Subdirectories = nil
	d.Files = nil
}

// TotalFileSize sums the known sizes of the directory's own files.
func (d *Directory) TotalFileSize() int64 {
	var total int64
	for _, f := range d.Files {
		if f.FileSize > 0 {
			total += f.FileSize
		}
	}
	return total
}

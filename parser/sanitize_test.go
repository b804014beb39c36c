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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openindex/openindex"
)

func dirWithEntries(url string, parent *openindex.Directory, subs []string, files map[string]int64) *openindex.Directory {
	d := openindex.NewDirectory(url, parent)
	for _, sub := range subs {
		d.Subdirectories = append(d.Subdirectories, openindex.NewDirectory(url+sub+"/", d))
	}
	for name, size := range files {
		d.Files = append(d.Files, &openindex.File{
			URL: url + name, FileName: name, FileSize: size,
		})
	}
	return d
}

// a directory repeating an ancestor's exact contents is a symlink loop (S5)
func TestSanitizeSymlinkLoop(t *testing.T) {
	root := dirWithEntries("http://h/a/", nil, []string{"b"}, map[string]int64{"movie.mkv": 1000})
	child := dirWithEntries("http://h/a/b/", root, []string{"b"}, map[string]int64{"movie.mkv": 1000})

	sanitize(child, true)

	assert.True(t, child.Error)
	assert.Empty(t, child.Subdirectories)
	assert.Empty(t, child.Files)

	// the ancestor itself stays intact
	assert.False(t, root.Error)
	assert.Len(t, root.Files, 1)
}

func TestSanitizeNoLoopOnDifferingContents(t *testing.T) {
	root := dirWithEntries("http://h/a/", nil, []string{"b"}, map[string]int64{"movie.mkv": 1000})
	child := dirWithEntries("http://h/a/b/", root, nil, map[string]int64{"movie.mkv": 999})

	sanitize(child, true)

	assert.False(t, child.Error)
	assert.Len(t, child.Files, 1)
}

// /proc full of PID directories is a kernel artifact, not content (S7)
func TestSanitizeProcPruning(t *testing.T) {
	dir := dirWithEntries("http://h/proc/", nil, []string{"1", "2", "self"}, nil)
	require.Equal(t, "proc", dir.Name)

	sanitize(dir, true)

	assert.Empty(t, dir.Subdirectories)
	assert.Empty(t, dir.Files)
	assert.False(t, dir.Error)
}

func TestSanitizePseudoFilesystems(t *testing.T) {
	sys := dirWithEntries("http://h/sys/", nil, []string{"kernel", "fs"}, nil)
	sanitize(sys, true)
	assert.Empty(t, sys.Subdirectories)

	// /usr keeps real content and drops only the system subdirectories
	usr := dirWithEntries("http://h/usr/", nil, []string{"bin", "lib", "movies"}, nil)
	sanitize(usr, true)
	require.Len(t, usr.Subdirectories, 1)
	assert.Equal(t, "movies", usr.Subdirectories[0].Name)

	// a directory that merely shares the name is left alone
	dev := dirWithEntries("http://h/dev/", nil, []string{"tools"}, nil)
	sanitize(dev, true)
	assert.Len(t, dev.Subdirectories, 1)
}

func TestSanitizeDropsCoreFiles(t *testing.T) {
	dir := dirWithEntries("http://h/p/", nil, nil, map[string]int64{"core": 4096})
	dir.Files = append(dir.Files, &openindex.File{
		URL: "http://h/p/data.bin", FileName: "data.bin", FileSize: 10,
	})

	sanitize(dir, true)

	require.Len(t, dir.Files, 1)
	assert.Equal(t, "data.bin", dir.Files[0].FileName)
}

func TestSanitizeStripsSortQueries(t *testing.T) {
	dir := openindex.NewDirectory("http://h/p/", nil)
	sub := openindex.NewDirectory("http://h/p/sub/", dir)
	sub.URL = "http://h/p/sub/?C=N&O=A"
	dir.Subdirectories = append(dir.Subdirectories, sub)

	sanitize(dir, true)

	require.Len(t, dir.Subdirectories, 1)
	assert.Equal(t, "http://h/p/sub/", dir.Subdirectories[0].URL)
}

func TestSanitizeIdempotent(t *testing.T) {
	build := func() *openindex.Directory {
		d := dirWithEntries("http://h/p/", nil, []string{"sub"}, map[string]int64{"a.bin": 5})
		d.Files = append(d.Files, &openindex.File{
			URL: "http://h/p/b.bin#frag", FileName: "b.bin", FileSize: 6,
		})
		d.Files = append(d.Files, &openindex.File{
			URL: "http://evil.example/x.bin", FileName: "x.bin", FileSize: 7,
		})
		return d
	}

	once := build()
	sanitize(once, true)

	twice := build()
	sanitize(twice, true)
	sanitize(twice, true)

	require.Equal(t, len(once.Files), len(twice.Files))
	for i := range once.Files {
		assert.Equal(t, once.Files[i].URL, twice.Files[i].URL)
		assert.Equal(t, once.Files[i].FileSize, twice.Files[i].FileSize)
	}
	require.Equal(t, len(once.Subdirectories), len(twice.Subdirectories))
	for i := range once.Subdirectories {
		assert.Equal(t, once.Subdirectories[i].URL, twice.Subdirectories[i].URL)
	}
	assert.Equal(t, once.Error, twice.Error)
}

// FTP(S) entries keep their fragments: "#" is a legal filename byte there
func TestSanitizeKeepsFTPFragments(t *testing.T) {
	dir := openindex.NewDirectory("ftp://h/p/", nil)
	dir.Files = append(dir.Files, &openindex.File{
		URL: "ftp://h/p/file%20#1.bin", FileName: "file #1.bin", FileSize: 1,
	})

	sanitize(dir, false)

	require.Len(t, dir.Files, 1)
	assert.Contains(t, dir.Files[0].URL, "#")
}

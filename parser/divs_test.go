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
)

func TestParseH5AIFallbackTable(t *testing.T) {
	html := `<html><body><div id="fallback">
<table>
<tr><th></th><th>Name</th><th>Last modified</th><th>Size</th></tr>
<tr><td><img src="/_h5ai/images/folder.png"></td><td><a href="music/">music</a></td><td>2021-01-01 10:00</td><td></td></tr>
<tr><td><img src="/_h5ai/images/file.png"></td><td><a href="track.flac">track.flac</a></td><td>2021-01-01 10:00</td><td>31 MB</td></tr>
</table>
</div></body></html>`

	dir := parse(t, "http://h/p/", html, Options{CheckParents: true})

	assert.Equal(t, "ParseH5aiDirectoryListing", dir.Parser)
	require.Len(t, dir.Subdirectories, 1)
	assert.Equal(t, "music", dir.Subdirectories[0].Name)
	require.Len(t, dir.Files, 1)
	assert.Equal(t, int64(32505856), dir.Files[0].FileSize)
}

func TestParseHFS(t *testing.T) {
	html := `<html><body><div id="files">
<div class="item item-type-folder"><a href="docs/"><span class="item-name">docs</span></a></div>
<div class="item item-type-file"><a href="setup.exe"><span class="item-name">setup.exe</span></a><span class="item-size">2.5 MB</span></div>
</div></body></html>`

	dir := parse(t, "http://h/", html, Options{CheckParents: true})

	assert.Equal(t, "ParseHfsDirectoryListing", dir.Parser)
	require.Len(t, dir.Subdirectories, 1)
	require.Len(t, dir.Files, 1)
	assert.Equal(t, int64(2621440), dir.Files[0].FileSize)
}

func TestParseCustomDiv1(t *testing.T) {
	html := `<html><body><div id="listing">
<div><a href="books/"><strong>books</strong></a></div>
<div><a href="book.pdf"><strong>book.pdf</strong><em>12 MB</em></a></div>
</div></body></html>`

	dir := parse(t, "http://h/", html, Options{CheckParents: true})

	assert.Equal(t, "ParseCustomDivListing", dir.Parser)
	require.Len(t, dir.Subdirectories, 1)
	assert.Equal(t, "books", dir.Subdirectories[0].Name)
	require.Len(t, dir.Files, 1)
	assert.Equal(t, int64(12582912), dir.Files[0].FileSize)
}

func TestParseCustomDiv2(t *testing.T) {
	html := `<html><body><div id="filelist">
<div class="tb-row folder" data-href="/games/"><span class="name">games</span></div>
<div class="tb-row afile"><a href="/rom.zip"><span class="name">rom.zip</span></a><span class="sz">64 MB</span></div>
</div></body></html>`

	dir := parse(t, "http://h/", html, Options{CheckParents: true})

	assert.Equal(t, "ParseCustomDivListing2", dir.Parser)
	require.Len(t, dir.Subdirectories, 1)
	assert.Equal(t, "http://h/games/", dir.Subdirectories[0].URL)
	require.Len(t, dir.Files, 1)
	assert.Equal(t, int64(67108864), dir.Files[0].FileSize)
}

func TestParseIPFSGateway(t *testing.T) {
	html := `<html><body><table>
<tr><th></th><th>Name</th><th>Size</th></tr>
<tr><td>📁</td><td><a href="/ipfs/QmHash/photos/">photos</a></td><td>-</td></tr>
<tr><td>📄</td><td><a href="/ipfs/QmHash/cat.jpg">cat.jpg</a></td><td>443 kB</td></tr>
</table></body></html>`

	dir := parse(t, "https://ipfs.io/ipfs/QmHash/", html, Options{CheckParents: true})

	assert.Equal(t, "ParseIpfsDirectoryListing", dir.Parser)
	require.Len(t, dir.Subdirectories, 1)
	require.Len(t, dir.Files, 1)
	assert.Equal(t, "cat.jpg", dir.Files[0].FileName)
}

func TestParseDirectoryListingCom(t *testing.T) {
	html := `<html><body><ul id="directory-listing">
<li data-name="archives" class="directory"><a href="archives/"><span class="name">archives</span></a></li>
<li data-name="dump.sql.gz"><a href="dump.sql.gz"><span class="name">dump.sql.gz</span><span class="size">120 MB</span></a></li>
</ul></body></html>`

	dir := parse(t, "http://h/", html, Options{CheckParents: true})

	assert.Equal(t, "ParseDirectoryListingDotComDirectoryListing", dir.Parser)
	require.Len(t, dir.Subdirectories, 1)
	assert.Equal(t, "archives", dir.Subdirectories[0].Name)
	require.Len(t, dir.Files, 1)
	assert.Equal(t, int64(125829120), dir.Files[0].FileSize)
}

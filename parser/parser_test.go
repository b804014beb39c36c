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
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openindex/openindex"
)

func parse(t *testing.T, baseURL, html string, opts Options) *openindex.Directory {
	t.Helper()
	dir := openindex.NewDirectory(baseURL, nil)
	result, err := ParseHTML(context.Background(), dir, html, opts)
	require.NoError(t, err)
	return result
}

// the Apache autoindex table shape
func TestParseApacheTable(t *testing.T) {
	html := `<html><head><title>Index of /p</title></head><body>
<h1>Index of /p</h1>
<table>
<tr><th>&nbsp;</th><th><a href="?C=N&O=A">Name</a></th><th><a href="?C=S&O=A">Size</a></th></tr>
<tr><td><img src="/icons/back.gif" alt="[PARENTDIR]"></td><td><a href="/">Parent Directory</a></td><td>-</td></tr>
<tr><td><img src="/icons/folder.gif" alt="[DIR]"></td><td><a href="sub/">sub/</a></td><td>-</td></tr>
<tr><td><img src="/icons/text.gif" alt="[   ]"></td><td><a href="a.txt">a.txt</a></td><td>12K</td></tr>
</table>
</body></html>`

	dir := parse(t, "http://h/p/", html, Options{CheckParents: true})

	require.False(t, dir.Error)
	assert.Equal(t, "ParseTablesDirectoryListing", dir.Parser)

	require.Len(t, dir.Subdirectories, 1)
	assert.Equal(t, "http://h/p/sub/", dir.Subdirectories[0].URL)
	assert.Equal(t, "sub", dir.Subdirectories[0].Name)

	require.Len(t, dir.Files, 1)
	assert.Equal(t, "http://h/p/a.txt", dir.Files[0].URL)
	assert.Equal(t, "a.txt", dir.Files[0].FileName)
	assert.Equal(t, int64(12288), dir.Files[0].FileSize)

	assert.Equal(t, 2, dir.HeaderCount)
}

// Pure/Godir pages whose breadcrumb disagrees with the URL are refused
func TestParsePureBreadcrumbMismatch(t *testing.T) {
	html := `<html><body>
<div class="breadcrumb"><a href="/">root</a><a href="/y/">y</a></div>
<table class="listing-table"><tbody>
<tr><td><a href="file.bin">file.bin</a></td><td class="size">5 MB</td></tr>
</tbody></table>
</body></html>`

	dir := parse(t, "http://h/x/", html, Options{CheckParents: true})

	assert.True(t, dir.Error)
	assert.Empty(t, dir.Subdirectories)
	assert.Empty(t, dir.Files)
}

func TestParsePureBreadcrumbMatch(t *testing.T) {
	html := `<html><body>
<div class="breadcrumb"><a href="/">root</a><a href="/x/">x</a></div>
<table class="listing-table"><tbody>
<tr><td><a href="file.bin">file.bin</a></td><td class="size">5 MB</td></tr>
<tr><td><a href="sub/">sub</a></td><td class="size">-</td></tr>
</tbody></table>
</body></html>`

	dir := parse(t, "http://h/x/", html, Options{CheckParents: true})

	require.False(t, dir.Error)
	assert.Equal(t, "ParsePureDirectoryListing", dir.Parser)
	require.Len(t, dir.Files, 1)
	assert.Equal(t, int64(5242880), dir.Files[0].FileSize)
	require.Len(t, dir.Subdirectories, 1)
}

// earlier-ordered dialects pre-empt later ones even when both match
func TestDispatcherOrder(t *testing.T) {
	html := `<html><body>
<table class="snif">
<tr class="snHeading"><td>Name</td><td>Size</td></tr>
<tr><td><a class="snDir" href="snifdir/">snifdir</a></td><td class="snSize">-</td></tr>
</table>
<table>
<tr><th>Name</th><th>Size</th></tr>
<tr><td><a href="other.bin">other.bin</a></td><td>3 MB</td></tr>
</table>
</body></html>`

	dir := parse(t, "http://h/", html, Options{})

	assert.Equal(t, "ParseSnifDirectoryListing", dir.Parser)
	require.Len(t, dir.Subdirectories, 1)
	assert.Equal(t, "snifdir", dir.Subdirectories[0].Name)
}

// Google-Drive frontend detection clamps the session worker cap (S6)
func TestGoogleDriveDetectionClampsThreads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"nextPageToken":"","data":{"files":[
				{"name":"movies","mimeType":"application/vnd.google-apps.folder"},
				{"name":"a.mkv","mimeType":"video/x-matroska","size":"734003200"}
			]}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	html := `<html><head><script src="/js/bhadoo-index.js"></script></head><body></body></html>`

	session := openindex.NewSession(server.URL, 5)
	dir := parse(t, server.URL+"/", html, Options{
		Client:  server.Client(),
		Session: session,
	})

	assert.Equal(t, 1, session.MaxThreads())
	assert.Equal(t, "GoogleDriveIndex:BhadooIndex", dir.Parser)
	require.Len(t, dir.Subdirectories, 1)
	assert.Equal(t, "movies", dir.Subdirectories[0].Name)
	require.Len(t, dir.Files, 1)
	assert.Equal(t, int64(734003200), dir.Files[0].FileSize)
}

// the bare-anchor fallback still yields a usable listing
func TestParseAnchorsFallback(t *testing.T) {
	html := `<html><body>
<a href="../">up</a>
<a href="docs/">docs/</a>
<a href="readme.txt">readme.txt</a>
</body></html>`

	dir := parse(t, "http://h/base/", html, Options{CheckParents: true})

	assert.Equal(t, "ParseLinksDirectoryListing", dir.Parser)
	require.Len(t, dir.Subdirectories, 1)
	assert.Equal(t, "http://h/base/docs/", dir.Subdirectories[0].URL)
	require.Len(t, dir.Files, 1)
	assert.Equal(t, openindex.UnknownFileSize, dir.Files[0].FileSize)
}

// no entry URL on an HTTP(S) page keeps its fragment
func TestFragmentsStripped(t *testing.T) {
	html := `<html><body><pre>
<a href="a.txt#frag">a.txt</a> 10K
<a href="a.txt#other">a.txt</a> 10K
<a href="sub/#top">sub/</a> -
</pre></body></html>`

	dir := parse(t, "http://h/p/", html, Options{CheckParents: true})

	for _, f := range dir.Files {
		assert.NotContains(t, f.URL, "#")
	}
	for _, sub := range dir.Subdirectories {
		assert.NotContains(t, sub.URL, "#")
	}
	// the two fragment variants collapse into one file
	assert.Len(t, dir.Files, 1)
}

// entries escaping the directory's host or path are dropped
func TestParentScopeFiltering(t *testing.T) {
	html := `<html><body><pre>
<a href="ok.bin">ok.bin</a> 1M
<a href="http://evil.example/x.bin">x.bin</a> 1M
<a href="/outside/other.bin">other.bin</a> 1M
<a href="https://drive.google.com/file/d/abc">shared.bin</a> 1M
</pre></body></html>`

	dir := parse(t, "http://h/p/", html, Options{CheckParents: true})

	require.Len(t, dir.Files, 2)
	assert.Equal(t, "http://h/p/ok.bin", dir.Files[0].URL)
	assert.True(t, strings.HasPrefix(dir.Files[1].URL, "https://drive.google.com/"))
}

func TestErrorDirectoryHoldsNoEntries(t *testing.T) {
	dir := parse(t, "http://h/x/", `<html><body>
<div class="breadcrumb"><a href="/wrong/">wrong</a></div>
<table class="listing-table"><tbody>
<tr><td><a href="f.bin">f.bin</a></td><td>1 MB</td></tr>
</tbody></table></body></html>`, Options{})

	assert.True(t, dir.Error)
	assert.False(t, dir.ParsedSuccessfully)
	assert.Empty(t, dir.Subdirectories)
	assert.Empty(t, dir.Files)
}

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
	"path"
	"strings"
)

// commonDefaultFilenames are script names some listing frontends insert
// into hrefs even though they resolve to the same directory. They are
// erased before URLs are compared for containment.
var commonDefaultFilenames = []string{
	"index.php",
	"index.shtml",
	"DirectoryList.asp",
}

// resolveURL resolves href against base. Relative, absolute, scheme-less
// and query-only hrefs are all accepted.
func resolveURL(base *url.URL, href string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(ref), nil
}

// StripURL removes the classic Apache column/order sort query (exactly
// the two parameters C and O) from a URL. Any other query is passed
// through unchanged, as is any URL that does not parse.
func StripURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if len(q) == 2 && q.Has("C") && q.Has("O") {
		u.RawQuery = ""
		return u.String()
	}
	return rawURL
}

// ReplaceCommonDefaultFilenames erases well-known default script names
// from the end of a path so that two URLs differing only by such a name
// compare equal. Idempotent.
func ReplaceCommonDefaultFilenames(p string) string {
	for _, name := range commonDefaultFilenames {
		if strings.EqualFold(path.Base(p), name) {
			return p[:len(p)-len(name)]
		}
	}
	return p
}

// sameHostAndDirectoryDirectory reports whether check is base itself or
// lies beneath base's path on the same host. Default filenames are
// erased from both sides first.
func sameHostAndDirectoryDirectory(base, check *url.URL) bool {
	if base == nil || check == nil {
		return false
	}
	if base.String() == check.String() {
		return true
	}
	if !strings.EqualFold(base.Hostname(), check.Hostname()) {
		return false
	}
	basePath := ReplaceCommonDefaultFilenames(base.Path)
	checkPath := ReplaceCommonDefaultFilenames(check.Path)
	return strings.HasPrefix(checkPath, basePath)
}

// sameHostAndDirectoryFile is the file variant of the containment check:
// it additionally tolerates the base URL carrying a trailing filename.
func sameHostAndDirectoryFile(base, check *url.URL) bool {
	if sameHostAndDirectoryDirectory(base, check) {
		return true
	}
	if base == nil || check == nil {
		return false
	}
	if !strings.EqualFold(base.Hostname(), check.Hostname()) {
		return false
	}
	basePath := ReplaceCommonDefaultFilenames(base.Path)
	if !strings.HasSuffix(basePath, "/") {
		basePath = path.Dir(basePath)
		if !strings.HasSuffix(basePath, "/") {
			basePath += "/"
		}
	}
	checkPath := ReplaceCommonDefaultFilenames(check.Path)
	return strings.HasPrefix(checkPath, basePath)
}

// decodedLastSegment returns the percent-decoded final path segment of u,
// without any trailing slash.
func decodedLastSegment(u *url.URL) string {
	p := strings.TrimSuffix(u.Path, "/")
	seg := path.Base(p)
	if seg == "/" || seg == "." {
		return ""
	}
	if decoded, err := url.PathUnescape(seg); err == nil {
		return decoded
	}
	return seg
}

// stripFragment truncates a URL at its fragment, keeping everything up
// to and including the query. Used for HTTP(S) entries only; FTP URLs
// keep their fragments verbatim.
func stripFragment(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

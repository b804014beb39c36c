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

import "testing"

func TestValidAnchor(t *testing.T) {
	for i, tc := range []struct {
		href, text, title string
		want              bool
	}{
		{"file.zip", "file.zip", "", true},
		{"sub/", "sub/", "", true},
		{"a%20b.txt", "a b.txt", "", true},
		{"DirectoryList.asp?dir=films", "films", "", true},

		// empties and parent links
		{"", "x", "", false},
		{"/", "x", "", false},
		{"..", "x", "", false},
		{"../", "x", "", false},
		{"./.", "x", "", false},
		{"./..", "x", "", false},
		{"#", "x", "", false},
		{"x/", "..", "", false},
		{"x/", ".", "", false},
		{"parent/", "Parent Directory", "", false},
		{"parent/", "[To Parent Directory]", "", false},
		{"x/", "x", "..", false},

		// scripted and decorative links
		{"javascript:void(0)", "x", "", false},
		{"JavaScript:go()", "x", "", false},
		{"mailto:admin@example.com", "admin", "", false},
		{"x?a=1&expand", "x", "", false},

		// sort links (S4)
		{"?C=N;O=A", "Name", "", false},
		{"?C=M;O=D", "Last modified", "", false},
		{"?N=D", "Name", "", false},
		{"?S=A", "Size", "", false},
		{"?D=A", "Description", "", false},

		// header caption
		{"x/", "Name", "", false},

		// DirectoryList.asp with no text is the IIS sort endpoint
		{"DirectoryList.asp", "", "", false},
	} {
		if got := validAnchor(tc.href, tc.text, tc.title); got != tc.want {
			t.Errorf("test %d: validAnchor(%q, %q, %q) = %v, want %v",
				i, tc.href, tc.text, tc.title, got, tc.want)
		}
	}
}

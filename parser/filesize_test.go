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

func TestParseFileSize(t *testing.T) {
	for i, tc := range []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"12K", 12288, false},
		{"3kB", 3072, false},
		{"1.2 GB", 1288490189, false},
		{"70.5 KiB", 72192, false},
		{"2.5 GiB", 2684354560, false},
		{"500 B", 500, false},
		{"1 TiB", 1099511627776, false},
		{"1,5 MB", 1572864, false},
		{"1,048,576", 1048576, false},
		{"4 096", 4096, false},
		{"", 0, true},
		{"-", 0, true},
		{"—", 0, true},
		{"<Directory>", 0, true},
		{"&lt;dir&gt;", 0, true},
		{"0.00b", 0, true},
		{"lots", 0, true},
		{"12 items", 0, true},
	} {
		got, err := parseFileSize(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("test %d: parseFileSize(%q) = %d, expected error", i, tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: parseFileSize(%q): unexpected error: %v", i, tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("test %d: parseFileSize(%q) = %d, want %d", i, tc.input, got, tc.want)
		}
	}
}

func TestLooksLikeFileSize(t *testing.T) {
	for _, yes := range []string{"12K", "1.2 GB", "999"} {
		if !looksLikeFileSize(yes) {
			t.Errorf("looksLikeFileSize(%q) = false, want true", yes)
		}
	}
	for _, no := range []string{"-", "", "Name", "2020-01-01 10:00", "0.00b"} {
		if looksLikeFileSize(no) {
			t.Errorf("looksLikeFileSize(%q) = true, want false", no)
		}
	}
}

func TestFileSizeOrUnknown(t *testing.T) {
	if got := fileSizeOrUnknown("-"); got != 0 {
		t.Errorf("fileSizeOrUnknown(\"-\") = %d, want 0", got)
	}
	if got := fileSizeOrUnknown("1 MB"); got != 1048576 {
		t.Errorf("fileSizeOrUnknown(\"1 MB\") = %d, want 1048576", got)
	}
}

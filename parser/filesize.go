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
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Directory listings print sizes in base-1024 regardless of whether they
// write "K", "KB" or "KiB", so every unit here is a power of 1024.
var fileSizeUnits = map[string]int64{
	"":      1,
	"b":     1,
	"byte":  1,
	"bytes": 1,
	"k":     1 << 10,
	"kb":    1 << 10,
	"kib":   1 << 10,
	"ko":    1 << 10,
	"m":     1 << 20,
	"mb":    1 << 20,
	"mib":   1 << 20,
	"mo":    1 << 20,
	"g":     1 << 30,
	"gb":    1 << 30,
	"gib":   1 << 30,
	"go":    1 << 30,
	"t":     1 << 40,
	"tb":    1 << 40,
	"tib":   1 << 40,
	"to":    1 << 40,
	"p":     1 << 50,
	"pb":    1 << 50,
	"pib":   1 << 50,
}

var fileSizeRe = regexp.MustCompile(`^([\d.,'\x{202f}\x{00a0} ]+)\s*([a-zA-Z]*)$`)

// parseFileSize turns a human file-size string ("1.2 GB", "3kB", "42",
// "1 024,5 KB" with localized separators) into a byte count. Placeholder
// strings ("-", "<Directory>", "0.00b") and anything else that is not a
// positive size yield an error; callers that only want a yes/no answer
// use looksLikeFileSize instead.
func parseFileSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	switch strings.ToLower(s) {
	case "-", "—", "–", "<dir>", "<directory>", "dir", "&lt;dir&gt;":
		return 0, fmt.Errorf("not a size: %q", s)
	}

	m := fileSizeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unrecognized size: %q", s)
	}

	number, unit := m[1], strings.ToLower(m[2])
	mult, ok := fileSizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unknown size unit: %q", unit)
	}

	value, err := strconv.ParseFloat(normalizeSizeNumber(number), 64)
	if err != nil {
		return 0, fmt.Errorf("bad size number %q: %v", number, err)
	}

	bytes := int64(math.Round(value * float64(mult)))
	if bytes <= 0 {
		return 0, fmt.Errorf("non-positive size: %q", s)
	}
	return bytes, nil
}

// looksLikeFileSize is the guard mode of parseFileSize: it never errors
// and reports only whether the text reads as a positive size. The
// heuristic header classifier uses it to probe data cells.
func looksLikeFileSize(s string) bool {
	_, err := parseFileSize(s)
	return err == nil
}

// fileSizeOrUnknown maps unparseable size text to the unknown sentinel.
func fileSizeOrUnknown(s string) int64 {
	n, err := parseFileSize(s)
	if err != nil {
		return 0
	}
	return n
}

// normalizeSizeNumber strips grouping separators from a localized number.
// A single comma followed by one or two trailing digits is treated as a
// decimal comma; every other comma, apostrophe and space is grouping.
func normalizeSizeNumber(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ', '\'':
			return -1
		}
		return r
	}, s)

	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		i := strings.IndexByte(s, ',')
		if tail := len(s) - i - 1; tail >= 1 && tail <= 2 {
			return s[:i] + "." + s[i+1:]
		}
	}
	return strings.ReplaceAll(s, ",", "")
}

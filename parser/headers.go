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
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// columnKind is the semantic role of a listing table column.
type columnKind int

const (
	kindUnknown columnKind = iota
	kindFileName
	kindFileSize
	kindModified
	kindDescription
	kindType
)

// headerInfo pairs a header cell's raw text with its classified role.
type headerInfo struct {
	header string
	kind   columnKind
}

// columnMap maps 1-based column indexes to their classified headers.
type columnMap map[int]headerInfo

func (cm columnMap) indexOf(kind columnKind) (int, bool) {
	for i, h := range cm {
		if h.kind == kind {
			return i, true
		}
	}
	return 0, false
}

func (cm columnMap) namedCount() int {
	n := 0
	for _, h := range cm {
		if h.kind != kindUnknown {
			n++
		}
	}
	return n
}

// headerRule maps header tokens to a column role. Keyword matching is by
// substring unless exact is set. The rules are data: adding a locale is
// a table edit, not a logic change. Order matters: the size keywords
// must be tested before the filename ones so "file size" is not eaten
// by "file".
type headerRule struct {
	kind     columnKind
	exact    bool
	keywords []string
}

var headerRules = []headerRule{
	{kind: kindModified, keywords: []string{
		"last modified", "last modification", "modified", "date", "time",
		"修改时间", "修改日期", "最終更新",
	}},
	{kind: kindType, exact: true, keywords: []string{"type"}},
	{kind: kindFileSize, keywords: []string{
		"file size", "filesize", "size", "taille", "大小", "サイズ",
	}},
	{kind: kindDescription, exact: true, keywords: []string{"description"}},
	{kind: kindFileName, keywords: []string{
		"file name", "filename", "file", "name", "directory", "link", "nom",
		"文件", "ファイル名",
	}},
}

var headerTokenRe = regexp.MustCompile(`[^\p{L}\p{N} ]+`)

// normalizeHeaderToken lowercases a header cell and strips everything
// that is not a letter, digit or space, collapsing runs of whitespace.
func normalizeHeaderToken(s string) string {
	s = strings.ToLower(s)
	s = headerTokenRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// classifyHeader assigns a column role to one header cell.
func classifyHeader(text string) columnKind {
	token := normalizeHeaderToken(text)
	if token == "" {
		return kindUnknown
	}
	for _, rule := range headerRules {
		for _, kw := range rule.keywords {
			if rule.exact {
				if token == kw {
					return rule.kind
				}
			} else if strings.Contains(token, kw) {
				return rule.kind
			}
		}
	}
	return kindUnknown
}

// findHeaderCells locates a table's header cells. The cascade: the row
// holding the first <th> (discarded when its first cell spans columns,
// which marks a title bar, not a header); a Snif-style .snHeading row;
// thead cells; first-row th; finally first-row td, in which case the
// first row doubles as the header and must be skipped when reading data
// (removeFirstRow).
func findHeaderCells(table *goquery.Selection) (cells *goquery.Selection, removeFirstRow, ok bool) {
	var titleBar *goquery.Selection

	if th := table.Find("th").First(); th.Length() > 0 {
		row := th.Closest("tr")
		first := row.Find("th,td").First()
		if _, spans := first.Attr("colspan"); !spans {
			return row.Find("th,td"), false, true
		}
		titleBar = row
	}

	if heading := table.Find("tr.snHeading").First(); heading.Length() > 0 {
		return heading.Find("td,th"), false, true
	}

	if thead := table.Find("thead").First(); thead.Length() > 0 {
		if cells := thead.Find("td,th"); cells.Length() > 0 {
			return cells, false, true
		}
	}

	// a discarded title bar no longer counts as the first row
	firstRow := table.Find("tr").First()
	if titleBar != nil && firstRow.Length() > 0 && titleBar.Length() > 0 &&
		firstRow.Get(0) == titleBar.Get(0) {
		firstRow = table.Find("tr").Eq(1)
	}
	if cells := firstRow.Find("th"); cells.Length() > 0 {
		return cells, false, true
	}
	if cells := firstRow.Find("td"); cells.Length() > 0 {
		return cells, true, true
	}

	return nil, false, false
}

// buildColumnMap classifies each header cell, honoring colspan.
func buildColumnMap(cells *goquery.Selection) columnMap {
	cm := make(columnMap)
	column := 1
	cells.Each(func(_ int, cell *goquery.Selection) {
		text := strings.TrimSpace(cell.Text())
		cm[column] = headerInfo{header: text, kind: classifyHeader(text)}
		span := 1
		if cs, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(cs)); err == nil && n > 1 {
				span = n
			}
		}
		column += span
	})
	return cm
}

// timestampLayouts are the formats listing dialects print modification
// times in. Used by the heuristic classifier only; the parsed value is
// discarded.
var timestampLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"02-Jan-2006 15:04",
	"02-Jan-2006 15:04:05",
	"2006-01-02",
	"1/2/2006 3:04 PM",
	"01/02/2006 03:04 PM",
	"Jan 2, 2006 3:04 PM",
	"Monday, January 2, 2006 3:04 PM",
	"02.01.2006 15:04",
	"2.1.2006 15:04",
}

func looksLikeTimestamp(s string) bool {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return false
	}
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// heuristicColumnMap infers column roles from the data rows of a table
// whose headers classified as all-unknown (or that has none). Each row
// votes: a cell holding an anchor is a filename candidate, one parsing
// as a timestamp a modified candidate, one parsing as a non-zero size a
// size candidate, and one holding an <img> a type candidate. A role's
// column is the rounded average position of its votes; ties go to the
// role encountered first.
func heuristicColumnMap(table *goquery.Selection, removeFirstRow bool) columnMap {
	type tally struct {
		sum, count int
	}
	var name, modified, size, icon tally

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if removeFirstRow && i == 0 {
			return
		}
		row.Find("td").Each(func(j int, cell *goquery.Selection) {
			column := j + 1
			text := strings.TrimSpace(cell.Text())
			switch {
			case cell.Find("a[href]").Length() > 0:
				name.sum += column
				name.count++
			case looksLikeTimestamp(text):
				modified.sum += column
				modified.count++
			case looksLikeFileSize(text):
				size.sum += column
				size.count++
			}
			if cell.Find("img").Length() > 0 {
				icon.sum += column
				icon.count++
			}
		})
	})

	cm := make(columnMap)
	assign := func(t tally, kind columnKind) {
		if t.count == 0 {
			return
		}
		column := (t.sum + t.count/2) / t.count
		if column < 1 {
			return
		}
		if _, taken := cm[column]; taken {
			return
		}
		cm[column] = headerInfo{kind: kind}
	}
	assign(name, kindFileName)
	assign(modified, kindModified)
	assign(size, kindFileSize)
	assign(icon, kindType)
	return cm
}

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
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// tableEntry is one accepted row before it is committed to the result.
type tableEntry struct {
	isDir       bool
	href        string
	name        string
	sizeText    string
	description string
	viaDirParam bool
}

// tableResult is one table's worth of extracted rows, with the header
// count the dispatcher uses to pick between competing tables.
type tableResult struct {
	entries     []tableEntry
	headerCount int
	hasDirParam bool
}

// parseTables is the generic tabular extractor: Apache/Nginx/lighttpd
// autoindex tables and the broad family of ad-hoc PHP listing scripts.
// When several tables hold entries, the one with the most recognized
// headers wins (ties by row count), unless one table lists only
// subdirectories via ?dir= links and another the files, in which case
// they are two halves of the same listing and are merged.
func parseTables(pc *pageContext) (bool, error) {
	var results []tableResult

	pc.doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if table.ParentsFiltered("table").Length() > 0 {
			return // nested layout table; its rows belong to the outer one
		}
		res := extractTable(pc, table)
		if len(res.entries) > 0 {
			results = append(results, res)
		}
	})

	if len(results) == 0 {
		return false, nil
	}

	merge := false
	for _, res := range results {
		if res.hasDirParam {
			merge = true
			break
		}
	}

	var chosen []tableResult
	if merge && len(results) > 1 {
		chosen = results
	} else {
		best := results[0]
		for _, res := range results[1:] {
			if res.headerCount > best.headerCount ||
				(res.headerCount == best.headerCount && len(res.entries) > len(best.entries)) {
				best = res
			}
		}
		chosen = []tableResult{best}
	}

	for _, res := range chosen {
		if res.headerCount > pc.dir.HeaderCount {
			pc.dir.HeaderCount = res.headerCount
		}
		for _, e := range res.entries {
			if e.isDir {
				pc.addSubdirectory(e.href, e.name)
			} else {
				pc.addFile(e.href, e.name, e.sizeText, e.description)
			}
		}
	}

	return entryCount(pc.dir) > 0, nil
}

func extractTable(pc *pageContext, table *goquery.Selection) tableResult {
	headerCells, removeFirstRow, hasHeader := findHeaderCells(table)

	var cm columnMap
	if hasHeader {
		cm = buildColumnMap(headerCells)
	}
	namedHeaders := cm.namedCount()
	if namedHeaders == 0 {
		// no usable header; whatever row the cascade picked was really
		// data, so it must neither be removed nor skipped below
		removeFirstRow = false
		headerCells = nil
		cm = heuristicColumnMap(table, false)
	}

	res := tableResult{headerCount: namedHeaders}

	var headerRowNode *goquery.Selection
	if hasHeader && headerCells != nil && headerCells.Length() > 0 {
		headerRowNode = headerCells.First().Closest("tr")
	}

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if removeFirstRow && i == 0 {
			return
		}
		if headerRowNode != nil && row.Length() > 0 && headerRowNode.Length() > 0 &&
			row.Get(0) == headerRowNode.Get(0) {
			return
		}
		if closest := row.Closest("table"); closest.Length() > 0 && closest.Get(0) != table.Get(0) {
			return // row of a nested table
		}
		if entry, ok := extractTableRow(pc, row, cm); ok {
			if entry.viaDirParam {
				res.hasDirParam = true
			}
			res.entries = append(res.entries, entry)
		}
	})

	return res
}

func extractTableRow(pc *pageContext, row *goquery.Selection, cm columnMap) (tableEntry, bool) {
	anchor := firstValidAnchor(row)
	if anchor == nil {
		return tableEntry{}, false
	}

	if nameCol, ok := cm.indexOf(kindFileName); ok {
		nameCell := row.Find("th,td").Eq(nameCol - 1)
		if strings.Contains(strings.ToLower(nameCell.Text()), "parent directory") {
			return tableEntry{}, false
		}
	}

	href := anchor.AttrOr("href", "")
	resolved, err := resolveURL(pc.base, href)
	if err != nil {
		return tableEntry{}, false
	}
	query := resolved.Query()

	entry := tableEntry{href: href}

	hasSizeHeader := false
	if sizeCol, ok := cm.indexOf(kindFileSize); ok {
		hasSizeHeader = true
		entry.sizeText = strings.TrimSpace(row.Find("th,td").Eq(sizeCol - 1).Text())
	}
	if descCol, ok := cm.indexOf(kindDescription); ok {
		entry.description = strings.TrimSpace(row.Find("th,td").Eq(descCol - 1).Text())
	}

	entry.isDir, entry.viaDirParam = rowIsDirectory(row, anchor, resolved, query)
	if !entry.isDir && strings.HasSuffix(resolved.Path, "/") && !looksLikeFileSize(entry.sizeText) {
		// a trailing-slash href with no parseable size is a plain
		// Nginx-style directory row without any icon markup
		entry.isDir = true
	}

	if entry.isDir {
		entry.name = directoryNameForRow(anchor, resolved, query)
		return entry, true
	}

	if !rowIsFile(resolved, query, entry.sizeText, hasSizeHeader) {
		return tableEntry{}, false
	}
	entry.name = fileNameForRow(anchor, resolved, query)
	return entry, true
}

// rowIsDirectory checks the disjunction of directory signals: an icon or
// row class naming a folder, the Apache "[DIR]" alt text, a dir/folder
// icon image, or a ?dir=-family query parameter.
func rowIsDirectory(row, anchor *goquery.Selection, resolved *url.URL, query url.Values) (isDir, viaDirParam bool) {
	for _, param := range []string{"dirname", "dir", "directory", "folder"} {
		if query.Get(param) != "" {
			return true, param == "dir"
		}
	}

	if row.HasClass("dir") || row.HasClass("directory") {
		return true, false
	}

	classes := anchor.AttrOr("class", "") + " " +
		row.Find("i,span").AttrOr("class", "")
	if strings.Contains(strings.ToLower(classes), "folder") {
		return true, false
	}

	dirImg := false
	row.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		alt := strings.TrimSpace(img.AttrOr("alt", ""))
		src := strings.ToLower(img.AttrOr("src", ""))
		if strings.EqualFold(alt, "[DIR]") ||
			strings.Contains(src, "dir") || strings.Contains(src, "folder") {
			dirImg = true
			return false
		}
		return true
	})
	return dirImg, false
}

// rowIsFile applies the file acceptance rule: an explicit ?file= link,
// or a non-directory href without a trailing slash whose size column is
// either absent or parses as a real size.
func rowIsFile(resolved *url.URL, query url.Values, sizeText string, hasSizeHeader bool) bool {
	if query.Get("file") != "" {
		return true
	}
	if query.Get("dir") != "" {
		return false
	}
	if strings.HasSuffix(resolved.Path, "/") {
		return false
	}
	if !hasSizeHeader {
		return true
	}
	lowerSize := strings.ToLower(strings.TrimSpace(sizeText))
	if strings.Contains(lowerSize, "item") || lowerSize == "0.00b" {
		return false
	}
	return looksLikeFileSize(sizeText)
}

// directoryNameForRow resolves the directory display name, preferring
// explicit query parameters over the link text over the URL path.
func directoryNameForRow(anchor *goquery.Selection, resolved *url.URL, query url.Values) string {
	if folder := query.Get("folder"); folder != "" {
		if decoded, err := base64.StdEncoding.DecodeString(folder); err == nil {
			return string(decoded)
		}
		return folder
	}
	if dir := query.Get("directory"); dir != "" {
		return dir
	}
	if dir := query.Get("dirname"); dir != "" {
		return dir
	}
	if dir := query.Get("dir"); dir != "" {
		return dir
	}
	if anchor.HasClass("name") {
		if text := strings.TrimSpace(anchor.Text()); text != "" {
			return text
		}
	}
	return decodedLastSegment(resolved)
}

// fileNameForRow resolves the file display name: ?file= and ?url= carry
// the real name on script-driven listings whose hrefs point at a
// download endpoint.
func fileNameForRow(anchor *goquery.Selection, resolved *url.URL, query url.Values) string {
	if file := query.Get("file"); file != "" {
		return file
	}
	if raw := query.Get("url"); raw != "" {
		if u, err := url.Parse(raw); err == nil {
			if seg := decodedLastSegment(u); seg != "" {
				return seg
			}
		}
	}
	if seg := decodedLastSegment(resolved); seg != "" && !anchor.HasClass("name") {
		return seg
	}
	if text := strings.TrimSpace(anchor.Text()); text != "" {
		return text
	}
	return decodedLastSegment(resolved)
}

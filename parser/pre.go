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
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// preLineSplitRe breaks a <pre> block into listing lines; the pages mix
// newline conventions and <br>/<hr> separators freely.
var preLineSplitRe = regexp.MustCompile(`\r\n|\r|\n|<br[^>]*>|<hr[^>]*>`)

const (
	anchorPat = `<a[^>]*href="(?P<href>[^"]*)"[^>]*>(?P<name>.*?)</a>`
	sizePat   = `(?P<size>[\d.,]+\s?[kmgtpe]?i?[bo]?|-|&lt;dir&gt;|<dir>)`
)

// preLineParsers is the ordered regex family for preformatted listings.
// The first parser that matches a line fixes its interpretation; the
// ordering is the contract and must not be rearranged. Compiled once.
var preLineParsers = []struct {
	tag string
	re  *regexp.Regexp
}{
	// R1: Apache classic: optional icon, anchor, modified, size, description
	{"apache", regexp.MustCompile(`(?i)^\s*(?:<img[^>]*alt="\[(?P<alt>[^\]]*)\]"[^>]*>\s*)?` + anchorPat +
		`\s+(?P<modified>\d{1,4}[-/.]\S{1,3}[-/.]\d{1,4}\s+\d{1,2}:\d{2}(?::\d{2})?)\s+` + sizePat + `\s*(?P<description>.*?)\s*$`)},
	// R2: compact: anchor, datetime, size
	{"compact", regexp.MustCompile(`(?i)^\s*` + anchorPat +
		`\s+(?P<modified>\d{1,4}[-/.]\S{1,3}[-/.]\d{1,4}(?:\s+\d{1,2}:\d{2}(?::\d{2})?)?)\s+` + sizePat + `\s*$`)},
	// R3: date first, optional icon, size or <dir> marker, anchor last
	{"dateFirst", regexp.MustCompile(`(?i)^\s*(?P<modified>\d{1,4}[-/.]\S{1,3}[-/.]\d{1,4}\s+\d{1,2}:\d{2}(?::\d{2})?(?:\s?[ap]m)?)\s+(?:<img[^>]*>\s*)?` +
		`(?P<size>&lt;dir&gt;|<dir>|DIR|[\d.,]+\s?[kmgtpe]?i?[bo]?|-)\s+` + anchorPat + `\s*$`)},
	// R4: IIS-like: "Wednesday, May 5, 2021 10:02 PM   123  <a ...>"
	{"iisLong", regexp.MustCompile(`(?i)^\s*(?P<modified>\w+,\s+\w+\s+\d{1,2},\s+\d{4}\s+\d{1,2}:\d{2}\s?[ap]m)\s+` +
		`(?P<size>&lt;dir&gt;|<dir>|[\d.,]+)\s+` + anchorPat + `\s*$`)},
	// R5: Korean IIS: 오전/오후 marker between date and time
	{"iisKorean", regexp.MustCompile(`(?i)^\s*(?P<modified>\d{2,4}-\d{1,2}-\d{1,2}\s+(?:오전|오후)\s+\d{1,2}:\d{2})\s+` +
		`(?P<size>&lt;dir&gt;|<dir>|[\d.,]+)\s+` + anchorPat + `\s*$`)},
	// R6: "5/5/2021 10:02 AM  123  <a ...>"
	{"iisShort", regexp.MustCompile(`(?i)^\s*(?P<modified>\d{1,2}/\d{1,2}/\d{2,4}\s+\d{1,2}:\d{2}\s?[ap]m)\s+` +
		`(?P<size>&lt;dir&gt;|<dir>|[\d.,]+)\s+` + anchorPat + `\s*$`)},
	// R7: Unix ls -l: leading permission string decides directory-ness
	{"unixLs", regexp.MustCompile(`(?i)^\s*(?P<perm>[dl-][rwxsStT-]{9})\s+\d+\s+\S+\s+\S+\s+(?P<size>-?[\d.,]+)\s+` +
		`(?P<modified>\w{1,3}\s+\d{1,2}\s+(?:\d{4}|\d{1,2}:\d{2}))\s+` + anchorPat + `\s*$`)},
	// R8: bare anchor with optional trailing size
	{"anchorSize", regexp.MustCompile(`(?i)^\s*` + anchorPat + `\s*/?\s*(?P<size>[\d.,]+\s?[kmgtpe]?i?[bo]?|-)?\s*$`)},
}

// parsePre extracts entries from preformatted-text listings: every line
// of every <pre> block is run through the regex family until one parser
// claims it.
func parsePre(pc *pageContext) (bool, error) {
	pres := pc.doc.Find("pre")
	if pres.Length() == 0 {
		return false, nil
	}

	found := false
	pres.Each(func(_ int, pre *goquery.Selection) {
		blockHTML, err := pre.Html()
		if err != nil {
			return
		}
		for _, line := range preLineSplitRe.Split(blockHTML, -1) {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if parsePreLine(pc, line) {
				found = true
			}
		}
	})

	return found, nil
}

func parsePreLine(pc *pageContext, line string) bool {
	for _, p := range preLineParsers {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		groups := namedGroups(p.re, m)

		href := html.UnescapeString(groups["href"])
		name := strings.TrimSpace(html.UnescapeString(stripTags(groups["name"])))
		if !validAnchor(href, name, "") {
			return false // parent or icon row; the line is claimed but yields nothing
		}

		size := strings.TrimSpace(html.UnescapeString(groups["size"]))
		isDir := preLineIsDirectory(p.tag, groups, href, size)

		if isDir {
			pc.addSubdirectory(href, name)
		} else {
			sizeText := size
			if n, err := strconv.ParseInt(size, 10, 64); err == nil && n < 0 {
				sizeText = "" // 4-GiB wrap artifact; size is unknown
			}
			pc.addFile(href, name, sizeText, strings.TrimSpace(groups["description"]))
		}
		return true
	}
	return false
}

func preLineIsDirectory(tag string, groups map[string]string, href, size string) bool {
	switch strings.ToLower(size) {
	case "<dir>", "&lt;dir&gt;", "dir":
		return true
	}
	if tag == "unixLs" {
		return strings.HasPrefix(strings.ToLower(groups["perm"]), "d")
	}
	if tag == "apache" && strings.EqualFold(strings.TrimSpace(groups["alt"]), "DIR") {
		return true
	}
	if tag == "anchorSize" && size == "" {
		return isDirectoryHref(href)
	}
	return isDirectoryHref(href) && !looksLikeFileSize(size)
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string {
	return tagRe.ReplaceAllString(s, "")
}

func namedGroups(re *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}

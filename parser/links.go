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
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// sortLinkRe matches the sort hrefs emitted by Apache ("?C=N;O=A") and
// IIS ("?N=D", "?M=A", "?S=A", "?D=A") autoindex headers.
var sortLinkRe = regexp.MustCompile(`^\?(?:C=[NMSD](?:[;&]O=[AD])?|[NMSD]=[AD]?)$`)

// validAnchor decides whether an anchor is a navigable listing entry, as
// opposed to a parent link, a column-sort link, or page decoration.
func validAnchor(href, text, title string) bool {
	href = strings.TrimSpace(href)
	text = strings.TrimSpace(text)

	switch href {
	case "", "/", "..", "../", "./.", "./..", "#":
		return false
	}

	lowerHref := strings.ToLower(href)
	if strings.HasPrefix(lowerHref, "javascript:") || strings.HasPrefix(lowerHref, "mailto:") {
		return false
	}

	switch text {
	case "..", ".", "Name":
		return false
	}
	lowerText := strings.ToLower(text)
	if lowerText == "parent directory" || lowerText == "[to parent directory]" {
		return false
	}

	if strings.TrimSpace(title) == ".." {
		return false
	}

	if strings.Contains(href, "&expand") {
		return false
	}

	lastSegment := path.Base(strings.SplitN(href, "?", 2)[0])
	isDirectoryListASP := strings.EqualFold(lastSegment, "DirectoryList.asp")

	if sortLinkRe.MatchString(href) && !isDirectoryListASP {
		return false
	}

	if isDirectoryListASP && text == "" {
		return false
	}

	return true
}

// validAnchorSelection applies validAnchor to a goquery anchor node.
func validAnchorSelection(a *goquery.Selection) bool {
	href, ok := a.Attr("href")
	if !ok {
		return false
	}
	title := a.AttrOr("title", "")
	return validAnchor(href, a.Text(), title)
}

// firstValidAnchor returns the first anchor under sel that passes
// validAnchor, or nil.
func firstValidAnchor(sel *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if validAnchorSelection(a) {
			found = a
			return false
		}
		return true
	})
	return found
}

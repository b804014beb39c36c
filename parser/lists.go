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
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseULRoot handles listings rendered as <ul id="root"> items.
func parseULRoot(pc *pageContext) (bool, error) {
	return parseListItems(pc, pc.doc.Find("ul#root li"))
}

// parseMduiList handles Material-Design (mdui) listings. Header items
// come in three variants: an icon with a data-sort attribute, a
// "?sortby=" anchor, or plain text. They are skipped; data items may
// carry the name, date and size in data-sort-* attributes.
func parseMduiList(pc *pageContext) (bool, error) {
	items := pc.doc.Find("ul.mdui-list li")
	if items.Length() == 0 {
		return false, nil
	}

	items.Each(func(_ int, li *goquery.Selection) {
		if isMduiHeader(li) {
			return
		}
		anchor := firstValidAnchor(li)
		if anchor == nil {
			return
		}
		href := anchor.AttrOr("href", "")

		name := strings.TrimSpace(li.AttrOr("data-sort-name", ""))
		if name == "" {
			name = strings.TrimSpace(li.Find(".mdui-text-truncate").First().Text())
		}
		if name == "" {
			name = strings.TrimSpace(anchor.Text())
		}

		sizeText := strings.TrimSpace(li.AttrOr("data-sort-size", ""))
		if sizeText == "" {
			sizeText = strings.TrimSpace(li.Find(".mdui-list-item-text").Last().Text())
		}

		if li.Find(".mdui-icon").Text() == "folder" || isDirectoryHref(href) {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, sizeText, "")
	})

	return entryCount(pc.dir) > 0, nil
}

func isMduiHeader(li *goquery.Selection) bool {
	if _, ok := li.Find("[data-sort]").First().Attr("data-sort"); ok {
		return true
	}
	header := false
	li.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.Contains(a.AttrOr("href", ""), "sortby=") {
			header = true
			return false
		}
		return true
	})
	if header {
		return true
	}
	// a text-only item without any anchor is a column caption
	return li.Find("a[href]").Length() == 0
}

// parseDirectoryLister handles the Directory Lister PHP script: entries
// every li under #content ul#file-list that holds a valid anchor; no icon
// element is required. Folders are told apart by their fa-folder icon.
func parseDirectoryLister(pc *pageContext) (bool, error) {
	items := pc.doc.Find("#content ul#file-list li")
	if items.Length() == 0 {
		return false, nil
	}

	items.Each(func(_ int, li *goquery.Selection) {
		anchor := firstValidAnchor(li)
		if anchor == nil {
			return
		}
		href := anchor.AttrOr("href", "")

		name := strings.TrimSpace(li.Find("[data-name]").AttrOr("data-name", ""))
		if name == "" {
			name = strings.TrimSpace(li.Find(".file-name").Text())
		}
		if name == "" {
			name = strings.TrimSpace(anchor.Text())
		}

		icon := li.Find("i").AttrOr("class", "")
		if strings.Contains(icon, "fa-folder") {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, li.Find(".file-size").Text(), "")
	})

	return entryCount(pc.dir) > 0, nil
}

// parseListGroup handles Bootstrap .list-group listings; a .badge span
// usually carries the size.
func parseListGroup(pc *pageContext) (bool, error) {
	items := pc.doc.Find(".list-group li, .list-group a.list-group-item")
	if items.Length() == 0 {
		return false, nil
	}

	items.Each(func(_ int, item *goquery.Selection) {
		var anchor *goquery.Selection
		if goquery.NodeName(item) == "a" {
			if !validAnchorSelection(item) {
				return
			}
			anchor = item
		} else {
			anchor = firstValidAnchor(item)
			if anchor == nil {
				return
			}
		}
		href := anchor.AttrOr("href", "")
		sizeText := strings.TrimSpace(item.Find(".badge").First().Text())

		name := strings.TrimSpace(anchor.Text())
		if badge := item.Find(".badge").First(); badge.Length() > 0 {
			name = strings.TrimSpace(strings.TrimSuffix(name, badge.Text()))
		}

		if isDirectoryHref(href) {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, sizeText, "")
	})

	return entryCount(pc.dir) > 0, nil
}

// parseGenericUL is the loose list fallback: any <ul>/<li> holding valid
// anchors.
func parseGenericUL(pc *pageContext) (bool, error) {
	return parseListItems(pc, pc.doc.Find("ul li"))
}

func parseListItems(pc *pageContext, items *goquery.Selection) (bool, error) {
	if items.Length() == 0 {
		return false, nil
	}

	items.Each(func(_ int, li *goquery.Selection) {
		anchor := firstValidAnchor(li)
		if anchor == nil {
			return
		}
		href := anchor.AttrOr("href", "")
		name := strings.TrimSpace(anchor.Text())
		sizeText := strings.TrimSpace(li.Find(".size").First().Text())

		if isDirectoryHref(href) {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, sizeText, "")
	})

	return entryCount(pc.dir) > 0, nil
}

// parseAnchors is the last-resort extractor: every valid anchor on the
// page becomes an entry, classified by trailing slash alone. The
// sanitizer's containment pass cleans up whatever decoration survives
// the link validator.
func parseAnchors(pc *pageContext) (bool, error) {
	pc.doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		if !validAnchorSelection(anchor) {
			return
		}
		href := anchor.AttrOr("href", "")
		name := strings.TrimSpace(anchor.Text())
		if isDirectoryHref(href) {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, "", "")
	})

	return entryCount(pc.dir) > 0, nil
}

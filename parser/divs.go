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
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/openindex/openindex"
)

// parseDirectoryListingCom handles the "Directory Listing Script" layout:
// one <li> per entry under #directory-listing.
func parseDirectoryListingCom(pc *pageContext) (bool, error) {
	items := pc.doc.Find("#directory-listing li, .directory-listing li")
	if items.Length() == 0 {
		return false, nil
	}

	items.Each(func(_ int, li *goquery.Selection) {
		anchor := firstValidAnchor(li)
		if anchor == nil {
			return
		}
		href := anchor.AttrOr("href", "")
		name := strings.TrimSpace(li.AttrOr("data-name", ""))
		if name == "" {
			name = strings.TrimSpace(li.Find(".name").Text())
		}
		if name == "" {
			name = strings.TrimSpace(anchor.Text())
		}
		if isDirectoryHref(href) || li.HasClass("directory") {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, li.Find(".size").Text(), "")
	})

	return entryCount(pc.dir) > 0, nil
}

// parseH5AI reads the <noscript> fallback table h5ai renders: icon cell,
// anchor cell, date cell, size cell.
func parseH5AI(pc *pageContext) (bool, error) {
	rows := pc.doc.Find("#fallback table tr")
	if rows.Length() == 0 {
		return false, nil
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		anchor := firstValidAnchor(row)
		if anchor == nil {
			return
		}
		href := anchor.AttrOr("href", "")
		name := strings.TrimSpace(anchor.Text())

		iconSrc := strings.ToLower(row.Find("td").First().Find("img").AttrOr("src", ""))
		if strings.Contains(iconSrc, "folder") || isDirectoryHref(href) {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, row.Find("td").Eq(3).Text(), "")
	})

	return entryCount(pc.dir) > 0, nil
}

// parseSnif handles Snif ("Simple networked file server") tables.
func parseSnif(pc *pageContext) (bool, error) {
	rows := pc.doc.Find("table.snif tr")
	if rows.Length() == 0 {
		return false, nil
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		if row.HasClass("snHeading") || row.Find("th").Length() > 0 {
			return
		}
		anchor := firstValidAnchor(row)
		if anchor == nil {
			return
		}
		href := anchor.AttrOr("href", "")
		name := strings.TrimSpace(anchor.Text())
		sizeText := strings.TrimSpace(row.Find("td.snSize").Text())
		if sizeText == "" {
			sizeText = strings.TrimSpace(row.Find("td").Last().Text())
		}

		if anchor.HasClass("snDir") || strings.Contains(anchor.AttrOr("class", ""), "dir") || isDirectoryHref(href) {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, sizeText, "")
	})

	return entryCount(pc.dir) > 0, nil
}

// parsePureGodir handles Pure/Godir listing tables. These frontends keep
// the real path in a breadcrumb; when the breadcrumb does not match the
// page URL the listing belongs to a different (usually root) directory
// and recursing on it would duplicate the whole tree, so the page is
// refused instead.
func parsePureGodir(pc *pageContext) (bool, error) {
	rows := pc.doc.Find("table.listing-table tbody tr")
	if rows.Length() == 0 {
		return false, nil
	}

	if crumbs := pc.doc.Find(".breadcrumb"); crumbs.Length() > 0 {
		expected := pc.base.Path
		actual := breadcrumbPath(crumbs)
		escaped := (&url.URL{Path: actual}).EscapedPath()
		if actual != expected && escaped != expected {
			return false, openindex.Friendlyf(
				"breadcrumb %q does not match directory path %q on %s", actual, expected, pc.dir.URL)
		}
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		anchor := firstValidAnchor(row)
		if anchor == nil {
			return
		}
		href := anchor.AttrOr("href", "")
		name := strings.TrimSpace(anchor.Text())
		sizeText := strings.TrimSpace(row.Find("td.size").Text())
		if sizeText == "" {
			sizeText = strings.TrimSpace(row.Find("td").Last().Text())
		}
		if isDirectoryHref(href) || row.Find("i.icon-folder, .fa-folder").Length() > 0 {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, sizeText, "")
	})

	return entryCount(pc.dir) > 0, nil
}

// breadcrumbPath reassembles the path a breadcrumb element renders,
// preferring its links' hrefs over the display text.
func breadcrumbPath(crumbs *goquery.Selection) string {
	if last := crumbs.Find("a[href]").Last(); last.Length() > 0 {
		if href, ok := last.Attr("href"); ok && strings.HasPrefix(href, "/") {
			if !strings.HasSuffix(href, "/") {
				href += "/"
			}
			return href
		}
	}
	text := strings.TrimSpace(crumbs.Text())
	text = strings.Join(strings.Fields(text), "/")
	if !strings.HasPrefix(text, "/") {
		text = "/" + text
	}
	if !strings.HasSuffix(text, "/") {
		text += "/"
	}
	return text
}

// parseCustomDiv1 handles a hand-rolled layout seen in the wild: entry
// divs under div#listing with the name in <strong> and the size in <em>.
func parseCustomDiv1(pc *pageContext) (bool, error) {
	items := pc.doc.Find("div#listing div")
	if items.Length() == 0 {
		return false, nil
	}

	items.Each(func(_ int, div *goquery.Selection) {
		anchor := firstValidAnchor(div)
		if anchor == nil {
			return
		}
		href := anchor.AttrOr("href", "")
		name := strings.TrimSpace(div.Find("strong").First().Text())
		if name == "" {
			name = strings.TrimSpace(anchor.Text())
		}
		sizeText := strings.TrimSpace(div.Find("em").First().Text())
		if isDirectoryHref(href) || sizeText == "" {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, sizeText, "")
	})

	return entryCount(pc.dir) > 0, nil
}

// parseCustomDiv2 handles another ad-hoc layout: .tb-row entries under
// div#filelist, folders carrying data-href and files a .sz size cell.
func parseCustomDiv2(pc *pageContext) (bool, error) {
	items := pc.doc.Find("div#filelist .tb-row")
	if items.Length() == 0 {
		return false, nil
	}

	items.Each(func(_ int, row *goquery.Selection) {
		if row.HasClass("folder") {
			href := strings.TrimSpace(row.AttrOr("data-href", ""))
			if href == "" {
				if anchor := firstValidAnchor(row); anchor != nil {
					href = anchor.AttrOr("href", "")
				}
			}
			if href == "" || !validAnchor(href, row.Text(), "") {
				return
			}
			pc.addSubdirectory(href, strings.TrimSpace(row.Find(".name").Text()))
			return
		}
		if !row.HasClass("afile") {
			return
		}
		anchor := firstValidAnchor(row)
		if anchor == nil {
			return
		}
		name := strings.TrimSpace(row.Find(".name").Text())
		if name == "" {
			name = strings.TrimSpace(anchor.Text())
		}
		pc.addFile(anchor.AttrOr("href", ""), name, row.Find(".sz").Text(), "")
	})

	return entryCount(pc.dir) > 0, nil
}

// parseHFS handles HTTP File Server pages: .item entries under
// div#files, folders tagged with the item-type-folder class.
func parseHFS(pc *pageContext) (bool, error) {
	items := pc.doc.Find("div#files .item")
	if items.Length() == 0 {
		return false, nil
	}

	items.Each(func(_ int, item *goquery.Selection) {
		anchor := firstValidAnchor(item)
		if anchor == nil {
			return
		}
		href := anchor.AttrOr("href", "")
		name := strings.TrimSpace(item.Find(".item-name").Text())
		if name == "" {
			name = strings.TrimSpace(anchor.Text())
		}
		if item.HasClass("item-type-folder") || isDirectoryHref(href) {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, item.Find(".item-size").Text(), "")
	})

	return entryCount(pc.dir) > 0, nil
}

// parseIPFS reads IPFS gateway listings: a plain table with the name
// anchor in the second cell and the size in the third.
func parseIPFS(pc *pageContext) (bool, error) {
	rows := pc.doc.Find("table tr")
	if rows.Length() == 0 {
		return false, nil
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		anchor := row.Find("td").Eq(1).Find("a[href]").First()
		if anchor.Length() == 0 || !validAnchorSelection(anchor) {
			return
		}
		href := anchor.AttrOr("href", "")
		name := strings.TrimSpace(anchor.Text())
		sizeText := strings.TrimSpace(row.Find("td").Eq(2).Text())

		if sizeText == "-" || isDirectoryHref(href) {
			pc.addSubdirectory(href, name)
			return
		}
		pc.addFile(href, name, sizeText, "")
	})

	return entryCount(pc.dir) > 0, nil
}

// isDirectoryHref reports whether an href's path component ends with a
// slash, the universal directory convention across listing dialects.
func isDirectoryHref(href string) bool {
	return strings.HasSuffix(strings.SplitN(strings.SplitN(href, "?", 2)[0], "#", 2)[0], "/")
}

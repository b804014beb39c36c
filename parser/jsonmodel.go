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
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"

	"github.com/openindex/openindex"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// model01GetRe finds the index file a filemanager script loads with
// jQuery, e.g. $.get('data.json', ...).
var model01GetRe = regexp.MustCompile(`\$\.get\(\s*['"]([^'"]+)['"]`)

// model01Node is the recursive tree the JSON-backed "filemanager"
// frontend serves: directories carry items, files carry a size.
type model01Node struct {
	Name  string        `json:"name"`
	Path  string        `json:"path"`
	Type  string        `json:"type"`
	Size  int64         `json:"size"`
	Items []model01Node `json:"items"`
}

// parseModel01 detects the JSON-backed filemanager frontend (a
// div.filemanager plus a script.js include that $.get's an index file),
// fetches the index and materializes the whole subtree at once. It runs
// regardless of what the structural probes produced; its errors are
// sub-fetch failures that lose this signal only, never the page.
func parseModel01(pc *pageContext) error {
	if pc.doc.Find("div.filemanager").Length() == 0 {
		return nil
	}

	var scriptURL *url.URL
	pc.doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := s.AttrOr("src", "")
		if !strings.Contains(src, "script.js") {
			return true
		}
		if resolved, err := resolveURL(pc.base, src); err == nil {
			scriptURL = resolved
			return false
		}
		return true
	})
	if scriptURL == nil || pc.opts.Client == nil {
		return nil
	}

	script, err := fetchText(pc, scriptURL.String())
	if err != nil {
		return err
	}
	m := model01GetRe.FindStringSubmatch(script)
	if m == nil {
		return nil
	}

	indexURL, err := resolveURL(pc.base, m[1])
	if err != nil {
		return err
	}
	body, err := fetchText(pc, indexURL.String())
	if err != nil {
		return err
	}

	var root model01Node
	if err := json.UnmarshalFromString(body, &root); err != nil {
		return fmt.Errorf("decoding listing index %s: %w", indexURL, err)
	}

	addModel01Children(pc, pc.dir, root.Items)
	return nil
}

func addModel01Children(pc *pageContext, parent *openindex.Directory, items []model01Node) {
	for _, item := range items {
		resolved, err := resolveURL(pc.base, strings.TrimPrefix(item.Path, "/"))
		if err != nil {
			continue
		}
		if strings.EqualFold(item.Type, "folder") || len(item.Items) > 0 {
			sub := openindex.NewDirectory(resolved.String(), parent)
			if item.Name != "" {
				sub.Name = item.Name
			}
			sub.Parser = "ParseDirectoryListingModel01"
			sub.ParsedSuccessfully = true
			addModel01Children(pc, sub, item.Items)
			parent.Subdirectories = append(parent.Subdirectories, sub)
			continue
		}
		size := item.Size
		if size < 0 {
			size = openindex.UnknownFileSize
		}
		parent.Files = append(parent.Files, &openindex.File{
			URL:      resolved.String(),
			FileName: item.Name,
			FileSize: size,
		})
	}
}

// fetchText GETs a URL with the parse's context and returns the body as
// a string.
func fetchText(pc *pageContext, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(pc.ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := pc.opts.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

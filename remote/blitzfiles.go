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

package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/openindex/openindex"
)

// blitzfilesBackend lists folders on blitzfiles.tech through its JSON
// API instead of scraping the JavaScript-rendered page.
type blitzfilesBackend struct{}

func (blitzfilesBackend) Name() string { return "BlitzfilesTech" }

type blitzfilesEntry struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Folder   bool   `json:"folder"`
	Hash     string `json:"hash"`
	Download string `json:"download"`
}

type blitzfilesListing struct {
	Entries []blitzfilesEntry `json:"entries"`
}

func (blitzfilesBackend) Parse(ctx context.Context, client *http.Client, dir *openindex.Directory) error {
	if client == nil {
		return fmt.Errorf("blitzfiles backend needs an HTTP client")
	}

	u, err := url.Parse(dir.URL)
	if err != nil {
		return err
	}
	hash := strings.Trim(strings.TrimPrefix(u.Path, "/files"), "/")
	if hash == "" {
		return fmt.Errorf("no folder hash in %s", dir.URL)
	}

	apiURL := "https://blitzfiles.tech/api/folder/" + url.PathEscape(hash)
	body, err := get(ctx, client, apiURL)
	if err != nil {
		return err
	}

	var listing blitzfilesListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return fmt.Errorf("blitzfiles listing %s: %w", apiURL, err)
	}

	for _, entry := range listing.Entries {
		if entry.Name == "" {
			continue
		}
		if entry.Folder {
			sub := openindex.NewDirectory("https://blitzfiles.tech/files/"+entry.Hash+"/", dir)
			sub.Name = entry.Name
			dir.Subdirectories = append(dir.Subdirectories, sub)
			continue
		}
		fileURL := entry.Download
		if fileURL == "" {
			fileURL = "https://blitzfiles.tech/files/" + entry.Hash
		}
		size := entry.Size
		if size < 0 {
			size = openindex.UnknownFileSize
		}
		dir.Files = append(dir.Files, &openindex.File{
			URL:      fileURL,
			FileName: entry.Name,
			FileSize: size,
		})
	}
	return nil
}

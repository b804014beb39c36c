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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/openindex/openindex"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DriveIndexType identifies which Google-Drive index frontend a page is
// running. The variants speak near-identical POST protocols but differ
// in script names and response envelopes.
type DriveIndexType int

const (
	DriveIndexNone DriveIndexType = iota
	BhadooIndex
	GoIndex
	Go2Index
	GdIndex
)

func (t DriveIndexType) String() string {
	switch t {
	case BhadooIndex:
		return "BhadooIndex"
	case GoIndex:
		return "GoIndex"
	case Go2Index:
		return "Go2Index"
	case GdIndex:
		return "GdIndex"
	}
	return "None"
}

// script-name fingerprints per variant; matched against the full script
// URL, lowercased
var driveIndexFingerprints = []struct {
	typ      DriveIndexType
	patterns []string
}{
	{BhadooIndex, []string{"bhadoo", "gdindex-bhadoo"}},
	{Go2Index, []string{"go2index"}},
	{GoIndex, []string{"goindex"}},
	{GdIndex, []string{"gdindex", "gd-index", "gd.index"}},
}

// GetGoogleDriveIndexType classifies one script URL.
func GetGoogleDriveIndexType(scriptURL string) DriveIndexType {
	lower := strings.ToLower(scriptURL)
	for _, fp := range driveIndexFingerprints {
		for _, p := range fp.patterns {
			if strings.Contains(lower, p) {
				return fp.typ
			}
		}
	}
	return DriveIndexNone
}

var sourceMappingURLRe = regexp.MustCompile(`//[#@]\s*sourceMappingURL=(\S+)`)

// ClassifyScripts classifies every script URL of a page. A script named
// app.min.js hides the frontend's identity behind minification, so its
// sourcemap is fetched and the original source list classified instead.
func ClassifyScripts(ctx context.Context, client *http.Client, scriptURLs []string, logger *zap.Logger) DriveIndexType {
	for _, scriptURL := range scriptURLs {
		if typ := GetGoogleDriveIndexType(scriptURL); typ != DriveIndexNone {
			return typ
		}
		if path.Base(strippedPath(scriptURL)) != "app.min.js" || client == nil {
			continue
		}
		typ, err := classifyViaSourcemap(ctx, client, scriptURL)
		if err != nil {
			logger.Debug("sourcemap classification failed",
				zap.String("script", scriptURL), zap.Error(err))
			continue
		}
		if typ != DriveIndexNone {
			return typ
		}
	}
	return DriveIndexNone
}

func strippedPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.Path
	}
	return rawURL
}

func classifyViaSourcemap(ctx context.Context, client *http.Client, scriptURL string) (DriveIndexType, error) {
	body, err := get(ctx, client, scriptURL)
	if err != nil {
		return DriveIndexNone, err
	}
	m := sourceMappingURLRe.FindSubmatch(body)
	if m == nil {
		return DriveIndexNone, nil
	}

	base, err := url.Parse(scriptURL)
	if err != nil {
		return DriveIndexNone, err
	}
	ref, err := url.Parse(string(m[1]))
	if err != nil {
		return DriveIndexNone, err
	}

	mapBody, err := get(ctx, client, base.ResolveReference(ref).String())
	if err != nil {
		return DriveIndexNone, err
	}

	var sourcemap struct {
		Sources []string `json:"sources"`
	}
	if err := json.Unmarshal(mapBody, &sourcemap); err != nil {
		return DriveIndexNone, err
	}
	for _, source := range sourcemap.Sources {
		if typ := GetGoogleDriveIndexType(source); typ != DriveIndexNone {
			return typ, nil
		}
	}
	return DriveIndexNone, nil
}

// driveListRequest is the POST body all the index variants accept.
type driveListRequest struct {
	Password  string `json:"password"`
	PageToken string `json:"page_token"`
	PageIndex int    `json:"page_index"`
}

type driveFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     any    `json:"size"`
}

type driveListResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Data          struct {
		Files []driveFile `json:"files"`
	} `json:"data"`
	// GoIndex serves the file list at the top level instead
	Files []driveFile `json:"files"`
}

const driveFolderMimeType = "application/vnd.google-apps.folder"

// maxDrivePages bounds pagination so a misbehaving backend cannot spin
// the parser forever.
const maxDrivePages = 100

// ParseGoogleDriveIndex lists one directory of a Google-Drive index
// frontend by POSTing the listing request the page's own JavaScript
// would send, following page tokens.
func ParseGoogleDriveIndex(ctx context.Context, client *http.Client, dir *openindex.Directory, typ DriveIndexType) error {
	if client == nil {
		return fmt.Errorf("%s backend needs an HTTP client", typ)
	}

	pageToken := ""
	for page := 0; page < maxDrivePages; page++ {
		reqBody, err := json.Marshal(driveListRequest{PageToken: pageToken, PageIndex: page})
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, dir.URL, bytes.NewReader(reqBody))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s listing %s: unexpected status %s", typ, dir.URL, resp.Status)
		}

		var listing driveListResponse
		if err := json.Unmarshal(body, &listing); err != nil {
			return fmt.Errorf("%s listing %s: %w", typ, dir.URL, err)
		}

		files := listing.Data.Files
		if len(files) == 0 {
			files = listing.Files
		}
		for _, f := range files {
			addDriveEntry(dir, f)
		}

		if listing.NextPageToken == "" {
			return nil
		}
		pageToken = listing.NextPageToken
	}
	return nil
}

func addDriveEntry(dir *openindex.Directory, f driveFile) {
	if f.Name == "" {
		return
	}
	if f.MimeType == driveFolderMimeType {
		sub := openindex.NewDirectory(dir.URL+url.PathEscape(f.Name)+"/", dir)
		sub.Name = f.Name
		dir.Subdirectories = append(dir.Subdirectories, sub)
		return
	}
	dir.Files = append(dir.Files, &openindex.File{
		URL:      dir.URL + url.PathEscape(f.Name),
		FileName: f.Name,
		FileSize: driveFileSize(f.Size),
	})
}

// driveFileSize tolerates the size being a JSON number or a string,
// which varies between frontend versions.
func driveFileSize(v any) int64 {
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return int64(n)
		}
	case string:
		if parsed, err := strconv.ParseInt(n, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return openindex.UnknownFileSize
}

func get(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

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

// Package parser turns raw open-directory listing HTML into a structured
// inventory. Pages rendered by dozens of server implementations (Apache
// and Nginx autoindex, IIS, lighttpd, h5ai, HFS, Snif, script-drawn
// pages, JSON-backed frontends, ...) are matched against an ordered list
// of dialect extractors; the first extractor that recognizes the page
// and yields entries wins. A sanitizer pass then enforces containment,
// strips sort links and fragments, prunes Linux pseudo-filesystems and
// detects symlink loops.
package parser

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	xhtml "golang.org/x/net/html"

	"github.com/openindex/openindex"
	"github.com/openindex/openindex/remote"
)

// Options tunes a single page parse.
type Options struct {
	// Client is used for the parser's only sub-fetches: Google-Drive
	// frontend scripts/sourcemaps and JSON-backed listing indexes.
	// When nil those detection paths are skipped.
	Client *http.Client

	// CheckParents enables the sanitizer's parent-scope filtering,
	// dropping entries that escape the directory's own host and path.
	// The crawler passes its check_parents setting (true by default);
	// the zero value leaves the filter off.
	CheckParents bool

	// Session receives the worker-cap clamp when a Google-Drive
	// frontend is detected. Optional.
	Session *openindex.Session

	Logger *zap.Logger
}

// pageContext is the state one parse shares between the dispatcher, the
// extractor it picks, and the helpers they use.
type pageContext struct {
	ctx     context.Context
	doc     *goquery.Document
	base    *url.URL
	dir     *openindex.Directory
	rawHTML string
	opts    Options
	logger  *zap.Logger
}

// dialect is one entry of the dispatcher's ordered probe list.
type dialect struct {
	name    string
	extract func(*pageContext) (bool, error)
}

// dialects are probed in order; the order is load-bearing, as several
// layouts would also satisfy later, more generic probes. The table
// extractor sits after the structure-specific probes, the bare-anchor
// fallback comes last.
var dialects = []dialect{
	{"ParseDirectoryListingDotComDirectoryListing", parseDirectoryListingCom},
	{"ParseH5aiDirectoryListing", parseH5AI},
	{"ParseSnifDirectoryListing", parseSnif},
	{"ParsePureDirectoryListing", parsePureGodir},
	{"ParseCustomDivListing", parseCustomDiv1},
	{"ParseCustomDivListing2", parseCustomDiv2},
	{"ParseHfsDirectoryListing", parseHFS},
	{"ParsePreDirectoryListing", parsePre},
	{"ParseJavaScriptDrawnDirectoryListing", parseJavaScriptDrawn},
	{"ParseListItemsDirectoryListing", parseULRoot},
	{"ParseTablesDirectoryListing", parseTables},
	{"ParseMaterialDesignListItemsDirectoryListing", parseMduiList},
	{"ParseDirectoryListerDirectoryListing", parseDirectoryLister},
	{"ParseListGroupDirectoryListing", parseListGroup},
	{"ParseGenericListItemsDirectoryListing", parseGenericUL},
	{"ParseLinksDirectoryListing", parseAnchors},
}

// ParseHTML parses one directory listing page. dir supplies only URL and
// Parent; on return its entries, Parser tag and status flags are filled
// in. All parse failures are folded into dir.Error=true; the only error
// ever returned is the caller's own cancellation.
func ParseHTML(ctx context.Context, dir *openindex.Directory, html string, opts Options) (*openindex.Directory, error) {
	logger := opts.Logger
	if logger == nil {
		logger = openindex.Log()
	}

	base, err := url.Parse(dir.URL)
	if err != nil {
		logger.Error("directory URL does not parse", zap.String("url", dir.URL), zap.Error(err))
		dir.Error = true
		return dir, nil
	}

	node, err := xhtml.Parse(strings.NewReader(html))
	if err != nil {
		logger.Error("malformed HTML", zap.String("url", dir.URL), zap.Error(err))
		dir.Error = true
		return dir, nil
	}
	doc := goquery.NewDocumentFromNode(node)

	pc := &pageContext{
		ctx:     ctx,
		doc:     doc,
		base:    base,
		dir:     dir,
		rawHTML: html,
		opts:    opts,
		logger:  logger,
	}

	if err := dispatch(pc); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return dir, err
		}
		var friendly *openindex.FriendlyError
		if errors.As(err, &friendly) {
			logger.Info(friendly.Message)
		} else {
			logger.Error("parsing directory failed",
				zap.String("url", dir.URL), zap.Error(err))
		}
		dir.Error = true
		dir.ClearEntries()
		return dir, nil
	}

	sanitize(pc.dir, opts.CheckParents)
	dir.ParsedSuccessfully = !dir.Error
	return dir, nil
}

// dispatch routes the page to the matching extractor: host-keyed remote
// backends first, then script-keyed Google-Drive frontends, then the
// ordered structural probes, then the JSON-backed Model-01 attempt.
func dispatch(pc *pageContext) error {
	host := strings.ToLower(pc.base.Hostname())

	if remote.IsIPFSGateway(host) {
		pc.dir.Parser = "ParseIpfsDirectoryListing"
		_, err := parseIPFS(pc)
		return err
	}
	if backend := remote.BackendForHost(host); backend != nil {
		pc.dir.Parser = backend.Name()
		return backend.Parse(pc.ctx, pc.opts.Client, pc.dir)
	}

	if pc.opts.Client != nil {
		if typ, ok := detectGoogleDriveIndex(pc); ok {
			if pc.opts.Session != nil {
				pc.opts.Session.ClampThreads(1)
			}
			pc.dir.Parser = "GoogleDriveIndex:" + typ.String()
			return remote.ParseGoogleDriveIndex(pc.ctx, pc.opts.Client, pc.dir, typ)
		}
	}

	// page chrome confuses the generic probes
	pc.doc.Find("#sidebar").Remove()
	pc.doc.Find("nav").Remove()

	for _, d := range dialects {
		if err := pc.ctx.Err(); err != nil {
			return err
		}
		found, err := d.extract(pc)
		if err != nil {
			pc.dir.Parser = d.name
			return err
		}
		if found && entryCount(pc.dir) > 0 {
			pc.dir.Parser = d.name
			break
		}
		if d.name == "ParsePureDirectoryListing" {
			// the Pure probe needed the breadcrumb; nothing after it does
			pc.doc.Find(".breadcrumb").Remove()
		}
	}

	before := entryCount(pc.dir)
	if err := parseModel01(pc); err != nil {
		// a failed index sub-fetch loses that signal, not the page
		pc.logger.Warn("JSON listing index fetch failed",
			zap.String("url", pc.dir.URL), zap.Error(err))
	} else if entryCount(pc.dir) > before {
		pc.dir.Parser = "ParseDirectoryListingModel01"
	}

	if entryCount(pc.dir) == 0 && pc.doc.Find("noscript").Length() > 0 {
		if c := pc.logger.Check(zapcore.DebugLevel, "no entries found; page has <noscript>, probably a JavaScript challenge"); c != nil {
			c.Write(zap.String("url", pc.dir.URL))
		}
	}

	return nil
}

// detectGoogleDriveIndex classifies every <script src> on the page,
// following app.min.js sourcemaps, and reports the first Google-Drive
// frontend variant found.
func detectGoogleDriveIndex(pc *pageContext) (remote.DriveIndexType, bool) {
	var scripts []string
	pc.doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}
		if resolved, err := resolveURL(pc.base, src); err == nil {
			scripts = append(scripts, resolved.String())
		}
	})
	if len(scripts) == 0 {
		return remote.DriveIndexNone, false
	}
	typ := remote.ClassifyScripts(pc.ctx, pc.opts.Client, scripts, pc.logger)
	return typ, typ != remote.DriveIndexNone
}

func entryCount(d *openindex.Directory) int {
	return len(d.Subdirectories) + len(d.Files)
}

// addSubdirectory resolves href against the page URL and appends a shell
// subdirectory. Unresolvable hrefs are skipped.
func (pc *pageContext) addSubdirectory(href, name string) {
	resolved, err := resolveURL(pc.base, href)
	if err != nil {
		return
	}
	sub := openindex.NewDirectory(resolved.String(), pc.dir)
	if name != "" {
		sub.Name = strings.TrimSuffix(strings.TrimSpace(name), "/")
	}
	pc.dir.Subdirectories = append(pc.dir.Subdirectories, sub)
}

// addFile resolves href and appends a file entry. sizeText may be empty
// or a placeholder; it collapses to the unknown-size sentinel.
func (pc *pageContext) addFile(href, name, sizeText, description string) {
	resolved, err := resolveURL(pc.base, href)
	if err != nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = decodedLastSegment(resolved)
	}
	pc.dir.Files = append(pc.dir.Files, &openindex.File{
		URL:         resolved.String(),
		FileName:    name,
		FileSize:    fileSizeOrUnknown(sizeText),
		Description: strings.TrimSpace(description),
	})
}

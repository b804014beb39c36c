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

// Package remote holds the special-backend strategies the parser
// delegates to when a page is not a plain HTML listing: Google-Drive
// index frontends (selected by classifying the page's scripts) and
// host-keyed services like Blitzfiles. Their wire protocols are opaque
// to the parser core.
package remote

import (
	"context"
	"net/http"
	"strings"

	"github.com/openindex/openindex"
)

// Backend is a host-keyed remote listing strategy.
type Backend interface {
	Name() string
	Parse(ctx context.Context, client *http.Client, dir *openindex.Directory) error
}

var ipfsGatewayHosts = map[string]bool{
	"ipfs.io":         true,
	"gateway.ipfs.io": true,
}

// whitelistedHosts are the remote-backend hosts whose entries are
// allowed to escape a directory's own host during sanitization.
var whitelistedHosts = map[string]bool{
	"drive.google.com":             true,
	"docs.google.com":              true,
	"drive.usercontent.google.com": true,
	"blitzfiles.tech":              true,
}

// IsIPFSGateway reports whether host is a public IPFS gateway whose
// listings use the gateway table layout.
func IsIPFSGateway(host string) bool {
	return ipfsGatewayHosts[strings.ToLower(host)]
}

// IsWhitelistedHost reports whether entries on host may appear inside
// directories hosted elsewhere.
func IsWhitelistedHost(host string) bool {
	return whitelistedHosts[strings.ToLower(host)]
}

// BackendForHost returns the strategy for a host-keyed backend, or nil.
func BackendForHost(host string) Backend {
	if strings.EqualFold(host, "blitzfiles.tech") {
		return blitzfilesBackend{}
	}
	return nil
}

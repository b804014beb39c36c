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

// Package openindex holds the shared data model of the open-directory
// indexer: the directory/file inventory produced by the listing parsers,
// the crawl session, and the error taxonomy. The parsing itself lives in
// the parser package; the crawl loop in the crawler package.
package openindex

// Version is the openindex version string. It is set at build time
// via -ldflags; the fallback is used for `go run` and tests.
var Version = "(devel)"

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
	"regexp"
)

// Some listing scripts emit no markup at all and instead call drawing
// helpers inline: _d("name", "modified", ...) per directory and
// _f("name", "size", ...) per file. The entries are recovered straight
// from the page source.
var (
	jsDrawnDirRe  = regexp.MustCompile(`_d\(\s*['"](?P<name>[^'"]+)['"]\s*,`)
	jsDrawnFileRe = regexp.MustCompile(`_f\(\s*['"](?P<name>[^'"]+)['"]\s*,\s*['"]?(?P<size>[\d.,]+)`)
)

func parseJavaScriptDrawn(pc *pageContext) (bool, error) {
	for _, m := range jsDrawnDirRe.FindAllStringSubmatch(pc.rawHTML, -1) {
		name := m[1]
		if !validAnchor(name, name, "") {
			continue
		}
		pc.addSubdirectory(name+"/", name)
	}
	for _, m := range jsDrawnFileRe.FindAllStringSubmatch(pc.rawHTML, -1) {
		groups := namedGroups(jsDrawnFileRe, m)
		name := groups["name"]
		if !validAnchor(name, name, "") {
			continue
		}
		pc.addFile(name, name, groups["size"], "")
	}

	return entryCount(pc.dir) > 0, nil
}

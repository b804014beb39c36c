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

package openindex

import "fmt"

// ParseError is an unexpected structural failure inside an extractor:
// the page matched a dialect probe but its rows could not be read. The
// dispatcher converts it into Error=true on the directory.
type ParseError struct {
	Dialect string
	URL     string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parsing %s: %v", e.Dialect, e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FriendlyError is an expected, structured refusal (for example a
// Pure/Godir page whose breadcrumb does not match the requested path).
// It is logged with its message only, at info level, and still marks
// the directory Error=true.
type FriendlyError struct {
	Message string
}

func (e *FriendlyError) Error() string { return e.Message }

// Friendlyf builds a FriendlyError.
func Friendlyf(format string, args ...any) *FriendlyError {
	return &FriendlyError{Message: fmt.Sprintf(format, args...)}
}

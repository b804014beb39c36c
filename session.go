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

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session carries the state shared across one crawl: the root, an ID for
// log correlation, and the worker cap. The cap is the only value the
// parser core ever mutates (it clamps it to 1 when a Google-Drive-index
// frontend is detected), so it is atomic.
type Session struct {
	ID      uuid.UUID
	Root    string
	Started time.Time

	maxThreads int64
}

// NewSession creates a session for the given root URL with the given
// initial worker cap. A cap below 1 is raised to 1.
func NewSession(root string, maxThreads int) *Session {
	if maxThreads < 1 {
		maxThreads = 1
	}
	s := &Session{
		ID:      uuid.New(),
		Root:    root,
		Started: time.Now(),
	}
	atomic.StoreInt64(&s.maxThreads, int64(maxThreads))
	return s
}

// MaxThreads returns the current worker cap.
func (s *Session) MaxThreads() int {
	return int(atomic.LoadInt64(&s.maxThreads))
}

// ClampThreads lowers the worker cap to n if it currently exceeds n. It
// never raises the cap. Safe to call from any number of parses at once.
func (s *Session) ClampThreads(n int) {
	if n < 1 {
		n = 1
	}
	for {
		cur := atomic.LoadInt64(&s.maxThreads)
		if cur <= int64(n) {
			return
		}
		if atomic.CompareAndSwapInt64(&s.maxThreads, cur, int64(n)) {
			return
		}
	}
}

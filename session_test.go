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
	"sync"
	"testing"
)

func TestSessionClampThreads(t *testing.T) {
	s := NewSession("http://h/", 10)

	s.ClampThreads(4)
	if got := s.MaxThreads(); got != 4 {
		t.Errorf("MaxThreads() = %d, want 4", got)
	}

	// clamping never raises the cap
	s.ClampThreads(8)
	if got := s.MaxThreads(); got != 4 {
		t.Errorf("MaxThreads() = %d after raising clamp, want 4", got)
	}

	// and never drops below 1
	s.ClampThreads(0)
	if got := s.MaxThreads(); got != 1 {
		t.Errorf("MaxThreads() = %d, want 1", got)
	}
}

func TestSessionClampThreadsConcurrent(t *testing.T) {
	s := NewSession("http://h/", 64)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ClampThreads(1)
		}()
	}
	wg.Wait()

	if got := s.MaxThreads(); got != 1 {
		t.Errorf("MaxThreads() = %d after concurrent clamps, want 1", got)
	}
}

func TestNewSessionFloorsThreads(t *testing.T) {
	if got := NewSession("http://h/", -3).MaxThreads(); got != 1 {
		t.Errorf("MaxThreads() = %d, want 1", got)
	}
}

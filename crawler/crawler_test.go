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

package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func listingServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><pre>
<a href="../">Parent Directory</a>
<a href="movies/">movies/</a> -
<a href="readme.txt">readme.txt</a> 2K
</pre></body></html>`))
	})
	mux.HandleFunc("/files/movies/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><pre>
<a href="../">Parent Directory</a>
<a href="movie.mkv">movie.mkv</a> 700M
</pre></body></html>`))
	})
	return httptest.NewServer(mux)
}

func TestCrawlerWalksTree(t *testing.T) {
	server := listingServer(t)
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Roots = []string{server.URL + "/files/"}
	cfg.Threads = 2

	c, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	roots, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 1)

	root := roots[0]
	require.False(t, root.Error)
	assert.True(t, root.Finished)
	require.Len(t, root.Files, 1)
	assert.Equal(t, int64(2048), root.Files[0].FileSize)

	require.Len(t, root.Subdirectories, 1)
	movies := root.Subdirectories[0]
	assert.True(t, movies.Finished)
	require.Len(t, movies.Files, 1)
	assert.Equal(t, int64(734003200), movies.Files[0].FileSize)

	stats := Collect(roots)
	assert.Equal(t, 2, stats.Directories)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, int64(734003200+2048), stats.TotalSize)
}

func TestCrawlerHonorsMaxDepth(t *testing.T) {
	server := listingServer(t)
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Roots = []string{server.URL + "/files/"}
	cfg.MaxDepth = 1

	c, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	roots, err := c.Run(context.Background())
	require.NoError(t, err)

	movies := roots[0].Subdirectories[0]
	assert.False(t, movies.Finished, "depth-limited subdirectory must not be fetched")
}

func TestCrawlerMarksFetchFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Roots = []string{server.URL + "/gone/"}
	cfg.Retries = 0

	c, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	roots, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, roots[0].Error)
	assert.True(t, roots[0].Finished)
}

func TestClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Retries = 4
	client := NewClient(cfg)

	body, err := client.FetchHTML(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", body)
	assert.Equal(t, 3, attempts)
}

func TestClientRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.RequestsPerSecond = 20
	client := NewClient(cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.FetchHTML(context.Background(), server.URL)
		require.NoError(t, err)
	}
	// burst 1 at 20 rps spaces the second and third request 50ms apart
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate(), "roots are mandatory")

	cfg.Roots = []string{"http://h/files/"}
	require.NoError(t, cfg.Validate())

	cfg.Threads = 0
	require.Error(t, cfg.Validate())
}

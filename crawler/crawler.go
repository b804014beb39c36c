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

// Package crawler walks open directories breadth-first: it fetches each
// queued directory's listing, runs the parser over it, and enqueues the
// subdirectories of every successfully parsed page.
package crawler

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openindex/openindex"
	"github.com/openindex/openindex/parser"
)

// Crawler drives one crawl session across one or more roots.
type Crawler struct {
	cfg     *Config
	client  *Client
	session *openindex.Session
	logger  *zap.Logger

	mu          sync.Mutex
	cond        *sync.Cond
	queue       []*openindex.Directory
	outstanding int
	visited     map[string]bool
}

// New builds a crawler for the given configuration.
func New(cfg *Config, logger *zap.Logger) (*Crawler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = openindex.Log()
	}
	c := &Crawler{
		cfg:     cfg,
		client:  NewClient(cfg),
		session: openindex.NewSession(strings.Join(cfg.Roots, " "), cfg.Threads),
		logger:  logger,
		visited: make(map[string]bool),
	}
	c.cond = sync.NewCond(&c.mu)
	return c, nil
}

// Session exposes the crawl session, including the effective worker cap
// after a run.
func (c *Crawler) Session() *openindex.Session { return c.session }

// Run crawls all configured roots and returns their directory trees.
// Cancelling ctx stops the crawl; the trees built so far are returned
// along with ctx's error.
func (c *Crawler) Run(ctx context.Context) ([]*openindex.Directory, error) {
	roots := make([]*openindex.Directory, 0, len(c.cfg.Roots))
	for _, rootURL := range c.cfg.Roots {
		root := openindex.NewDirectory(rootURL, nil)
		roots = append(roots, root)
		c.enqueue(root)
	}

	c.logger.Info("crawl starting",
		zap.String("session", c.session.ID.String()),
		zap.Strings("roots", c.cfg.Roots),
		zap.Int("threads", c.session.MaxThreads()))

	var wg sync.WaitGroup
	workers := c.session.MaxThreads()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go c.worker(ctx, i, &wg)
	}

	// wake blocked workers when the caller gives up
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.cond.Broadcast()
		case <-stop:
		}
	}()

	wg.Wait()
	close(stop)

	c.logger.Info("crawl finished",
		zap.String("session", c.session.ID.String()),
		zap.Duration("took", time.Since(c.session.Started)))

	return roots, ctx.Err()
}

// worker processes queued directories until the queue drains or the
// context is cancelled. Workers whose index rises above the session cap
// retire; the cap only ever shrinks, so this is the entire
// implementation of the Google-Drive concurrency clamp.
func (c *Crawler) worker(ctx context.Context, index int, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		if ctx.Err() != nil || index >= c.session.MaxThreads() {
			// retiring must not strand queued work for the
			// surviving workers
			c.cond.Broadcast()
			return
		}
		dir, ok := c.dequeue(ctx)
		if !ok {
			return
		}
		c.process(ctx, dir)
		c.done()
	}
}

func (c *Crawler) enqueue(dir *openindex.Directory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := parser.StripURL(dir.URL)
	if c.visited[key] {
		return
	}
	c.visited[key] = true
	c.queue = append(c.queue, dir)
	c.outstanding++
	c.cond.Signal()
}

// dequeue blocks until work is available; it reports false when the
// crawl is complete or cancelled.
func (c *Crawler) dequeue(ctx context.Context) (*openindex.Directory, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.queue) == 0 {
		if c.outstanding == 0 || ctx.Err() != nil {
			return nil, false
		}
		c.cond.Wait()
	}
	dir := c.queue[0]
	c.queue = c.queue[1:]
	return dir, true
}

// done retires one unit of outstanding work and wakes waiters when the
// crawl has drained.
func (c *Crawler) done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outstanding--
	if c.outstanding == 0 {
		c.cond.Broadcast()
	}
}

func (c *Crawler) process(ctx context.Context, dir *openindex.Directory) {
	dir.StartTime = time.Now()

	html, err := c.client.FetchHTML(ctx, dir.URL)
	if err != nil {
		fetchErrors.Inc()
		dir.Error = true
		dir.FinishTime = time.Now()
		dir.Finished = true
		if ctx.Err() == nil {
			c.logger.Warn("fetching listing failed",
				zap.String("url", dir.URL), zap.Error(err))
		}
		return
	}

	_, err = parser.ParseHTML(ctx, dir, html, parser.Options{
		Client:       c.client.HTTPClient(),
		CheckParents: c.cfg.CheckParents,
		Session:      c.session,
		Logger:       c.logger,
	})
	dir.FinishTime = time.Now()
	dir.Finished = true
	if err != nil {
		return // cancelled
	}

	if dir.Error {
		parseErrors.Inc()
		return
	}

	pagesParsed.WithLabelValues(dir.Parser).Inc()
	filesIndexed.Add(float64(len(dir.Files)))
	bytesIndexed.Add(float64(dir.TotalFileSize()))

	if ce := c.logger.Check(zapcore.DebugLevel, "directory parsed"); ce != nil {
		ce.Write(zap.String("url", dir.URL),
			zap.String("dialect", dir.Parser),
			zap.Int("subdirectories", len(dir.Subdirectories)),
			zap.Int("files", len(dir.Files)))
	}

	// MaxDepth counts listing levels: 1 fetches only the roots
	if c.cfg.MaxDepth > 0 && depth(dir)+1 >= c.cfg.MaxDepth {
		return
	}
	for _, sub := range dir.Subdirectories {
		c.enqueue(sub)
	}
}

func depth(dir *openindex.Directory) int {
	n := 0
	dir.Ancestors(func(*openindex.Directory) bool {
		n++
		return true
	})
	return n
}

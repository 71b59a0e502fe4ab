// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package health checks node fronts over HTTP.
package health // import "github.com/toeirei/chainmaster/internal/health"

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/toeirei/chainmaster/internal/logging"
	"github.com/toeirei/chainmaster/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPath        = "/WeBASE-Front/"
	DefaultTimeout     = 3 * time.Second
	DefaultConcurrency = 8
)

// Checker checks whether fronts answer on their service port.
type Checker struct {
	client      *http.Client
	path        string
	concurrency int
}

// NewChecker returns a checker. Zero values pick the defaults.
func NewChecker(path string, timeout time.Duration, concurrency int) *Checker {
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Checker{
		client:      &http.Client{Timeout: timeout},
		path:        path,
		concurrency: concurrency,
	}
}

func (c *Checker) url(f model.Front) string {
	return fmt.Sprintf("http://%s%s", f.Addr(), c.path)
}

// Healthy reports whether the front answers with a non-error status.
func (c *Checker) Healthy(ctx context.Context, f model.Front) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(f), nil)
	if err != nil {
		logging.Debugf("health: bad request for front %d: %v", f.ID, err)
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		logging.Debugf("health: front %d at %s: %v", f.ID, f.Addr(), err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// CheckAll checks every front concurrently, bounded by the configured limit,
// and returns the result keyed by front id.
func (c *Checker) CheckAll(ctx context.Context, fronts []model.Front) map[int]bool {
	out := make(map[int]bool, len(fronts))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, f := range fronts {
		g.Go(func() error {
			ok := c.Healthy(gctx, f)
			mu.Lock()
			out[f.ID] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

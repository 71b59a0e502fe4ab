// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package reconcile runs the periodic pass that refreshes front status and
// the front-group cache of every chain that may be worked on.
package reconcile // import "github.com/toeirei/chainmaster/internal/reconcile"

import (
	"context"
	"sync"
	"time"

	"github.com/toeirei/chainmaster/internal/logging"
	"github.com/toeirei/chainmaster/internal/model"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 30 * time.Second

// Source is what a pass works on. Implemented by *chain.Service.
type Source interface {
	ListChains(ctx context.Context) ([]model.Chain, error)
	RunTask(c *model.Chain) bool
	SyncFronts(ctx context.Context, chainID int) (int, error)
}

// Result summarises one pass.
type Result struct {
	Chains  int
	Skipped int
	Changed int
	Errors  int
}

// Task runs passes on a ticker and on demand. Passes never overlap.
type Task struct {
	src      Source
	interval time.Duration

	trigger chan struct{}
	passMu  sync.Mutex

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// New returns a stopped task.
func New(src Source, interval time.Duration) *Task {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Task{
		src:      src,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Trigger requests a pass soon. It never blocks; requests made while one is
// already pending are merged.
func (t *Task) Trigger() {
	select {
	case t.trigger <- struct{}{}:
	default:
	}
}

// Start launches the loop. Calling it more than once has no effect.
func (t *Task) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		ctx, t.cancel = context.WithCancel(ctx)
		go t.loop(ctx)
	})
}

// Stop ends the loop and waits for a running pass to finish.
func (t *Task) Stop() {
	t.stopOnce.Do(func() {
		if t.cancel == nil {
			close(t.done)
			return
		}
		t.cancel()
		<-t.done
	})
}

func (t *Task) loop(ctx context.Context) {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	logging.Debugf("reconcile loop started, interval %s", t.interval)

	for {
		select {
		case <-ctx.Done():
			logging.Debugf("reconcile loop stopped")
			return
		case <-ticker.C:
		case <-t.trigger:
		}
		t.RunOnce(ctx)
	}
}

// RunOnce performs a single pass.
func (t *Task) RunOnce(ctx context.Context) Result {
	t.passMu.Lock()
	defer t.passMu.Unlock()

	var res Result
	chains, err := t.src.ListChains(ctx)
	if err != nil {
		logging.Errorf("reconcile: list chains: %v", err)
		res.Errors++
		return res
	}
	for i := range chains {
		if ctx.Err() != nil {
			break
		}
		c := &chains[i]
		res.Chains++
		if !t.src.RunTask(c) {
			res.Skipped++
			continue
		}
		n, err := t.src.SyncFronts(ctx, c.ID)
		res.Changed += n
		if err != nil {
			logging.Warnf("reconcile: chain %s: %v", c, err)
			res.Errors++
		}
	}
	logging.Debugf("reconcile pass: %d chains, %d skipped, %d fronts changed", res.Chains, res.Skipped, res.Changed)
	return res
}

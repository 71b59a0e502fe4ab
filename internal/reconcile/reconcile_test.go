// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/toeirei/chainmaster/internal/model"
)

type fakeSource struct {
	mu       sync.Mutex
	chains   []model.Chain
	listErr  error
	syncErr  map[int]error
	synced   []int
	passes   atomic.Int32
	inFlight atomic.Int32
	overlap  atomic.Bool
	delay    time.Duration
}

func (f *fakeSource) ListChains(context.Context) ([]model.Chain, error) {
	f.passes.Add(1)
	if f.inFlight.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.inFlight.Add(-1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.chains, f.listErr
}

func (f *fakeSource) RunTask(c *model.Chain) bool {
	return c.Status == model.ChainRunning
}

func (f *fakeSource) SyncFronts(_ context.Context, chainID int) (int, error) {
	f.mu.Lock()
	f.synced = append(f.synced, chainID)
	f.mu.Unlock()
	return 1, f.syncErr[chainID]
}

func TestRunOnce(t *testing.T) {
	src := &fakeSource{
		chains: []model.Chain{
			{ID: 1, Status: model.ChainRunning},
			{ID: 2, Status: model.ChainDeploying},
			{ID: 3, Status: model.ChainRunning},
		},
		syncErr: map[int]error{3: errors.New("db locked")},
	}
	res := New(src, time.Hour).RunOnce(context.Background())
	if res.Chains != 3 || res.Skipped != 1 || res.Changed != 2 || res.Errors != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(src.synced) != 2 || src.synced[0] != 1 || src.synced[1] != 3 {
		t.Fatalf("unexpected synced chains %v", src.synced)
	}
}

func TestRunOnce_ListError(t *testing.T) {
	src := &fakeSource{listErr: errors.New("down")}
	if res := New(src, time.Hour).RunOnce(context.Background()); res.Errors != 1 {
		t.Fatalf("expected error to be counted, got %+v", res)
	}
}

func TestTriggerRunsPass(t *testing.T) {
	src := &fakeSource{}
	task := New(src, time.Hour)
	task.Start(context.Background())
	defer task.Stop()

	task.Trigger()
	deadline := time.Now().Add(2 * time.Second)
	for src.passes.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("trigger did not run a pass")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTriggerCoalesces(t *testing.T) {
	src := &fakeSource{delay: 50 * time.Millisecond}
	task := New(src, time.Hour)
	task.Start(context.Background())

	for i := 0; i < 20; i++ {
		task.Trigger()
	}
	time.Sleep(300 * time.Millisecond)
	task.Stop()

	// one pass for the first trigger, at most one more for the merged rest
	if n := src.passes.Load(); n < 1 || n > 2 {
		t.Fatalf("expected 1 or 2 passes, got %d", n)
	}
	if src.overlap.Load() {
		t.Fatalf("passes overlapped")
	}
}

func TestTickerAndStop(t *testing.T) {
	src := &fakeSource{}
	task := New(src, 10*time.Millisecond)
	task.Start(context.Background())
	time.Sleep(80 * time.Millisecond)
	task.Stop()
	n := src.passes.Load()
	if n == 0 {
		t.Fatalf("ticker did not run")
	}
	time.Sleep(30 * time.Millisecond)
	if src.passes.Load() != n {
		t.Fatalf("passes continued after Stop")
	}
	task.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	task := New(&fakeSource{}, 0)
	task.Stop()
	task.Trigger()
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package chain orchestrates the chain lifecycle: generating a chain across
// its hosts, registering its records, reporting progress and tearing it
// down again.
package chain // import "github.com/toeirei/chainmaster/internal/chain"

import (
	"context"
	"sync"

	"github.com/toeirei/chainmaster/internal/db"
	"github.com/toeirei/chainmaster/internal/model"
	"github.com/toeirei/chainmaster/internal/state"
)

// DefaultFrontPort is the front port of the node with host index 0.
const DefaultFrontPort = 5002

// Deps are the collaborators of a Service.
type Deps struct {
	Hosts   Hosts
	Builder Builder
	Files   ChainFiles
	Nodes   NodeFiles
	Checker FrontChecker
}

// Options tune a Service.
type Options struct {
	DefaultFrontPort int
	// ArchiveRemote moves a removed chain's directories on its hosts into
	// the deleted directory.
	ArchiveRemote bool
}

// Service is the chain lifecycle orchestrator.
type Service struct {
	store *db.Store
	deps  Deps
	opts  Options
	cache *state.FrontGroupCache

	mu       sync.RWMutex
	notifier Notifier
}

// NewService wires a Service over store.
func NewService(store *db.Store, deps Deps, opts Options) *Service {
	if opts.DefaultFrontPort <= 0 {
		opts.DefaultFrontPort = DefaultFrontPort
	}
	s := &Service{store: store, deps: deps, opts: opts}
	s.cache = state.NewFrontGroupCache(func(ctx context.Context, chainID int) ([]model.FrontGroup, error) {
		return db.ListFrontGroups(ctx, store.Bun(), chainID)
	})
	return s
}

// SetNotifier registers the task signalled after a chain removal.
func (s *Service) SetNotifier(n Notifier) {
	s.mu.Lock()
	s.notifier = n
	s.mu.Unlock()
}

func (s *Service) notify() {
	s.mu.RLock()
	n := s.notifier
	s.mu.RUnlock()
	if n != nil {
		n.Trigger()
	}
}

// Cache exposes the front-group cache.
func (s *Service) Cache() *state.FrontGroupCache { return s.cache }

// Store returns the backing store.
func (s *Service) Store() *db.Store { return s.store }

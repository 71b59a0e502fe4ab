// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package state

import (
	"context"
	"strconv"
	"sync"

	"github.com/toeirei/chainmaster/internal/model"
	"golang.org/x/sync/singleflight"
)

// FrontGroupLoader reads the current front-group rows of a chain.
type FrontGroupLoader func(ctx context.Context, chainID int) ([]model.FrontGroup, error)

// FrontGroupCache mirrors front -> group associations per chain. Entries are
// loaded lazily and invalidated per chain after the rows change.
type FrontGroupCache struct {
	load FrontGroupLoader

	mu      sync.RWMutex
	entries map[int][]model.FrontGroup
	// gen is bumped on every Clear so an in-flight load cannot store
	// rows read before the invalidation.
	gen map[int]uint64

	sf singleflight.Group
}

// NewFrontGroupCache returns an empty cache backed by load.
func NewFrontGroupCache(load FrontGroupLoader) *FrontGroupCache {
	return &FrontGroupCache{
		load:    load,
		entries: map[int][]model.FrontGroup{},
		gen:     map[int]uint64{},
	}
}

// Get returns the associations of a chain, loading them on a miss.
func (c *FrontGroupCache) Get(ctx context.Context, chainID int) ([]model.FrontGroup, error) {
	c.mu.RLock()
	rows, ok := c.entries[chainID]
	gen := c.gen[chainID]
	c.mu.RUnlock()
	if ok {
		return clone(rows), nil
	}

	v, err, _ := c.sf.Do(strconv.Itoa(chainID), func() (any, error) {
		rows, err := c.load(ctx, chainID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen[chainID] == gen {
			c.entries[chainID] = rows
		}
		c.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]model.FrontGroup)), nil
}

// GroupsOfFront returns the group ids a front serves.
func (c *FrontGroupCache) GroupsOfFront(ctx context.Context, chainID, frontID int) ([]int, error) {
	rows, err := c.Get(ctx, chainID)
	if err != nil {
		return nil, err
	}
	var out []int
	for _, r := range rows {
		if r.FrontID == frontID {
			out = append(out, r.GroupID)
		}
	}
	return out, nil
}

// Clear drops the entry of one chain.
func (c *FrontGroupCache) Clear(chainID int) {
	c.mu.Lock()
	delete(c.entries, chainID)
	c.gen[chainID]++
	c.mu.Unlock()
}

// ClearAll drops every entry.
func (c *FrontGroupCache) ClearAll() {
	c.mu.Lock()
	for id := range c.entries {
		c.gen[id]++
	}
	c.entries = map[int][]model.FrontGroup{}
	c.mu.Unlock()
}

// Reload replaces the entry of a chain with freshly loaded rows.
func (c *FrontGroupCache) Reload(ctx context.Context, chainID int) error {
	c.Clear(chainID)
	_, err := c.Get(ctx, chainID)
	return err
}

// Cached reports whether a chain currently has an entry.
func (c *FrontGroupCache) Cached(chainID int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[chainID]
	return ok
}

func clone(rows []model.FrontGroup) []model.FrontGroup {
	if rows == nil {
		return nil
	}
	return append([]model.FrontGroup(nil), rows...)
}

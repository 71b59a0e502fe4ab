// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package chain

import (
	"context"
	"fmt"

	"github.com/toeirei/chainmaster/internal/db"
	"github.com/toeirei/chainmaster/internal/logging"
	"github.com/toeirei/chainmaster/internal/model"
)

// SyncFronts checks every front of a chain, stores status changes and
// reloads the chain's front-group cache entry. It returns the number of
// fronts whose status changed.
func (s *Service) SyncFronts(ctx context.Context, chainID int) (int, error) {
	fronts, err := db.ListFronts(ctx, s.store.Bun(), chainID)
	if err != nil {
		return 0, fmt.Errorf("list fronts of chain %d: %w", chainID, err)
	}

	changed := 0
	if len(fronts) > 0 && s.deps.Checker != nil {
		healthy := s.deps.Checker.CheckAll(ctx, fronts)
		for _, f := range fronts {
			next := nextFrontStatus(f.Status, healthy[f.ID])
			if next == f.Status {
				continue
			}
			if err := db.UpdateFrontStatus(ctx, s.store.Bun(), f.ID, next); err != nil {
				return changed, fmt.Errorf("update front %d: %w", f.ID, err)
			}
			logging.Infof("front %d of chain %d: %s -> %s", f.ID, chainID, f.Status, next)
			changed++
		}
	}

	if err := s.cache.Reload(ctx, chainID); err != nil {
		return changed, fmt.Errorf("reload front groups of chain %d: %w", chainID, err)
	}
	return changed, nil
}

func nextFrontStatus(cur model.FrontStatus, healthy bool) model.FrontStatus {
	switch {
	case healthy:
		return model.FrontRunning
	case cur == model.FrontRunning:
		return model.FrontStopped
	default:
		return cur
	}
}

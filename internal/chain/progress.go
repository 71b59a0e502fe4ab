// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package chain

import (
	"context"

	"github.com/toeirei/chainmaster/internal/db"
	"github.com/toeirei/chainmaster/internal/logging"
	"github.com/toeirei/chainmaster/internal/model"
)

const (
	ProgressFailed   = 0
	ProgressFinished = 100
)

// Progress returns the deployment progress of a chain in percent. Failed
// and running chains are answered from their status alone.
func (s *Service) Progress(ctx context.Context, c *model.Chain) int {
	switch c.Status {
	case model.ChainDeployFailed, model.ChainUpgradeFailed:
		return ProgressFailed
	case model.ChainRunning:
		return ProgressFinished
	}
	return s.FrontProgress(ctx, c.ID)
}

// FrontProgress averages the per-front scores of a chain. Running and
// starting fronts are checked; a healthy front scores 100, an unhealthy
// running one 75 and an unhealthy starting one 50. Other fronts score 0.
func (s *Service) FrontProgress(ctx context.Context, chainID int) int {
	fronts, err := db.ListFronts(ctx, s.store.Bun(), chainID)
	if err != nil {
		logging.Errorf("list fronts of chain %d: %v", chainID, err)
		return ProgressFailed
	}
	if len(fronts) == 0 {
		return 0
	}

	var pending []model.Front
	for _, f := range fronts {
		if f.Status == model.FrontRunning || f.Status == model.FrontStarting {
			pending = append(pending, f)
		}
	}
	healthy := map[int]bool{}
	if len(pending) > 0 && s.deps.Checker != nil {
		healthy = s.deps.Checker.CheckAll(ctx, pending)
	}

	total := 0
	for _, f := range fronts {
		switch f.Status {
		case model.FrontRunning:
			if healthy[f.ID] {
				total += 100
			} else {
				total += 75
			}
		case model.FrontStarting:
			if healthy[f.ID] {
				total += 100
			} else {
				total += 50
			}
		}
	}
	return clamp(total/len(fronts), 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunTask reports whether background work may run for the chain now.
func (s *Service) RunTask(c *model.Chain) bool {
	if DeletionInProgress() {
		return false
	}
	if c == nil {
		logging.Errorf("run task: chain does not exist")
		return false
	}
	if c.DeployType == model.DeployManual {
		logging.Debugf("chain %s is managed manually, running task", c)
		return true
	}
	if c.Status == model.ChainRunning {
		return true
	}
	logging.Warnf("chain %s is %s, skipping task", c, c.Status)
	return false
}

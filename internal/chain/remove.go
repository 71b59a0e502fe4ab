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
	"github.com/uptrace/bun"
)

// RemoveChain deletes a chain with all its groups, fronts, mappings, nodes
// and contracts, then its generated files. An unknown id is a no-op.
func (s *Service) RemoveChain(ctx context.Context, chainID int) error {
	c, err := db.GetChainByID(ctx, s.store.Bun(), chainID)
	if err != nil {
		return fmt.Errorf("look up chain %d: %w", chainID, err)
	}
	if c == nil {
		logging.Warnf("chain %d does not exist, nothing to remove", chainID)
		return nil
	}

	release := acquireDeletion()
	defer release()

	var fronts []model.Front
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if fronts, err = db.ListFronts(ctx, tx, chainID); err != nil {
			return err
		}
		if _, err := db.DeleteChain(ctx, tx, chainID); err != nil {
			return fmt.Errorf("delete chain row: %w", err)
		}
		if _, err := db.DeleteGroupsByChain(ctx, tx, chainID); err != nil {
			return fmt.Errorf("delete groups: %w", err)
		}
		if _, err := db.DeleteFrontsByChain(ctx, tx, chainID); err != nil {
			return fmt.Errorf("delete fronts: %w", err)
		}
		if _, err := db.DeleteFrontGroupsByChain(ctx, tx, chainID); err != nil {
			return fmt.Errorf("delete front groups: %w", err)
		}
		if _, err := db.DeleteNodesByChain(ctx, tx, chainID); err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}
		if _, err := db.DeleteContractsByChain(ctx, tx, chainID); err != nil {
			return fmt.Errorf("delete contracts: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove chain %s: %w", c, err)
	}

	s.cache.Clear(chainID)

	logging.Infof("deleting config files of chain %s", c)
	if err := s.deps.Files.DeleteChain(c.Name); err != nil {
		logging.Errorf("delete files of chain %s: %v", c, err)
	}

	// The guard covers the rows and the local tree only.
	release()
	s.notify()

	if s.opts.ArchiveRemote {
		for _, h := range hostsOf(fronts) {
			dst, err := s.MoveChainOnRemote(ctx, h, c.Name)
			if err != nil {
				logging.Errorf("archive chain %s on %s: %v", c, h.IP, err)
				continue
			}
			if dst != "" {
				logging.Infof("archived chain %s on %s to %s", c, h.IP, dst)
			}
		}
	}
	return nil
}

// MoveChainOnRemote moves the chain directory on a host into
// <root>/deleted-tmp/<chain>-<yyyyMMdd_HHmmss>. It returns the destination,
// or "" when the host had no such directory.
func (s *Service) MoveChainOnRemote(ctx context.Context, h model.DeployHost, chainName string) (string, error) {
	return s.deps.Hosts.MoveChainDir(ctx, h.IP, h.SSHUser, h.SSHPort, h.RootDir, chainName, defaultClock.Now())
}

// hostsOf returns one host per distinct (ip, root dir) of fronts.
func hostsOf(fronts []model.Front) []model.DeployHost {
	type key struct{ ip, root string }
	seen := map[key]bool{}
	var out []model.DeployHost
	for _, f := range fronts {
		k := key{f.IP, f.RootOnHost}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, model.DeployHost{
			IP:         f.IP,
			SSHUser:    f.SSHUser,
			SSHPort:    f.SSHPort,
			DockerPort: f.DockerPort,
			RootDir:    f.RootOnHost,
		})
	}
	return out
}

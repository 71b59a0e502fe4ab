// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package chain

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/toeirei/chainmaster/internal/buildchain"
	"github.com/toeirei/chainmaster/internal/db"
	"github.com/toeirei/chainmaster/internal/layout"
	"github.com/toeirei/chainmaster/internal/logging"
	"github.com/toeirei/chainmaster/internal/model"
	"github.com/uptrace/bun"
)

// GenerateChainConfig checks every host, builds the chain tree once and
// registers all records of the new chain in a single transaction. When the
// build or the registration fails the generated tree is deleted again.
func (s *Service) GenerateChainConfig(ctx context.Context, req model.DeployRequest, policy model.ImageCheckPolicy) error {
	if req.TotalNodes() < 2 {
		return ErrTwoNodesAtLeast
	}
	if layout.ValidateChainName(req.ChainName) != nil {
		return newError(CodeInvalidChainName, req.ChainName, nil)
	}
	if err := s.checkUnique(ctx, s.store.Bun(), req.ChainID, req.ChainName); err != nil {
		return err
	}

	for _, h := range req.Hosts {
		logging.Infof("checking host %s of chain %s", h.IP, req.ChainName)
		if !s.deps.Hosts.CheckConnect(ctx, h.IP, h.SSHUser, h.SSHPort) {
			return newError(CodeHostConnect, h.IP, nil)
		}
		if policy == model.ImageManual {
			ok, err := s.deps.Hosts.ImageExists(ctx, h.IP, h.DockerPort, h.SSHUser, h.SSHPort, req.Version)
			if err != nil {
				return newError(CodeHostConnect, h.IP, err)
			}
			if !ok {
				return newError(CodeImageNotExists, h.IP, nil)
			}
		}
	}

	if err := s.deps.Builder.Build(ctx, req.EncryptType, req.IPConf(), req.ChainName); err != nil {
		if errors.Is(err, buildchain.ErrChainRootExists) {
			return newError(CodeChainRootExists, req.ChainName, err)
		}
		logging.Errorf("build of chain %s failed: %v", req.ChainName, err)
		return s.discardGenerated(req.ChainName, newError(CodeBuildChain, req.ChainName, err))
	}

	if err := s.InitChainRecords(ctx, req.EncryptType, req.Version, req); err != nil {
		logging.Errorf("registering chain %s failed: %v", req.ChainName, err)
		return s.discardGenerated(req.ChainName, err)
	}

	s.cache.Clear(req.ChainID)
	logging.Infof("chain %s (#%d) generated with %d nodes", req.ChainName, req.ChainID, req.TotalNodes())
	return nil
}

// discardGenerated deletes the generated tree and returns cause, or an
// escalated delete error when the tree could not be removed.
func (s *Service) discardGenerated(chainName string, cause error) error {
	if err := s.deps.Files.DeleteChain(chainName); err != nil {
		logging.Errorf("delete generated files of chain %s: %v (after: %v)", chainName, err, cause)
		return newError(CodeDeleteChain, chainName, err)
	}
	return cause
}

func (s *Service) checkUnique(ctx context.Context, idb bun.IDB, id int, name string) error {
	byID, err := db.GetChainByID(ctx, idb, id)
	if err != nil {
		return fmt.Errorf("look up chain %d: %w", id, err)
	}
	if byID != nil {
		return newError(CodeChainIDExists, strconv.Itoa(id), nil)
	}
	byName, err := db.GetChainByName(ctx, idb, name)
	if err != nil {
		return fmt.Errorf("look up chain %s: %w", name, err)
	}
	if byName != nil {
		return newError(CodeChainNameExists, name, nil)
	}
	return nil
}

// InitChainRecords inserts the chain, its default group and one front, node
// and front-group mapping per generated node, and renders every node's
// front config. All rows are written in one transaction.
func (s *Service) InitChainRecords(ctx context.Context, encrypt model.EncryptType, version string, req model.DeployRequest) error {
	return s.store.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		c, err := s.insert(ctx, tx, model.Chain{
			ID:            req.ChainID,
			Name:          req.ChainName,
			Description:   req.Description,
			Version:       version,
			EncryptType:   encrypt,
			ConsensusType: req.ConsensusType,
			StorageType:   req.StorageType,
			DeployType:    model.DeployAPI,
			Status:        model.ChainInitialized,
		})
		if err != nil {
			return err
		}

		for _, h := range req.Hosts {
			if _, err := db.InsertGroupIfAbsent(ctx, tx, model.Group{
				ID:          model.DefaultGroupID,
				ChainID:     c.ID,
				Name:        fmt.Sprintf("group%d", model.DefaultGroupID),
				Description: "deploy",
				Type:        model.GroupDeploy,
			}); err != nil {
				return newError(CodeSaveChain, c.Name, err)
			}

			dirs, err := s.deps.Files.ListHostNodes(c.Name, h.IP)
			if err != nil {
				return newError(CodeListHostNodeDir, h.IP, err)
			}
			for _, dir := range dirs {
				if err := s.registerNode(ctx, tx, c, h, dir); err != nil {
					return err
				}
			}

			if err := db.AddGroupNodeCount(ctx, tx, c.ID, model.DefaultGroupID, h.Num); err != nil {
				return newError(CodeSaveChain, c.Name, err)
			}
		}
		return nil
	})
}

func (s *Service) registerNode(ctx context.Context, tx bun.Tx, c *model.Chain, h model.DeployHost, dir string) error {
	nc, err := s.deps.Nodes.Read(dir, c.EncryptType)
	if err != nil {
		return newError(CodeReadNodeConfig, dir, err)
	}
	frontPort := s.opts.DefaultFrontPort + nc.HostIndex
	chainRootOnHost := layout.ChainRootOnHost(h.RootDir, c.Name)

	front := model.Front{
		ChainID:        c.ID,
		ChainName:      c.Name,
		NodeID:         nc.NodeID,
		IP:             h.IP,
		FrontPort:      frontPort,
		JsonrpcPort:    nc.JsonrpcPort,
		P2PPort:        nc.P2PPort,
		ChannelPort:    nc.ChannelPort,
		ExtCompanyID:   h.ExtCompanyID,
		ExtOrgID:       h.ExtOrgID,
		ExtHostID:      h.ExtHostID,
		HostIndex:      nc.HostIndex,
		Version:        c.Version,
		ContainerName:  h.ContainerName(c.Name, nc.HostIndex),
		SSHUser:        h.SSHUser,
		SSHPort:        h.SSHPort,
		DockerPort:     h.DockerPort,
		RootOnHost:     h.RootDir,
		NodeRootOnHost: layout.NodeRootOnHost(chainRootOnHost, nc.HostIndex),
		Status:         model.FrontInitialized,
		Description:    fmt.Sprintf("front of chain:[%d] on host:[%s:%d]", c.ID, h.IP, nc.HostIndex),
	}
	if err := db.InsertFront(ctx, tx, &front); err != nil {
		return newError(CodeSaveChain, c.Name, fmt.Errorf("insert front for node %s: %w", nc.NodeID, err))
	}

	name := model.NodeName(c.ID, model.DefaultGroupID, nc.NodeID)
	if err := db.InsertNode(ctx, tx, model.Node{
		NodeID:      nc.NodeID,
		ChainID:     c.ID,
		GroupID:     model.DefaultGroupID,
		Name:        name,
		IP:          h.IP,
		P2PPort:     nc.P2PPort,
		Description: name,
		Status:      model.DataInvalid,
	}); err != nil {
		return newError(CodeSaveChain, c.Name, fmt.Errorf("insert node %s: %w", nc.NodeID, err))
	}

	if err := db.InsertFrontGroup(ctx, tx, c.ID, front.ID, model.DefaultGroupID); err != nil {
		return newError(CodeSaveChain, c.Name, fmt.Errorf("map front %d: %w", front.ID, err))
	}

	if err := s.deps.Nodes.RenderFrontConfig(dir, c.EncryptType, nc.ChannelPort, frontPort); err != nil {
		return newError(CodeGenerateFrontYml, dir, err)
	}
	return nil
}

// Insert writes a chain row and returns it as stored.
func (s *Service) Insert(ctx context.Context, c model.Chain) (*model.Chain, error) {
	return s.insert(ctx, s.store.Bun(), c)
}

func (s *Service) insert(ctx context.Context, idb bun.IDB, c model.Chain) (*model.Chain, error) {
	n, err := db.InsertChain(ctx, idb, c)
	if err != nil {
		return nil, newError(CodeInsertChain, c.Name, err)
	}
	if n != 1 {
		return nil, newError(CodeInsertChain, c.Name, nil)
	}
	return &c, nil
}

// NewChain registers an existing chain that is managed outside this
// process. The id and name must both be unused.
func (s *Service) NewChain(ctx context.Context, info model.Chain) (*model.Chain, error) {
	logging.Debugf("registering chain %s", info)
	var out *model.Chain
	if layout.ValidateChainName(info.Name) != nil {
		return nil, newError(CodeInvalidChainName, info.Name, nil)
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := s.checkUnique(ctx, tx, info.ID, info.Name); err != nil {
			return err
		}
		info.Remark = ""
		n, err := db.InsertChain(ctx, tx, info)
		if err != nil || n == 0 {
			logging.Warnf("registering chain %s failed: %v", info, err)
			return newError(CodeSaveChain, info.Name, err)
		}
		out, err = db.GetChainByName(ctx, tx, info.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus sets the status and remark of a chain. It reports whether a
// row was changed.
func (s *Service) UpdateStatus(ctx context.Context, chainID int, status model.ChainStatus, remark string) (bool, error) {
	logging.Infof("update chain %d status to %s", chainID, status)
	n, err := db.UpdateChainStatus(ctx, s.store.Bun(), chainID, status, remark)
	if err != nil {
		return false, fmt.Errorf("update status of chain %d: %w", chainID, err)
	}
	return n == 1, nil
}

// ListChains returns every registered chain ordered by id.
func (s *Service) ListChains(ctx context.Context) ([]model.Chain, error) {
	return db.ListChains(ctx, s.store.Bun())
}

// GetChain returns a chain or ErrChainNotFound.
func (s *Service) GetChain(ctx context.Context, chainID int) (*model.Chain, error) {
	c, err := db.GetChainByID(ctx, s.store.Bun(), chainID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, newError(CodeChainNotFound, strconv.Itoa(chainID), nil)
	}
	return c, nil
}

// Fronts returns the fronts of a chain.
func (s *Service) Fronts(ctx context.Context, chainID int) ([]model.Front, error) {
	return db.ListFronts(ctx, s.store.Bun(), chainID)
}

// FrontGroups returns the cached front-group associations of a chain.
func (s *Service) FrontGroups(ctx context.Context, chainID int) ([]model.FrontGroup, error) {
	return s.cache.Get(ctx, chainID)
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package chain

import (
	"context"
	"time"

	"github.com/toeirei/chainmaster/internal/model"
)

// Hosts reaches chain hosts. Implemented by *deploy.Connector.
type Hosts interface {
	CheckConnect(ctx context.Context, ip, user string, port int) bool
	ImageExists(ctx context.Context, ip string, dockerPort int, user string, sshPort int, version string) (bool, error)
	MoveChainDir(ctx context.Context, ip, user string, port int, rootDir, chainName string, at time.Time) (string, error)
}

// Builder generates the node directories of a chain. Implemented by
// *buildchain.Runner.
type Builder interface {
	Build(ctx context.Context, encrypt model.EncryptType, ipConf []string, chainName string) error
}

// ChainFiles manages the local generated tree. Implemented by *layout.Layout.
type ChainFiles interface {
	ListHostNodes(chainName, ip string) ([]string, error)
	DeleteChain(chainName string) error
}

// NodeFiles reads node config and renders front config. Implemented by
// nodeconf.Files.
type NodeFiles interface {
	Read(dir string, encrypt model.EncryptType) (model.NodeConfig, error)
	RenderFrontConfig(dir string, encrypt model.EncryptType, channelPort, frontPort int) error
}

// FrontChecker reports front health. Implemented by *health.Checker.
type FrontChecker interface {
	CheckAll(ctx context.Context, fronts []model.Front) map[int]bool
}

// Notifier is signalled after a chain was removed.
type Notifier interface {
	Trigger()
}

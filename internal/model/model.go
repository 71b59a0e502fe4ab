// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures shared by the registries,
// the chain service and the command line.
package model // import "github.com/toeirei/chainmaster/internal/model"

import (
	"fmt"
	"time"
)

// DefaultGroupID is the well-known id of the group every deployed chain starts with.
const DefaultGroupID = 1

// ChainStatus is the lifecycle state of a chain.
type ChainStatus int

const (
	ChainInitialized ChainStatus = iota
	ChainDeploying
	ChainDeployFailed
	ChainRunning
	ChainUpgrading
	ChainUpgradeFailed
	ChainRestarting
)

var chainStatusNames = map[ChainStatus]string{
	ChainInitialized:   "initialized",
	ChainDeploying:     "deploying",
	ChainDeployFailed:  "deploy_failed",
	ChainRunning:       "running",
	ChainUpgrading:     "upgrading",
	ChainUpgradeFailed: "upgrade_failed",
	ChainRestarting:    "restarting",
}

func (s ChainStatus) String() string {
	if n, ok := chainStatusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseChainStatus accepts either the symbolic name or the numeric code.
func ParseChainStatus(v string) (ChainStatus, error) {
	for s, n := range chainStatusNames {
		if n == v {
			return s, nil
		}
	}
	var code int
	if _, err := fmt.Sscanf(v, "%d", &code); err == nil {
		if _, ok := chainStatusNames[ChainStatus(code)]; ok {
			return ChainStatus(code), nil
		}
	}
	return 0, fmt.Errorf("unknown chain status %q", v)
}

// Failed reports whether the status is a terminal failure.
func (s ChainStatus) Failed() bool {
	return s == ChainDeployFailed || s == ChainUpgradeFailed
}

// DeployType tells whether the chain lifecycle is automated by this process.
type DeployType int

const (
	DeployManual DeployType = 0
	DeployAPI    DeployType = 1
)

func (d DeployType) String() string {
	if d == DeployManual {
		return "manual"
	}
	return "api"
}

// EncryptType selects the cryptographic suite of a chain.
type EncryptType int

const (
	EncryptECDSA EncryptType = 0
	EncryptSM    EncryptType = 1
)

func (e EncryptType) String() string {
	if e == EncryptSM {
		return "sm"
	}
	return "ecdsa"
}

// IsSM reports whether the chain uses the national (guomi) suite.
func (e EncryptType) IsSM() bool { return e == EncryptSM }

// Chain is one managed ledger deployment.
type Chain struct {
	ID            int
	Name          string
	Description   string
	Version       string
	EncryptType   EncryptType
	ConsensusType string
	StorageType   string
	DeployType    DeployType
	Status        ChainStatus
	Remark        string
	CreateTime    time.Time
	ModifyTime    time.Time
}

// String returns the "name (#id)" representation.
func (c Chain) String() string {
	return fmt.Sprintf("%s (#%d)", c.Name, c.ID)
}

// GroupType distinguishes groups created by a deployment from synced ones.
type GroupType int

const (
	GroupDeploy GroupType = 1
	GroupSynced GroupType = 2
)

// Group is a logical subset of a chain's nodes.
type Group struct {
	ID          int
	ChainID     int
	Name        string
	NodeCount   int
	Description string
	Type        GroupType
	Status      int
	CreateTime  time.Time
	ModifyTime  time.Time
}

// DataStatus is the validity flag of a node row.
type DataStatus int

const (
	DataValid   DataStatus = 1
	DataInvalid DataStatus = 2
)

// Node is a network identity participating in a group.
type Node struct {
	NodeID      string
	ChainID     int
	GroupID     int
	Name        string
	IP          string
	P2PPort     int
	Description string
	Status      DataStatus
	CreateTime  time.Time
	ModifyTime  time.Time
}

// NodeName derives the display name of a node.
func NodeName(chainID, groupID int, nodeID string) string {
	return fmt.Sprintf("%d_%d_%s", chainID, groupID, nodeID)
}

// FrontStatus is the lifecycle state of a node front.
type FrontStatus int

const (
	FrontInitialized FrontStatus = iota
	FrontRunning
	FrontStopped
	FrontStarting
	FrontFailed
)

var frontStatusNames = map[FrontStatus]string{
	FrontInitialized: "initialized",
	FrontRunning:     "running",
	FrontStopped:     "stopped",
	FrontStarting:    "starting",
	FrontFailed:      "failed",
}

func (s FrontStatus) String() string {
	if n, ok := frontStatusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Front is the per-node management endpoint provisioned alongside a node.
type Front struct {
	ID             int
	ChainID        int
	ChainName      string
	NodeID         string
	IP             string
	FrontPort      int
	JsonrpcPort    int
	P2PPort        int
	ChannelPort    int
	ExtCompanyID   int
	ExtOrgID       int
	ExtHostID      int
	HostIndex      int
	Version        string
	ContainerName  string
	SSHUser        string
	SSHPort        int
	DockerPort     int
	RootOnHost     string
	NodeRootOnHost string
	Status         FrontStatus
	Description    string
	CreateTime     time.Time
	ModifyTime     time.Time
}

// Addr returns host:port of the front's service endpoint.
func (f Front) Addr() string {
	return fmt.Sprintf("%s:%d", f.IP, f.FrontPort)
}

// FrontGroup associates a front with a group it serves.
type FrontGroup struct {
	ID      int
	ChainID int
	FrontID int
	GroupID int
}

// Contract is a contract artifact registered against a chain group.
type Contract struct {
	ID         int
	ChainID    int
	GroupID    int
	Name       string
	Address    string
	ABI        string
	Bytecode   string
	CreateTime time.Time
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"fmt"
	"strings"
)

// ImageCheckPolicy decides whether the node image must already exist on hosts.
type ImageCheckPolicy string

const (
	// ImagePull lets the container runtime fetch the image on demand.
	ImagePull ImageCheckPolicy = "pull"
	// ImageManual requires the image to be present on every host before deploying.
	ImageManual ImageCheckPolicy = "manual"
)

// ParseImageCheckPolicy validates a policy name. Empty means pull.
func ParseImageCheckPolicy(v string) (ImageCheckPolicy, error) {
	switch ImageCheckPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case "", ImagePull:
		return ImagePull, nil
	case ImageManual:
		return ImageManual, nil
	}
	return "", fmt.Errorf("unknown image check policy %q", v)
}

// DeployHost is one target host of a deployment request.
type DeployHost struct {
	IP           string `yaml:"ip" json:"ip"`
	Num          int    `yaml:"num" json:"num"`
	ExtOrgID     int    `yaml:"ext_org_id" json:"ext_org_id"`
	ExtCompanyID int    `yaml:"ext_company_id" json:"ext_company_id"`
	ExtHostID    int    `yaml:"ext_host_id" json:"ext_host_id"`
	SSHUser      string `yaml:"ssh_user" json:"ssh_user"`
	SSHPort      int    `yaml:"ssh_port" json:"ssh_port"`
	DockerPort   int    `yaml:"docker_port" json:"docker_port"`
	RootDir      string `yaml:"root_dir" json:"root_dir"`
}

// IPConfLine renders the host as one line of the chain build input.
func (h DeployHost) IPConfLine() string {
	return fmt.Sprintf("%s:%d %d %d", h.IP, h.Num, h.ExtOrgID, DefaultGroupID)
}

// ContainerName derives the node container name on this host.
func (h DeployHost) ContainerName(chainName string, hostIndex int) string {
	return ContainerName(h.RootDir, chainName, hostIndex)
}

// ContainerName derives a node container name from the host root, chain name and host index.
func ContainerName(rootDir, chainName string, hostIndex int) string {
	return fmt.Sprintf("%s-%s-node%d", strings.ReplaceAll(rootDir, "/", ""), chainName, hostIndex)
}

// DeployRequest describes a chain to create across several hosts.
type DeployRequest struct {
	ChainID       int          `yaml:"chain_id" json:"chain_id"`
	ChainName     string       `yaml:"chain_name" json:"chain_name"`
	Version       string       `yaml:"version" json:"version"`
	EncryptType   EncryptType  `yaml:"encrypt_type" json:"encrypt_type"`
	ConsensusType string       `yaml:"consensus_type" json:"consensus_type"`
	StorageType   string       `yaml:"storage_type" json:"storage_type"`
	Description   string       `yaml:"description" json:"description"`
	Hosts         []DeployHost `yaml:"hosts" json:"hosts"`
}

// TotalNodes sums the node count requested across all hosts.
func (r DeployRequest) TotalNodes() int {
	n := 0
	for _, h := range r.Hosts {
		n += h.Num
	}
	return n
}

// IPConf returns the build input lines, one per host.
func (r DeployRequest) IPConf() []string {
	lines := make([]string, 0, len(r.Hosts))
	for _, h := range r.Hosts {
		lines = append(lines, h.IPConfLine())
	}
	return lines
}

// NodeConfig is what the generated files of a single node say about it.
type NodeConfig struct {
	NodeID      string
	HostIndex   int
	JsonrpcPort int
	P2PPort     int
	ChannelPort int
}

// BackupData holds every registry row for backup and restore.
type BackupData struct {
	SchemaVersion int          `json:"schema_version"`
	Chains        []Chain      `json:"chains"`
	Groups        []Group      `json:"groups"`
	Fronts        []Front      `json:"fronts"`
	Nodes         []Node       `json:"nodes"`
	FrontGroups   []FrontGroup `json:"front_groups"`
	Contracts     []Contract   `json:"contracts"`
}

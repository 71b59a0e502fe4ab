// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/toeirei/chainmaster/internal/model"
	"github.com/uptrace/bun"
)

// ChainModel maps the tb_chain table for Bun queries.
type ChainModel struct {
	bun.BaseModel `bun:"table:tb_chain"`
	ChainID       int       `bun:"chain_id,pk"`
	ChainName     string    `bun:"chain_name"`
	ChainDesc     string    `bun:"chain_desc"`
	Version       string    `bun:"version"`
	EncryptType   int       `bun:"encrypt_type"`
	ConsensusType string    `bun:"consensus_type"`
	StorageType   string    `bun:"storage_type"`
	DeployType    int       `bun:"deploy_type"`
	ChainStatus   int       `bun:"chain_status"`
	Remark        string    `bun:"remark"`
	CreateTime    time.Time `bun:"create_time"`
	ModifyTime    time.Time `bun:"modify_time"`
}

// GroupModel maps tb_group.
type GroupModel struct {
	bun.BaseModel `bun:"table:tb_group"`
	GroupID       int       `bun:"group_id,pk"`
	ChainID       int       `bun:"chain_id,pk"`
	GroupName     string    `bun:"group_name"`
	NodeCount     int       `bun:"node_count"`
	GroupDesc     string    `bun:"group_desc"`
	GroupType     int       `bun:"group_type"`
	GroupStatus   int       `bun:"group_status"`
	CreateTime    time.Time `bun:"create_time"`
	ModifyTime    time.Time `bun:"modify_time"`
}

// FrontModel maps tb_front.
type FrontModel struct {
	bun.BaseModel  `bun:"table:tb_front"`
	FrontID        int       `bun:"front_id,pk,autoincrement"`
	ChainID        int       `bun:"chain_id"`
	ChainName      string    `bun:"chain_name"`
	NodeID         string    `bun:"node_id"`
	FrontIP        string    `bun:"front_ip"`
	FrontPort      int       `bun:"front_port"`
	JsonrpcPort    int       `bun:"jsonrpc_port"`
	P2PPort        int       `bun:"p2p_port"`
	ChannelPort    int       `bun:"channel_port"`
	ExtCompanyID   int       `bun:"ext_company_id"`
	ExtOrgID       int       `bun:"ext_org_id"`
	ExtHostID      int       `bun:"ext_host_id"`
	HostIndex      int       `bun:"host_index"`
	Version        string    `bun:"version"`
	ContainerName  string    `bun:"container_name"`
	SSHUser        string    `bun:"ssh_user"`
	SSHPort        int       `bun:"ssh_port"`
	DockerPort     int       `bun:"docker_port"`
	RootOnHost     string    `bun:"root_on_host"`
	NodeRootOnHost string    `bun:"node_root_on_host"`
	FrontStatus    int       `bun:"front_status"`
	Description    string    `bun:"description"`
	CreateTime     time.Time `bun:"create_time"`
	ModifyTime     time.Time `bun:"modify_time"`
}

// NodeModel maps tb_node.
type NodeModel struct {
	bun.BaseModel `bun:"table:tb_node"`
	NodeID        string    `bun:"node_id,pk"`
	ChainID       int       `bun:"chain_id,pk"`
	GroupID       int       `bun:"group_id,pk"`
	NodeName      string    `bun:"node_name"`
	NodeIP        string    `bun:"node_ip"`
	P2PPort       int       `bun:"p2p_port"`
	Description   string    `bun:"description"`
	NodeActive    int       `bun:"node_active"`
	CreateTime    time.Time `bun:"create_time"`
	ModifyTime    time.Time `bun:"modify_time"`
}

// FrontGroupModel maps tb_front_group_map.
type FrontGroupModel struct {
	bun.BaseModel `bun:"table:tb_front_group_map"`
	MapID         int       `bun:"map_id,pk,autoincrement"`
	ChainID       int       `bun:"chain_id"`
	FrontID       int       `bun:"front_id"`
	GroupID       int       `bun:"group_id"`
	CreateTime    time.Time `bun:"create_time"`
	ModifyTime    time.Time `bun:"modify_time"`
}

// ContractModel maps tb_contract.
type ContractModel struct {
	bun.BaseModel   `bun:"table:tb_contract"`
	ContractID      int       `bun:"contract_id,pk,autoincrement"`
	ChainID         int       `bun:"chain_id"`
	GroupID         int       `bun:"group_id"`
	ContractName    string    `bun:"contract_name"`
	ContractAddress string    `bun:"contract_address"`
	ContractABI     string    `bun:"contract_abi"`
	BytecodeBin     string    `bun:"bytecode_bin"`
	CreateTime      time.Time `bun:"create_time"`
}

func chainFromModel(m ChainModel) model.Chain {
	return model.Chain{
		ID:            m.ChainID,
		Name:          m.ChainName,
		Description:   m.ChainDesc,
		Version:       m.Version,
		EncryptType:   model.EncryptType(m.EncryptType),
		ConsensusType: m.ConsensusType,
		StorageType:   m.StorageType,
		DeployType:    model.DeployType(m.DeployType),
		Status:        model.ChainStatus(m.ChainStatus),
		Remark:        m.Remark,
		CreateTime:    m.CreateTime,
		ModifyTime:    m.ModifyTime,
	}
}

func chainToModel(c model.Chain) ChainModel {
	return ChainModel{
		ChainID:       c.ID,
		ChainName:     c.Name,
		ChainDesc:     c.Description,
		Version:       c.Version,
		EncryptType:   int(c.EncryptType),
		ConsensusType: c.ConsensusType,
		StorageType:   c.StorageType,
		DeployType:    int(c.DeployType),
		ChainStatus:   int(c.Status),
		Remark:        c.Remark,
		CreateTime:    c.CreateTime,
		ModifyTime:    c.ModifyTime,
	}
}

func groupFromModel(m GroupModel) model.Group {
	return model.Group{
		ID:          m.GroupID,
		ChainID:     m.ChainID,
		Name:        m.GroupName,
		NodeCount:   m.NodeCount,
		Description: m.GroupDesc,
		Type:        model.GroupType(m.GroupType),
		Status:      m.GroupStatus,
		CreateTime:  m.CreateTime,
		ModifyTime:  m.ModifyTime,
	}
}

func groupToModel(g model.Group) GroupModel {
	return GroupModel{
		GroupID:     g.ID,
		ChainID:     g.ChainID,
		GroupName:   g.Name,
		NodeCount:   g.NodeCount,
		GroupDesc:   g.Description,
		GroupType:   int(g.Type),
		GroupStatus: g.Status,
		CreateTime:  g.CreateTime,
		ModifyTime:  g.ModifyTime,
	}
}

func frontFromModel(m FrontModel) model.Front {
	return model.Front{
		ID:             m.FrontID,
		ChainID:        m.ChainID,
		ChainName:      m.ChainName,
		NodeID:         m.NodeID,
		IP:             m.FrontIP,
		FrontPort:      m.FrontPort,
		JsonrpcPort:    m.JsonrpcPort,
		P2PPort:        m.P2PPort,
		ChannelPort:    m.ChannelPort,
		ExtCompanyID:   m.ExtCompanyID,
		ExtOrgID:       m.ExtOrgID,
		ExtHostID:      m.ExtHostID,
		HostIndex:      m.HostIndex,
		Version:        m.Version,
		ContainerName:  m.ContainerName,
		SSHUser:        m.SSHUser,
		SSHPort:        m.SSHPort,
		DockerPort:     m.DockerPort,
		RootOnHost:     m.RootOnHost,
		NodeRootOnHost: m.NodeRootOnHost,
		Status:         model.FrontStatus(m.FrontStatus),
		Description:    m.Description,
		CreateTime:     m.CreateTime,
		ModifyTime:     m.ModifyTime,
	}
}

func frontToModel(f model.Front) FrontModel {
	return FrontModel{
		FrontID:        f.ID,
		ChainID:        f.ChainID,
		ChainName:      f.ChainName,
		NodeID:         f.NodeID,
		FrontIP:        f.IP,
		FrontPort:      f.FrontPort,
		JsonrpcPort:    f.JsonrpcPort,
		P2PPort:        f.P2PPort,
		ChannelPort:    f.ChannelPort,
		ExtCompanyID:   f.ExtCompanyID,
		ExtOrgID:       f.ExtOrgID,
		ExtHostID:      f.ExtHostID,
		HostIndex:      f.HostIndex,
		Version:        f.Version,
		ContainerName:  f.ContainerName,
		SSHUser:        f.SSHUser,
		SSHPort:        f.SSHPort,
		DockerPort:     f.DockerPort,
		RootOnHost:     f.RootOnHost,
		NodeRootOnHost: f.NodeRootOnHost,
		FrontStatus:    int(f.Status),
		Description:    f.Description,
		CreateTime:     f.CreateTime,
		ModifyTime:     f.ModifyTime,
	}
}

func nodeFromModel(m NodeModel) model.Node {
	return model.Node{
		NodeID:      m.NodeID,
		ChainID:     m.ChainID,
		GroupID:     m.GroupID,
		Name:        m.NodeName,
		IP:          m.NodeIP,
		P2PPort:     m.P2PPort,
		Description: m.Description,
		Status:      model.DataStatus(m.NodeActive),
		CreateTime:  m.CreateTime,
		ModifyTime:  m.ModifyTime,
	}
}

func nodeToModel(n model.Node) NodeModel {
	return NodeModel{
		NodeID:      n.NodeID,
		ChainID:     n.ChainID,
		GroupID:     n.GroupID,
		NodeName:    n.Name,
		NodeIP:      n.IP,
		P2PPort:     n.P2PPort,
		Description: n.Description,
		NodeActive:  int(n.Status),
		CreateTime:  n.CreateTime,
		ModifyTime:  n.ModifyTime,
	}
}

func frontGroupFromModel(m FrontGroupModel) model.FrontGroup {
	return model.FrontGroup{ID: m.MapID, ChainID: m.ChainID, FrontID: m.FrontID, GroupID: m.GroupID}
}

func contractFromModel(m ContractModel) model.Contract {
	return model.Contract{
		ID:         m.ContractID,
		ChainID:    m.ChainID,
		GroupID:    m.GroupID,
		Name:       m.ContractName,
		Address:    m.ContractAddress,
		ABI:        m.ContractABI,
		Bytecode:   m.BytecodeBin,
		CreateTime: m.CreateTime,
	}
}

func contractToModel(c model.Contract) ContractModel {
	return ContractModel{
		ContractID:      c.ID,
		ChainID:         c.ChainID,
		GroupID:         c.GroupID,
		ContractName:    c.Name,
		ContractAddress: c.Address,
		ContractABI:     c.ABI,
		BytecodeBin:     c.Bytecode,
		CreateTime:      c.CreateTime,
	}
}

// stamp fills zero create/modify times with now.
func stamp(create, modify *time.Time) {
	now := time.Now().UTC()
	if create != nil && create.IsZero() {
		*create = now
	}
	if modify != nil && modify.IsZero() {
		*modify = now
	}
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package nodeconf reads the files the chain build generates for a node and
// renders the configuration of the node's front.
package nodeconf // import "github.com/toeirei/chainmaster/internal/nodeconf"

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/toeirei/chainmaster/internal/layout"
	"github.com/toeirei/chainmaster/internal/model"
)

// Files reads node configuration and writes front configuration inside
// generated node directories.
type Files struct {
	// ContextPath is the servlet context of the front, e.g. "/WeBASE-Front".
	ContextPath string
}

// loadNodeINI parses a node's config.ini.
func loadNodeINI(path string) (*ini.File, error) {
	return ini.Load(path)
}

// port reads a listen port, which must be present and in range.
func port(cfg *ini.File, section, key string) (int, error) {
	sec, err := cfg.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return 0, fmt.Errorf("missing [%s] %s", section, key)
	}
	k := sec.Key(key)
	p, err := k.Int()
	if err != nil || p <= 0 || p > 65535 {
		return 0, fmt.Errorf("invalid [%s] %s=%q", section, key, k.String())
	}
	return p, nil
}

// NodeIDFile returns the node id file for the encryption suite.
func NodeIDFile(dir string, encrypt model.EncryptType) string {
	if encrypt.IsSM() {
		return filepath.Join(dir, "conf", "gmnode.nodeid")
	}
	return filepath.Join(dir, "conf", "node.nodeid")
}

// Read parses conf/config.ini and the node id file of the node directory.
func (Files) Read(dir string, encrypt model.EncryptType) (model.NodeConfig, error) {
	var nc model.NodeConfig

	idx, err := layout.NodeIndex(dir)
	if err != nil {
		return nc, err
	}
	nc.HostIndex = idx

	conf, err := loadNodeINI(filepath.Join(dir, "conf", "config.ini"))
	if err != nil {
		return nc, fmt.Errorf("parse config.ini of %s: %w", dir, err)
	}
	if nc.ChannelPort, err = port(conf, "rpc", "channel_listen_port"); err != nil {
		return nc, err
	}
	if nc.JsonrpcPort, err = port(conf, "rpc", "jsonrpc_listen_port"); err != nil {
		return nc, err
	}
	if nc.P2PPort, err = port(conf, "p2p", "listen_port"); err != nil {
		return nc, err
	}

	id, err := os.ReadFile(NodeIDFile(dir, encrypt))
	if err != nil {
		return nc, err
	}
	nc.NodeID = strings.TrimSpace(string(id))
	if nc.NodeID == "" {
		return nc, fmt.Errorf("empty node id in %s", NodeIDFile(dir, encrypt))
	}
	return nc, nil
}

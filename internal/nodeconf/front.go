// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package nodeconf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/toeirei/chainmaster/internal/model"
)

// DefaultContextPath is the servlet context of a front.
const DefaultContextPath = "/WeBASE-Front"

// FrontConfigFile is the name of the rendered front configuration.
const FrontConfigFile = "application.yml"

type frontConfig struct {
	Server   frontServer   `yaml:"server"`
	SDK      frontSDK      `yaml:"sdk"`
	Constant frontConstant `yaml:"constant"`
}

type frontServer struct {
	Port    int `yaml:"port"`
	Servlet struct {
		ContextPath string `yaml:"context-path"`
	} `yaml:"servlet"`
}

type frontSDK struct {
	EncryptType int    `yaml:"encryptType"`
	IP          string `yaml:"ip"`
	ChannelPort int    `yaml:"channelPort"`
}

type frontConstant struct {
	NodePath string `yaml:"nodePath"`
}

// RenderFrontConfig writes application.yml into the node directory.
func (f Files) RenderFrontConfig(dir string, encrypt model.EncryptType, channelPort, frontPort int) error {
	ctxPath := f.ContextPath
	if ctxPath == "" {
		ctxPath = DefaultContextPath
	}
	var cfg frontConfig
	cfg.Server.Port = frontPort
	cfg.Server.Servlet.ContextPath = ctxPath
	cfg.SDK = frontSDK{EncryptType: int(encrypt), IP: "127.0.0.1", ChannelPort: channelPort}
	// the front runs in the node container with the node mounted at /data
	cfg.Constant.NodePath = "/data"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal front config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FrontConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("write front config in %s: %w", dir, err)
	}
	return nil
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package config loads Chainmaster settings from defaults, config files,
// CHAINMASTER_* environment variables and command line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Database  Database  `mapstructure:"database" yaml:"database"`
	Language  string    `mapstructure:"language" yaml:"language"`
	Log       Log       `mapstructure:"log" yaml:"log"`
	Deploy    Deploy    `mapstructure:"deploy" yaml:"deploy"`
	Front     Front     `mapstructure:"front" yaml:"front"`
	Reconcile Reconcile `mapstructure:"reconcile" yaml:"reconcile"`
}

type Database struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Deploy holds settings for generating chains and reaching their hosts.
type Deploy struct {
	NodesRoot        string        `mapstructure:"nodes_root" yaml:"nodes_root"`
	BuildScript      string        `mapstructure:"build_script" yaml:"build_script"`
	BuildTimeout     time.Duration `mapstructure:"build_timeout" yaml:"build_timeout"`
	PrivateKeyPath   string        `mapstructure:"private_key_path" yaml:"private_key_path"`
	KnownHosts       string        `mapstructure:"known_hosts" yaml:"known_hosts"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	DefaultFrontPort int           `mapstructure:"default_front_port" yaml:"default_front_port"`
	ImageCheck       string        `mapstructure:"image_check" yaml:"image_check"`
	ImageRepository  string        `mapstructure:"image_repository" yaml:"image_repository"`
	ArchiveRemote    bool          `mapstructure:"archive_remote" yaml:"archive_remote"`
}

// Front holds settings for node front health checks.
type Front struct {
	HealthPath       string        `mapstructure:"health_path" yaml:"health_path"`
	HealthTimeout    time.Duration `mapstructure:"health_timeout" yaml:"health_timeout"`
	CheckConcurrency int           `mapstructure:"check_concurrency" yaml:"check_concurrency"`
}

type Reconcile struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// Defaults returns the built-in configuration values keyed the way viper expects.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":             "sqlite",
		"database.dsn":              "./chainmaster.db",
		"language":                  "en",
		"log.level":                 "info",
		"deploy.nodes_root":         "./NODES_ROOT",
		"deploy.build_script":       "./script/build_chain.sh",
		"deploy.build_timeout":      10 * time.Minute,
		"deploy.private_key_path":   "",
		"deploy.known_hosts":        "",
		"deploy.connect_timeout":    10 * time.Second,
		"deploy.default_front_port": 5002,
		"deploy.image_check":        "pull",
		"deploy.image_repository":   "fiscoorg/fisco-webase",
		"deploy.archive_remote":     false,
		"front.health_path":         "/WeBASE-Front/",
		"front.health_timeout":      3 * time.Second,
		"front.check_concurrency":   8,
		"reconcile.interval":        30 * time.Second,
	}
}

// GetConfigPath returns the full path for the user or system configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Chainmaster")
		default:
			configDir = "/etc/chainmaster"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "chainmaster")
	}

	return filepath.Join(configDir, "chainmaster.yaml"), nil
}

// LoadConfig resolves configuration in order of increasing precedence:
// defaults, config file, CHAINMASTER_* environment, changed flags.
// A missing config file is reported as viper.ConfigFileNotFoundError together
// with the fully populated result so callers may continue on defaults.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("chainmaster")
	v.SetConfigType("yaml")
	if configFile != nil {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
		notFound = err
	}

	v.SetEnvPrefix("chainmaster")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, notFound
}

// WriteConfigFile stores c as YAML at the user or system config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}
	return WriteConfigFileTo(c, path)
}

// WriteConfigFileTo stores c as YAML at path, creating parent directories.
func WriteConfigFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	// 0600: the file may carry a DSN with credentials.
	return os.WriteFile(path, data, 0o600)
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cfg "github.com/toeirei/chainmaster/internal/config"
)

func isolateConfigDirs(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	return tmp
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	isolateConfigDirs(t)
	t.Chdir(t.TempDir())

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		t.Fatalf("expected ConfigFileNotFoundError, got %T %v", err, err)
	}
	if got.Database.Type != "sqlite" || got.Deploy.DefaultFrontPort != 5002 {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if got.Deploy.BuildTimeout != 10*time.Minute {
		t.Fatalf("unexpected build timeout: %v", got.Deploy.BuildTimeout)
	}
	if got.Deploy.ImageRepository != "fiscoorg/fisco-webase" {
		t.Fatalf("unexpected image repository: %q", got.Deploy.ImageRepository)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	isolateConfigDirs(t)
	tmp := t.TempDir()
	body := "database:\n  type: postgres\n  dsn: postgresql://user@/db\nlanguage: de\ndeploy:\n  default_front_port: 6000\n  build_timeout: 90s\nreconcile:\n  interval: 1m\n"
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Database.Type != "postgres" || got.Language != "de" {
		t.Fatalf("file values not applied: %+v", got)
	}
	if got.Deploy.DefaultFrontPort != 6000 || got.Deploy.BuildTimeout != 90*time.Second {
		t.Fatalf("deploy values not applied: %+v", got.Deploy)
	}
	if got.Reconcile.Interval != time.Minute {
		t.Fatalf("reconcile interval: %v", got.Reconcile.Interval)
	}
	// untouched keys keep defaults
	if got.Front.CheckConcurrency != 8 {
		t.Fatalf("expected default check concurrency, got %d", got.Front.CheckConcurrency)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	isolateConfigDirs(t)
	tmp := t.TempDir()
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte("database:\n  dsn: from-file.db\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CHAINMASTER_DATABASE_DSN", "from-env.db")

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Database.Dsn != "from-env.db" {
		t.Fatalf("expected env override, got %q", got.Database.Dsn)
	}
}

func TestLoadConfig_ChangedFlagWins(t *testing.T) {
	isolateConfigDirs(t)
	t.Chdir(t.TempDir())

	cmd := &cobra.Command{}
	cmd.Flags().String("log.level", "info", "")
	if err := cmd.Flags().Set("log.level", "debug"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	got, _ := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), nil)
	if got.Log.Level != "debug" {
		t.Fatalf("expected flag value, got %q", got.Log.Level)
	}
}

func TestWriteConfigFile_RoundTrip(t *testing.T) {
	isolateConfigDirs(t)

	c, _ := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	c.Database.Dsn = "./roundtrip.db"
	if err := cfg.WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}
	path, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), &path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Database.Dsn != "./roundtrip.db" || got.Deploy.BuildTimeout != 10*time.Minute {
		t.Fatalf("unexpected reloaded config: %+v", got)
	}
}

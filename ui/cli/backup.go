// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/toeirei/chainmaster/internal/db"
	"github.com/toeirei/chainmaster/internal/i18n"
	"github.com/toeirei/chainmaster/internal/model"
)

// writeBackup exports the registries to path as zstd compressed JSON.
func writeBackup(ctx context.Context, store *db.Store, path string) error {
	data, err := db.ExportDataForBackup(ctx, store.Bun())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(enc).Encode(data); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// readBackup decodes a file written by writeBackup.
func readBackup(path string) (*model.BackupData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var data model.BackupData
	if err := json.NewDecoder(io.Reader(dec)).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode backup %s: %w", path, err)
	}
	return &data, nil
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [file]",
		Short: "Write all registry rows to a compressed backup file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("chainmaster-backup-%s.json.zst", time.Now().Format("2006-01-02"))
			if len(args) == 1 {
				path = args[0]
				if !strings.HasSuffix(path, ".zst") {
					path += ".zst"
				}
			}
			if err := writeBackup(cmd.Context(), appStore, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.backup_written", path))
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore registry rows from a backup file",
		Long: `Restores a backup written by "backup". By default rows are merged into the
existing data; --full wipes every registry table first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readBackup(args[0])
			if err != nil {
				return err
			}
			if err := db.ImportDataFromBackup(cmd.Context(), appStore.Bun(), data, full); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.restore_done"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Replace all existing data instead of merging")
	return cmd
}

func newDBMaintainCmd() *cobra.Command {
	var skipIntegrity bool
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "db-maintain",
		Short: "Run engine specific database maintenance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			if err := db.RunDBMaintenance(ctx, appConfig.Database.Type, appConfig.Database.Dsn, skipIntegrity); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.maintain_done"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipIntegrity, "skip-integrity", false, "Skip the SQLite integrity check")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Abort maintenance after this long (0 disables)")
	return cmd
}

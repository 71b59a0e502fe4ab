// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/toeirei/chainmaster/internal/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BackupSchemaVersion is written into every export.
const BackupSchemaVersion = 1

// ExportDataForBackup reads every registry table inside one transaction.
func ExportDataForBackup(ctx context.Context, bdb *bun.DB) (*model.BackupData, error) {
	backup := &model.BackupData{SchemaVersion: BackupSchemaVersion}
	err := WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		var chains []ChainModel
		if err := tx.NewSelect().Model(&chains).Order("chain_id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, c := range chains {
			backup.Chains = append(backup.Chains, chainFromModel(c))
		}

		var groups []GroupModel
		if err := tx.NewSelect().Model(&groups).Scan(ctx); err != nil {
			return err
		}
		for _, g := range groups {
			backup.Groups = append(backup.Groups, groupFromModel(g))
		}

		var fronts []FrontModel
		if err := tx.NewSelect().Model(&fronts).Order("front_id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, f := range fronts {
			backup.Fronts = append(backup.Fronts, frontFromModel(f))
		}

		var nodes []NodeModel
		if err := tx.NewSelect().Model(&nodes).Scan(ctx); err != nil {
			return err
		}
		for _, n := range nodes {
			backup.Nodes = append(backup.Nodes, nodeFromModel(n))
		}

		var maps []FrontGroupModel
		if err := tx.NewSelect().Model(&maps).Order("map_id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, m := range maps {
			backup.FrontGroups = append(backup.FrontGroups, frontGroupFromModel(m))
		}

		var contracts []ContractModel
		if err := tx.NewSelect().Model(&contracts).Order("contract_id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, c := range contracts {
			backup.Contracts = append(backup.Contracts, contractFromModel(c))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return backup, nil
}

// ImportDataFromBackup restores a backup. With full set, every registry table
// is wiped first; otherwise rows whose key already exists are skipped.
func ImportDataFromBackup(ctx context.Context, bdb *bun.DB, backup *model.BackupData, full bool) error {
	if backup == nil {
		return fmt.Errorf("nil backup")
	}
	if backup.SchemaVersion > BackupSchemaVersion {
		return fmt.Errorf("backup schema version %d is newer than supported %d", backup.SchemaVersion, BackupSchemaVersion)
	}
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		if full {
			for _, t := range []string{"tb_front_group_map", "tb_node", "tb_front", "tb_group", "tb_contract", "tb_chain"} {
				if _, err := ExecRaw(ctx, tx, "DELETE FROM ?", bun.Ident(t)); err != nil {
					return err
				}
			}
		}

		insert := func(v interface{}) error {
			q := tx.NewInsert().Model(v).Returning("NULL")
			if !full {
				q = q.Ignore()
			}
			_, err := q.Exec(ctx)
			return MapDBError(err)
		}

		if len(backup.Chains) > 0 {
			rows := make([]ChainModel, 0, len(backup.Chains))
			for _, c := range backup.Chains {
				rows = append(rows, chainToModel(c))
			}
			if err := insert(&rows); err != nil {
				return fmt.Errorf("restore chains: %w", err)
			}
		}
		if len(backup.Groups) > 0 {
			rows := make([]GroupModel, 0, len(backup.Groups))
			for _, g := range backup.Groups {
				rows = append(rows, groupToModel(g))
			}
			if err := insert(&rows); err != nil {
				return fmt.Errorf("restore groups: %w", err)
			}
		}
		if len(backup.Fronts) > 0 {
			rows := make([]FrontModel, 0, len(backup.Fronts))
			for _, f := range backup.Fronts {
				rows = append(rows, frontToModel(f))
			}
			if err := insert(&rows); err != nil {
				return fmt.Errorf("restore fronts: %w", err)
			}
		}
		if len(backup.Nodes) > 0 {
			rows := make([]NodeModel, 0, len(backup.Nodes))
			for _, n := range backup.Nodes {
				rows = append(rows, nodeToModel(n))
			}
			if err := insert(&rows); err != nil {
				return fmt.Errorf("restore nodes: %w", err)
			}
		}
		if len(backup.FrontGroups) > 0 {
			rows := make([]FrontGroupModel, 0, len(backup.FrontGroups))
			for _, m := range backup.FrontGroups {
				r := FrontGroupModel{MapID: m.ID, ChainID: m.ChainID, FrontID: m.FrontID, GroupID: m.GroupID}
				stamp(&r.CreateTime, &r.ModifyTime)
				rows = append(rows, r)
			}
			if err := insert(&rows); err != nil {
				return fmt.Errorf("restore front groups: %w", err)
			}
		}
		if len(backup.Contracts) > 0 {
			rows := make([]ContractModel, 0, len(backup.Contracts))
			for _, c := range backup.Contracts {
				rows = append(rows, contractToModel(c))
			}
			if err := insert(&rows); err != nil {
				return fmt.Errorf("restore contracts: %w", err)
			}
		}

		// Explicit ids bypass Postgres sequences; move them past the restored rows.
		if bdb.Dialect().Name() == dialect.PG {
			for table, col := range map[string]string{"tb_front": "front_id", "tb_front_group_map": "map_id", "tb_contract": "contract_id"} {
				if _, err := ExecRaw(ctx, tx,
					"SELECT setval(pg_get_serial_sequence(?, ?), COALESCE((SELECT MAX(?) FROM ?), 0) + 1, false)",
					table, col, bun.Ident(col), bun.Ident(table)); err != nil {
					return fmt.Errorf("reset sequence for %s: %w", table, err)
				}
			}
		}
		return nil
	})
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"time"

	"github.com/toeirei/chainmaster/internal/model"
	"github.com/uptrace/bun"
)

// InsertGroupIfAbsent inserts g unless a group with the same (chain, group)
// key exists. It reports whether a row was written.
func InsertGroupIfAbsent(ctx context.Context, idb bun.IDB, g model.Group) (bool, error) {
	exists, err := idb.NewSelect().Model((*GroupModel)(nil)).
		Where("chain_id = ? AND group_id = ?", g.ChainID, g.ID).
		Exists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	m := groupToModel(g)
	stamp(&m.CreateTime, &m.ModifyTime)
	if _, err := idb.NewInsert().Model(&m).Exec(ctx); err != nil {
		return false, MapDBError(err)
	}
	return true, nil
}

// AddGroupNodeCount adds delta to the node count of a group.
func AddGroupNodeCount(ctx context.Context, idb bun.IDB, chainID, groupID, delta int) error {
	_, err := ExecRaw(ctx, idb,
		"UPDATE tb_group SET node_count = node_count + ?, modify_time = ? WHERE chain_id = ? AND group_id = ?",
		delta, time.Now().UTC(), chainID, groupID)
	return err
}

// ListGroups returns the groups of a chain ordered by id.
func ListGroups(ctx context.Context, idb bun.IDB, chainID int) ([]model.Group, error) {
	var rows []GroupModel
	if err := idb.NewSelect().Model(&rows).Where("chain_id = ?", chainID).Order("group_id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Group, 0, len(rows))
	for _, r := range rows {
		out = append(out, groupFromModel(r))
	}
	return out, nil
}

// DeleteGroupsByChain removes every group of a chain.
func DeleteGroupsByChain(ctx context.Context, idb bun.IDB, chainID int) (int64, error) {
	res, err := idb.NewDelete().Model((*GroupModel)(nil)).Where("chain_id = ?", chainID).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}

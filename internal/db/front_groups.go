// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/chainmaster/internal/model"
	"github.com/uptrace/bun"
)

// InsertFrontGroup associates a front with a group of the same chain.
func InsertFrontGroup(ctx context.Context, idb bun.IDB, chainID, frontID, groupID int) error {
	m := FrontGroupModel{ChainID: chainID, FrontID: frontID, GroupID: groupID}
	stamp(&m.CreateTime, &m.ModifyTime)
	_, err := idb.NewInsert().Model(&m).Exec(ctx)
	return MapDBError(err)
}

// ListFrontGroups returns every front/group association of a chain.
func ListFrontGroups(ctx context.Context, idb bun.IDB, chainID int) ([]model.FrontGroup, error) {
	var rows []FrontGroupModel
	if err := idb.NewSelect().Model(&rows).Where("chain_id = ?", chainID).Order("map_id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.FrontGroup, 0, len(rows))
	for _, r := range rows {
		out = append(out, frontGroupFromModel(r))
	}
	return out, nil
}

// DeleteFrontGroupsByChain removes every association of a chain.
func DeleteFrontGroupsByChain(ctx context.Context, idb bun.IDB, chainID int) (int64, error) {
	res, err := idb.NewDelete().Model((*FrontGroupModel)(nil)).Where("chain_id = ?", chainID).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}

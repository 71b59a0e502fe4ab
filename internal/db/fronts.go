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

// InsertFront writes f and stores the generated front id back into it.
func InsertFront(ctx context.Context, idb bun.IDB, f *model.Front) error {
	m := frontToModel(*f)
	m.FrontID = 0
	stamp(&m.CreateTime, &m.ModifyTime)
	if _, err := idb.NewInsert().Model(&m).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	f.ID = m.FrontID
	f.CreateTime, f.ModifyTime = m.CreateTime, m.ModifyTime
	return nil
}

// ListFronts returns the fronts of a chain ordered by id.
func ListFronts(ctx context.Context, idb bun.IDB, chainID int) ([]model.Front, error) {
	var rows []FrontModel
	if err := idb.NewSelect().Model(&rows).Where("chain_id = ?", chainID).Order("front_id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Front, 0, len(rows))
	for _, r := range rows {
		out = append(out, frontFromModel(r))
	}
	return out, nil
}

// UpdateFrontStatus sets the status of one front.
func UpdateFrontStatus(ctx context.Context, idb bun.IDB, frontID int, status model.FrontStatus) error {
	_, err := ExecRaw(ctx, idb,
		"UPDATE tb_front SET front_status = ?, modify_time = ? WHERE front_id = ?",
		int(status), time.Now().UTC(), frontID)
	return err
}

// DeleteFrontsByChain removes every front of a chain.
func DeleteFrontsByChain(ctx context.Context, idb bun.IDB, chainID int) (int64, error) {
	res, err := idb.NewDelete().Model((*FrontModel)(nil)).Where("chain_id = ?", chainID).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}

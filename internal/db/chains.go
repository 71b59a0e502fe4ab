// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/toeirei/chainmaster/internal/model"
	"github.com/uptrace/bun"
)

// GetChainByID returns the chain with the given id, or (nil, nil) if absent.
func GetChainByID(ctx context.Context, idb bun.IDB, id int) (*model.Chain, error) {
	var m ChainModel
	err := idb.NewSelect().Model(&m).Where("chain_id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c := chainFromModel(m)
	return &c, nil
}

// GetChainByName returns the chain with the given name, or (nil, nil) if absent.
func GetChainByName(ctx context.Context, idb bun.IDB, name string) (*model.Chain, error) {
	var m ChainModel
	err := idb.NewSelect().Model(&m).Where("chain_name = ?", name).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c := chainFromModel(m)
	return &c, nil
}

// ListChains returns all chains ordered by id.
func ListChains(ctx context.Context, idb bun.IDB) ([]model.Chain, error) {
	var rows []ChainModel
	if err := idb.NewSelect().Model(&rows).Order("chain_id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Chain, 0, len(rows))
	for _, r := range rows {
		out = append(out, chainFromModel(r))
	}
	return out, nil
}

// InsertChain writes a chain row and returns the number of rows inserted.
// Unique violations on id or name map to ErrDuplicate.
func InsertChain(ctx context.Context, idb bun.IDB, c model.Chain) (int64, error) {
	m := chainToModel(c)
	stamp(&m.CreateTime, &m.ModifyTime)
	res, err := idb.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return 0, MapDBError(err)
	}
	return affected(res), nil
}

// UpdateChainStatus sets status and remark of a chain. It returns the number
// of rows changed, zero when the chain does not exist.
func UpdateChainStatus(ctx context.Context, idb bun.IDB, id int, status model.ChainStatus, remark string) (int64, error) {
	res, err := ExecRaw(ctx, idb,
		"UPDATE tb_chain SET chain_status = ?, remark = ?, modify_time = ? WHERE chain_id = ?",
		int(status), remark, time.Now().UTC(), id)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}

// DeleteChain removes the chain row only.
func DeleteChain(ctx context.Context, idb bun.IDB, id int) (int64, error) {
	res, err := idb.NewDelete().Model((*ChainModel)(nil)).Where("chain_id = ?", id).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}

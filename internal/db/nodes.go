// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/chainmaster/internal/model"
	"github.com/uptrace/bun"
)

// InsertNode writes one node row.
func InsertNode(ctx context.Context, idb bun.IDB, n model.Node) error {
	m := nodeToModel(n)
	stamp(&m.CreateTime, &m.ModifyTime)
	_, err := idb.NewInsert().Model(&m).Exec(ctx)
	return MapDBError(err)
}

// ListNodes returns the nodes of a chain ordered by group and name.
func ListNodes(ctx context.Context, idb bun.IDB, chainID int) ([]model.Node, error) {
	var rows []NodeModel
	if err := idb.NewSelect().Model(&rows).Where("chain_id = ?", chainID).Order("group_id ASC", "node_name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Node, 0, len(rows))
	for _, r := range rows {
		out = append(out, nodeFromModel(r))
	}
	return out, nil
}

// DeleteNodesByChain removes every node of a chain.
func DeleteNodesByChain(ctx context.Context, idb bun.IDB, chainID int) (int64, error) {
	res, err := idb.NewDelete().Model((*NodeModel)(nil)).Where("chain_id = ?", chainID).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}

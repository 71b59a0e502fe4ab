// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/chainmaster/internal/model"
	"github.com/uptrace/bun"
)

// InsertContract registers a contract artifact and returns its id.
func InsertContract(ctx context.Context, idb bun.IDB, c model.Contract) (int, error) {
	m := contractToModel(c)
	m.ContractID = 0
	stamp(&m.CreateTime, nil)
	if _, err := idb.NewInsert().Model(&m).Exec(ctx); err != nil {
		return 0, MapDBError(err)
	}
	return m.ContractID, nil
}

// ListContracts returns the contracts registered for a chain.
func ListContracts(ctx context.Context, idb bun.IDB, chainID int) ([]model.Contract, error) {
	var rows []ContractModel
	if err := idb.NewSelect().Model(&rows).Where("chain_id = ?", chainID).Order("contract_id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Contract, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractFromModel(r))
	}
	return out, nil
}

// DeleteContractsByChain removes every contract row of a chain.
func DeleteContractsByChain(ctx context.Context, idb bun.IDB, chainID int) (int64, error) {
	res, err := idb.NewDelete().Model((*ContractModel)(nil)).Where("chain_id = ?", chainID).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

// execRawProvider accepts either *bun.DB or bun.Tx since both expose NewRaw.
type execRawProvider interface {
	NewRaw(query string, args ...interface{}) *bun.RawQuery
}

// ExecRaw executes a raw SQL statement using the provided Bun DB or transaction.
func ExecRaw(ctx context.Context, exec execRawProvider, query string, args ...interface{}) (sql.Result, error) {
	return exec.NewRaw(query, args...).Exec(ctx)
}

// QueryRawInto runs a raw query and scans the result into dest.
func QueryRawInto(ctx context.Context, exec execRawProvider, dest interface{}, query string, args ...interface{}) error {
	return exec.NewRaw(query, args...).Scan(ctx, dest)
}

// WithTx runs fn in a transaction that commits when fn returns nil and rolls
// back otherwise.
func WithTx(ctx context.Context, bdb *bun.DB, fn func(ctx context.Context, tx bun.Tx) error) error {
	return bdb.RunInTx(ctx, nil, fn)
}

// chainTables lists every table whose rows are owned by a chain.
var chainTables = map[string]bool{
	"tb_chain":           true,
	"tb_group":           true,
	"tb_front":           true,
	"tb_node":            true,
	"tb_front_group_map": true,
	"tb_contract":        true,
}

// CountByChain returns the number of rows in table that belong to chainID.
func CountByChain(ctx context.Context, idb bun.IDB, table string, chainID int) (int, error) {
	if !chainTables[table] {
		return 0, fmt.Errorf("unknown chain table %q", table)
	}
	var n int
	err := QueryRawInto(ctx, idb, &n, "SELECT COUNT(*) FROM ? WHERE chain_id = ?", bun.Ident(table), chainID)
	return n, err
}

func affected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

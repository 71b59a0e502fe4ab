// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"testing"

	"github.com/toeirei/chainmaster/internal/model"
)

// newTestStore opens a migrated in-memory sqlite Store that is closed when
// the test ends.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := NewStoreFromDSN("sqlite", dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleChain(id int, name string) model.Chain {
	return model.Chain{
		ID:          id,
		Name:        name,
		Version:     "v2.9.1",
		EncryptType: model.EncryptECDSA,
		DeployType:  model.DeployAPI,
		Status:      model.ChainInitialized,
	}
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"testing"

	"github.com/toeirei/chainmaster/internal/model"
)

func seedChain(t *testing.T, s *Store, id int, name string) {
	t.Helper()
	ctx := context.Background()
	if _, err := InsertChain(ctx, s.Bun(), sampleChain(id, name)); err != nil {
		t.Fatalf("InsertChain: %v", err)
	}
	if _, err := InsertGroupIfAbsent(ctx, s.Bun(), model.Group{ID: 1, ChainID: id, NodeCount: 2, Type: model.GroupDeploy}); err != nil {
		t.Fatalf("InsertGroupIfAbsent: %v", err)
	}
	f := model.Front{ChainID: id, ChainName: name, NodeID: name + "-n1", IP: "10.0.0.1", FrontPort: 5002}
	if err := InsertFront(ctx, s.Bun(), &f); err != nil {
		t.Fatalf("InsertFront: %v", err)
	}
	if err := InsertNode(ctx, s.Bun(), model.Node{NodeID: f.NodeID, ChainID: id, GroupID: 1, Name: model.NodeName(id, 1, f.NodeID)}); err != nil {
		t.Fatalf("InsertNode: %v", err)
	}
	if err := InsertFrontGroup(ctx, s.Bun(), id, f.ID, 1); err != nil {
		t.Fatalf("InsertFrontGroup: %v", err)
	}
}

func TestBackup_ExportImportFull(t *testing.T) {
	src := newTestStore(t)
	seedChain(t, src, 7, "alpha")
	ctx := context.Background()

	backup, err := ExportDataForBackup(ctx, src.Bun())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(backup.Chains) != 1 || len(backup.Fronts) != 1 || len(backup.FrontGroups) != 1 {
		t.Fatalf("unexpected export: %+v", backup)
	}

	dst := newTestStore(t)
	seedChain(t, dst, 9, "stale")
	if err := ImportDataFromBackup(ctx, dst.Bun(), backup, true); err != nil {
		t.Fatalf("import: %v", err)
	}
	chains, _ := ListChains(ctx, dst.Bun())
	if len(chains) != 1 || chains[0].Name != "alpha" {
		t.Fatalf("full restore should replace data, got %+v", chains)
	}
	fronts, _ := ListFronts(ctx, dst.Bun(), 7)
	if len(fronts) != 1 || fronts[0].ID != backup.Fronts[0].ID {
		t.Fatalf("front ids not preserved: %+v", fronts)
	}
}

func TestBackup_ImportMergeSkipsExisting(t *testing.T) {
	s := newTestStore(t)
	seedChain(t, s, 7, "alpha")
	ctx := context.Background()

	backup, err := ExportDataForBackup(ctx, s.Bun())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	backup.Chains = append(backup.Chains, sampleChain(8, "beta"))
	if err := ImportDataFromBackup(ctx, s.Bun(), backup, false); err != nil {
		t.Fatalf("merge import: %v", err)
	}
	chains, _ := ListChains(ctx, s.Bun())
	if len(chains) != 2 {
		t.Fatalf("expected 2 chains after merge, got %d", len(chains))
	}
	if n, _ := CountByChain(ctx, s.Bun(), "tb_front", 7); n != 1 {
		t.Fatalf("existing fronts duplicated: %d", n)
	}
}

func TestBackup_RejectsNewerSchema(t *testing.T) {
	s := newTestStore(t)
	err := ImportDataFromBackup(context.Background(), s.Bun(), &model.BackupData{SchemaVersion: BackupSchemaVersion + 1}, true)
	if err == nil {
		t.Fatalf("expected schema version error")
	}
}

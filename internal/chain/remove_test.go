// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package chain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/toeirei/chainmaster/internal/db"
	"github.com/toeirei/chainmaster/internal/model"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestRemoveChain_UnknownIsNoop(t *testing.T) {
	f := newFixture(t, Options{})
	if err := f.svc.RemoveChain(context.Background(), 404); err != nil {
		t.Fatalf("RemoveChain: %v", err)
	}
	if DeletionInProgress() {
		t.Fatalf("guard must not be raised")
	}
	if f.notify.n != 0 || f.files.deletes != 0 {
		t.Fatalf("no side effects expected")
	}
}

func TestRemoveChain_DeletesEverything(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	if err := f.svc.GenerateChainConfig(ctx, twoHostRequest(), model.ImagePull); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if _, err := db.InsertContract(ctx, f.store.Bun(), model.Contract{ChainID: 7, GroupID: 1, Name: "HelloWorld"}); err != nil {
		t.Fatalf("InsertContract: %v", err)
	}
	if _, err := f.svc.FrontGroups(ctx, 7); err != nil {
		t.Fatalf("FrontGroups: %v", err)
	}

	var duringTeardown bool
	running := &model.Chain{ID: 1, Name: "other", Status: model.ChainRunning, DeployType: model.DeployAPI}
	f.files.onDelete = func() { duringTeardown = f.svc.RunTask(running) }

	if err := f.svc.RemoveChain(ctx, 7); err != nil {
		t.Fatalf("RemoveChain: %v", err)
	}
	for _, table := range []string{"tb_chain", "tb_group", "tb_front", "tb_node", "tb_front_group_map", "tb_contract"} {
		if n := f.count(t, table, 7); n != 0 {
			t.Fatalf("%s still has %d rows", table, n)
		}
	}
	if ok, _ := f.layout.ChainRootExists("alpha"); ok {
		t.Fatalf("generated tree must be deleted")
	}
	if f.svc.Cache().Cached(7) {
		t.Fatalf("cache entry must be cleared")
	}
	if f.notify.n != 1 {
		t.Fatalf("expected one reconcile trigger, got %d", f.notify.n)
	}
	if duringTeardown {
		t.Fatalf("RunTask must be false while a chain is being removed")
	}
	if DeletionInProgress() {
		t.Fatalf("guard must be released")
	}
	if !f.svc.RunTask(running) {
		t.Fatalf("RunTask must recover after teardown")
	}
	if len(f.hosts.moved) != 0 {
		t.Fatalf("remote archive is disabled by default")
	}
}

func TestRemoveChain_TransactionFailureKeepsEverything(t *testing.T) {
	f := newFixture(t, Options{ArchiveRemote: true})
	ctx := context.Background()
	if err := f.svc.GenerateChainConfig(ctx, twoHostRequest(), model.ImagePull); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if _, err := f.svc.FrontGroups(ctx, 7); err != nil {
		t.Fatalf("FrontGroups: %v", err)
	}
	// the last delete of the transaction fails, after the others ran
	if _, err := db.ExecRaw(ctx, f.store.Bun(), "DROP TABLE tb_contract"); err != nil {
		t.Fatalf("drop tb_contract: %v", err)
	}

	err := f.svc.RemoveChain(ctx, 7)
	if err == nil || !strings.Contains(err.Error(), "delete contracts") {
		t.Fatalf("expected transaction error, got %v", err)
	}
	if n := f.count(t, "tb_chain", 7); n != 1 {
		t.Fatalf("chain row must survive, got %d", n)
	}
	if n := f.count(t, "tb_front", 7); n != 5 {
		t.Fatalf("fronts must survive, got %d", n)
	}
	if ok, _ := f.layout.ChainRootExists("alpha"); !ok {
		t.Fatalf("generated tree must survive")
	}
	if f.files.deletes != 0 || len(f.hosts.moved) != 0 {
		t.Fatalf("no file deletion or archive expected")
	}
	if !f.svc.Cache().Cached(7) {
		t.Fatalf("cache entry must be kept")
	}
	if f.notify.n != 0 {
		t.Fatalf("no reconcile trigger expected, got %d", f.notify.n)
	}
	if DeletionInProgress() {
		t.Fatalf("guard must be released")
	}
}

func TestRemoveChain_GuardDroppedBeforeNotifyAndArchive(t *testing.T) {
	f := newFixture(t, Options{ArchiveRemote: true})
	ctx := context.Background()
	if err := f.svc.GenerateChainConfig(ctx, twoHostRequest(), model.ImagePull); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if err := f.svc.RemoveChain(ctx, 7); err != nil {
		t.Fatalf("RemoveChain: %v", err)
	}
	if f.notify.n != 1 || f.notify.guarded != 0 {
		t.Fatalf("trigger must fire once with the guard down, got %d/%d", f.notify.n, f.notify.guarded)
	}
	if len(f.hosts.moved) != 2 || f.hosts.guardedMoves != 0 {
		t.Fatalf("archive must run with the guard down, got %v (%d guarded)", f.hosts.moved, f.hosts.guardedMoves)
	}
}

func TestRemoveChain_FileErrorIsNotFatal(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	if err := f.svc.GenerateChainConfig(ctx, twoHostRequest(), model.ImagePull); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	f.files.deleteErr = errors.New("busy")
	if err := f.svc.RemoveChain(ctx, 7); err != nil {
		t.Fatalf("RemoveChain should log file errors, got %v", err)
	}
	if f.count(t, "tb_chain", 7) != 0 {
		t.Fatalf("rows must be removed")
	}
}

func TestRemoveChain_ArchivesOnHosts(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	SetClock(fixedClock{at})
	defer ResetClock()

	f := newFixture(t, Options{ArchiveRemote: true})
	ctx := context.Background()
	if err := f.svc.GenerateChainConfig(ctx, twoHostRequest(), model.ImagePull); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if err := f.svc.RemoveChain(ctx, 7); err != nil {
		t.Fatalf("RemoveChain: %v", err)
	}
	want := []string{"10.0.0.1:/opt/fisco/alpha", "10.0.0.2:/data/fisco/alpha"}
	if len(f.hosts.moved) != len(want) {
		t.Fatalf("moved %v, want %v", f.hosts.moved, want)
	}
	for i := range want {
		if f.hosts.moved[i] != want[i] || !f.hosts.moveAt[i].Equal(at) {
			t.Fatalf("moved %v at %v, want %v", f.hosts.moved, f.hosts.moveAt, want)
		}
	}
}

func TestDeletionGuard_Counter(t *testing.T) {
	r1 := acquireDeletion()
	r2 := acquireDeletion()
	r1()
	r1()
	if !DeletionInProgress() {
		t.Fatalf("second holder still active")
	}
	r2()
	if DeletionInProgress() {
		t.Fatalf("guard must be released")
	}
}

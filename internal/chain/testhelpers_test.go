// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package chain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/toeirei/chainmaster/internal/buildchain"
	"github.com/toeirei/chainmaster/internal/db"
	"github.com/toeirei/chainmaster/internal/layout"
	"github.com/toeirei/chainmaster/internal/model"
	"github.com/toeirei/chainmaster/internal/nodeconf"
)

type fakeHosts struct {
	mu          sync.Mutex
	unreachable map[string]bool
	images      map[string]bool
	connects    []string
	imageChecks []string
	moved       []string
	moveAt      []time.Time

	// imageErr fails ImageExists per host; guardedMoves counts archive
	// calls made while the deletion guard was up.
	imageErr     map[string]error
	guardedMoves int
}

func (f *fakeHosts) CheckConnect(_ context.Context, ip, _ string, _ int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, ip)
	return !f.unreachable[ip]
}

func (f *fakeHosts) ImageExists(_ context.Context, ip string, _ int, _ string, _ int, version string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageChecks = append(f.imageChecks, ip+"@"+version)
	if err := f.imageErr[ip]; err != nil {
		return false, err
	}
	return f.images[ip], nil
}

func (f *fakeHosts) MoveChainDir(_ context.Context, ip, _ string, _ int, rootDir, chainName string, at time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if DeletionInProgress() {
		f.guardedMoves++
	}
	f.moved = append(f.moved, ip+":"+rootDir+"/"+chainName)
	f.moveAt = append(f.moveAt, at)
	return rootDir + "/deleted-tmp/" + chainName, nil
}

// fakeBuilder generates node directories the way the build script lays
// them out, one per requested node.
type fakeBuilder struct {
	layout *layout.Layout
	calls  int
	// failAfter makes Build return an error once the tree is written.
	failAfter error
}

func (b *fakeBuilder) Build(_ context.Context, _ model.EncryptType, ipConf []string, chainName string) error {
	b.calls++
	if ok, _ := b.layout.ChainRootExists(chainName); ok {
		return buildchain.ErrChainRootExists
	}
	for _, line := range ipConf {
		hostPart, _, _ := strings.Cut(line, " ")
		ip, numStr, _ := strings.Cut(hostPart, ":")
		num, err := strconv.Atoi(numStr)
		if err != nil {
			return err
		}
		for i := 0; i < num; i++ {
			dir := filepath.Join(b.layout.HostRoot(chainName, ip), "node"+strconv.Itoa(i))
			if err := os.MkdirAll(filepath.Join(dir, "conf"), 0o755); err != nil {
				return err
			}
			ini := fmt.Sprintf("[rpc]\nchannel_listen_port=%d\njsonrpc_listen_port=%d\n[p2p]\nlisten_port=%d\n", 20200+i, 8545+i, 30300+i)
			if err := os.WriteFile(filepath.Join(dir, "conf", "config.ini"), []byte(ini), 0o644); err != nil {
				return err
			}
			id := fmt.Sprintf("%s-%d", strings.ReplaceAll(ip, ".", ""), i)
			if err := os.WriteFile(filepath.Join(dir, "conf", "node.nodeid"), []byte(id), 0o644); err != nil {
				return err
			}
		}
	}
	return b.failAfter
}

// failingNodes fails reading one directory and renders the rest for real.
type failingNodes struct {
	nodeconf.Files
	failDir string
}

func (f failingNodes) Read(dir string, encrypt model.EncryptType) (model.NodeConfig, error) {
	if strings.HasSuffix(dir, f.failDir) {
		return model.NodeConfig{}, errors.New("corrupt config.ini")
	}
	return f.Files.Read(dir, encrypt)
}

// hookedFiles runs onDelete before deleting, and can refuse deletion.
type hookedFiles struct {
	*layout.Layout
	onDelete  func()
	deleteErr error
	deletes   int
}

func (h *hookedFiles) DeleteChain(chainName string) error {
	h.deletes++
	if h.onDelete != nil {
		h.onDelete()
	}
	if h.deleteErr != nil {
		return h.deleteErr
	}
	return h.Layout.DeleteChain(chainName)
}

type fakeChecker struct {
	healthy map[int]bool
	calls   int
}

func (c *fakeChecker) CheckAll(_ context.Context, fronts []model.Front) map[int]bool {
	c.calls++
	out := map[int]bool{}
	for _, f := range fronts {
		out[f.ID] = c.healthy[f.ID]
	}
	return out
}

type countingNotifier struct {
	n       int
	guarded int
}

func (c *countingNotifier) Trigger() {
	c.n++
	if DeletionInProgress() {
		c.guarded++
	}
}

type fixture struct {
	svc     *Service
	store   *db.Store
	layout  *layout.Layout
	files   *hookedFiles
	hosts   *fakeHosts
	builder *fakeBuilder
	checker *fakeChecker
	notify  *countingNotifier
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	store, err := db.NewStoreFromDSN("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("NewStoreFromDSN: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	l := layout.New(t.TempDir())
	f := &fixture{
		store:   store,
		layout:  l,
		files:   &hookedFiles{Layout: l},
		hosts:   &fakeHosts{unreachable: map[string]bool{}, images: map[string]bool{}, imageErr: map[string]error{}},
		builder: &fakeBuilder{layout: l},
		checker: &fakeChecker{healthy: map[int]bool{}},
		notify:  &countingNotifier{},
	}
	f.svc = NewService(store, Deps{
		Hosts:   f.hosts,
		Builder: f.builder,
		Files:   f.files,
		Nodes:   nodeconf.Files{},
		Checker: f.checker,
	}, opts)
	f.svc.SetNotifier(f.notify)
	return f
}

func (f *fixture) count(t *testing.T, table string, chainID int) int {
	t.Helper()
	n, err := db.CountByChain(context.Background(), f.store.Bun(), table, chainID)
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func twoHostRequest() model.DeployRequest {
	return model.DeployRequest{
		ChainID:     7,
		ChainName:   "alpha",
		Version:     "v2.9.1",
		EncryptType: model.EncryptECDSA,
		Description: "test chain",
		Hosts: []model.DeployHost{
			{IP: "10.0.0.1", Num: 3, ExtOrgID: 11, SSHUser: "root", SSHPort: 22, RootDir: "/opt/fisco"},
			{IP: "10.0.0.2", Num: 2, ExtOrgID: 12, SSHUser: "root", SSHPort: 22, RootDir: "/data/fisco"},
		},
	}
}

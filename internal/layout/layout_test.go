// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package layout

import (
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
	}
}

func TestListHostNodes_SortedByIndex(t *testing.T) {
	l := New(t.TempDir())
	host := l.HostRoot("alpha", "10.0.0.1")
	mkdirs(t,
		filepath.Join(host, "node10"),
		filepath.Join(host, "node2"),
		filepath.Join(host, "node0"),
		filepath.Join(host, "sdk"),
	)
	if err := os.WriteFile(filepath.Join(host, "node7"), []byte("file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := l.ListHostNodes("alpha", "10.0.0.1")
	if err != nil {
		t.Fatalf("ListHostNodes: %v", err)
	}
	want := []string{"node0", "node2", "node10"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, w := range want {
		if filepath.Base(got[i]) != w {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestListHostNodes_MissingHost(t *testing.T) {
	l := New(t.TempDir())
	if _, err := l.ListHostNodes("alpha", "10.0.0.9"); err == nil {
		t.Fatalf("expected error for missing host directory")
	}
}

func TestDeleteChain(t *testing.T) {
	l := New(t.TempDir())
	mkdirs(t, filepath.Join(l.HostRoot("alpha", "10.0.0.1"), "node0"))
	if err := os.WriteFile(l.IPConfPath("alpha"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := l.DeleteChain("alpha"); err != nil {
		t.Fatalf("DeleteChain: %v", err)
	}
	if ok, _ := l.ChainRootExists("alpha"); ok {
		t.Fatalf("chain root still present")
	}
	if _, err := os.Stat(l.IPConfPath("alpha")); !os.IsNotExist(err) {
		t.Fatalf("ipconf still present: %v", err)
	}
	// nothing left to delete
	if err := l.DeleteChain("alpha"); err != nil {
		t.Fatalf("second DeleteChain: %v", err)
	}
	if err := l.DeleteChain("../x"); err == nil {
		t.Fatalf("expected invalid name error")
	}
}

func TestValidateChainName(t *testing.T) {
	for _, ok := range []string{"alpha", "chain-1", "a.b"} {
		if err := ValidateChainName(ok); err != nil {
			t.Fatalf("ValidateChainName(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", ".", "..", "../escaped", "x/y", "/abs", "a/"} {
		if err := ValidateChainName(bad); err == nil {
			t.Fatalf("ValidateChainName(%q) should fail", bad)
		}
	}
}

func TestNodeIndexAndHostPaths(t *testing.T) {
	if i, err := NodeIndex("/a/b/node12"); err != nil || i != 12 {
		t.Fatalf("NodeIndex = %d, %v", i, err)
	}
	if _, err := NodeIndex("nodeX"); err == nil {
		t.Fatalf("expected error")
	}
	chainRoot := ChainRootOnHost("/opt/fisco", "alpha")
	if chainRoot != "/opt/fisco/alpha" {
		t.Fatalf("ChainRootOnHost = %q", chainRoot)
	}
	if got := NodeRootOnHost(chainRoot, 3); got != "/opt/fisco/alpha/node3" {
		t.Fatalf("NodeRootOnHost = %q", got)
	}
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package layout knows where generated chain trees live, both in the local
// nodes root and on the target hosts.
package layout // import "github.com/toeirei/chainmaster/internal/layout"

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

var nodeDirPattern = regexp.MustCompile(`^node([0-9]+)$`)

// Layout resolves paths below a local nodes root.
//
// The generated tree is <root>/<chain>/<ip>/node<N>.
type Layout struct {
	root string
}

// New returns a layout rooted at nodesRoot.
func New(nodesRoot string) *Layout {
	return &Layout{root: nodesRoot}
}

// Root returns the nodes root directory.
func (l *Layout) Root() string { return l.root }

// ChainRoot is the directory generated for a chain.
func (l *Layout) ChainRoot(chainName string) string {
	return filepath.Join(l.root, chainName)
}

// HostRoot is the directory holding a host's nodes of a chain.
func (l *Layout) HostRoot(chainName, ip string) string {
	return filepath.Join(l.root, chainName, ip)
}

// IPConfPath is where the build input for a chain is written.
func (l *Layout) IPConfPath(chainName string) string {
	return filepath.Join(l.root, chainName+"_ipconf")
}

// ChainRootExists reports whether a chain tree is already present.
func (l *Layout) ChainRootExists(chainName string) (bool, error) {
	_, err := os.Stat(l.ChainRoot(chainName))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// NodeIndex parses the host index out of a node directory name.
func NodeIndex(dir string) (int, error) {
	m := nodeDirPattern.FindStringSubmatch(filepath.Base(dir))
	if m == nil {
		return 0, fmt.Errorf("not a node directory: %s", dir)
	}
	return strconv.Atoi(m[1])
}

// ListHostNodes returns the node directories generated for ip, ordered by
// their index.
func (l *Layout) ListHostNodes(chainName, ip string) ([]string, error) {
	hostRoot := l.HostRoot(chainName, ip)
	entries, err := os.ReadDir(hostRoot)
	if err != nil {
		return nil, fmt.Errorf("list nodes of %s: %w", hostRoot, err)
	}
	type nodeDir struct {
		path  string
		index int
	}
	var dirs []nodeDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		idx, err := NodeIndex(e.Name())
		if err != nil {
			continue
		}
		dirs = append(dirs, nodeDir{path: filepath.Join(hostRoot, e.Name()), index: idx})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].index < dirs[j].index })

	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, d.path)
	}
	return out, nil
}

// ValidateChainName rejects names that would not map to exactly one
// directory directly below the nodes root.
func ValidateChainName(chainName string) error {
	if chainName == "" || chainName != filepath.Base(chainName) || chainName == "." || chainName == ".." {
		return fmt.Errorf("invalid chain name %q", chainName)
	}
	return nil
}

// DeleteChain removes the generated tree and build input of a chain. A
// chain that was never generated is not an error.
func (l *Layout) DeleteChain(chainName string) error {
	if err := ValidateChainName(chainName); err != nil {
		return err
	}
	if err := os.RemoveAll(l.ChainRoot(chainName)); err != nil {
		return fmt.Errorf("delete chain %s: %w", chainName, err)
	}
	if err := os.Remove(l.IPConfPath(chainName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete build input of %s: %w", chainName, err)
	}
	return nil
}

// ChainRootOnHost is the chain directory below a host root.
func ChainRootOnHost(rootDir, chainName string) string {
	return path.Join(rootDir, chainName)
}

// NodeRootOnHost is a node directory below a chain directory on a host.
func NodeRootOnHost(chainRootOnHost string, hostIndex int) string {
	return path.Join(chainRootOnHost, "node"+strconv.Itoa(hostIndex))
}

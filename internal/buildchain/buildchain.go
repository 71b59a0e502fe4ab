// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package buildchain runs the chain build script that generates node
// directories for a deployment.
package buildchain // import "github.com/toeirei/chainmaster/internal/buildchain"

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/toeirei/chainmaster/internal/layout"
	"github.com/toeirei/chainmaster/internal/logging"
	"github.com/toeirei/chainmaster/internal/model"
)

// DefaultTimeout bounds a single build run.
const DefaultTimeout = 10 * time.Minute

// ErrChainRootExists is returned when the output directory of a chain is
// already present. Nothing is written in that case.
var ErrChainRootExists = errors.New("chain root already exists")

// Runner invokes `bash <script> -f <ipconf> -o <chainRoot> [-g]`.
type Runner struct {
	Script  string
	Layout  *layout.Layout
	Timeout time.Duration
	// Shell defaults to "bash".
	Shell string
}

// Build writes the ipconf lines and runs the script once. The build input
// file is removed afterwards; generated nodes are left in place for the
// caller to register or delete.
func (r *Runner) Build(ctx context.Context, encrypt model.EncryptType, ipConf []string, chainName string) error {
	exists, err := r.Layout.ChainRootExists(chainName)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrChainRootExists, r.Layout.ChainRoot(chainName))
	}
	if err := os.MkdirAll(r.Layout.Root(), 0o755); err != nil {
		return fmt.Errorf("create nodes root: %w", err)
	}

	ipconf := r.Layout.IPConfPath(chainName)
	if err := os.WriteFile(ipconf, []byte(strings.Join(ipConf, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("write ipconf: %w", err)
	}
	defer func() { _ = os.Remove(ipconf) }()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shell := r.Shell
	if shell == "" {
		shell = "bash"
	}
	args := []string{r.Script, "-f", ipconf, "-o", r.Layout.ChainRoot(chainName)}
	if encrypt.IsSM() {
		args = append(args, "-g")
	}
	cmd := exec.CommandContext(ctx, shell, args...)
	cmd.WaitDelay = 5 * time.Second

	logging.Infof("building chain %s: %s %s", chainName, shell, strings.Join(args, " "))
	start := time.Now()
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("build chain %s: %w", chainName, ctx.Err())
		}
		return fmt.Errorf("build chain %s: %w: %s", chainName, err, lastLines(string(out), 5))
	}
	logging.Debugf("chain %s built in %s", chainName, time.Since(start).Round(time.Millisecond))
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
	"time"
)

// DeletedDir is the directory under a host root that receives removed chains.
const DeletedDir = "deleted-tmp"

var imageRefPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/:@-]*$`)

// ImageRef joins repository and version into an image reference.
func ImageRef(repository, version string) string {
	return repository + ":" + version
}

// ImageExists reports whether the node image of version is present on the
// host's docker daemon. A positive dockerPort addresses the daemon over TCP
// on the host's loopback instead of its default socket.
func (c *Connector) ImageExists(ctx context.Context, ip string, dockerPort int, user string, sshPort int, version string) (bool, error) {
	ref := ImageRef(c.opts.ImageRepository, version)
	if !imageRefPattern.MatchString(ref) {
		return false, fmt.Errorf("invalid image reference %q", ref)
	}
	s, err := c.Dial(ctx, ip, user, sshPort)
	if err != nil {
		return false, err
	}
	defer func() { _ = s.Close() }()

	out, err := s.Run(ctx, dockerImagesCommand(dockerPort, ref))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func dockerImagesCommand(dockerPort int, ref string) string {
	if dockerPort > 0 {
		return fmt.Sprintf("docker -H tcp://127.0.0.1:%d images -q %s", dockerPort, ref)
	}
	return fmt.Sprintf("docker images -q %s", ref)
}

// ArchivedChainPath returns where a removed chain directory is moved to.
func ArchivedChainPath(rootDir, chainName string, at time.Time) string {
	return path.Join(rootDir, DeletedDir, fmt.Sprintf("%s-%s", chainName, at.Format("20060102_150405")))
}

// MoveChainDir moves <rootDir>/<chainName> on the host into the deleted
// directory and returns the destination. A missing source is not an error
// and yields an empty destination.
func (c *Connector) MoveChainDir(ctx context.Context, ip, user string, port int, rootDir, chainName string, at time.Time) (string, error) {
	if chainName == "" || strings.ContainsAny(chainName, "/\\") {
		return "", fmt.Errorf("invalid chain name %q", chainName)
	}
	s, err := c.Dial(ctx, ip, user, port)
	if err != nil {
		return "", err
	}
	defer func() { _ = s.Close() }()

	sc, err := s.SFTP()
	if err != nil {
		return "", err
	}
	src := path.Join(rootDir, chainName)
	if _, err := sc.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat %s on %s: %w", src, ip, err)
	}
	dst := ArchivedChainPath(rootDir, chainName, at)
	if err := sc.MkdirAll(path.Dir(dst)); err != nil {
		return "", fmt.Errorf("create %s on %s: %w", path.Dir(dst), ip, err)
	}
	if err := sc.Rename(src, dst); err != nil {
		return "", fmt.Errorf("move %s to %s on %s: %w", src, dst, ip, err)
	}
	return dst, nil
}

// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package deploy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"github.com/toeirei/chainmaster/internal/logging"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultConnectTimeout bounds the TCP dial and SSH handshake.
const DefaultConnectTimeout = 10 * time.Second

// Options configures how hosts are reached.
type Options struct {
	// PrivateKey is a PEM encoded key. When empty only the agent is used.
	PrivateKey []byte
	Passphrase []byte
	// KnownHostsPath enables strict host key checking against an OpenSSH
	// known_hosts file. Empty accepts any host key.
	KnownHostsPath string
	Timeout        time.Duration
	// ImageRepository is the node image name checked on hosts, e.g. "fiscoorg/fisco-webase".
	ImageRepository string
}

// Connector opens SSH sessions to chain hosts.
type Connector struct {
	opts       Options
	signer     ssh.Signer
	hostKeys   ssh.HostKeyCallback
	dialer     net.Dialer
	agentFound func() []ssh.AuthMethod
}

// LoadPrivateKey reads a private key file. An empty path yields no key.
func LoadPrivateKey(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key %s: %w", path, err)
	}
	return data, nil
}

// NewConnector validates opts and parses the private key once.
func NewConnector(opts Options) (*Connector, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultConnectTimeout
	}
	c := &Connector{opts: opts, dialer: net.Dialer{Timeout: opts.Timeout}}

	if len(opts.PrivateKey) > 0 {
		var signer ssh.Signer
		var err error
		if len(opts.Passphrase) > 0 {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(opts.PrivateKey, opts.Passphrase)
		} else {
			signer, err = ssh.ParsePrivateKey(opts.PrivateKey)
		}
		if err != nil {
			return nil, fmt.Errorf("unable to parse private key: %w", err)
		}
		c.signer = signer
	}

	if opts.KnownHostsPath != "" {
		cb, err := knownhosts.New(opts.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("load known hosts %s: %w", opts.KnownHostsPath, err)
		}
		c.hostKeys = cb
	} else {
		c.hostKeys = ssh.InsecureIgnoreHostKey()
	}

	c.agentFound = func() []ssh.AuthMethod {
		if a := getSSHAgent(); a != nil {
			return []ssh.AuthMethod{ssh.PublicKeysCallback(a.Signers)}
		}
		return nil
	}
	return c, nil
}

// Session is one authenticated connection to a host.
type Session struct {
	client *ssh.Client
	sftp   *sftp.Client
	addr   string
}

func hostAddr(ip string, port int) string {
	if port <= 0 {
		port = 22
	}
	return net.JoinHostPort(ip, strconv.Itoa(port))
}

// Dial connects to ip:port as user. The private key is tried first; on an
// authentication failure the SSH agent is used as a fallback.
func (c *Connector) Dial(ctx context.Context, ip, user string, port int) (*Session, error) {
	addr := hostAddr(ip, port)

	var firstErr error
	if c.signer != nil {
		client, err := c.dial(ctx, addr, user, []ssh.AuthMethod{ssh.PublicKeys(c.signer)})
		if err == nil {
			return &Session{client: client, addr: addr}, nil
		}
		if !strings.Contains(err.Error(), "unable to authenticate") {
			return nil, fmt.Errorf("connect %s: %w", addr, err)
		}
		firstErr = err
	}

	auth := c.agentFound()
	if len(auth) == 0 {
		if firstErr != nil {
			return nil, fmt.Errorf("key authentication to %s failed and no SSH agent is available: %w", addr, firstErr)
		}
		return nil, fmt.Errorf("no authentication method available for %s (no private key and no SSH agent)", addr)
	}
	client, err := c.dial(ctx, addr, user, auth)
	if err != nil {
		return nil, fmt.Errorf("connect %s with ssh agent: %w", addr, err)
	}
	return &Session{client: client, addr: addr}, nil
}

func (c *Connector) dial(ctx context.Context, addr, user string, auth []ssh.AuthMethod) (*ssh.Client, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(c.opts.Timeout))
	}
	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: c.hostKeys,
		Timeout:         c.opts.Timeout,
	}
	sc, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// handshake done; later calls manage their own timing
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(sc, chans, reqs), nil
}

// Close releases the SFTP and SSH clients.
func (s *Session) Close() error {
	var errs []error
	if s.sftp != nil {
		errs = append(errs, s.sftp.Close())
	}
	if s.client != nil {
		errs = append(errs, s.client.Close())
	}
	return errors.Join(errs...)
}

// Run executes cmd on the host and returns its combined output. The session
// is closed early when ctx is cancelled.
func (s *Session) Run(ctx context.Context, cmd string) (string, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open session on %s: %w", s.addr, err)
	}
	defer func() { _ = sess.Close() }()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = sess.Close()
		case <-done:
		}
	}()

	out, err := sess.CombinedOutput(cmd)
	if ctx.Err() != nil {
		return string(out), ctx.Err()
	}
	if err != nil {
		return string(out), fmt.Errorf("run %q on %s: %w", cmd, s.addr, err)
	}
	return string(out), nil
}

// SFTP lazily opens the SFTP subsystem on the session.
func (s *Session) SFTP() (*sftp.Client, error) {
	if s.sftp != nil {
		return s.sftp, nil
	}
	c, err := sftp.NewClient(s.client)
	if err != nil {
		return nil, fmt.Errorf("failed to create sftp client for %s: %w", s.addr, err)
	}
	s.sftp = c
	return c, nil
}

// CheckConnect reports whether ip accepts an authenticated SSH session.
func (c *Connector) CheckConnect(ctx context.Context, ip, user string, port int) bool {
	s, err := c.Dial(ctx, ip, user, port)
	if err != nil {
		logging.Warnf("host %s unreachable over ssh: %v", ip, err)
		return false
	}
	_ = s.Close()
	return true
}

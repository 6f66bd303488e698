package tunnel

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	ncerr "sniffterm/internal/errors"
	"sniffterm/util"
)

// SSHConfig holds everything needed to log in to the gateway.
type SSHConfig struct {
	User          string
	Host          string
	Port          int
	KeyPath       string
	Password      string // used as-is when set; never prompted
	PromptPass    bool   // ask for a password on the controlling terminal
	UseAgent      bool
	StrictHostKey bool
	KnownHosts    string
	ConnTimeout   time.Duration

	// Keepalive is the interval between keepalive@openssh.com requests.
	// Zero disables them.  Serial sessions sit idle for long stretches
	// while the operator reads output, and NAT boxes drop quiet flows.
	Keepalive time.Duration

	// Prompt reads a secret from the operator.  Nil uses the terminal.
	Prompt Prompter
}

// SSHTunnel implements [Tunnel] with an ssh.Client.
type SSHTunnel struct {
	config *SSHConfig
	client *ssh.Client
	logger *util.Logger
	mu     sync.RWMutex
	alive  bool
}

// NewSSHTunnel creates a tunnel that is ready to [Connect].
func NewSSHTunnel(cfg *SSHConfig, logger *util.Logger) *SSHTunnel {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.ConnTimeout == 0 {
		cfg.ConnTimeout = 30 * time.Second
	}
	return &SSHTunnel{config: cfg, logger: logger}
}

// Addr returns the gateway's host:port.
func (t *SSHTunnel) Addr() string {
	return net.JoinHostPort(t.config.Host, strconv.Itoa(t.config.Port))
}

// Connect dials the gateway and completes the SSH handshake.
func (t *SSHTunnel) Connect(ctx context.Context) error {
	authMethods, err := BuildAuthMethods(t.config)
	if err != nil {
		return ncerr.WrapSSH("auth", t.config.Host, t.config.Port, err)
	}

	hkCallback, err := hostKeyCallback(t.config)
	if err != nil {
		return ncerr.WrapSSH("hostkey", t.config.Host, t.config.Port, err)
	}

	sshCfg := &ssh.ClientConfig{
		User:            t.config.User,
		Auth:            authMethods,
		HostKeyCallback: hkCallback,
		Timeout:         t.config.ConnTimeout,
	}

	addr := t.Addr()
	t.logger.Debug("ssh: dialing %s as %s", addr, t.config.User)

	dialer := net.Dialer{Timeout: t.config.ConnTimeout}
	tcpConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return ncerr.WrapSSH("dial", t.config.Host, t.config.Port, err)
	}

	// The handshake itself is not context-aware; bound it with a
	// deadline and drop the deadline once the session is up.
	if deadline, ok := ctx.Deadline(); ok {
		tcpConn.SetDeadline(deadline) //nolint:errcheck
	} else {
		tcpConn.SetDeadline(time.Now().Add(t.config.ConnTimeout)) //nolint:errcheck
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, sshCfg)
	if err != nil {
		tcpConn.Close()
		if strings.Contains(err.Error(), "unable to authenticate") {
			return ncerr.WrapSSH("auth", t.config.Host, t.config.Port,
				fmt.Errorf("%w as %s: %v", ncerr.ErrAuthFailed, t.config.User, err))
		}
		return ncerr.WrapSSH("handshake", t.config.Host, t.config.Port, err)
	}
	tcpConn.SetDeadline(time.Time{}) //nolint:errcheck

	client := ssh.NewClient(sshConn, chans, reqs)

	t.mu.Lock()
	t.client = client
	t.alive = true
	t.mu.Unlock()

	done := make(chan struct{})
	go t.monitor(client, done)
	if t.config.Keepalive > 0 {
		go t.keepalive(client, t.config.Keepalive, done)
	}
	return nil
}

// Dial opens a direct-tcpip channel to address through the gateway.
func (t *SSHTunnel) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	t.mu.RLock()
	client := t.client
	alive := t.alive
	t.mu.RUnlock()

	if !alive || client == nil {
		return nil, ncerr.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.logger.Debug("tunnel: dialing %s %s", network, address)
	conn, err := client.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("tunnel dial %s: %w", address, err)
	}
	return conn, nil
}

// Close shuts down the gateway connection.
func (t *SSHTunnel) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.alive = false
	if t.client != nil {
		err := t.client.Close()
		t.client = nil
		return err
	}
	return nil
}

// IsAlive reports whether the gateway connection is still up.
func (t *SSHTunnel) IsAlive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.alive
}

// monitor blocks until the SSH connection closes and flips the alive flag.
func (t *SSHTunnel) monitor(client *ssh.Client, done chan struct{}) {
	err := client.Wait()
	close(done)

	t.mu.Lock()
	if t.client == client || t.client == nil {
		t.alive = false
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Debug("ssh: gateway closed: %v", err)
	} else {
		t.logger.Debug("ssh: gateway closed")
	}
}

func (t *SSHTunnel) keepalive(client *ssh.Client, every time.Duration, done <-chan struct{}) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			if _, _, err := client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
				t.logger.Verbose("ssh: keepalive failed: %v", err)
				client.Close()
				return
			}
		}
	}
}

// Package forward relays locally-captured notifications to a remote host
// over SSH, executing notify-send there. It is meant to pair with
// internal/busmonitor: the monitor captures, forward ships the captured
// payload across the wire.
package forward

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/0xferrous/wispd/internal/wisp"
)

// Config configures the SSH endpoint and remote command used to replay
// notifications on another host.
type Config struct {
	SSHHost              string
	SSHPort              int
	SSHUser              string
	SSHPassword          string
	RemoteNotifySend     string
	StartupWait          time.Duration
	StartupPollInterval  time.Duration
	ConnectTimeout       time.Duration
}

// DefaultConfig mirrors wispd-forward's environment-variable defaults.
func DefaultConfig() Config {
	return Config{
		SSHHost:             "127.0.0.1",
		SSHPort:             2222,
		SSHUser:             "wisp",
		SSHPassword:         "wisp",
		RemoteNotifySend:    "notify-send",
		StartupWait:         60 * time.Second,
		StartupPollInterval: 500 * time.Millisecond,
		ConnectTimeout:      3 * time.Second,
	}
}

// Payload is the subset of a notification's fields relayed to the remote
// notify-send invocation.
type Payload struct {
	AppName       string
	Summary       string
	Body          string
	ExpireTimeout int32
	Urgency       wisp.Urgency
}

// PayloadFromEvent extracts a Payload from a received notification event.
func PayloadFromEvent(ev wisp.NotificationEvent) Payload {
	return Payload{
		AppName:       ev.Notification.AppName,
		Summary:       ev.Notification.Summary,
		Body:          ev.Notification.Body,
		ExpireTimeout: ev.Notification.TimeoutMs,
		Urgency:       ev.Notification.Urgency,
	}
}

// Forwarder owns a single, lazily (re)established SSH session and replays
// payloads over it, reconnecting once on failure before giving up.
type Forwarder struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	client *ssh.Client
}

// New creates a Forwarder for cfg.
func New(cfg Config, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{cfg: cfg, logger: logger}
}

// WaitForSSHStartup polls the SSH endpoint until it accepts a TCP
// connection or cfg.StartupWait elapses.
func (f *Forwarder) WaitForSSHStartup() error {
	addr := net.JoinHostPort(f.cfg.SSHHost, fmt.Sprintf("%d", f.cfg.SSHPort))
	deadline := time.Now().Add(f.cfg.StartupWait)

	for {
		conn, err := net.DialTimeout("tcp", addr, f.cfg.ConnectTimeout)
		if err == nil {
			conn.Close()
			f.logger.Info("ssh endpoint is reachable", "address", addr)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("forward: ssh endpoint %s not reachable within timeout: %w", addr, err)
		}
		time.Sleep(f.cfg.StartupPollInterval)
	}
}

// Forward relays payload to the remote host, connecting first if no client
// is open. If running the remote command fails, it reconnects and retries
// once; a failed initial connect is returned without a retry.
func (f *Forwarder) Forward(payload Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		client, err := f.connect()
		if err != nil {
			return err
		}
		f.client = client
	}

	if err := f.execNotify(f.client, payload); err == nil {
		return nil
	}

	f.logger.Warn("ssh session failed; reconnecting and retrying once")
	f.client.Close()
	client, err := f.connect()
	if err != nil {
		f.client = nil
		return err
	}
	f.client = client
	return f.execNotify(f.client, payload)
}

// Close closes the underlying SSH session, if any.
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client == nil {
		return nil
	}
	err := f.client.Close()
	f.client = nil
	return err
}

func (f *Forwarder) connect() (*ssh.Client, error) {
	addr := net.JoinHostPort(f.cfg.SSHHost, fmt.Sprintf("%d", f.cfg.SSHPort))
	clientCfg := &ssh.ClientConfig{
		User:            f.cfg.SSHUser,
		Auth:            []ssh.AuthMethod{ssh.Password(f.cfg.SSHPassword)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         f.cfg.ConnectTimeout,
	}

	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("forward: ssh dial %s: %w", addr, err)
	}
	return client, nil
}

func (f *Forwarder) execNotify(client *ssh.Client, payload Payload) error {
	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("forward: open ssh session: %w", err)
	}
	defer session.Close()

	var stdout, stderr strings.Builder
	session.Stdout = &stdout
	session.Stderr = &stderr

	cmd := buildRemoteNotifyCommand(f.cfg, payload)
	if err := session.Run(cmd); err != nil {
		return fmt.Errorf("forward: remote notify-send failed: %w (stderr: %s, stdout: %s)",
			err, strings.TrimSpace(stderr.String()), strings.TrimSpace(stdout.String()))
	}
	return nil
}

func buildRemoteNotifyCommand(cfg Config, payload Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -a %s -u %s",
		shQuote(cfg.RemoteNotifySend), shQuote(payload.AppName), shQuote(urgencyLabel(payload.Urgency)))

	if payload.ExpireTimeout >= 0 {
		fmt.Fprintf(&b, " -t %d", payload.ExpireTimeout)
	}

	b.WriteByte(' ')
	b.WriteString(shQuote(payload.Summary))

	if payload.Body != "" {
		b.WriteByte(' ')
		b.WriteString(shQuote(payload.Body))
	}

	return b.String()
}

func urgencyLabel(u wisp.Urgency) string {
	switch u {
	case wisp.UrgencyLow:
		return "low"
	case wisp.UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

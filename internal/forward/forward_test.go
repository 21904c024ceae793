package forward

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xferrous/wispd/internal/wisp"
)

func TestShQuote_EscapesSingleQuotes(t *testing.T) {
	assert.Equal(t, `'hello'`, shQuote("hello"))
	assert.Equal(t, `'it'"'"'s'`, shQuote("it's"))
}

func TestUrgencyLabel(t *testing.T) {
	assert.Equal(t, "low", urgencyLabel(wisp.UrgencyLow))
	assert.Equal(t, "normal", urgencyLabel(wisp.UrgencyNormal))
	assert.Equal(t, "critical", urgencyLabel(wisp.UrgencyCritical))
}

func TestBuildRemoteNotifyCommand_IncludesTimeoutWhenNonNegative(t *testing.T) {
	cfg := DefaultConfig()
	payload := Payload{AppName: "app", Summary: "hi", Body: "there", ExpireTimeout: 5000, Urgency: wisp.UrgencyNormal}

	cmd := buildRemoteNotifyCommand(cfg, payload)
	assert.Contains(t, cmd, "-t 5000")
	assert.Contains(t, cmd, "'hi'")
	assert.Contains(t, cmd, "'there'")
}

func TestBuildRemoteNotifyCommand_OmitsTimeoutWhenNegative(t *testing.T) {
	cfg := DefaultConfig()
	payload := Payload{AppName: "app", Summary: "hi", ExpireTimeout: -1, Urgency: wisp.UrgencyNormal}

	cmd := buildRemoteNotifyCommand(cfg, payload)
	assert.NotContains(t, cmd, "-t ")
}

func TestBuildRemoteNotifyCommand_OmitsEmptyBody(t *testing.T) {
	cfg := DefaultConfig()
	payload := Payload{AppName: "app", Summary: "hi", Body: "", ExpireTimeout: 0, Urgency: wisp.UrgencyNormal}

	cmd := buildRemoteNotifyCommand(cfg, payload)
	assert.Equal(t, "'notify-send' -a 'app' -u 'normal' -t 0 'hi'", cmd)
}

func TestPayloadFromEvent_ExtractsFields(t *testing.T) {
	ev := wisp.NotificationEvent{
		Kind: wisp.EventReceived,
		Notification: wisp.Notification{
			AppName: "app", Summary: "s", Body: "b", TimeoutMs: 10, Urgency: wisp.UrgencyCritical,
		},
	}
	p := PayloadFromEvent(ev)
	assert.Equal(t, "app", p.AppName)
	assert.Equal(t, "s", p.Summary)
	assert.Equal(t, wisp.UrgencyCritical, p.Urgency)
}

func TestWaitForSSHStartup_SucceedsWhenEndpointReachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	cfg := DefaultConfig()
	cfg.SSHHost = "127.0.0.1"
	cfg.SSHPort = addr.Port
	cfg.StartupWait = 2 * time.Second
	cfg.StartupPollInterval = 10 * time.Millisecond
	cfg.ConnectTimeout = 500 * time.Millisecond

	f := New(cfg, nil)
	assert.NoError(t, f.WaitForSSHStartup())
}

func TestWaitForSSHStartup_FailsWhenUnreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SSHHost = "127.0.0.1"
	cfg.SSHPort = 1
	cfg.StartupWait = 100 * time.Millisecond
	cfg.StartupPollInterval = 10 * time.Millisecond
	cfg.ConnectTimeout = 50 * time.Millisecond

	f := New(cfg, nil)
	assert.Error(t, f.WaitForSSHStartup())
}

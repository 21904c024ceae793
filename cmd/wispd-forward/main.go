// Package main is the entry point for wispd-forward, which relays locally
// captured notifications to a remote host over SSH.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/0xferrous/wispd/internal/busmonitor"
	"github.com/0xferrous/wispd/internal/forward"
	"github.com/0xferrous/wispd/internal/wisp"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := configFromEnv()
	logger.Info("starting notification forwarder",
		"ssh_host", cfg.SSHHost, "ssh_port", cfg.SSHPort, "ssh_user", cfg.SSHUser,
		"startup_wait", cfg.StartupWait)

	fwd := forward.New(cfg, logger)
	if err := fwd.WaitForSSHStartup(); err != nil {
		logger.Error("ssh endpoint never became reachable", "error", err)
		os.Exit(1)
	}
	defer fwd.Close()

	mon := busmonitor.NewMonitor(256, logger)
	if err := mon.Start(); err != nil {
		logger.Error("failed to start bus monitor", "error", err)
		os.Exit(1)
	}
	defer mon.Stop()

	logger.Info("attached to session bus; forwarding Notify calls to remote host")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	events := mon.Events()
	for {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			return
		case ev, ok := <-events:
			if !ok {
				logger.Warn("monitor event stream ended")
				return
			}
			if ev.Kind != wisp.EventReceived {
				continue
			}
			payload := forward.PayloadFromEvent(ev)
			if err := fwd.Forward(payload); err != nil {
				logger.Warn("failed to forward notification", "app", payload.AppName,
					"summary", payload.Summary, "error", err)
				continue
			}
			logger.Info("forwarded notification", "app", payload.AppName, "summary", payload.Summary)
		}
	}
}

func configFromEnv() forward.Config {
	cfg := forward.DefaultConfig()

	if v := os.Getenv("WISPD_FORWARD_SSH_HOST"); v != "" {
		cfg.SSHHost = v
	}
	if v := os.Getenv("WISPD_FORWARD_SSH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SSHPort = port
		}
	}
	if v := os.Getenv("WISPD_FORWARD_SSH_USER"); v != "" {
		cfg.SSHUser = v
	}
	if v := os.Getenv("WISPD_FORWARD_SSH_PASSWORD"); v != "" {
		cfg.SSHPassword = v
	}
	if v := os.Getenv("WISPD_FORWARD_NOTIFY_SEND"); v != "" {
		cfg.RemoteNotifySend = v
	}
	if v := os.Getenv("WISPD_FORWARD_SSH_STARTUP_WAIT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.StartupWait = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("WISPD_FORWARD_SSH_STARTUP_POLL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.StartupPollInterval = time.Duration(ms) * time.Millisecond
		}
	}

	return cfg
}

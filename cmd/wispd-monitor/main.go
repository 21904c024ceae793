// Package main is the entry point for wispd-monitor, a passive observer of
// org.freedesktop.Notifications traffic that never owns the bus name.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xferrous/wispd/internal/busmonitor"
	"github.com/0xferrous/wispd/internal/wisp"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	mon := busmonitor.NewMonitor(256, logger)
	if err := mon.Start(); err != nil {
		logger.Error("failed to start bus monitor", "error", err)
		os.Exit(1)
	}
	defer mon.Stop()

	logger.Info("wispd-monitor attached to session bus without owning org.freedesktop.Notifications")
	logger.Info("monitoring Notify calls and NotificationClosed/ActionInvoked signals")

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
			logEvent(logger, ev)
		}
	}
}

func logEvent(logger *slog.Logger, ev wisp.NotificationEvent) {
	switch ev.Kind {
	case wisp.EventReceived:
		logger.Info("Notify",
			"app_name", ev.Notification.AppName,
			"summary", ev.Notification.Summary,
			"body", ev.Notification.Body,
			"action_pairs", len(ev.Notification.Actions),
			"expire_timeout", ev.Notification.TimeoutMs,
		)
	case wisp.EventClosed:
		logger.Info("NotificationClosed", "id", ev.ID, "reason", ev.Reason.String())
	case wisp.EventActionInvoked:
		logger.Info("ActionInvoked", "id", ev.ID, "action_key", ev.ActionKey)
	}
}

// Package main is the entry point for the wispd notification daemon.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xferrous/wispd/internal/config"
	"github.com/0xferrous/wispd/internal/dbusnotify"
	"github.com/0xferrous/wispd/internal/popup"
	"github.com/0xferrous/wispd/internal/wisp"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to wispd.toml (defaults to ~/.config/wispd/wispd.toml)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		println("wispd version", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		println("failed to load config:", err.Error())
		os.Exit(1)
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(logLevelFromString(cfg.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)

	if err := run(logger, cfg, *configPath, levelVar); err != nil {
		logger.Error("wispd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg *config.Config, configPath string, levelVar *slog.LevelVar) error {
	logger.Info("starting wispd", "version", version, "dbus_name", cfg.DBusName)

	engine, events := wisp.NewEngine(cfg.SourceConfig(), logger)
	defer engine.Close()

	server := dbusnotify.NewServer(cfg.SourceConfig(), engine, logger)
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Close()

	consumer := popup.NewConsumer(events, engine, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumer.Run(ctx)

	resolvedPath := configPath
	if resolvedPath == "" {
		if p, err := config.Path(); err == nil {
			resolvedPath = p
		}
	}

	var watcher *config.Watcher
	if resolvedPath != "" {
		var err error
		watcher, err = config.NewWatcher(resolvedPath, logger)
		if err != nil {
			logger.Warn("failed to create config watcher; continuing without hot-reload", "error", err)
		} else {
			watcher.SetReloadCallback(func(newCfg *config.Config) {
				logger.Info("config reloaded; applying capabilities/timeout-default/log-level to the live engine",
					"server_name", newCfg.ServerName)
				engine.UpdateRuntimeConfig(newCfg.Capabilities, newCfg.DefaultTimeoutMs)
				levelVar.Set(logLevelFromString(newCfg.LogLevel))
			})
			watcher.SetErrorCallback(func(err error) {
				logger.Warn("config reload failed; keeping previous configuration", "error", err)
				engine.NotifyInternal(wisp.Notification{
					AppName: "wispd",
					Summary: "Configuration reload failed",
					Body:    err.Error(),
					Urgency: wisp.UrgencyLow,
				})
			})
			if err := watcher.Start(); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}
	}
	if watcher != nil {
		defer watcher.Stop()
	}

	logger.Info("wispd ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	return nil
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

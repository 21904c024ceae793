// Package main provides the CLI entrypoint for wisp-debug, a thin
// org.freedesktop.Notifications client used to exercise a running wispd
// by hand.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/0xferrous/wispd/internal/wisp"
)

var (
	version = "dev"

	globalOpts struct {
		verbose bool
	}
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "wisp-debug",
	Short:   "Command-line client for org.freedesktop.Notifications",
	Long:    "wisp-debug sends Notify/CloseNotification calls and reads server capabilities against a running notification daemon, for manual testing.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.AddCommand(notifyCmd, closeCmd, listCmd, capsCmd, infoCmd)
}

func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func sessionObject() (*dbus.Conn, dbus.BusObject, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, nil, fmt.Errorf("connect to session bus: %w", err)
	}
	obj := conn.Object(wisp.DefaultDBusName, dbus.ObjectPath(wisp.DefaultDBusPath))
	return conn, obj, nil
}

func main() {
	Execute()
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xferrous/wispd/internal/wisp"
)

var closeCmd = &cobra.Command{
	Use:   "close [id]",
	Short: "Send a CloseNotification call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id uint32
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		conn, obj, err := sessionObject()
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := obj.Call(wisp.DBusInterface+".CloseNotification", 0, id).Err; err != nil {
			return fmt.Errorf("CloseNotification call failed: %w", err)
		}
		return nil
	},
}

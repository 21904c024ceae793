package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xferrous/wispd/internal/wisp"
)

var capsCmd = &cobra.Command{
	Use:   "caps",
	Short: "Print GetCapabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, obj, err := sessionObject()
		if err != nil {
			return err
		}
		defer conn.Close()

		var caps []string
		if err := obj.Call(wisp.DBusInterface+".GetCapabilities", 0).Store(&caps); err != nil {
			return fmt.Errorf("GetCapabilities call failed: %w", err)
		}
		for _, c := range caps {
			fmt.Println(c)
		}
		return nil
	},
}

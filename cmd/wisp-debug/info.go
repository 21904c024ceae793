package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xferrous/wispd/internal/wisp"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print GetServerInformation",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, obj, err := sessionObject()
		if err != nil {
			return err
		}
		defer conn.Close()

		var name, vendor, ver, specVersion string
		err = obj.Call(wisp.DBusInterface+".GetServerInformation", 0).
			Store(&name, &vendor, &ver, &specVersion)
		if err != nil {
			return fmt.Errorf("GetServerInformation call failed: %w", err)
		}
		fmt.Printf("name: %s\nvendor: %s\nversion: %s\nspec_version: %s\n", name, vendor, ver, specVersion)
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const debugInterface = "org.freedesktop.wispd.Debug"

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List currently-live notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, obj, err := sessionObject()
		if err != nil {
			return err
		}
		defer conn.Close()

		var ids []uint32
		var appNames, summaries []string
		err = obj.Call(debugInterface+".ListNotifications", 0).Store(&ids, &appNames, &summaries)
		if err != nil {
			return fmt.Errorf("ListNotifications call failed: %w", err)
		}
		for i, id := range ids {
			fmt.Printf("%d\t%s\t%s\n", id, appNames[i], summaries[i])
		}
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/0xferrous/wispd/internal/wisp"
)

var (
	notifyAppName  string
	notifySummary  string
	notifyBody     string
	notifyIcon     string
	notifyTimeout  int32
	notifyReplaces uint32
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a Notify call and print the allocated id",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, obj, err := sessionObject()
		if err != nil {
			return err
		}
		defer conn.Close()

		var id uint32
		err = obj.Call(wisp.DBusInterface+".Notify", 0,
			notifyAppName, notifyReplaces, notifyIcon, notifySummary, notifyBody,
			[]string{}, map[string]dbus.Variant{}, notifyTimeout).Store(&id)
		if err != nil {
			return fmt.Errorf("Notify call failed: %w", err)
		}
		fmt.Println(id)
		return nil
	},
}

func init() {
	notifyCmd.Flags().StringVar(&notifyAppName, "app-name", "wisp-debug", "Application name")
	notifyCmd.Flags().StringVar(&notifySummary, "summary", "", "Notification summary")
	notifyCmd.Flags().StringVar(&notifyBody, "body", "", "Notification body")
	notifyCmd.Flags().StringVar(&notifyIcon, "icon", "", "Application icon")
	notifyCmd.Flags().Int32Var(&notifyTimeout, "timeout", -1, "Expire timeout in ms (-1 for server default)")
	notifyCmd.Flags().Uint32Var(&notifyReplaces, "replaces-id", 0, "Id to replace (0 for none)")
}

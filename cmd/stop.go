package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := daemonDo(http.MethodPost, "/stop", nil); err != nil {
			return err
		}

		fmt.Println("stopped")
		return nil
	},
}

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Ask the daemon for a pass now",
	RunE: func(cmd *cobra.Command, args []string) error {
		var reply map[string]string
		if err := daemonDo(http.MethodPost, "/sync", &reply); err != nil {
			return err
		}

		fmt.Println(reply["status"])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd, triggerCmd)
}

package cmd

import (
	"fmt"
	"net/http"
	"time"
	"treesync/internal/daemon"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status daemon.Status
		if err := daemonDo(http.MethodGet, "/status", &status); err != nil {
			return err
		}

		fmt.Printf("uptime:  %s\n", time.Since(status.StartedAt).Round(time.Second))
		fmt.Printf("passes:  %d (%d failed)\n", status.Passes, status.Failed)

		if status.Running {
			fmt.Printf("running: yes (%s)\n", status.Reason)
		} else {
			fmt.Println("running: no")
		}

		if c := status.Current; c != nil {
			fmt.Printf("current: %d pending, %d in flight, %d/%d done, %d failed\n",
				c.Pending, c.InFlight, c.Completed, c.Queued, c.Failed)
		}

		if status.LastRun != nil {
			fmt.Printf("last:    %s\n", status.LastRun.Format("2006-01-02 15:04:05"))
		}
		if s := status.LastSummary; s != nil {
			fmt.Printf("         %s -> %s, %d tasks, %d uploaded, %d replaced, %d conflicts\n",
				s.LocalRoot, s.RemoteRoot, s.Tasks.Completed, s.Counts.Uploaded, s.Counts.Replaced, s.Counts.Conflicts)
		}
		if status.LastError != "" {
			fmt.Printf("error:   %s\n", status.LastError)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

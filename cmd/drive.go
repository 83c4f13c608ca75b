package cmd

import (
	"fmt"
	"treesync/internal/logger"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Show the default drive of the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		acc, err := openAccessor(cmd.Context(), cfg.Provider)
		if err != nil {
			return err
		}

		d, err := acc.DefaultDrive(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("provider: %s\n", cfg.Provider)
		fmt.Printf("id:       %s\n", d.ID)
		fmt.Printf("owner:    %s\n", d.Owner)
		if d.Total > 0 {
			fmt.Printf("used:     %s of %s\n", humanize.IBytes(uint64(d.Used)), humanize.IBytes(uint64(d.Total)))
		} else {
			fmt.Printf("used:     %s\n", humanize.IBytes(uint64(d.Used)))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(driveCmd)
}

package cmd

import (
	"fmt"
	"treesync/internal/auth"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:       "auth [gdrive|dropbox]",
	Short:     "Authenticate with a cloud provider",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"gdrive", "dropbox"},
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := auth.Lookup(args[0])
		if err != nil {
			return err
		}

		if err := p.Authorize(); err != nil {
			return err
		}

		fmt.Printf("authenticated with %s\n", p.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}

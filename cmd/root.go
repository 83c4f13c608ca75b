package cmd

import (
	"fmt"
	"os"
	"treesync/internal/config"
	"treesync/internal/db"
	"treesync/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfg   *config.Config
	debug bool
)

var rootCmd = &cobra.Command{
	Use:          "treesync",
	Short:        "Mirror a local folder tree into cloud storage",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger.Init(debug || cfg.Debug)

		dbCmds := map[string]bool{"sync": true, "watch": true}
		if dbCmds[cmd.Name()] {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := db.Init(cfg.DBPath); err != nil {
				return err
			}
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = db.Close()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", cfg.DaemonPort, path)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	"treesync/internal/logger"
	"treesync/internal/repository"
	"treesync/internal/syncer"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncDryRun  bool
	syncWorkers int
)

var syncCmd = &cobra.Command{
	Use:   "sync [local] [remote]",
	Short: "Run one reconciliation pass",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		localRoot, remoteRoot := cfg.LocalRoot, cfg.RemoteRoot
		if len(args) > 0 {
			localRoot = args[0]
		}
		if len(args) > 1 {
			remoteRoot = args[1]
		}
		if localRoot == "" {
			return fmt.Errorf("local root is required (argument or local_root in config)")
		}
		if cmd.Flags().Changed("dry-run") {
			cfg.DryRun = syncDryRun
		}
		if syncWorkers > 0 {
			cfg.Workers = syncWorkers
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		acc, err := openAccessor(ctx, cfg.Provider)
		if err != nil {
			return err
		}

		repo := repository.NewHistoryRepository()
		bar := newProgress()

		runner, err := syncer.NewRunner(acc, afero.NewOsFs(), runnerOptions(localRoot, remoteRoot, repo, bar))
		if err != nil {
			return err
		}
		bar.runner = runner

		logger.Log.Info("starting pass",
			zap.String("local", localRoot),
			zap.String("remote", remoteRoot),
			zap.String("provider", cfg.Provider),
			zap.Bool("dry_run", cfg.DryRun))

		bar.Start()
		summary, err := runner.Run(ctx)
		bar.Finish()
		if err != nil {
			return err
		}

		c := summary.Counts
		fmt.Printf("done in %s: %d tasks, %d failed\n",
			summary.Duration.Round(time.Millisecond), summary.Tasks.Completed, summary.Tasks.Failed)
		fmt.Printf("  uploaded %d, replaced %d, touched %d, folders created %d\n",
			c.Uploaded, c.Replaced, c.Touched, c.FoldersCreated)
		fmt.Printf("  conflicts %d, remote-only %d, ignored %d\n",
			c.Conflicts, c.RemoteOnly, c.Ignored)
		if summary.DryRun {
			fmt.Println("  dry run: nothing was changed")
		}

		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report what would change without touching the remote")
	syncCmd.Flags().IntVar(&syncWorkers, "workers", 0, "number of concurrent tasks (default from config)")
	rootCmd.AddCommand(syncCmd)
}

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"
	"treesync/internal/daemon"
	"treesync/internal/logger"
	"treesync/internal/pipeline"
	"treesync/internal/repository"
	"treesync/internal/syncer"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const watchBuffer = 256

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the remote mirror up to date in the background",
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	if cfg.LocalRoot == "" {
		return fmt.Errorf("local_root is not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	acc, err := openAccessor(ctx, cfg.Provider)
	if err != nil {
		return err
	}

	repo := repository.NewHistoryRepository()
	runner, err := syncer.NewRunner(acc, afero.NewOsFs(), runnerOptions(cfg.LocalRoot, cfg.RemoteRoot, repo))
	if err != nil {
		return err
	}

	d := daemon.New(runner, cfg.WatchInterval)

	w, err := daemon.NewWatcher(watchBuffer)
	if err != nil {
		return err
	}
	if err := w.Watch(cfg.LocalRoot); err != nil {
		return err
	}
	defer w.Stop()

	go d.Follow(pipeline.Debounce(pipeline.Filter(w.Events(), cfg.IgnoreList), cfg.Debounce))

	srv := daemon.NewServer(d, repo, cfg.DaemonPort)
	srv.Start()

	logger.Log.Info("treesync daemon started",
		zap.String("local", cfg.LocalRoot),
		zap.String("remote", cfg.RemoteRoot),
		zap.Duration("interval", cfg.WatchInterval),
		zap.Int("port", cfg.DaemonPort))

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- d.Run(runCtx)
	}()

	select {
	case <-ctx.Done():
		logger.Log.Info("shutting down")
	case <-srv.StopCh():
		logger.Log.Info("stop requested via API")
	}

	cancel()
	if err := <-done; err != nil {
		logger.Log.Warn("daemon loop ended with error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

package cmd

import (
	"context"
	"fmt"
	"treesync/internal/queue"
	"treesync/internal/remote"
	"treesync/internal/remote/dropbox"
	"treesync/internal/remote/gdrive"
	"treesync/internal/repository"
	"treesync/internal/syncer"

	"github.com/spf13/afero"
)

func openAccessor(ctx context.Context, provider string) (remote.Accessor, error) {
	fs := afero.NewOsFs()

	switch provider {
	case "gdrive":
		return gdrive.Open(ctx, fs)
	case "dropbox":
		return dropbox.Open(ctx, fs)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func runnerOptions(localRoot, remoteRoot string, repo *repository.HistoryRepository, recorders ...queue.Recorder) syncer.Options {
	return syncer.Options{
		LocalRoot:          localRoot,
		RemoteRoot:         remoteRoot,
		Workers:            cfg.Workers,
		ChunkSize:          cfg.ChunkSize,
		LargeFileThreshold: cfg.LargeFileThreshold,
		Ignore:             cfg.IgnoreList,
		DryRun:             cfg.DryRun,
		Recorders:          append([]queue.Recorder{repo}, recorders...),
		OnConflict:         repo.RecordConflict,
	}
}

package syncer

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync/atomic"
	"time"
	"treesync/internal/local"
	"treesync/internal/logger"
	"treesync/internal/model"
	"treesync/internal/queue"
	"treesync/internal/remote"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type Options struct {
	LocalRoot          string
	RemoteRoot         string
	Workers            int
	ChunkSize          int64
	LargeFileThreshold int64
	Ignore             []string
	DryRun             bool
	Recorders          []queue.Recorder
	OnConflict         ConflictFunc
}

type Summary struct {
	LocalRoot  string        `json:"local_root"`
	RemoteRoot string        `json:"remote_root"`
	DryRun     bool          `json:"dry_run"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Tasks      queue.Stats   `json:"tasks"`
	Counts     Counts        `json:"counts"`
}

// Runner performs reconciliation passes. Each pass gets its own queue.
type Runner struct {
	remote  remote.Accessor
	fs      afero.Fs
	opts    Options
	current atomic.Pointer[queue.Queue]
}

func NewRunner(acc remote.Accessor, fs afero.Fs, opts Options) (*Runner, error) {
	if acc == nil {
		return nil, fmt.Errorf("%w: nil remote accessor", ErrInvalidArgument)
	}
	if opts.LocalRoot == "" {
		return nil, fmt.Errorf("%w: local root is required", ErrInvalidArgument)
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if opts.DryRun {
		acc = remote.NewReadOnly(acc)
	}

	return &Runner{remote: acc, fs: fs, opts: opts}, nil
}

// Current returns the task statistics of the pass in progress.
func (r *Runner) Current() (queue.Stats, bool) {
	q := r.current.Load()
	if q == nil {
		return queue.Stats{}, false
	}

	return q.Stats(), true
}

// Run executes one full pass and returns once every queued task has run.
// Only failures to set the pass up are returned; task failures are counted
// in the summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{
		LocalRoot:  r.opts.LocalRoot,
		RemoteRoot: r.opts.RemoteRoot,
		DryRun:     r.opts.DryRun,
		StartedAt:  time.Now(),
	}

	root, err := r.ensureRoot(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to resolve remote root: %w", err)
	}

	q := queue.New()
	env := &Env{
		Queue:              q,
		Remote:             r.remote,
		Local:              local.NewLister(r.fs),
		ChunkSize:          r.opts.ChunkSize,
		LargeFileThreshold: r.opts.LargeFileThreshold,
		OnConflict:         r.opts.OnConflict,
	}
	if r.opts.Ignore != nil {
		env.Ignore = NewIgnoreList(r.opts.Ignore...)
	}

	seed, err := NewCheckFolderTask(env, root, r.opts.LocalRoot)
	if err != nil {
		return summary, err
	}
	q.Add(seed)

	var opts []queue.Option
	for _, rec := range r.opts.Recorders {
		opts = append(opts, queue.WithRecorder(rec))
	}

	logger.Log.Info("sync pass started",
		zap.String("local", r.opts.LocalRoot),
		zap.String("remote", root.FullName()),
		zap.Bool("dry_run", r.opts.DryRun))

	r.current.Store(q)
	defer r.current.Store(nil)

	runErr := queue.NewScheduler(q, r.opts.Workers, opts...).Run(ctx)

	summary.Duration = time.Since(summary.StartedAt)
	summary.Tasks = q.Stats()
	summary.Counts = env.Counters.Snapshot()

	logger.Log.Info("sync pass finished",
		zap.Duration("took", summary.Duration),
		zap.Int("completed", summary.Tasks.Completed),
		zap.Int("failed", summary.Tasks.Failed),
		zap.Int64("conflicts", summary.Counts.Conflicts))

	return summary, runErr
}

// ensureRoot walks RemoteRoot from the drive root, creating missing folders
// on the way.
func (r *Runner) ensureRoot(ctx context.Context) (*model.RemoteItem, error) {
	item, err := r.remote.Root(ctx)
	if err != nil {
		return nil, err
	}

	p := strings.Trim(path.Clean("/"+r.opts.RemoteRoot), "/")
	if p == "" {
		return item, nil
	}

	for _, part := range strings.Split(p, "/") {
		children, err := r.remote.Children(ctx, item)
		if err != nil {
			return nil, err
		}

		var next *model.RemoteItem
		for _, child := range children {
			if child.Name == part {
				next = child
				break
			}
		}

		switch {
		case next == nil:
			next, err = r.remote.CreateFolder(ctx, item, part)
			if err != nil {
				return nil, err
			}
			logger.Log.Info("remote root folder created",
				zap.String("remote", next.FullName()))
		case !next.IsFolder():
			return nil, remote.Wrap("resolve root", next.FullName(), remote.ErrNotFolder)
		}

		item = next
	}

	return item, nil
}

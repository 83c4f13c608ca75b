package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"treesync/internal/logger"
	"treesync/internal/model"
	"treesync/internal/util"

	"go.uber.org/zap"
)

// Modification times closer than this are treated as equal; several
// backends store seconds only.
const timeTolerance = 2 * time.Second

// CheckFileTask compares a matched remote/local file pair and brings the
// remote copy up to date. It never queues further work.
type CheckFileTask struct {
	env  *Env
	item *model.RemoteItem
	file model.LocalEntry
}

func NewCheckFileTask(env *Env, item *model.RemoteItem, file model.LocalEntry) (*CheckFileTask, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	if item == nil || item.IsFolder() {
		return nil, fmt.Errorf("%w: remote target of a file check must be a file", ErrInvalidArgument)
	}
	if item.Parent == nil {
		return nil, fmt.Errorf("%w: remote file %s has no parent", ErrInvalidArgument, item.Name)
	}
	if !env.Local.IsFile(file.Path) {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrInvalidArgument, file.Path)
	}

	return &CheckFileTask{env: env, item: item, file: file}, nil
}

func (t *CheckFileTask) Priority() int {
	return PriorityCheckFile
}

func (t *CheckFileTask) Kind() string {
	return "check_file"
}

func (t *CheckFileTask) String() string {
	return fmt.Sprintf("check file %s against %s", t.item.FullName(), t.file.Path)
}

func (t *CheckFileTask) Run(ctx context.Context) error {
	changed, err := t.contentChanged()
	if err != nil {
		return err
	}

	if changed {
		stored, err := t.env.store(ctx, t.item.Parent, t.file, true)
		if err != nil {
			return err
		}

		if _, err := t.env.Remote.UpdateTimestamps(ctx, stored, t.file.ModTime, t.file.ModTime); err != nil {
			return err
		}

		t.env.Counters.Replaced.Add(1)
		logger.Log.Info("remote file replaced",
			zap.String("remote", t.item.FullName()),
			zap.String("local", t.file.Path),
			zap.Int64("size", t.file.Size))
		return nil
	}

	if !sameTime(t.item.ModifiedAt, t.file.ModTime) {
		created := t.item.CreatedAt
		if created.IsZero() {
			created = t.file.ModTime
		}

		if _, err := t.env.Remote.UpdateTimestamps(ctx, t.item, created, t.file.ModTime); err != nil {
			return err
		}

		t.env.Counters.Touched.Add(1)
		logger.Log.Info("remote timestamps updated",
			zap.String("remote", t.item.FullName()),
			zap.Time("modified", t.file.ModTime))
	}

	return nil
}

// contentChanged compares sizes and, when the remote side reports an md5,
// the local digest. Without a remote digest a differing modification time
// counts as a change.
func (t *CheckFileTask) contentChanged() (bool, error) {
	if t.item.Size != t.file.Size {
		return true, nil
	}

	if t.item.Hash == "" {
		return !sameTime(t.item.ModifiedAt, t.file.ModTime), nil
	}

	sum, err := util.MD5(t.env.Local.Fs(), t.file.Path)
	if err != nil {
		return false, err
	}

	return !strings.EqualFold(sum, t.item.Hash), nil
}

func sameTime(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}

	return d <= timeTolerance
}

package syncer

import (
	"context"
	"fmt"
	"treesync/internal/logger"
	"treesync/internal/model"

	"go.uber.org/zap"
)

// UploadTask sends one local file into a remote folder, as a new item or,
// with replace, over a same-named one.
type UploadTask struct {
	env     *Env
	parent  *model.RemoteItem
	file    model.LocalEntry
	replace bool
}

func NewUploadTask(env *Env, parent *model.RemoteItem, file model.LocalEntry, replace bool) (*UploadTask, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	if parent == nil || !parent.IsFolder() {
		return nil, fmt.Errorf("%w: upload target must be a folder", ErrInvalidArgument)
	}
	if !env.Local.IsFile(file.Path) {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrInvalidArgument, file.Path)
	}

	return &UploadTask{env: env, parent: parent, file: file, replace: replace}, nil
}

func (t *UploadTask) Priority() int {
	return PriorityUpload
}

func (t *UploadTask) Kind() string {
	return "upload"
}

func (t *UploadTask) String() string {
	verb := "upload"
	if t.replace {
		verb = "replace"
	}

	return fmt.Sprintf("%s %s into %s", verb, t.file.Path, t.parent.FullName())
}

func (t *UploadTask) Run(ctx context.Context) error {
	stored, err := t.env.store(ctx, t.parent, t.file, t.replace)
	if err != nil {
		return err
	}

	if _, err := t.env.Remote.UpdateTimestamps(ctx, stored, t.file.ModTime, t.file.ModTime); err != nil {
		return err
	}

	t.env.Counters.Uploaded.Add(1)
	logger.Log.Info("file uploaded",
		zap.String("local", t.file.Path),
		zap.String("remote", stored.FullName()),
		zap.Int64("size", t.file.Size),
		zap.Bool("chunked", t.file.Size > t.env.largeFileThreshold()))

	return nil
}

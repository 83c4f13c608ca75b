package remote

import (
	"context"
	"strings"
	"time"
	"treesync/internal/logger"
	"treesync/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReadOnly forwards listing calls to the wrapped accessor. Mutating calls
// succeed without touching the remote tree and return items shaped like the
// ones the real call would have produced.
type ReadOnly struct {
	inner Accessor
}

func NewReadOnly(inner Accessor) *ReadOnly {
	return &ReadOnly{inner: inner}
}

func (r *ReadOnly) DefaultDrive(ctx context.Context) (*model.Drive, error) {
	return r.inner.DefaultDrive(ctx)
}

func (r *ReadOnly) Root(ctx context.Context) (*model.RemoteItem, error) {
	return r.inner.Root(ctx)
}

func (r *ReadOnly) Path(ctx context.Context, path string, withChildren bool) (*model.RemoteItem, error) {
	return r.inner.Path(ctx, path, withChildren)
}

func (r *ReadOnly) Children(ctx context.Context, folder *model.RemoteItem) ([]*model.RemoteItem, error) {
	if isSynthetic(folder) {
		return nil, nil
	}

	return r.inner.Children(ctx, folder)
}

func (r *ReadOnly) ReplaceFile(_ context.Context, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error) {
	if err := RequireFolder(parent); err != nil {
		return nil, err
	}

	logger.Log.Info("dry run: replace file",
		zap.String("parent", parent.FullName()),
		zap.String("file", file.Path))
	return syntheticFile(parent, file), nil
}

func (r *ReadOnly) UploadFile(_ context.Context, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error) {
	if err := RequireFolder(parent); err != nil {
		return nil, err
	}

	logger.Log.Info("dry run: upload file",
		zap.String("parent", parent.FullName()),
		zap.String("file", file.Path))
	return syntheticFile(parent, file), nil
}

func (r *ReadOnly) UploadFileInChunks(_ context.Context, parent *model.RemoteItem, file model.LocalEntry, chunkSize int64) (*model.RemoteItem, error) {
	if err := RequireFolder(parent); err != nil {
		return nil, err
	}

	logger.Log.Info("dry run: chunked upload",
		zap.String("parent", parent.FullName()),
		zap.String("file", file.Path),
		zap.Int64("chunk_size", chunkSize))
	return syntheticFile(parent, file), nil
}

func (r *ReadOnly) UpdateTimestamps(_ context.Context, item *model.RemoteItem, _, _ time.Time) (*model.RemoteItem, error) {
	return item, nil
}

func (r *ReadOnly) CreateFolder(_ context.Context, parent *model.RemoteItem, name string) (*model.RemoteItem, error) {
	if err := RequireFolder(parent); err != nil {
		return nil, err
	}

	now := time.Now()
	logger.Log.Info("dry run: create folder",
		zap.String("parent", parent.FullName()),
		zap.String("name", name))

	return &model.RemoteItem{
		ID:         syntheticPrefix + uuid.NewString(),
		Name:       name,
		Kind:       model.KindFolder,
		Parent:     parent,
		CreatedAt:  now,
		ModifiedAt: now,
	}, nil
}

func (r *ReadOnly) Download(context.Context, *model.RemoteItem, string) error {
	return nil
}

func (r *ReadOnly) Delete(context.Context, *model.RemoteItem) error {
	return nil
}

const syntheticPrefix = "dry-run:"

// Folders made up by a dry run do not exist remotely, so listing them would
// fail against the real backend; they are empty by definition.
func isSynthetic(item *model.RemoteItem) bool {
	return item != nil && strings.HasPrefix(item.ID, syntheticPrefix)
}

func syntheticFile(parent *model.RemoteItem, file model.LocalEntry) *model.RemoteItem {
	return &model.RemoteItem{
		ID:         syntheticPrefix + uuid.NewString(),
		Name:       file.Name,
		Kind:       model.KindFile,
		Parent:     parent,
		Size:       file.Size,
		CreatedAt:  file.ModTime,
		ModifiedAt: file.ModTime,
	}
}

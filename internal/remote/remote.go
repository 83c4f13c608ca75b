// Package remote defines the boundary to the cloud-storage service: the
// Accessor contract, the page-assembly loop every backend lists folders
// with, and a read-only variant used for dry runs.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"
	"treesync/internal/model"
)

var (
	ErrNotFound       = errors.New("remote item not found")
	ErrNotFolder      = errors.New("remote item is not a folder")
	ErrPaginationLoop = errors.New("listing returned an already used continuation token")
)

// Accessor is implemented by every remote backend. All calls may fail with
// an *Error.
type Accessor interface {
	DefaultDrive(ctx context.Context) (*model.Drive, error)
	Root(ctx context.Context) (*model.RemoteItem, error)
	// Path resolves a slash separated path below the root. With
	// withChildren the returned item has Children filled.
	Path(ctx context.Context, path string, withChildren bool) (*model.RemoteItem, error)
	// Children returns every child of folder across all pages, in listing
	// order, with Parent set to folder.
	Children(ctx context.Context, folder *model.RemoteItem) ([]*model.RemoteItem, error)

	ReplaceFile(ctx context.Context, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error)
	UploadFile(ctx context.Context, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error)
	// UploadFileInChunks sends the file in chunkSize pieces. A same-named
	// file already under parent is replaced.
	UploadFileInChunks(ctx context.Context, parent *model.RemoteItem, file model.LocalEntry, chunkSize int64) (*model.RemoteItem, error)
	UpdateTimestamps(ctx context.Context, item *model.RemoteItem, created, modified time.Time) (*model.RemoteItem, error)
	CreateFolder(ctx context.Context, parent *model.RemoteItem, name string) (*model.RemoteItem, error)
	Download(ctx context.Context, item *model.RemoteItem, target string) error
	Delete(ctx context.Context, item *model.RemoteItem) error
}

type Error struct {
	Op   string
	Item string
	Err  error
}

func (e *Error) Error() string {
	if e.Item == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.Item, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(op, item string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Op: op, Item: item, Err: err}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func RequireFolder(item *model.RemoteItem) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", ErrNotFolder)
	}

	if !item.IsFolder() {
		return fmt.Errorf("%w: %s", ErrNotFolder, item.FullName())
	}

	return nil
}

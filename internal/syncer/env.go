// Package syncer reconciles a local directory tree against a remote one by
// expanding folder checks into further folder checks, file checks and
// uploads on a shared queue.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"treesync/internal/local"
	"treesync/internal/model"
	"treesync/internal/queue"
	"treesync/internal/remote"
)

const (
	PriorityCheckFolder = 10
	PriorityCheckFile   = 10
	PriorityUpload      = 50

	DefaultChunkSize          int64 = 10 << 20
	DefaultLargeFileThreshold int64 = 10 << 20
)

var ErrInvalidArgument = errors.New("invalid argument")

// ConflictFunc is told about a name that is a folder on one side and a file
// on the other.
type ConflictFunc func(remoteItem *model.RemoteItem, entry model.LocalEntry)

// Env carries the collaborators every task of one pass shares.
type Env struct {
	Queue  *queue.Queue
	Remote remote.Accessor
	Local  *local.Lister
	// Ignore defaults to DefaultIgnoreList when nil.
	Ignore             IgnoreList
	ChunkSize          int64
	LargeFileThreshold int64
	OnConflict         ConflictFunc
	Counters           Counters
}

func (e *Env) validate() error {
	switch {
	case e == nil:
		return fmt.Errorf("%w: nil env", ErrInvalidArgument)
	case e.Queue == nil:
		return fmt.Errorf("%w: nil queue", ErrInvalidArgument)
	case e.Remote == nil:
		return fmt.Errorf("%w: nil remote accessor", ErrInvalidArgument)
	case e.Local == nil:
		return fmt.Errorf("%w: nil local lister", ErrInvalidArgument)
	}

	return nil
}

func (e *Env) ignored(name string) bool {
	if e.Ignore == nil {
		return DefaultIgnoreList().Match(name)
	}

	return e.Ignore.Match(name)
}

func (e *Env) chunkSize() int64 {
	if e.ChunkSize <= 0 {
		return DefaultChunkSize
	}

	return e.ChunkSize
}

func (e *Env) largeFileThreshold() int64 {
	if e.LargeFileThreshold <= 0 {
		return DefaultLargeFileThreshold
	}

	return e.LargeFileThreshold
}

// store sends file into parent, in chunks when it is larger than the
// threshold. Chunked uploads always replace a same-named file.
func (e *Env) store(ctx context.Context, parent *model.RemoteItem, file model.LocalEntry, replace bool) (*model.RemoteItem, error) {
	if file.Size > e.largeFileThreshold() {
		return e.Remote.UploadFileInChunks(ctx, parent, file, e.chunkSize())
	}

	if replace {
		return e.Remote.ReplaceFile(ctx, parent, file)
	}

	return e.Remote.UploadFile(ctx, parent, file)
}

type Counters struct {
	Conflicts      atomic.Int64
	RemoteOnly     atomic.Int64
	Ignored        atomic.Int64
	FoldersCreated atomic.Int64
	Uploaded       atomic.Int64
	Replaced       atomic.Int64
	Touched        atomic.Int64
}

type Counts struct {
	Conflicts      int64 `json:"conflicts"`
	RemoteOnly     int64 `json:"remote_only"`
	Ignored        int64 `json:"ignored"`
	FoldersCreated int64 `json:"folders_created"`
	Uploaded       int64 `json:"uploaded"`
	Replaced       int64 `json:"replaced"`
	Touched        int64 `json:"touched"`
}

func (c *Counters) Snapshot() Counts {
	return Counts{
		Conflicts:      c.Conflicts.Load(),
		RemoteOnly:     c.RemoteOnly.Load(),
		Ignored:        c.Ignored.Load(),
		FoldersCreated: c.FoldersCreated.Load(),
		Uploaded:       c.Uploaded.Load(),
		Replaced:       c.Replaced.Load(),
		Touched:        c.Touched.Load(),
	}
}

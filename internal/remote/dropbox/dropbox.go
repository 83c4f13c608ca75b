// Package dropbox implements remote.Accessor on top of the Dropbox API v2.
package dropbox

import (
	"context"
	"fmt"
	"io"
	"time"
	"treesync/internal/auth"
	"treesync/internal/logger"
	"treesync/internal/model"
	"treesync/internal/remote"
	"treesync/internal/util"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/users"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// filesAPI is the part of files.Client the accessor calls.
type filesAPI interface {
	GetMetadata(arg *files.GetMetadataArg) (files.IsMetadata, error)
	ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error)
	ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error)
	CreateFolderV2(arg *files.CreateFolderArg) (*files.CreateFolderResult, error)
	DeleteV2(arg *files.DeleteArg) (*files.DeleteResult, error)
	Download(arg *files.DownloadArg) (*files.FileMetadata, io.ReadCloser, error)
	Upload(arg *files.UploadArg, content io.Reader) (*files.FileMetadata, error)
	UploadSessionStart(arg *files.UploadSessionStartArg, content io.Reader) (*files.UploadSessionStartResult, error)
	UploadSessionAppendV2(arg *files.UploadSessionAppendArg, content io.Reader) error
	UploadSessionFinish(arg *files.UploadSessionFinishArg, content io.Reader) (*files.FileMetadata, error)
}

type accountAPI interface {
	GetCurrentAccount() (*users.FullAccount, error)
	GetSpaceUsage() (*users.SpaceUsage, error)
}

type Accessor struct {
	client  filesAPI
	account accountAPI
	fs      afero.Fs
}

var _ remote.Accessor = (*Accessor)(nil)

func New(cfg dropbox.Config, fs afero.Fs) *Accessor {
	return &Accessor{
		client:  files.New(cfg),
		account: users.New(cfg),
		fs:      fs,
	}
}

// Open builds an accessor from the stored OAuth token.
func Open(ctx context.Context, fs afero.Fs) (*Accessor, error) {
	cfg, err := auth.Dropbox.NewConfig(ctx)
	if err != nil {
		return nil, err
	}

	return New(cfg, fs), nil
}

func (a *Accessor) DefaultDrive(context.Context) (*model.Drive, error) {
	acct, err := a.account.GetCurrentAccount()
	if err != nil {
		return nil, remote.Wrap("drive", "", err)
	}

	usage, err := a.account.GetSpaceUsage()
	if err != nil {
		return nil, remote.Wrap("drive", "", err)
	}

	d := &model.Drive{
		ID:    acct.AccountId,
		Owner: acct.Email,
		Used:  int64(usage.Used),
	}

	if alloc := usage.Allocation; alloc != nil {
		switch {
		case alloc.Individual != nil:
			d.Total = int64(alloc.Individual.Allocated)
		case alloc.Team != nil:
			d.Total = int64(alloc.Team.Allocated)
		}
	}

	return d, nil
}

func (a *Accessor) Root(context.Context) (*model.RemoteItem, error) {
	return &model.RemoteItem{Kind: model.KindFolder}, nil
}

// Path resolves every component with GetMetadata so the parent chain of the
// result carries the casing stored remotely.
func (a *Accessor) Path(ctx context.Context, p string, withChildren bool) (*model.RemoteItem, error) {
	item, err := a.Root(ctx)
	if err != nil {
		return nil, err
	}

	for _, part := range splitPath(p) {
		if !item.IsFolder() {
			return nil, remote.Wrap("path", p, remote.ErrNotFound)
		}

		meta, err := a.client.GetMetadata(files.NewGetMetadataArg(childPath(item, part)))
		if err != nil {
			return nil, remote.Wrap("path", p, mapErr(err))
		}

		next := toItem(meta, item)
		if next == nil {
			return nil, remote.Wrap("path", p, remote.ErrNotFound)
		}

		item = next
	}

	if withChildren {
		children, err := a.Children(ctx, item)
		if err != nil {
			return nil, err
		}

		item.Children = children
	}

	return item, nil
}

func (a *Accessor) Children(ctx context.Context, folder *model.RemoteItem) ([]*model.RemoteItem, error) {
	if err := remote.RequireFolder(folder); err != nil {
		return nil, remote.Wrap("children", "", err)
	}

	items, err := remote.CollectPages(ctx, func(_ context.Context, cursor string) (remote.Page, error) {
		var res *files.ListFolderResult
		var err error
		if cursor == "" {
			res, err = a.client.ListFolder(files.NewListFolderArg(itemPath(folder)))
		} else {
			res, err = a.client.ListFolderContinue(files.NewListFolderContinueArg(cursor))
		}
		if err != nil {
			return remote.Page{}, err
		}

		page := remote.Page{}
		for _, entry := range res.Entries {
			if item := toItem(entry, folder); item != nil {
				page.Items = append(page.Items, item)
			}
		}
		if res.HasMore {
			page.NextToken = res.Cursor
		}

		return page, nil
	})
	if err != nil {
		return nil, remote.Wrap("children", folder.FullName(), mapErr(err))
	}

	return items, nil
}

func (a *Accessor) ReplaceFile(_ context.Context, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error) {
	return a.upload("replace", parent, file, "overwrite")
}

func (a *Accessor) UploadFile(_ context.Context, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error) {
	return a.upload("upload", parent, file, "add")
}

func (a *Accessor) upload(op string, parent *model.RemoteItem, file model.LocalEntry, mode string) (*model.RemoteItem, error) {
	if err := remote.RequireFolder(parent); err != nil {
		return nil, remote.Wrap(op, file.Path, err)
	}

	f, err := a.fs.Open(file.Path)
	if err != nil {
		return nil, remote.Wrap(op, file.Path, fmt.Errorf("failed to open file: %w", err))
	}

	defer func(f afero.File) {
		_ = f.Close()
	}(f)

	arg := files.NewUploadArg(childPath(parent, file.Name))
	arg.Mode = &files.WriteMode{Tagged: dropbox.Tagged{Tag: mode}}
	arg.Autorename = false
	arg.ClientModified = clientModified(file.ModTime)

	meta, err := a.client.Upload(arg, f)
	if err != nil {
		return nil, remote.Wrap(op, file.Path, fmt.Errorf("failed to upload to dropbox: %w", err))
	}

	return fileItem(meta, parent), nil
}

// UploadFileInChunks runs an upload session: the first chunk opens it, the
// middle ones append at their offset and the rest is sent with the commit.
func (a *Accessor) UploadFileInChunks(_ context.Context, parent *model.RemoteItem, file model.LocalEntry, chunkSize int64) (*model.RemoteItem, error) {
	const op = "chunked upload"

	if err := remote.RequireFolder(parent); err != nil {
		return nil, remote.Wrap(op, file.Path, err)
	}
	if chunkSize <= 0 {
		return nil, remote.Wrap(op, file.Path, fmt.Errorf("invalid chunk size %d", chunkSize))
	}

	f, err := a.fs.Open(file.Path)
	if err != nil {
		return nil, remote.Wrap(op, file.Path, fmt.Errorf("failed to open file: %w", err))
	}

	defer func(f afero.File) {
		_ = f.Close()
	}(f)

	info, err := f.Stat()
	if err != nil {
		return nil, remote.Wrap(op, file.Path, err)
	}
	size := info.Size()

	start, err := a.client.UploadSessionStart(files.NewUploadSessionStartArg(), io.LimitReader(f, chunkSize))
	if err != nil {
		return nil, remote.Wrap(op, file.Path, fmt.Errorf("failed to start upload session: %w", err))
	}

	offset := min(chunkSize, size)
	for size-offset > chunkSize {
		cursor := files.NewUploadSessionCursor(start.SessionId, uint64(offset))
		if err := a.client.UploadSessionAppendV2(files.NewUploadSessionAppendArg(cursor), io.LimitReader(f, chunkSize)); err != nil {
			return nil, remote.Wrap(op, file.Path, fmt.Errorf("failed to append at %d: %w", offset, err))
		}

		offset += chunkSize
		logger.Log.Debug("dropbox chunk sent",
			zap.String("path", file.Path),
			zap.Int64("offset", offset),
			zap.Int64("size", size))
	}

	commit := files.NewCommitInfo(childPath(parent, file.Name))
	commit.Mode = &files.WriteMode{Tagged: dropbox.Tagged{Tag: "overwrite"}}
	commit.Autorename = false
	commit.ClientModified = clientModified(file.ModTime)

	cursor := files.NewUploadSessionCursor(start.SessionId, uint64(offset))
	meta, err := a.client.UploadSessionFinish(files.NewUploadSessionFinishArg(cursor, commit), io.LimitReader(f, size-offset))
	if err != nil {
		return nil, remote.Wrap(op, file.Path, fmt.Errorf("failed to finish upload session: %w", err))
	}

	return fileItem(meta, parent), nil
}

// UpdateTimestamps is a no-op: Dropbox only takes client_modified with the
// content, and every upload here already sends the local time.
func (a *Accessor) UpdateTimestamps(_ context.Context, item *model.RemoteItem, _, _ time.Time) (*model.RemoteItem, error) {
	return item, nil
}

func (a *Accessor) CreateFolder(_ context.Context, parent *model.RemoteItem, name string) (*model.RemoteItem, error) {
	if err := remote.RequireFolder(parent); err != nil {
		return nil, remote.Wrap("create folder", name, err)
	}

	p := childPath(parent, name)
	arg := files.NewCreateFolderArg(p)
	arg.Autorename = false

	res, err := a.client.CreateFolderV2(arg)
	if err != nil {
		if !isConflict(err) {
			return nil, remote.Wrap("create folder", p, err)
		}

		meta, err := a.client.GetMetadata(files.NewGetMetadataArg(p))
		if err != nil {
			return nil, remote.Wrap("create folder", p, mapErr(err))
		}

		item := toItem(meta, parent)
		if item == nil || !item.IsFolder() {
			return nil, remote.Wrap("create folder", p, remote.ErrNotFolder)
		}

		return item, nil
	}

	return &model.RemoteItem{
		ID:     res.Metadata.Id,
		Name:   res.Metadata.Name,
		Kind:   model.KindFolder,
		Parent: parent,
	}, nil
}

func (a *Accessor) Download(_ context.Context, item *model.RemoteItem, target string) error {
	_, content, err := a.client.Download(files.NewDownloadArg(itemPath(item)))
	if err != nil {
		return remote.Wrap("download", item.FullName(), mapErr(err))
	}

	defer func(content io.ReadCloser) {
		_ = content.Close()
	}(content)

	if err := util.AtomicWrite(a.fs, target, content); err != nil {
		return remote.Wrap("download", item.FullName(), err)
	}

	return nil
}

func (a *Accessor) Delete(_ context.Context, item *model.RemoteItem) error {
	if _, err := a.client.DeleteV2(files.NewDeleteArg(itemPath(item))); err != nil {
		if isNotFound(err) {
			return nil
		}

		return remote.Wrap("delete", item.FullName(), fmt.Errorf("failed to delete from dropbox: %w", err))
	}

	return nil
}

func clientModified(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	utc := t.UTC().Truncate(time.Second)
	return &utc
}

// Package gdrive implements remote.Accessor on top of the Google Drive v3
// API.
package gdrive

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

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	fileFields     = "id, name, mimeType, size, md5Checksum, createdTime, modifiedTime"
	listFields     = "nextPageToken, files(" + fileFields + ")"
	pageSize       = 200
)

type Accessor struct {
	svc *drive.Service
	fs  afero.Fs
}

var _ remote.Accessor = (*Accessor)(nil)

func New(svc *drive.Service, fs afero.Fs) *Accessor {
	return &Accessor{svc: svc, fs: fs}
}

// Open builds an accessor from the stored OAuth token.
func Open(ctx context.Context, fs afero.Fs) (*Accessor, error) {
	svc, err := auth.GDrive.NewService(ctx)
	if err != nil {
		return nil, err
	}

	return New(svc, fs), nil
}

func (a *Accessor) DefaultDrive(ctx context.Context) (*model.Drive, error) {
	about, err := a.svc.About.Get().
		Fields("user(emailAddress, permissionId), storageQuota(limit, usage)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, remote.Wrap("drive", "", mapErr(err))
	}

	d := &model.Drive{}
	if about.User != nil {
		d.ID = about.User.PermissionId
		d.Owner = about.User.EmailAddress
	}
	if about.StorageQuota != nil {
		d.Total = about.StorageQuota.Limit
		d.Used = about.StorageQuota.Usage
	}

	return d, nil
}

func (a *Accessor) Root(ctx context.Context) (*model.RemoteItem, error) {
	f, err := a.svc.Files.Get("root").Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return nil, remote.Wrap("root", "/", mapErr(err))
	}

	root := toItem(f, nil)
	root.Name = ""
	return root, nil
}

func (a *Accessor) Path(ctx context.Context, p string, withChildren bool) (*model.RemoteItem, error) {
	item, err := a.Root(ctx)
	if err != nil {
		return nil, err
	}

	for _, part := range splitPath(p) {
		child, err := a.findChild(ctx, item, part)
		if err != nil {
			return nil, remote.Wrap("path", p, mapErr(err))
		}
		if child == nil {
			return nil, remote.Wrap("path", p, remote.ErrNotFound)
		}

		item = child
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

	q := fmt.Sprintf("'%s' in parents and trashed=false", escapeName(folder.ID))
	items, err := remote.CollectPages(ctx, func(ctx context.Context, token string) (remote.Page, error) {
		call := a.svc.Files.List().Q(q).Fields(listFields).PageSize(pageSize).Context(ctx)
		if token != "" {
			call = call.PageToken(token)
		}

		list, err := call.Do()
		if err != nil {
			return remote.Page{}, err
		}

		page := remote.Page{NextToken: list.NextPageToken}
		for _, f := range list.Files {
			page.Items = append(page.Items, toItem(f, folder))
		}

		return page, nil
	})
	if err != nil {
		return nil, remote.Wrap("children", folder.FullName(), mapErr(err))
	}

	return items, nil
}

func (a *Accessor) ReplaceFile(ctx context.Context, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error) {
	return a.put(ctx, "replace", parent, file, true)
}

func (a *Accessor) UploadFile(ctx context.Context, parent *model.RemoteItem, file model.LocalEntry) (*model.RemoteItem, error) {
	return a.put(ctx, "upload", parent, file, false)
}

func (a *Accessor) UploadFileInChunks(ctx context.Context, parent *model.RemoteItem, file model.LocalEntry, chunkSize int64) (*model.RemoteItem, error) {
	return a.put(ctx, "chunked upload", parent, file, true, googleapi.ChunkSize(int(chunkSize)))
}

// put streams the local file into parent. With replace, a same-named file
// is updated in place so its id survives.
func (a *Accessor) put(ctx context.Context, op string, parent *model.RemoteItem, file model.LocalEntry, replace bool, opts ...googleapi.MediaOption) (*model.RemoteItem, error) {
	if err := remote.RequireFolder(parent); err != nil {
		return nil, remote.Wrap(op, file.Path, err)
	}

	var existing *model.RemoteItem
	if replace {
		found, err := a.findChild(ctx, parent, file.Name)
		if err != nil {
			return nil, remote.Wrap(op, file.Path, mapErr(err))
		}
		if found != nil && !found.IsFolder() {
			existing = found
		}
	}

	f, err := a.fs.Open(file.Path)
	if err != nil {
		return nil, remote.Wrap(op, file.Path, fmt.Errorf("failed to open file: %w", err))
	}

	defer func(f afero.File) {
		_ = f.Close()
	}(f)

	var stored *drive.File
	if existing != nil {
		stored, err = a.svc.Files.Update(existing.ID, &drive.File{}).
			Media(f, opts...).
			Fields(fileFields).
			Context(ctx).
			Do()
	} else {
		meta := &drive.File{
			Name:    file.Name,
			Parents: []string{parent.ID},
		}
		stored, err = a.svc.Files.Create(meta).
			Media(f, opts...).
			Fields(fileFields).
			Context(ctx).
			Do()
	}
	if err != nil {
		return nil, remote.Wrap(op, file.Path, mapErr(err))
	}

	logger.Log.Debug("gdrive stored file",
		zap.String("op", op),
		zap.String("path", file.Path),
		zap.String("id", stored.Id))

	return toItem(stored, parent), nil
}

// UpdateTimestamps sets modifiedTime. Drive only accepts createdTime when a
// file is created, so created is not sent.
func (a *Accessor) UpdateTimestamps(ctx context.Context, item *model.RemoteItem, _, modified time.Time) (*model.RemoteItem, error) {
	meta := &drive.File{ModifiedTime: modified.UTC().Format(time.RFC3339Nano)}

	updated, err := a.svc.Files.Update(item.ID, meta).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return nil, remote.Wrap("update timestamps", item.FullName(), mapErr(err))
	}

	return toItem(updated, item.Parent), nil
}

func (a *Accessor) CreateFolder(ctx context.Context, parent *model.RemoteItem, name string) (*model.RemoteItem, error) {
	if err := remote.RequireFolder(parent); err != nil {
		return nil, remote.Wrap("create folder", name, err)
	}

	meta := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parent.ID},
	}

	created, err := a.svc.Files.Create(meta).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return nil, remote.Wrap("create folder", name, fmt.Errorf("failed to create folder %s: %w", name, mapErr(err)))
	}

	return toItem(created, parent), nil
}

func (a *Accessor) Download(ctx context.Context, item *model.RemoteItem, target string) error {
	resp, err := a.svc.Files.Get(item.ID).Context(ctx).Download()
	if err != nil {
		return remote.Wrap("download", item.FullName(), mapErr(err))
	}

	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if err := util.AtomicWrite(a.fs, target, resp.Body); err != nil {
		return remote.Wrap("download", item.FullName(), err)
	}

	return nil
}

func (a *Accessor) Delete(ctx context.Context, item *model.RemoteItem) error {
	if err := a.svc.Files.Delete(item.ID).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return nil
		}

		return remote.Wrap("delete", item.FullName(), err)
	}

	return nil
}

func (a *Accessor) findChild(ctx context.Context, parent *model.RemoteItem, name string) (*model.RemoteItem, error) {
	q := fmt.Sprintf("name='%s' and '%s' in parents and trashed=false", escapeName(name), escapeName(parent.ID))

	list, err := a.svc.Files.List().Q(q).Fields(listFields).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(list.Files) == 0 {
		return nil, nil
	}

	return toItem(list.Files[0], parent), nil
}

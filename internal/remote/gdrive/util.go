package gdrive

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"
	"treesync/internal/model"
	"treesync/internal/remote"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

func splitPath(p string) []string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return nil
	}

	return strings.Split(p, "/")
}

func escapeName(name string) string {
	name = strings.ReplaceAll(name, `\`, `\\`)
	return strings.ReplaceAll(name, "'", "\\'")
}

func isNotFound(err error) bool {
	if apiErr, ok := errors.AsType[*googleapi.Error](err); ok {
		return apiErr.Code == http.StatusNotFound
	}

	return false
}

func mapErr(err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %w", remote.ErrNotFound, err)
	}

	return err
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}

	return t
}

func toItem(f *drive.File, parent *model.RemoteItem) *model.RemoteItem {
	item := &model.RemoteItem{
		ID:         f.Id,
		Name:       f.Name,
		Kind:       model.KindFile,
		Parent:     parent,
		Size:       f.Size,
		Hash:       f.Md5Checksum,
		CreatedAt:  parseTime(f.CreatedTime),
		ModifiedAt: parseTime(f.ModifiedTime),
	}

	if f.MimeType == folderMimeType {
		item.Kind = model.KindFolder
		item.Size = 0
	}

	return item
}

package dropbox

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"treesync/internal/model"
	"treesync/internal/remote"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
)

// apiPath maps a display path to the form the Dropbox API expects: the root
// is the empty string, everything else starts with a slash.
func apiPath(p string) string {
	p = path.Clean("/" + p)
	if p == "/" {
		return ""
	}

	return p
}

func itemPath(item *model.RemoteItem) string {
	return apiPath(item.FullName())
}

func childPath(parent *model.RemoteItem, name string) string {
	return apiPath(path.Join(parent.FullName(), name))
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}

	if apiErr, ok := errors.AsType[files.DeleteV2APIError](err); ok {
		return apiErr.EndpointError != nil &&
			apiErr.EndpointError.PathLookup != nil &&
			apiErr.EndpointError.PathLookup.Tag == "not_found"
	}

	if apiErr, ok := errors.AsType[files.GetMetadataAPIError](err); ok {
		return apiErr.EndpointError != nil &&
			apiErr.EndpointError.Path != nil &&
			apiErr.EndpointError.Path.Tag == "not_found"
	}

	return strings.Contains(err.Error(), "not_found")
}

func isConflict(err error) bool {
	if apiErr, ok := errors.AsType[files.CreateFolderV2APIError](err); ok {
		return apiErr.EndpointError != nil &&
			apiErr.EndpointError.Path != nil &&
			apiErr.EndpointError.Path.Tag == "conflict"
	}

	return false
}

func mapErr(err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %w", remote.ErrNotFound, err)
	}

	return err
}

// toItem converts listing metadata. Deleted entries yield nil.
func toItem(entry files.IsMetadata, parent *model.RemoteItem) *model.RemoteItem {
	switch m := entry.(type) {
	case *files.FileMetadata:
		return fileItem(m, parent)
	case *files.FolderMetadata:
		return &model.RemoteItem{
			ID:     m.Id,
			Name:   m.Name,
			Kind:   model.KindFolder,
			Parent: parent,
		}
	}

	return nil
}

func fileItem(m *files.FileMetadata, parent *model.RemoteItem) *model.RemoteItem {
	return &model.RemoteItem{
		ID:         m.Id,
		Name:       m.Name,
		Kind:       model.KindFile,
		Parent:     parent,
		Size:       int64(m.Size),
		CreatedAt:  m.ClientModified,
		ModifiedAt: m.ClientModified,
	}
}

func splitPath(p string) []string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return nil
	}

	return strings.Split(p, "/")
}

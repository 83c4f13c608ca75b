package model

import (
	"path"
	"time"
)

type EntryKind string

const (
	KindFile   EntryKind = "FILE"
	KindFolder EntryKind = "FOLDER"
)

// RemoteItem is a snapshot of one item of the remote tree taken when it was
// fetched. Parent is a back reference used for display and for replacing
// content under the same folder; it does not own the parent.
type RemoteItem struct {
	ID         string
	Name       string
	Kind       EntryKind
	Parent     *RemoteItem
	Size       int64
	Hash       string
	CreatedAt  time.Time
	ModifiedAt time.Time
	Children   []*RemoteItem
}

func (i *RemoteItem) IsFolder() bool {
	return i.Kind == KindFolder
}

func (i *RemoteItem) FullName() string {
	if i.Parent == nil {
		if i.Name == "" {
			return "/"
		}
		return "/" + i.Name
	}

	return path.Join(i.Parent.FullName(), i.Name)
}

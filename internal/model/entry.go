package model

import "time"

type LocalEntry struct {
	Name    string
	Kind    EntryKind
	Path    string
	Size    int64
	ModTime time.Time
}

func (e LocalEntry) IsDir() bool {
	return e.Kind == KindFolder
}

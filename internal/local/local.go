// Package local reads the local side of a reconciliation through afero so
// the same code runs against the OS and an in-memory tree.
package local

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"treesync/internal/model"

	"github.com/spf13/afero"
)

type Lister struct {
	fs afero.Fs
}

func NewLister(fsys afero.Fs) *Lister {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &Lister{fs: fsys}
}

func (l *Lister) Fs() afero.Fs {
	return l.fs
}

// List returns the immediate entries of dir sorted by name. Entries that are
// neither regular files nor directories are skipped.
func (l *Lister) List(dir string) ([]model.LocalEntry, error) {
	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	entries := make([]model.LocalEntry, 0, len(infos))
	for _, info := range infos {
		if !info.IsDir() && !info.Mode().IsRegular() {
			continue
		}

		entries = append(entries, toEntry(filepath.Join(dir, info.Name()), info))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

func (l *Lister) IsDir(path string) bool {
	ok, err := afero.IsDir(l.fs, path)
	return err == nil && ok
}

func (l *Lister) IsFile(path string) bool {
	info, err := l.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (l *Lister) Stat(path string) (model.LocalEntry, error) {
	info, err := l.fs.Stat(path)
	if err != nil {
		return model.LocalEntry{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return toEntry(path, info), nil
}

func (l *Lister) Open(path string) (afero.File, error) {
	return l.fs.Open(path)
}

func toEntry(path string, info fs.FileInfo) model.LocalEntry {
	entry := model.LocalEntry{
		Name:    filepath.Base(path),
		Kind:    model.KindFile,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	if info.IsDir() {
		entry.Kind = model.KindFolder
		entry.Size = 0
	}

	return entry
}

package local

import (
	"testing"
	"time"
	"treesync/internal/model"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root/B/inner", 0755))
	require.NoError(t, afero.WriteFile(fsys, "/root/c.txt", []byte("ccc"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/root/A", []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/root/B/inner/deep.txt", []byte("deep"), 0644))

	return fsys
}

func TestLister_ListSortedImmediateEntries(t *testing.T) {
	l := NewLister(newTree(t))

	entries, err := l.List("/root")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "A", entries[0].Name)
	assert.Equal(t, model.KindFile, entries[0].Kind)
	assert.Equal(t, int64(1), entries[0].Size)
	assert.Equal(t, "/root/A", entries[0].Path)

	assert.Equal(t, "B", entries[1].Name)
	assert.True(t, entries[1].IsDir())
	assert.Equal(t, int64(0), entries[1].Size)

	assert.Equal(t, "c.txt", entries[2].Name)
	assert.Equal(t, int64(3), entries[2].Size)
}

func TestLister_ListMissingDir(t *testing.T) {
	l := NewLister(afero.NewMemMapFs())

	_, err := l.List("/nope")
	assert.Error(t, err)
}

func TestLister_Predicates(t *testing.T) {
	l := NewLister(newTree(t))

	assert.True(t, l.IsDir("/root/B"))
	assert.False(t, l.IsDir("/root/A"))
	assert.False(t, l.IsDir("/missing"))

	assert.True(t, l.IsFile("/root/A"))
	assert.False(t, l.IsFile("/root/B"))
	assert.False(t, l.IsFile("/missing"))
}

func TestLister_StatCarriesModTime(t *testing.T) {
	fsys := newTree(t)
	mod := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, fsys.Chtimes("/root/c.txt", mod, mod))

	entry, err := NewLister(fsys).Stat("/root/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "c.txt", entry.Name)
	assert.True(t, entry.ModTime.Equal(mod))
}

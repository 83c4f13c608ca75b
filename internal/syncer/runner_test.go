package syncer

import (
	"context"
	"sync"
	"testing"
	"time"
	"treesync/internal/model"
	"treesync/internal/queue"
	"treesync/internal/remote"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resultLog struct {
	mu      sync.Mutex
	results []queue.Result
}

func (l *resultLog) Record(r queue.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, r)
}

func (l *resultLog) kinds() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int)
	for _, r := range l.results {
		out[r.Kind]++
	}

	return out
}

func TestRunner_ScenarioFileMatchRemoteOnlyAndUpload(t *testing.T) {
	fr := newFakeRemote()
	folder := fr.addFolder(fr.root, "F")
	fr.addFile(folder, "A", 1, "", baseTime)
	fr.addFolder(folder, "B")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/l/A", "a", baseTime)
	writeFile(t, fs, "/l/C", "c", baseTime)

	rec := &resultLog{}
	r, err := NewRunner(fr, fs, Options{
		LocalRoot:  "/l",
		RemoteRoot: "/F",
		Workers:    2,
		Recorders:  []queue.Recorder{rec},
	})
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"check_folder": 1, "check_file": 1, "upload": 1}, rec.kinds())
	assert.Equal(t, queue.Stats{Queued: 3, Completed: 3}, summary.Tasks)
	assert.Equal(t, Counts{RemoteOnly: 1, Uploaded: 1}, summary.Counts)
	assert.Equal(t, []string{"/F/C"}, fr.callsOf("upload"))
	assert.Empty(t, fr.callsOf("replace"))
	assert.Empty(t, fr.callsOf("mkdir"))
	assert.Empty(t, fr.callsOf("delete"))

	_, running := r.Current()
	assert.False(t, running)
}

func TestRunner_ConflictNeverUploads(t *testing.T) {
	fr := newFakeRemote()
	fr.addFolder(fr.root, "X")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/l/X", "x", baseTime)

	var conflicted []string
	r, err := NewRunner(fr, fs, Options{
		LocalRoot: "/l",
		OnConflict: func(item *model.RemoteItem, _ model.LocalEntry) {
			conflicted = append(conflicted, item.FullName())
		},
	})
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"/X"}, conflicted)
	assert.Equal(t, int64(1), summary.Counts.Conflicts)
	assert.Equal(t, 1, summary.Tasks.Completed)
	assert.Empty(t, fr.callsOf("upload"))
	assert.Empty(t, fr.callsOf("mkdir"))
}

func TestRunner_MirrorsNestedTreeAndSecondPassIsQuiet(t *testing.T) {
	fr := newFakeRemote()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/l/top.txt", "top", baseTime)
	writeFile(t, fs, "/l/a/one.txt", "1", baseTime)
	writeFile(t, fs, "/l/a/b/two.txt", "22", baseTime)
	writeFile(t, fs, "/l/a/b/.DS_Store", "x", baseTime)
	mkdir(t, fs, "/l/empty")

	r, err := NewRunner(fr, fs, Options{LocalRoot: "/l", RemoteRoot: "/Backup", Workers: 4})
	require.NoError(t, err)

	first, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"/Backup", "/Backup/a", "/Backup/a/b", "/Backup/empty"}, fr.callsOf("mkdir"))
	assert.ElementsMatch(t, []string{"/Backup/top.txt", "/Backup/a/one.txt", "/Backup/a/b/two.txt"}, fr.callsOf("upload"))
	assert.Equal(t, 0, first.Tasks.Failed)
	assert.Equal(t, int64(3), first.Counts.Uploaded)
	assert.Equal(t, int64(1), first.Counts.Ignored)

	before := len(fr.calls)
	second, err := r.Run(context.Background())
	require.NoError(t, err)

	for _, c := range fr.calls[before:] {
		assert.Equal(t, "children", c.op, "unexpected %s %s on second pass", c.op, c.target)
	}
	assert.Equal(t, Counts{Ignored: 1}, second.Counts)
	assert.Equal(t, 7, second.Tasks.Completed)
}

func TestRunner_DryRunLeavesRemoteUntouched(t *testing.T) {
	fr := newFakeRemote()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/l/top.txt", "top", baseTime)
	writeFile(t, fs, "/l/a/one.txt", "1", baseTime)

	r, err := NewRunner(fr, fs, Options{LocalRoot: "/l", DryRun: true})
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, int64(2), summary.Counts.Uploaded)
	assert.Equal(t, int64(1), summary.Counts.FoldersCreated)
	assert.Equal(t, 0, summary.Tasks.Failed)
	for _, c := range fr.calls {
		assert.Equal(t, "children", c.op)
	}
	assert.Empty(t, fr.children["root"])
}

func TestRunner_RemoteRootIsAFile(t *testing.T) {
	fr := newFakeRemote()
	fr.addFile(fr.root, "F", 1, "", baseTime)

	fs := afero.NewMemMapFs()
	mkdir(t, fs, "/l")

	r, err := NewRunner(fr, fs, Options{LocalRoot: "/l", RemoteRoot: "F"})
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, remote.ErrNotFolder)
}

func TestRunner_MissingLocalRoot(t *testing.T) {
	r, err := NewRunner(newFakeRemote(), afero.NewMemMapFs(), Options{LocalRoot: "/nope"})
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewRunner_Validation(t *testing.T) {
	_, err := NewRunner(nil, afero.NewMemMapFs(), Options{LocalRoot: "/l"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewRunner(newFakeRemote(), afero.NewMemMapFs(), Options{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRunner_CancelledContext(t *testing.T) {
	fr := newFakeRemote()
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/l/a.txt", "a", time.Time{})

	r, err := NewRunner(fr, fs, Options{LocalRoot: "/l"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Tasks.Completed)
}

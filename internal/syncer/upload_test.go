package syncer

import (
	"context"
	"errors"
	"testing"
	"treesync/internal/model"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadTask(t *testing.T) {
	tests := []struct {
		name      string
		replace   bool
		threshold int64
		wantOp    string
	}{
		{name: "new file", wantOp: "upload"},
		{name: "replace", replace: true, wantOp: "replace"},
		{name: "large new file", threshold: 3, wantOp: "chunked"},
		{name: "large replace", replace: true, threshold: 3, wantOp: "chunked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := newFakeRemote()
			folder := fr.addFolder(fr.root, "F")

			fs := afero.NewMemMapFs()
			writeFile(t, fs, "/l/a.txt", "hello", baseTime)

			env := newEnv(fr, fs)
			env.LargeFileThreshold = tt.threshold
			entry, err := env.Local.Stat("/l/a.txt")
			require.NoError(t, err)

			task, err := NewUploadTask(env, folder, entry, tt.replace)
			require.NoError(t, err)
			require.NoError(t, task.Run(context.Background()))

			assert.Equal(t, []string{"/F/a.txt"}, fr.callsOf(tt.wantOp))
			assert.Equal(t, []string{"/F/a.txt"}, fr.callsOf("touch"))
			assert.Equal(t, int64(1), env.Counters.Uploaded.Load())
			assert.Empty(t, pending(env.Queue))
		})
	}
}

func TestUploadTask_FailureSkipsTimestamps(t *testing.T) {
	boom := errors.New("quota exceeded")
	fr := newFakeRemote()
	folder := fr.addFolder(fr.root, "F")
	fr.fail["upload /F/a.txt"] = boom

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/l/a.txt", "hello", baseTime)

	env := newEnv(fr, fs)
	entry, err := env.Local.Stat("/l/a.txt")
	require.NoError(t, err)

	task, err := NewUploadTask(env, folder, entry, false)
	require.NoError(t, err)

	require.ErrorIs(t, task.Run(context.Background()), boom)
	assert.Empty(t, fr.callsOf("touch"))
	assert.Equal(t, int64(0), env.Counters.Uploaded.Load())
}

func TestNewUploadTask_Validation(t *testing.T) {
	fr := newFakeRemote()
	file := fr.addFile(fr.root, "f", 1, "", baseTime)

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/l/a.txt", "a", baseTime)
	entry := model.LocalEntry{Name: "a.txt", Kind: model.KindFile, Path: "/l/a.txt"}
	env := newEnv(fr, fs)

	_, err := NewUploadTask(env, file, entry, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewUploadTask(env, nil, entry, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewUploadTask(env, fr.root, model.LocalEntry{Name: "x", Path: "/l/x"}, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	task, err := NewUploadTask(env, fr.root, entry, true)
	require.NoError(t, err)
	assert.Equal(t, PriorityUpload, task.Priority())
	assert.Equal(t, "replace /l/a.txt into /", task.String())
}

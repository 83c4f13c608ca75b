package syncer

import (
	"sort"
	"testing"
	"time"
	"treesync/internal/local"
	"treesync/internal/logger"
	"treesync/internal/queue"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	return logs
}

func newEnv(fr *fakeRemote, fs afero.Fs) *Env {
	return &Env{
		Queue:  queue.New(),
		Remote: fr,
		Local:  local.NewLister(fs),
	}
}

func writeFile(t *testing.T, fs afero.Fs, path, content string, mod time.Time) {
	t.Helper()

	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	if !mod.IsZero() {
		require.NoError(t, fs.Chtimes(path, mod, mod))
	}
}

func mkdir(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(path, 0755))
}

type pendingTask struct {
	kind string
	desc string
}

func pending(q *queue.Queue) []pendingTask {
	var out []pendingTask
	for _, task := range q.Pending() {
		out = append(out, pendingTask{kind: task.(interface{ Kind() string }).Kind(), desc: task.String()})
	}

	return out
}

func kindCounts(q *queue.Queue) map[string]int {
	counts := make(map[string]int)
	for _, p := range pending(q) {
		counts[p.kind]++
	}

	return counts
}

func sortedDescs(tasks []pendingTask) []string {
	out := make([]string, 0, len(tasks))
	for _, p := range tasks {
		out = append(out, p.desc)
	}
	sort.Strings(out)

	return out
}

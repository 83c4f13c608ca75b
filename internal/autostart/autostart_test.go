package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderUnit(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, renderUnit(&sb, "/opt/tree sync/treesync"))

	unit := sb.String()
	assert.Contains(t, unit, "[Service]")
	assert.Contains(t, unit, `ExecStart="/opt/tree sync/treesync" watch`)
}

func TestLinuxAutoStarter_UnitLifecycle(t *testing.T) {
	l := &LinuxAutoStarter{Dir: t.TempDir()}

	installed, err := l.IsInstalled()
	require.NoError(t, err)
	assert.False(t, installed)

	path, err := l.writeUnit("/usr/bin/treesync")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(l.Dir, "treesync.service"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"/usr/bin/treesync" watch`)

	installed, err = l.IsInstalled()
	require.NoError(t, err)
	assert.True(t, installed)

	require.NoError(t, l.removeUnit())
	require.NoError(t, l.removeUnit())

	installed, err = l.IsInstalled()
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestTaskArgs(t *testing.T) {
	args := taskArgs(`C:\treesync\treesync.exe`)
	assert.Contains(t, args, `"C:\treesync\treesync.exe" watch`)
	assert.Contains(t, args, taskName)
}

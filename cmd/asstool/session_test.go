package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/asstex/internal/config"
	"github.com/Faultbox/asstex/pkg/assfile"
	"github.com/Faultbox/asstex/pkg/texmodel"
)

func TestSession_CloseAndReopen(t *testing.T) {
	path := writeASS(t, "albedo=a.png\n")

	s, err := newSession(config.Default())
	require.NoError(t, err)
	require.NoError(t, s.open(path))
	require.NoError(t, s.setFile("albedo", "b.png"))
	assert.Equal(t, texmodel.StateDirty, s.model.State())

	s.close()
	assert.Equal(t, texmodel.StateUnbound, s.model.State())
	assert.ErrorIs(t, s.model.SetCellValue(0, texmodel.ColumnPath, "c.png"), texmodel.ErrNotBound)
	assert.ErrorIs(t, s.save(), assfile.ErrNoPath)
	assert.Equal(t, "albedo=a.png\n", readFile(t, path))

	require.NoError(t, s.open(path))
	assert.Equal(t, texmodel.StateClean, s.model.State())
	require.NoError(t, s.setFile("albedo", "c.png"))
	require.NoError(t, s.save())
	assert.Equal(t, "albedo=c.png\n", readFile(t, path))
}

func TestSession_SetPathAfterClose(t *testing.T) {
	s, err := newSession(config.Default())
	require.NoError(t, err)
	s.close()

	target := filepath.Join(t.TempDir(), "fresh.ass")
	s.setPath(target)
	assert.Equal(t, texmodel.StateClean, s.model.State())

	_, err = s.model.InsertRow("albedo", "a.png")
	require.NoError(t, err)
	require.NoError(t, s.save())
	assert.Equal(t, "albedo=a.png\n", readFile(t, target))
}

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaging_SaveAndRemove(t *testing.T) {
	staging, err := NewStaging(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	path, err := staging.Save("../../Me.PNG", strings.NewReader("pixels"), 64)
	require.NoError(t, err)
	assert.Equal(t, staging.Root(), filepath.Dir(path))
	assert.Equal(t, ".png", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	require.NoError(t, staging.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Second removal is a no-op.
	assert.NoError(t, staging.Remove(path))
}

func TestStaging_SaveEnforcesLimit(t *testing.T) {
	staging, err := NewStaging(t.TempDir())
	require.NoError(t, err)

	_, err = staging.Save("big.jpg", strings.NewReader(strings.Repeat("x", 11)), 10)
	require.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(staging.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = staging.Save("exact.jpg", strings.NewReader(strings.Repeat("x", 10)), 10)
	assert.NoError(t, err)
}

func TestStaging_RemoveRefusesOutsidePaths(t *testing.T) {
	staging, err := NewStaging(t.TempDir())
	require.NoError(t, err)

	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	assert.ErrorIs(t, staging.Remove(outside), ErrOutsideRoot)
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestWalkDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.bsp"))
	touch(t, filepath.Join(root, "A.BSP"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "sub", "c.bsp"))

	maps, err := NewWalker().Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "A.BSP"), filepath.Join(root, "b.bsp")}, maps)

	w := &Walker{Recursive: true}
	maps, err = w.Walk(root)
	require.NoError(t, err)
	assert.Len(t, maps, 3)
}

func TestWalkSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "c1a0.bsp")
	touch(t, path)

	maps, err := NewWalker().Walk(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, maps)

	other := filepath.Join(root, "readme.txt")
	touch(t, other)
	_, err = NewWalker().Walk(other)
	assert.Error(t, err)

	_, err = NewWalker().Walk(filepath.Join(root, "missing.bsp"))
	assert.Error(t, err)
}

func TestFindGameDir(t *testing.T) {
	root := t.TempDir()
	game := filepath.Join(root, "valve")
	for _, d := range []string{"Sound", "models", "maps", "gfx"} {
		require.NoError(t, os.MkdirAll(filepath.Join(game, d), 0o755))
	}
	mapPath := filepath.Join(game, "maps", "c1a0.bsp")
	touch(t, mapPath)

	got, err := FindGameDir(mapPath)
	require.NoError(t, err)
	assert.Equal(t, game, got)

	got, err = FindGameDir(filepath.Join(game, "maps"))
	require.NoError(t, err)
	assert.Equal(t, game, got)
}

func TestIsGameDirNeedsThreeFolders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sound"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "maps"), 0o755))
	assert.False(t, IsGameDir(dir))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sprites"), 0o755))
	assert.True(t, IsGameDir(dir))
}

func TestFindGameDirNotFound(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c", "d", "e")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	_, err := FindGameDir(dir)
	assert.Error(t, err)
}

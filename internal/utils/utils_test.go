package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoFilename(t *testing.T) {
	assert.Equal(t, "video-A_cat_on_a_skateboard_.mp4", VideoFilename("A cat on a skateboard!"))
	assert.Equal(t, "video-.mp4", VideoFilename(""))

	long := "abcdefghijklmnopqrstuvwxyz0123456789"
	assert.Equal(t, "video-abcdefghijklmnopqrstuvwxyz0123.mp4", VideoFilename(long))

	assert.Equal(t, "video-caf_.mp4", VideoFilename("café"))
}

func TestLoadEnvFrom_LocalFileWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("VEOSTUDIO_TEST_A=local\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VEOSTUDIO_TEST_A=base\nVEOSTUDIO_TEST_B=base\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("VEOSTUDIO_TEST_A")
		os.Unsetenv("VEOSTUDIO_TEST_B")
	})

	require.NoError(t, LoadEnvFrom(dir))
	assert.Equal(t, "local", os.Getenv("VEOSTUDIO_TEST_A"))
	assert.Equal(t, "base", os.Getenv("VEOSTUDIO_TEST_B"))
}

func TestLoadEnvFrom_NoFiles(t *testing.T) {
	err := LoadEnvFrom(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("VEOSTUDIO_TEST_D", "")
	d, err := GetEnvDuration("VEOSTUDIO_TEST_D", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	t.Setenv("VEOSTUDIO_TEST_D", "5")
	d, err = GetEnvDuration("VEOSTUDIO_TEST_D", 0)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	t.Setenv("VEOSTUDIO_TEST_D", "250ms")
	d, err = GetEnvDuration("VEOSTUDIO_TEST_D", 0)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	t.Setenv("VEOSTUDIO_TEST_D", "soon")
	d, err = GetEnvDuration("VEOSTUDIO_TEST_D", time.Second)
	assert.Error(t, err)
	assert.Equal(t, time.Second, d)
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("VEOSTUDIO_TEST_I", "")
	n, err := GetEnvInt("VEOSTUDIO_TEST_I", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	t.Setenv("VEOSTUDIO_TEST_I", "42")
	n, err = GetEnvInt("VEOSTUDIO_TEST_I", 7)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "nested", "a.bin")
	require.NoError(t, EnsureParentDir(file))
	assert.True(t, DirectoryExists(filepath.Dir(file)))
	assert.False(t, FileExists(file))

	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	dst := filepath.Join(dir, "b.bin")
	require.NoError(t, CopyFile(file, dst))
	assert.True(t, FileExists(dst))
	assert.False(t, DirectoryExists(dst))
}

package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFileRoundTrip(t *testing.T) {
	f := NewTokenFile(t.TempDir())

	assert.Empty(t, f.Load())

	require.NoError(t, f.Save("tok-abc"))
	assert.Equal(t, "tok-abc", f.Load())

	require.NoError(t, f.Clear())
	assert.Empty(t, f.Load())
}

func TestTokenFileClearMissing(t *testing.T) {
	f := NewTokenFile(t.TempDir())
	assert.NoError(t, f.Clear())
}

func TestTokenFileTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token"), []byte("  tok-x\n"), 0600))
	f := NewTokenFile(dir)
	assert.Equal(t, "tok-x", f.Load())
}

func TestTokenFileEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	f := NewTokenFile(dir)
	require.NoError(t, f.Save("from-file"))

	t.Setenv("MOONBOUND_TOKEN", "from-env")
	assert.Equal(t, "from-env", f.Load())

	t.Setenv("MOONBOUND_TOKEN", "")
	assert.Equal(t, "from-file", f.Load())
}

func TestTokenFilePermissions(t *testing.T) {
	dir := t.TempDir()
	f := NewTokenFile(dir)
	require.NoError(t, f.Save("tok"))

	info, err := os.Stat(filepath.Join(dir, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T) (Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocal(dir, zap.NewNop().Sugar())
	require.NoError(t, err)
	return s, dir
}

func TestLocalStore_StoreOpenRemove(t *testing.T) {
	s, dir := newStore(t)

	path, err := s.Store("pwn1.zip", strings.NewReader("binary"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_pwn1.zip"))
	assert.False(t, filepath.IsAbs(path))

	_, err = os.Stat(filepath.Join(dir, path))
	require.NoError(t, err)

	rc, err := s.Open(path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "binary", string(data))

	require.NoError(t, s.Remove(path))
	_, err = os.Stat(filepath.Join(dir, path))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(path), "removing twice is fine")
}

func TestLocalStore_UniqueNames(t *testing.T) {
	s, _ := newStore(t)

	a, err := s.Store("same.txt", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Store("same.txt", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalStore_RejectsEscapes(t *testing.T) {
	s, _ := newStore(t)

	for _, p := range []string{"", "../etc/passwd", "/etc/passwd", "a/../../b"} {
		_, err := s.Open(p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
		assert.ErrorIs(t, s.Remove(p), ErrInvalidPath, p)
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"task.tar.gz":          "task.tar.gz",
		"../../evil.sh":        "evil.sh",
		`C:\Users\x\file.bin`:  "file.bin",
		"what is this?.txt":    "what_is_this_.txt",
		"...":                  "attachment",
		"":                     "attachment",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitize(in), in)
	}
	assert.Len(t, sanitize(strings.Repeat("a", 300)+".zip"), 100)
}

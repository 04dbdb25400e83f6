package zstdx

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func randBytes(n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(1)).Read(b)
	return b
}

func TestSource(t *testing.T) {
	want := randBytes(100_000)
	var packed bytes.Buffer
	require.NoError(t, Compress(&packed, bytes.NewReader(want)))
	require.True(t, IsZstd(packed.Bytes()))
	require.False(t, IsZstd(want[:2]))

	s, err := NewSource(bytes.NewReader(packed.Bytes()))
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, int64(len(want)), s.Size())

	for _, r := range []struct{ off, n int }{
		{0, 2},
		{12, 8},
		{32_000, 2_000},
		{len(want) - 10, 10},
	} {
		got := make([]byte, r.n)
		n, err := s.ReadAt(got, int64(r.off))
		require.NoError(t, err)
		require.Equal(t, r.n, n)
		require.Equal(t, want[r.off:r.off+r.n], got)
	}

	_, err = s.ReadAt(make([]byte, 4), int64(len(want)))
	require.ErrorIs(t, err, io.EOF)
	n, err := s.ReadAt(make([]byte, 20), int64(len(want)-10))
	require.Error(t, err)
	require.Equal(t, 10, n)
}

func TestOpen(t *testing.T) {
	want := randBytes(1000)
	name := filepath.Join(t.TempDir(), "img.jpg.zst")
	f, err := os.Create(name)
	require.NoError(t, err)
	require.NoError(t, Compress(f, bytes.NewReader(want)))
	require.NoError(t, f.Close())

	s, err := Open(name)
	require.NoError(t, err)
	got := make([]byte, s.Size())
	_, err = s.ReadAt(got, 0)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.NoError(t, s.Close())

	_, err = Open(filepath.Join(t.TempDir(), "missing.zst"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewSourceNotSeekable(t *testing.T) {
	_, err := NewSource(bytes.NewReader([]byte("plain jpeg bytes, no seek table")))
	require.Error(t, err)
}

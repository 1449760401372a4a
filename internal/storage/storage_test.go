package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/wallet-state/internal/crypto"

	"github.com/stretchr/testify/require"
)

var (
	ctx       = context.Background()
	testState = []byte(`{"accounts":{}}`)
	fastKDF   = crypto.ScryptParams{N: 1 << 10}
)

func TestPersisters(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T) Persister
	}{
		{"file", func(t *testing.T) Persister {
			s, err := NewFileStore(t.TempDir(), nil)
			require.NoError(t, err)
			return s
		}},
		{"sealed file", func(t *testing.T) Persister {
			s, err := newFileStore(t.TempDir(), []byte("secret"), fastKDF)
			require.NoError(t, err)
			return s
		}},
		{"badger in memory", func(t *testing.T) Persister {
			s, err := NewBadgerStore("", nil)
			require.NoError(t, err)
			return s
		}},
		{"badger on disk", func(t *testing.T) Persister {
			s, err := NewBadgerStore(t.TempDir(), nil)
			require.NoError(t, err)
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.open(t)
			defer s.Close()

			data, err := s.Load(ctx)
			require.NoError(t, err)
			require.Empty(t, data)

			require.NoError(t, s.Save(ctx, testState))
			data, err = s.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, testState, data)

			updated := []byte(`{"accounts":{"A":{}}}`)
			require.NoError(t, s.Save(ctx, updated))
			data, err = s.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, updated, data)
		})
	}
}

func TestFileStorePlainLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testState))

	raw, err := os.ReadFile(filepath.Join(dir, StateFileName))
	require.NoError(t, err)
	require.Equal(t, testState, raw)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(filePerm), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileStoreSealed(t *testing.T) {
	dir := t.TempDir()
	s, err := newFileStore(dir, []byte("secret"), fastKDF)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testState))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.True(t, crypto.IsSealed(raw))
	require.NotContains(t, string(raw), "accounts")

	wrong, err := newFileStore(dir, []byte("guess"), fastKDF)
	require.NoError(t, err)
	_, err = wrong.Load(ctx)
	require.ErrorIs(t, err, crypto.ErrInvalidPassphrase)

	plain, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	_, err = plain.Load(ctx)
	require.ErrorIs(t, err, crypto.ErrInvalidPassphrase)
}

func TestFileStoreSealsPlainFileOnSave(t *testing.T) {
	dir := t.TempDir()
	plain, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, plain.Save(ctx, testState))

	s, err := newFileStore(dir, []byte("secret"), fastKDF)
	require.NoError(t, err)

	data, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, testState, data)

	require.NoError(t, s.Save(ctx, data))
	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.True(t, crypto.IsSealed(raw))
}

func TestFileStoreCloseWipesPassphrase(t *testing.T) {
	pass := []byte("secret")
	s, err := newFileStore(t.TempDir(), pass, fastKDF)
	require.NoError(t, err)

	s.Close()
	require.False(t, s.Sealed())
	require.Equal(t, []byte("secret"), pass)
}

func TestNewFileStoreRequiresDir(t *testing.T) {
	_, err := NewFileStore("", nil)
	require.Error(t, err)
}

func TestCloseTwice(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T) Persister
	}{
		{"badger in memory", func(t *testing.T) Persister {
			s, err := NewBadgerStore("", nil)
			require.NoError(t, err)
			return s
		}},
		{"badger on disk", func(t *testing.T) Persister {
			s, err := NewBadgerStore(t.TempDir(), nil)
			require.NoError(t, err)
			return s
		}},
		{"file", func(t *testing.T) Persister {
			s, err := newFileStore(t.TempDir(), []byte("secret"), fastKDF)
			require.NoError(t, err)
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.open(t)
			require.NotPanics(t, func() {
				s.Close()
				s.Close()
			})
		})
	}
}

package diskcache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uzendayo/Nuua/internal/compiler"
)

func TestStore_PutThenGet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	prog, err := compiler.Compile("print 1 + 2")
	require.NoError(t, err)

	require.NoError(t, store.Put("hash-a", "source.nu", prog))

	got, ok, err := store.Get("hash-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, prog.Program.Code, got.Program.Code)
	assert.Equal(t, prog.Program.Constants, got.Program.Constants)
}

func TestStore_GetMiss(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get("does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PutOverwritesSameHash(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	first, err := compiler.Compile("print 1")
	require.NoError(t, err)
	second, err := compiler.Compile("print 2")
	require.NoError(t, err)

	require.NoError(t, store.Put("same-hash", "a.nu", first))
	require.NoError(t, store.Put("same-hash", "b.nu", second))

	got, ok, err := store.Get("same-hash")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.Program.Constants, got.Program.Constants)
}

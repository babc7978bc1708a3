package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	badgerStore, err := OpenBadger(InMemoryBadgerConfig())
	require.NoError(t, err)

	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemory(),
		"badger": badgerStore,
		"sqlite": sqliteStore,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, "counters", "missing")
			require.NoError(t, err)
			assert.False(t, ok, "missing key should report ok=false")

			require.NoError(t, store.Put(ctx, "counters", "0/org.calc/Main", []byte("v1")))
			require.NoError(t, store.Put(ctx, "counters", "0/org.calc/Main", []byte("v2")))

			value, ok, err := store.Get(ctx, "counters", "0/org.calc/Main")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("v2"), value)

			require.NoError(t, store.Remove(ctx, "counters", "0/org.calc/Main"))
			_, ok, err = store.Get(ctx, "counters", "0/org.calc/Main")
			require.NoError(t, err)
			assert.False(t, ok)

			// Removing again is not an error.
			require.NoError(t, store.Remove(ctx, "counters", "0/org.calc/Main"))
		})
	}
}

func TestStoreScanIsolatesTables(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "renamed", "a", []byte("Alpha")))
			require.NoError(t, store.Put(ctx, "renamed", "b", []byte("Beta")))
			require.NoError(t, store.Put(ctx, "renamed_extra", "c", []byte("Gamma")))
			require.NoError(t, store.Put(ctx, "deleted", "a", []byte("1")))

			rows, err := store.Scan(ctx, "renamed")
			require.NoError(t, err)
			assert.Equal(t, map[string][]byte{
				"a": []byte("Alpha"),
				"b": []byte("Beta"),
			}, rows)

			empty, err := store.Scan(ctx, "nothing")
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	for _, backend := range []Backend{BackendMemory, BackendBadger, BackendSQLite} {
		store, err := Open(Config{Backend: backend, Path: dir}, nil)
		require.NoError(t, err, backend)
		require.NoError(t, store.Close())
	}

	_, err := Open(Config{Backend: "etcd"}, nil)
	assert.Error(t, err)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "deleted", "x", []byte("1")))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	value, ok, err := second.Get(ctx, "deleted", "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), value)
}

func TestMemoryClosed(t *testing.T) {
	store := NewMemory()
	require.NoError(t, store.Close())

	err := store.Put(context.Background(), "t", "k", []byte("v"))
	assert.ErrorIs(t, err, ErrClosed)
}

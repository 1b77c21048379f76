package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"mem":  NewMemStore(),
		"file": fileStore,
	}
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			h, err := store.Open(NamespaceCodes)
			require.NoError(t, err)
			require.NoError(t, store.Set(h, "btn_0", []byte{1, 2, 3}))

			got, err := store.Get(h, "btn_0")
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 2, 3}, got)
		})
	}
}

func TestStore_GetMissingReturnsNotFound(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			h, err := store.Open(NamespaceActions)
			require.NoError(t, err)
			_, err = store.Get(h, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_EraseAndEraseAll(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			h, err := store.Open(NamespaceAC)
			require.NoError(t, err)
			require.NoError(t, store.Set(h, "state", []byte("x")))
			require.NoError(t, store.Set(h, "other", []byte("y")))

			require.NoError(t, store.Erase(h, "state"))
			_, err = store.Get(h, "state")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.EraseAll(h))
			_, err = store.Get(h, "other")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// TestFileStore_PersistsAcrossReopen covers the durability property a
// mem store cannot: committed data survives opening a fresh FileStore
// over the same directory.
func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")

	store1, err := NewFileStore(dir)
	require.NoError(t, err)
	h1, err := store1.Open(NamespaceCodes)
	require.NoError(t, err)
	require.NoError(t, store1.Set(h1, "btn_1", []byte{9, 9}))
	require.NoError(t, store1.Commit(h1))

	store2, err := NewFileStore(dir)
	require.NoError(t, err)
	h2, err := store2.Open(NamespaceCodes)
	require.NoError(t, err)
	got, err := store2.Get(h2, "btn_1")
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, got)
}

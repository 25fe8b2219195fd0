package kvstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-media-backend/internal/client/kvstore"
)

func TestStore_SetGetDelete(t *testing.T) {
	store := kvstore.Open(filepath.Join(t.TempDir(), "state.json"))

	var got int
	ok, err := store.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("count", 42))
	ok, err = store.Get("count", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, got)

	require.NoError(t, store.Delete("count"))
	ok, err = store.Get("count", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first := kvstore.Open(path)
	require.NoError(t, first.Set("name", "alice"))
	require.NoError(t, first.Set("age", 30))

	second := kvstore.Open(path)
	var name string
	ok, err := second.Get("name", &name)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", name)
}

func TestStore_StructValues(t *testing.T) {
	type entry struct {
		ID   string `json:"id"`
		Done bool   `json:"done"`
	}
	store := kvstore.Open(filepath.Join(t.TempDir(), "state.json"))

	require.NoError(t, store.Set("entry", entry{ID: "x", Done: true}))
	var got entry
	ok, err := store.Get("entry", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entry{ID: "x", Done: true}, got)
}

func TestStore_DeleteMissingKeyIsNoop(t *testing.T) {
	store := kvstore.Open(filepath.Join(t.TempDir(), "state.json"))
	assert.NoError(t, store.Delete("never-set"))
}

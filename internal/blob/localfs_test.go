package blob

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutOpen(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("uploads/report.pdf", strings.NewReader("pdf bytes")))

	r, err := store.Open("uploads/report.pdf")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestStorePutReplaces(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("doc", strings.NewReader("old")))
	require.NoError(t, store.Put("doc", strings.NewReader("new")))

	r, err := store.Open("doc")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestStoreExists(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	exists, err := store.Exists("missing")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Put("present", strings.NewReader("x")))

	exists, err = store.Exists("present")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStoreDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("doc", strings.NewReader("x")))
	require.NoError(t, store.Delete("doc"))

	exists, err := store.Exists("doc")
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting again is fine
	require.NoError(t, store.Delete("doc"))
}

func TestStoreRejectsTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put("../escape", strings.NewReader("x"))
	require.Error(t, err)

	_, err = store.Open("")
	require.Error(t, err)
}

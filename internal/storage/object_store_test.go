package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *LocalObjectStore {
	logger, _ := zap.NewDevelopment()
	store, err := NewLocalObjectStore(t.TempDir(), logger)
	require.NoError(t, err)
	return store
}

func TestLocalObjectStoreUpload(t *testing.T) {
	store := newTestStore(t)

	content := []byte("Delivery Challan Number,Customer Name\nDC-1,Agro Traders\n")
	ref, err := store.Upload("challans_june.csv", content)
	require.NoError(t, err)

	assert.NotEmpty(t, ref.PublicID)
	assert.Equal(t, "challans_june.csv", ref.Name)
	assert.Equal(t, int64(len(content)), ref.Size)
	assert.False(t, ref.UploadedAt.IsZero())

	stored, err := os.ReadFile(ref.URL)
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestLocalObjectStoreList(t *testing.T) {
	store := newTestStore(t)

	refs, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, refs)

	first, err := store.Upload("a.csv", []byte("a"))
	require.NoError(t, err)
	second, err := store.Upload("b.csv", []byte("bb"))
	require.NoError(t, err)

	refs, err = store.List()
	require.NoError(t, err)
	require.Len(t, refs, 2)

	ids := []string{refs[0].PublicID, refs[1].PublicID}
	assert.Contains(t, ids, first.PublicID)
	assert.Contains(t, ids, second.PublicID)
}

func TestLocalObjectStoreDelete(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Upload("a.csv", []byte("a"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ref.PublicID))

	refs, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, refs)
	_, err = os.Stat(ref.URL)
	assert.True(t, os.IsNotExist(err))

	err = store.Delete(ref.PublicID)
	assert.Error(t, err, "deleting an unknown id must fail")
}

func TestLocalObjectStoreRejectsEscapingIDs(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete("../../etc/passwd")
	assert.Error(t, err)
}

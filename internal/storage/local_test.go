package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveOpenDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	key := NewKey(".png")

	require.NoError(t, store.Save(ctx, key, strings.NewReader("png-bytes"), 9, "image/png"))

	obj, err := store.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, obj.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(9), obj.Size)

	require.NoError(t, store.Delete(ctx, key))
	assert.ErrorIs(t, store.Delete(ctx, key), ErrNotFound)

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_RejectsBadKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = store.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"), 1, "text/plain")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = store.Open(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

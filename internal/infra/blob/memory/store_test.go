package memory

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"quizbank/internal/blob/core"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.Equal(t, core.DriverMemory, store.Driver())

	info, err := store.Put(ctx, "exports/1/a.docx", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "text/plain"})
	require.NoError(t, err)
	require.EqualValues(t, 5, info.Size)
	require.NotEmpty(t, info.ETag)

	_, err = store.Put(ctx, "exports/1/a.docx", bytes.NewReader(nil), core.PutOptions{})
	require.ErrorIs(t, err, core.ErrExists)

	_, rc, err := store.Get(ctx, "exports/1/a.docx")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	require.Equal(t, "hello", string(body))

	_, err = store.Put(ctx, "exports/0/b.pdf", bytes.NewReader([]byte("x")), core.PutOptions{})
	require.NoError(t, err)
	list, err := store.List(ctx, "exports/")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "exports/0/b.pdf", list[0].Key)

	ok, err := store.Delete(ctx, "exports/1/a.docx")
	require.NoError(t, err)
	require.True(t, ok)
	_, _, err = store.Get(ctx, "exports/1/a.docx")
	require.ErrorIs(t, err, core.ErrNotFound)
	ok, err = store.Delete(ctx, "exports/1/a.docx")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := New()
	_, err := store.Put(ctx, "k", bytes.NewReader([]byte("abc")), core.PutOptions{})
	require.NoError(t, err)

	_, rc, err := store.Get(ctx, "k")
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = io.ReadFull(rc, buf)
	require.NoError(t, err)
	buf[0] = 'z'

	_, rc, err = store.Get(ctx, "k")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	require.Equal(t, "abc", string(body))
}

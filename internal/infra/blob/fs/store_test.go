package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"quizbank/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)
	return store
}

func TestPutGetListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)

	info, err := store.Put(ctx, "exports/abc/sheet.pdf", bytes.NewReader([]byte("%PDF-1.3")), core.PutOptions{
		ContentType: "application/pdf",
		Metadata:    map[string]string{"items": "3"},
	})
	require.NoError(t, err)
	require.Equal(t, "exports/abc/sheet.pdf", info.Key)
	require.EqualValues(t, 8, info.Size)
	require.Len(t, info.ETag, 64)

	_, err = store.Put(ctx, "exports/abc/sheet.pdf", bytes.NewReader([]byte("x")), core.PutOptions{})
	require.ErrorIs(t, err, core.ErrExists)

	got, rc, err := store.Get(ctx, "exports/abc/sheet.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "%PDF-1.3", string(body))
	require.Equal(t, info.ETag, got.ETag)
	require.Equal(t, "application/pdf", got.ContentType)
	require.Equal(t, map[string]string{"items": "3"}, got.Metadata)

	_, err = store.Put(ctx, "other/file.docx", bytes.NewReader([]byte("zip")), core.PutOptions{})
	require.NoError(t, err)
	list, err := store.List(ctx, "exports/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "exports/abc/sheet.pdf", list[0].Key)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, "exports/abc/sheet.pdf", all[0].Key)
	require.Equal(t, "other/file.docx", all[1].Key)

	ok, err := store.Delete(ctx, "exports/abc/sheet.pdf")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = store.Delete(ctx, "exports/abc/sheet.pdf")
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = store.Get(ctx, "exports/abc/sheet.pdf")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"", "  ", "../escape.pdf", "/abs.pdf", "exports/../../escape.pdf", "exports/..", "."} {
		_, err := store.Put(ctx, key, bytes.NewReader(nil), core.PutOptions{})
		require.Error(t, err, key)
	}
}

func TestAcceptsDotsInsideNames(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "exports/abc/quiz..final.pdf", bytes.NewReader([]byte("pdf")), core.PutOptions{})
	require.NoError(t, err)
	require.Equal(t, "exports/abc/quiz..final.pdf", info.Key)
	require.FileExists(t, filepath.Join(store.Root(), "exports", "abc", "quiz..final.pdf"))

	_, err = store.Put(ctx, "..hidden/sheet.pdf", bytes.NewReader(nil), core.PutOptions{})
	require.NoError(t, err)
}

func TestNewDefaultsRoot(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	store, err := New("")
	require.NoError(t, err)
	require.Equal(t, "./exports", store.Root())
	require.Equal(t, core.DriverFilesystem, store.Driver())
	_, err = os.Stat(filepath.Join(dir, "exports"))
	require.NoError(t, err)
}

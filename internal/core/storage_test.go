package core

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"quizbank/internal/config"
	"quizbank/internal/infra/persistence/postgres"
	"quizbank/internal/infra/persistence/postgres/testutil"
	"quizbank/pkg/domain"
)

func TestOpenBackendDrivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	csv, err := OpenBackend(ctx, config.StorageConfig{Path: filepath.Join(dir, "q.csv")})
	require.NoError(t, err)
	require.Equal(t, string(StorageCSV), csv.Driver())

	mem, err := OpenBackend(ctx, config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	require.Equal(t, string(StorageMemory), mem.Driver())

	lite, err := OpenBackend(ctx, config.StorageConfig{Driver: "sqlite", SQLitePath: filepath.Join(dir, "q.db")})
	require.NoError(t, err)
	require.Equal(t, string(StorageSQLite), lite.Driver())
	closer, ok := lite.(io.Closer)
	require.True(t, ok)
	require.NoError(t, closer.Close())
}

func TestOpenBackendPostgres(t *testing.T) {
	db, _ := testutil.NewStubDB()
	restore := postgres.OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()

	backend, err := OpenBackend(context.Background(), config.StorageConfig{Driver: "postgres", PostgresDSN: "postgres://stub"})
	require.NoError(t, err)
	require.Equal(t, string(StoragePostgres), backend.Driver())

	bank := New(backend)
	bank.AddRecord(domain.Record{Question: "from postgres"})
	require.NoError(t, bank.Save(context.Background()))
	_, err = bank.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, bank.Len())
}

func TestOpenBackendUnknown(t *testing.T) {
	_, err := OpenBackend(context.Background(), config.StorageConfig{Driver: "mongo"})
	require.ErrorContains(t, err, "unknown storage driver")
}

package core

import (
	"context"
	"fmt"

	"quizbank/internal/config"
	"quizbank/internal/infra/persistence/csvfile"
	"quizbank/internal/infra/persistence/memory"
	"quizbank/internal/infra/persistence/postgres"
	"quizbank/internal/infra/persistence/sqlite"
	"quizbank/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageCSV      StorageDriver = csvfile.DriverName  // backing CSV file (default)
	StorageSQLite   StorageDriver = sqlite.DriverName   // embedded sqlite file
	StoragePostgres StorageDriver = postgres.DriverName // PostgreSQL server
	StorageMemory   StorageDriver = memory.DriverName   // in-memory only (tests / ephemeral)
)

// OpenBackend selects a backend from cfg. Defaults to csv when the driver
// is unset. Backends holding a connection implement io.Closer.
func OpenBackend(ctx context.Context, cfg config.StorageConfig) (domain.Backend, error) {
	driver := StorageDriver(cfg.Driver)
	if driver == "" {
		driver = StorageCSV
	}
	switch driver {
	case StorageCSV:
		return csvfile.New(cfg.Path), nil
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

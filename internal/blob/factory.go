// Package blob opens the export archive selected by configuration.
package blob

import (
	"context"
	"fmt"

	"quizbank/internal/blob/core"
	"quizbank/internal/config"
	"quizbank/internal/infra/blob/fs"
	"quizbank/internal/infra/blob/memory"
	"quizbank/internal/infra/blob/s3"
)

type (
	// Store aliases core.Store.
	Store = core.Store
	// Info aliases core.Info.
	Info = core.Info
	// PutOptions aliases core.PutOptions.
	PutOptions = core.PutOptions
)

var (
	// ErrExists aliases core.ErrExists.
	ErrExists = core.ErrExists
	// ErrNotFound aliases core.ErrNotFound.
	ErrNotFound = core.ErrNotFound
)

// Open returns the archive named by cfg.Driver, or nil when the archive is
// disabled (driver empty or "none").
func Open(ctx context.Context, cfg config.ArchiveConfig) (Store, error) {
	switch core.Driver(cfg.Driver) {
	case "", core.DriverNone:
		return nil, nil
	case core.DriverFilesystem:
		return fs.New(cfg.FSRoot)
	case core.DriverMemory:
		return memory.New(), nil
	case core.DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Prefix:    cfg.S3.Prefix,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown archive driver %s", cfg.Driver)
	}
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"quizbank/internal/blob"
	"quizbank/internal/category"
	"quizbank/internal/config"
	"quizbank/internal/core"
	"quizbank/internal/export"
	"quizbank/internal/logging"
	"quizbank/internal/observability"
)

var loadConfigFn = config.Load

// session is everything one command invocation works on.
type session struct {
	cfg        *config.Config
	logger     *zap.Logger
	bank       *core.Bank
	categories *category.Store
	metrics    *observability.PrometheusRecorder
	report     core.LoadReport
	closers    []io.Closer
}

func openSession(ctx context.Context, deps commandDeps) (*session, error) {
	cfg, err := loadConfigFn(strings.TrimSpace(deps.globals.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging, deps.globals.Verbose)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, metrics: observability.NewPrometheusRecorder()}

	backend, err := core.OpenBackend(ctx, cfg.Storage)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if c, ok := backend.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	archive, err := blob.Open(ctx, cfg.Export.Archive)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open archive: %w", err)
	}

	s.bank = core.New(backend,
		core.WithLogger(logger),
		core.WithMetrics(s.metrics),
		core.WithArchive(archive),
		core.WithRenderers(export.NewRegistry(export.Options{
			PDFFontPath: cfg.Export.PDFFontPath,
			Title:       cfg.Export.Title,
		})),
	)
	if s.report, err = s.bank.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	if s.categories, err = category.Open(cfg.Categories.Path, cfg.Categories.Defaults); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases backends and dumps metrics when a textfile is configured.
func (s *session) Close() {
	if s.cfg != nil && s.cfg.Metrics.Textfile != "" && s.metrics != nil {
		if err := s.metrics.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
			s.logger.Warn("write metrics textfile", zap.String("path", s.cfg.Metrics.Textfile), zap.Error(err))
		}
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn("close backend", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

func withSession(ctx context.Context, deps commandDeps, fn func(context.Context, *session) error) error {
	s, err := openSession(ctx, deps)
	if err != nil {
		return mapCommandError(err)
	}
	defer s.Close()
	return mapCommandError(fn(ctx, s))
}

// withArchive opens only the export archive; the question store is not
// loaded.
func withArchive(ctx context.Context, deps commandDeps, fn func(context.Context, blob.Store) error) error {
	cfg, err := loadConfigFn(strings.TrimSpace(deps.globals.ConfigPath))
	if err != nil {
		return mapCommandError(fmt.Errorf("load config: %w", err))
	}
	logger, err := logging.New(cfg.Logging, deps.globals.Verbose)
	if err != nil {
		return mapCommandError(err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := blob.Open(ctx, cfg.Export.Archive)
	if err != nil {
		return mapCommandError(fmt.Errorf("open archive: %w", err))
	}
	if store == nil {
		return usageErrorf("the export archive is disabled; set export.archive.driver")
	}
	logger.Debug("archive opened", zap.String("driver", string(store.Driver())))
	return mapCommandError(fn(ctx, store))
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

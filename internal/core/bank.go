// Package core holds the question bank: the in-memory record store, its
// baseline snapshot, query and selection operations, and document export.
package core

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizbank/internal/blob"
	"quizbank/internal/export"
	"quizbank/pkg/domain"
)

// Bank is the record store. It is not safe for concurrent use; one CLI
// invocation or one caller owns it.
type Bank struct {
	backend   domain.Backend
	logger    *zap.Logger
	metrics   MetricsRecorder
	renderers *export.Registry
	archive   blob.Store
	rng       *rand.Rand
	now       func() time.Time
	newKey    func() string

	entries   []domain.Entry
	baseline  []domain.Entry
	selection []domain.RecordID
	nextID    domain.RecordID
}

// Option configures a Bank.
type Option func(*Bank)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bank) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics sets the operation recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(b *Bank) {
		if m != nil {
			b.metrics = m
		}
	}
}

// WithRenderers replaces the default PDF and DOCX renderers.
func WithRenderers(r *export.Registry) Option {
	return func(b *Bank) {
		if r != nil {
			b.renderers = r
		}
	}
}

// WithArchive publishes every exported document to store.
func WithArchive(store blob.Store) Option {
	return func(b *Bank) { b.archive = store }
}

// WithRand fixes the source used by SelectRandom.
func WithRand(r *rand.Rand) Option {
	return func(b *Bank) { b.rng = r }
}

// WithClock overrides the time source used for metrics and archive
// metadata.
func WithClock(now func() time.Time) Option {
	return func(b *Bank) {
		if now != nil {
			b.now = now
		}
	}
}

// New returns an empty bank over backend. Call Load to populate it.
func New(backend domain.Backend, opts ...Option) *Bank {
	b := &Bank{
		backend: backend,
		logger:  zap.NewNop(),
		metrics: noopMetrics{},
		now:     time.Now,
		newKey:  uuid.NewString,
		nextID:  1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.renderers == nil {
		b.renderers = export.NewRegistry(export.Options{})
	}
	return b
}

// LoadReport summarises a Load.
type LoadReport struct {
	Records int
	Skipped []*domain.ParseError
	Created bool
}

// Load replaces the store and the baseline with the backend contents and
// clears the selection. Malformed rows are skipped and reported. When the
// backend cannot be read at all the bank is left empty and the IOError is
// returned.
func (b *Bank) Load(ctx context.Context) (report LoadReport, err error) {
	start := b.now()
	defer func() { b.observe(ctx, "load", start, err) }()

	b.selection = nil
	table, err := b.backend.Read(ctx)
	if err != nil {
		b.entries, b.baseline = nil, nil
		if !errors.Is(err, domain.ErrIO) {
			err = &domain.IOError{Op: "load", Path: b.backend.Location(), Err: err}
		}
		b.logger.Error("load failed", zap.String("location", b.backend.Location()), zap.Error(err))
		return LoadReport{}, err
	}

	entries := make([]domain.Entry, len(table.Records))
	for i, r := range table.Records {
		entries[i] = domain.Entry{ID: b.allocID(), Record: r}
	}
	b.entries = entries
	b.baseline = domain.CloneEntries(entries)

	for _, skipped := range table.Skipped {
		b.logger.Warn("skipped malformed row",
			zap.String("location", b.backend.Location()),
			zap.Int("line", skipped.Line),
			zap.Error(skipped.Err))
	}
	b.logger.Info("questions loaded",
		zap.String("driver", b.backend.Driver()),
		zap.String("location", b.backend.Location()),
		zap.Int("records", len(entries)),
		zap.Int("skipped", len(table.Skipped)),
		zap.Bool("created", table.Created))
	return LoadReport{Records: len(entries), Skipped: table.Skipped, Created: table.Created}, nil
}

// Save writes the whole store to the backend in store order. On success
// the baseline becomes a copy of the store.
func (b *Bank) Save(ctx context.Context) (err error) {
	start := b.now()
	defer func() { b.observe(ctx, "save", start, err) }()

	if err = b.backend.Write(ctx, domain.View(b.entries).Records()); err != nil {
		if !errors.Is(err, domain.ErrIO) {
			err = &domain.IOError{Op: "save", Path: b.backend.Location(), Err: err}
		}
		b.logger.Error("save failed", zap.String("location", b.backend.Location()), zap.Error(err))
		return err
	}
	b.baseline = domain.CloneEntries(b.entries)
	b.logger.Debug("questions saved", zap.String("location", b.backend.Location()), zap.Int("records", len(b.entries)))
	return nil
}

// Add builds a record from named fields and appends it. Missing fields
// are empty; unknown names fail with a ValidationError.
func (b *Bank) Add(fields map[string]string) (domain.RecordID, error) {
	rec, err := domain.RecordFromMap(fields)
	if err != nil {
		return 0, err
	}
	return b.AddRecord(rec), nil
}

// AddRecord appends rec to the store and to the baseline, so a later
// Reset keeps it.
func (b *Bank) AddRecord(rec domain.Record) domain.RecordID {
	e := domain.Entry{ID: b.allocID(), Record: rec}
	b.entries = append(b.entries, e)
	b.baseline = append(b.baseline, e)
	b.logger.Debug("question added", zap.Int64("id", int64(e.ID)), zap.String("category", rec.Category))
	return e.ID
}

// Get returns the record with identity id.
func (b *Bank) Get(id domain.RecordID) (domain.Record, error) {
	i := b.index(id)
	if i < 0 {
		return domain.Record{}, &domain.NotFoundError{ID: id}
	}
	return b.entries[i].Record, nil
}

// Update overwrites the named fields of record id and returns the result.
// The baseline is untouched until Save.
func (b *Bank) Update(id domain.RecordID, fields map[string]string) (domain.Record, error) {
	i := b.index(id)
	if i < 0 {
		return domain.Record{}, &domain.NotFoundError{ID: id}
	}
	rec := b.entries[i].Record
	if err := rec.Apply(fields); err != nil {
		return domain.Record{}, err
	}
	b.entries[i].Record = rec
	return rec, nil
}

// Replace swaps the whole record id for rec.
func (b *Bank) Replace(id domain.RecordID, rec domain.Record) error {
	i := b.index(id)
	if i < 0 {
		return &domain.NotFoundError{ID: id}
	}
	b.entries[i].Record = rec
	return nil
}

// Delete removes record id from the store. A selection still naming it
// drops it when the export resolves.
func (b *Bank) Delete(id domain.RecordID) error {
	i := b.index(id)
	if i < 0 {
		return &domain.NotFoundError{ID: id}
	}
	b.entries = slices.Delete(b.entries, i, i+1)
	return nil
}

// List returns the whole store in order.
func (b *Bank) List() domain.View {
	return domain.View(domain.CloneEntries(b.entries))
}

// Len is the number of records in the store.
func (b *Bank) Len() int { return len(b.entries) }

// Baseline returns the last loaded or saved snapshot, including records
// added since.
func (b *Bank) Baseline() domain.View {
	return domain.View(domain.CloneEntries(b.baseline))
}

// Dirty reports whether the store differs from the baseline.
func (b *Bank) Dirty() bool {
	return !slices.Equal(b.entries, b.baseline)
}

// Reset discards unsaved edits and deletions by restoring the baseline,
// and clears the selection. It does not touch the backend.
func (b *Bank) Reset() {
	b.entries = domain.CloneEntries(b.baseline)
	b.selection = nil
	b.logger.Debug("store reset", zap.Int("records", len(b.entries)))
}

// Backend returns the persistence backend.
func (b *Bank) Backend() domain.Backend { return b.backend }

func (b *Bank) allocID() domain.RecordID {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Bank) index(id domain.RecordID) int {
	return slices.IndexFunc(b.entries, func(e domain.Entry) bool { return e.ID == id })
}

// positions maps every live identity to its store index.
func (b *Bank) positions() map[domain.RecordID]int {
	out := make(map[domain.RecordID]int, len(b.entries))
	for i, e := range b.entries {
		out[e.ID] = i
	}
	return out
}

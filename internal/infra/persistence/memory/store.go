// Package memory keeps the question table in process memory. It backs
// tests and ephemeral runs (QUIZBANK_STORAGE_DRIVER=memory).
package memory

import (
	"context"
	"sync"

	"quizbank/pkg/domain"
)

// DriverName identifies this backend in configuration.
const DriverName = "memory"

// Store implements domain.Backend on a slice.
type Store struct {
	mu      sync.Mutex
	records []domain.Record
	exists  bool
	writes  int
	// FailWrite, when set, is returned by Write before anything changes.
	FailWrite error
}

var _ domain.Backend = (*Store)(nil)

// NewStore returns an empty backend that reports itself as missing until
// the first write, mirroring a fresh file.
func NewStore() *Store { return &Store{} }

// NewSeeded returns a backend that already holds records.
func NewSeeded(records ...domain.Record) *Store {
	return &Store{records: append([]domain.Record(nil), records...), exists: true}
}

func (s *Store) Driver() string { return DriverName }

func (s *Store) Location() string { return "memory" }

// Read returns a copy of the stored rows.
func (s *Store) Read(context.Context) (domain.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists {
		s.exists = true
		s.records = nil
		return domain.Table{Created: true}, nil
	}
	return domain.Table{Records: append([]domain.Record(nil), s.records...)}, nil
}

// Write replaces the stored rows.
func (s *Store) Write(_ context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrite != nil {
		return &domain.IOError{Op: "write", Path: "memory", Err: s.FailWrite}
	}
	s.records = append([]domain.Record(nil), records...)
	s.exists = true
	s.writes++
	return nil
}

// Records returns what was last written.
func (s *Store) Records() []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Record(nil), s.records...)
}

// Writes counts successful writes.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Package sqlite persists the question table in an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"quizbank/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DriverName identifies this backend in configuration.
const DriverName = "sqlite"

const defaultPath = "quizbank.db"

const schema = `CREATE TABLE IF NOT EXISTS questions (
	position INTEGER PRIMARY KEY,
	question TEXT NOT NULL DEFAULT '',
	answer   TEXT NOT NULL DEFAULT '',
	option1  TEXT NOT NULL DEFAULT '',
	option2  TEXT NOT NULL DEFAULT '',
	option3  TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	source   TEXT NOT NULL DEFAULT ''
)`

// Store keeps one row per record, ordered by position. Every write
// replaces the table inside a single transaction.
type Store struct {
	db   *sql.DB
	path string
}

var _ domain.Backend = (*Store)(nil)

// NewStore opens (and creates if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; the table is rewritten wholesale
	db.SetMaxOpenConns(1)
	return &Store{db: db, path: path}, nil
}

func (s *Store) Driver() string { return DriverName }

func (s *Store) Location() string { return s.path }

// Read loads every row in position order. A missing table is created and
// reported through Table.Created.
func (s *Store) Read(ctx context.Context) (domain.Table, error) {
	created, err := s.ensureSchema(ctx)
	if err != nil {
		return domain.Table{}, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT question, answer, option1, option2, option3, category, source FROM questions ORDER BY position`)
	if err != nil {
		return domain.Table{}, &domain.IOError{Op: "select questions", Path: s.path, Err: err}
	}
	defer func() { _ = rows.Close() }()

	table := domain.Table{Created: created}
	line := 0
	for rows.Next() {
		line++
		var r domain.Record
		if err := rows.Scan(&r.Question, &r.Answer, &r.Option1, &r.Option2, &r.Option3, &r.Category, &r.Source); err != nil {
			table.Skipped = append(table.Skipped, &domain.ParseError{Line: line, Err: err})
			continue
		}
		table.Records = append(table.Records, r)
	}
	if err := rows.Err(); err != nil {
		return domain.Table{}, &domain.IOError{Op: "iterate questions", Path: s.path, Err: err}
	}
	return table, nil
}

func (s *Store) ensureSchema(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='questions'`).Scan(&n)
	if err != nil {
		return false, &domain.IOError{Op: "inspect schema", Path: s.path, Err: err}
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return false, &domain.IOError{Op: "create questions table", Path: s.path, Err: err}
	}
	return true, nil
}

// Write replaces the table contents.
func (s *Store) Write(ctx context.Context, records []domain.Record) (retErr error) {
	if _, err := s.ensureSchema(ctx); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.IOError{Op: "begin", Path: s.path, Err: err}
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return &domain.IOError{Op: "clear questions", Path: s.path, Err: err}
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO questions(position, question, answer, option1, option2, option3, category, source) VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		return &domain.IOError{Op: "prepare insert", Path: s.path, Err: err}
	}
	defer func() { _ = stmt.Close() }()
	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i+1, r.Question, r.Answer, r.Option1, r.Option2, r.Option3, r.Category, r.Source); err != nil {
			return &domain.IOError{Op: fmt.Sprintf("insert row %d", i+1), Path: s.path, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &domain.IOError{Op: "commit", Path: s.path, Err: err}
	}
	return nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

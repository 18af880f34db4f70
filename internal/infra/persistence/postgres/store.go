// Package postgres persists the question table to a PostgreSQL server
// through the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"quizbank/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// DriverName identifies this backend in configuration.
const DriverName = "postgres"

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/quizbank?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

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

// Store keeps one row per record ordered by position; writes truncate and
// refill the table in one transaction.
type Store struct {
	db  *sql.DB
	dsn string
}

var _ domain.Backend = (*Store)(nil)

// NewStore opens and pings the server, then ensures the table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure questions table: %w", err)
	}
	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Driver() string { return DriverName }

// Location omits credentials.
func (s *Store) Location() string { return "postgres:questions" }

// Read loads every row in position order.
func (s *Store) Read(ctx context.Context) (domain.Table, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT question, answer, option1, option2, option3, category, source FROM questions ORDER BY position`)
	if err != nil {
		return domain.Table{}, &domain.IOError{Op: "select questions", Path: s.Location(), Err: err}
	}
	defer func() { _ = rows.Close() }()

	var table domain.Table
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
		return domain.Table{}, &domain.IOError{Op: "iterate questions", Path: s.Location(), Err: err}
	}
	return table, nil
}

// Write replaces the table contents.
func (s *Store) Write(ctx context.Context, records []domain.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.IOError{Op: "begin tx", Path: s.Location(), Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `TRUNCATE TABLE questions`); err != nil {
		return &domain.IOError{Op: "truncate questions", Path: s.Location(), Err: err}
	}
	for i, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions(position, question, answer, option1, option2, option3, category, source) VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
			int64(i+1), r.Question, r.Answer, r.Option1, r.Option2, r.Option3, r.Category, r.Source,
		); err != nil {
			return &domain.IOError{Op: fmt.Sprintf("insert row %d", i+1), Path: s.Location(), Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &domain.IOError{Op: "commit", Path: s.Location(), Err: err}
	}
	committed = true
	return nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

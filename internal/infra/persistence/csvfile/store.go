// Package csvfile stores the question table as a UTF-8 CSV file with a
// header row. This is the default backend.
package csvfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"quizbank/pkg/domain"
)

// DriverName identifies this backend in configuration.
const DriverName = "csv"

const defaultPath = "database.csv"

// utf8BOM is written ahead of the header so spreadsheet tools pick the
// right encoding; it is stripped on read.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Store reads and writes a single CSV file. Writes go through a temp file
// in the same directory followed by a rename.
type Store struct {
	path string
}

var _ domain.Backend = (*Store)(nil)

// New returns a store for path, defaulting to ./database.csv.
func New(path string) *Store {
	if path == "" {
		path = defaultPath
	}
	return &Store{path: path}
}

func (s *Store) Driver() string { return DriverName }

func (s *Store) Location() string { return s.path }

// Read parses the file. A missing file is created holding only the header.
// Rows with the wrong number of cells or broken quoting are skipped and
// reported in Table.Skipped.
func (s *Store) Read(ctx context.Context) (domain.Table, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.Write(ctx, nil); err != nil {
			return domain.Table{}, err
		}
		return domain.Table{Created: true}, nil
	}
	if err != nil {
		return domain.Table{}, &domain.IOError{Op: "open", Path: s.path, Err: err}
	}
	defer func() { _ = f.Close() }()

	table, err := Decode(f)
	if err != nil {
		return domain.Table{}, &domain.IOError{Op: "read", Path: s.path, Err: err}
	}
	return table, nil
}

// Decode parses CSV content. Only errors from the underlying reader are
// returned; malformed rows end up in Table.Skipped. After a row with broken
// quoting, parsing resumes on the physical line that follows its first
// line, so an unterminated quote costs one row rather than the rest of the
// file.
func Decode(r io.Reader) (domain.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Table{}, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var (
		table   domain.Table
		columns []domain.Field
		first   = true
		base    int // physical lines consumed by earlier passes
	)
	for {
		cr := csv.NewReader(bytes.NewReader(data))
		cr.FieldsPerRecord = -1
		resume := 0
		for {
			row, err := cr.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				var perr *csv.ParseError
				if !errors.As(err, &perr) {
					return domain.Table{}, err
				}
				table.Skipped = append(table.Skipped, &domain.ParseError{Line: base + perr.StartLine, Err: perr.Err})
				resume = perr.StartLine
				break
			}
			if first {
				first = false
				if cols, ok := headerColumns(row); ok {
					columns = cols
					continue
				}
				columns = domain.Fields
			}
			if len(row) != len(columns) {
				line, _ := cr.FieldPos(0)
				table.Skipped = append(table.Skipped, &domain.ParseError{
					Line: base + line,
					Err:  fmt.Errorf("expected %d columns, got %d", len(columns), len(row)),
				})
				continue
			}
			var rec domain.Record
			for i, f := range columns {
				rec.Set(f, row[i])
			}
			table.Records = append(table.Records, rec)
		}
		if resume == 0 {
			return table, nil
		}
		data = dropLines(data, resume)
		base += resume
	}
}

// dropLines returns data without its first n newline-terminated lines.
func dropLines(data []byte, n int) []byte {
	for ; n > 0; n-- {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return nil
		}
		data = data[i+1:]
	}
	return data
}

// headerColumns reports whether row is a header naming every schema field
// exactly once, in any order.
func headerColumns(row []string) ([]domain.Field, bool) {
	if len(row) != len(domain.Fields) {
		return nil, false
	}
	seen := make(map[domain.Field]struct{}, len(row))
	cols := make([]domain.Field, len(row))
	for i, cell := range row {
		f, ok := domain.ParseField(cell)
		if !ok {
			return nil, false
		}
		if _, dup := seen[f]; dup {
			return nil, false
		}
		seen[f] = struct{}{}
		cols[i] = f
	}
	return cols, true
}

// Encode writes records with a leading BOM and header row.
func Encode(w io.Writer, records []domain.Record) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ColumnNames()); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write replaces the file atomically. On failure the previous file is left
// as it was.
func (s *Store) Write(_ context.Context, records []domain.Record) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.IOError{Op: "create dir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+strings.TrimPrefix(filepath.Base(s.path), ".")+".tmp-*")
	if err != nil {
		return &domain.IOError{Op: "create temp", Path: s.path, Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, records); err != nil {
		_ = tmp.Close()
		return &domain.IOError{Op: "encode", Path: s.path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return &domain.IOError{Op: "write", Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &domain.IOError{Op: "sync", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.IOError{Op: "close", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &domain.IOError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}

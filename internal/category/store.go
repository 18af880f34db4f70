// Package category keeps the free-text category labels offered when a
// question is entered. Labels live one per row in a single-column CSV file.
package category

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"quizbank/pkg/domain"
)

// ErrDuplicateCategory is returned by Append for a label already present.
var ErrDuplicateCategory = errors.New("category already exists")

// Store is an append-only list of labels backed by a file.
type Store struct {
	path   string
	labels []string
}

// Open loads path. A missing file is seeded with defaults and written.
func Open(path string, defaults []string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		for _, d := range defaults {
			if d = strings.TrimSpace(d); d != "" && !slices.Contains(s.labels, d) {
				s.labels = append(s.labels, d)
			}
		}
		if err := s.Save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, &domain.IOError{Op: "read categories", Path: path, Err: err}
	}
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	labels, err := decodeLabels(data)
	if err != nil {
		return nil, &domain.IOError{Op: "parse categories", Path: path, Err: err}
	}
	for _, label := range labels {
		if !slices.Contains(s.labels, label) {
			s.labels = append(s.labels, label)
		}
	}
	return s, nil
}

// decodeLabels reads one CSV row per label. Quoted labels may hold commas;
// a row split by an unquoted comma is joined back into one label.
func decodeLabels(data []byte) ([]string, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var labels []string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return labels, nil
		}
		if err != nil {
			return nil, err
		}
		if label := strings.TrimSpace(strings.Join(row, ",")); label != "" {
			labels = append(labels, label)
		}
	}
}

// List returns a copy of the labels in insertion order.
func (s *Store) List() []string {
	return append([]string(nil), s.labels...)
}

// Contains reports an exact, case-sensitive match.
func (s *Store) Contains(label string) bool {
	return slices.Contains(s.labels, label)
}

// Append adds label and rewrites the file. The in-memory list is left
// unchanged when the write fails.
func (s *Store) Append(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return &domain.ValidationError{Field: "category", Reason: "label is empty"}
	}
	if strings.ContainsAny(label, "\r\n") {
		return &domain.ValidationError{Field: "category", Reason: "label spans several lines"}
	}
	if s.Contains(label) {
		return fmt.Errorf("%q: %w", label, ErrDuplicateCategory)
	}
	s.labels = append(s.labels, label)
	if err := s.Save(); err != nil {
		s.labels = s.labels[:len(s.labels)-1]
		return err
	}
	return nil
}

// Save rewrites the file through a temp file and rename.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.IOError{Op: "create dir", Path: dir, Err: err}
	}
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	for _, label := range s.labels {
		if err := cw.Write([]string{label}); err != nil {
			return &domain.IOError{Op: "encode categories", Path: s.path, Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &domain.IOError{Op: "encode categories", Path: s.path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".categories.tmp-*")
	if err != nil {
		return &domain.IOError{Op: "write categories", Path: s.path, Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return &domain.IOError{Op: "write categories", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.IOError{Op: "write categories", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &domain.IOError{Op: "write categories", Path: s.path, Err: err}
	}
	return nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

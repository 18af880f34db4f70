package domain

import "context"

// Table is what a backend hands back on read: the well-formed rows in
// stored order plus every row that had to be skipped.
type Table struct {
	Records []Record
	Skipped []*ParseError
	// Created is set when the backing store did not exist and was
	// materialised empty by the read.
	Created bool
}

// Backend persists the ordered question table. Write replaces the whole
// table; implementations must leave the previous contents intact when it
// fails.
type Backend interface {
	Read(ctx context.Context) (Table, error)
	Write(ctx context.Context, records []Record) error
	// Location describes where the table lives, for logs and errors.
	Location() string
	Driver() string
}

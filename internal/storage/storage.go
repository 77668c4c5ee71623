// Package storage writes result tables to CSV, XLSX, SQLite or MongoDB and
// reads the CSV inputs jobs iterate over.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Table is a named set of rows with a fixed column order.
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]string
}

// Records renders rows in column order. Missing cells are empty.
func (t Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			rec[j] = r[c]
		}
		out[i] = rec
	}
	return out
}

// Sink receives finished tables.
type Sink interface {
	WriteTable(ctx context.Context, t Table) error
	Close() error
}

var ErrUnknownFormat = errors.New("storage: unknown output format")

// Open picks a sink from the target: a mongodb:// URI, or a file path whose
// extension is .csv, .xlsx, .db, .sqlite or .sqlite3.
func Open(ctx context.Context, target string) (Sink, error) {
	if strings.HasPrefix(target, "mongodb://") || strings.HasPrefix(target, "mongodb+srv://") {
		return NewMongoSink(ctx, target)
	}
	switch strings.ToLower(filepath.Ext(target)) {
	case ".csv":
		return NewCSVSink(target), nil
	case ".xlsx":
		return NewXLSXSink(target), nil
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteSink(target)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, target)
}

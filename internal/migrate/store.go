// Package migrate copies the PartPal tables from the embedded SQLite store
// into PostgreSQL, one table at a time in foreign-key order.
package migrate

import (
	"context"
	"errors"
	"fmt"
)

// Row is one table row keyed by column name. Every migrated table has an
// "id" primary key.
type Row map[string]any

// ID returns the row's primary key as text.
func (r Row) ID() string {
	switch v := r["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Store is the per-table CRUD contract both ends of a migration satisfy.
type Store interface {
	Ping(ctx context.Context) error
	FindMany(ctx context.Context, table string) ([]Row, error)
	Create(ctx context.Context, table string, row Row) error
	Update(ctx context.Context, table, id string, row Row) error
	Count(ctx context.Context, table string) (int64, error)
}

var (
	ErrConnectivity   = errors.New("store unreachable")
	ErrTargetNotEmpty = errors.New("target store already contains data")
	ErrTableRead      = errors.New("table read failed")
	ErrNotFound       = errors.New("row not found")
)

// TableReadError aborts a run: later tables depend on this one being complete.
type TableReadError struct {
	Table string
	Err   error
}

func (e *TableReadError) Error() string { return fmt.Sprintf("read %s: %v", e.Table, e.Err) }
func (e *TableReadError) Unwrap() []error {
	return []error{ErrTableRead, e.Err}
}

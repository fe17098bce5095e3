// Package sqltest provides in-memory stand-ins for infra.SQLExecutor and
// pgx rows so repositories can be tested without a database.
package sqltest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Row is a pgx.Row backed by a scan function. A nil function behaves like
// pgx.ErrNoRows.
type Row struct {
	scan func(dest ...any) error
}

func NewRow(scanner func(dest ...any) error) Row {
	return Row{scan: scanner}
}

// ValuesRow scans values positionally into the destinations.
func ValuesRow(values ...any) Row {
	return Row{scan: func(dest ...any) error { return assign(dest, values) }}
}

// ErrRow returns err from Scan.
func ErrRow(err error) Row {
	return Row{scan: func(...any) error { return err }}
}

func (r Row) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// Rows is a pgx.Rows over a fixed value grid.
type Rows struct {
	data   [][]any
	pos    int
	err    error
	closed bool
}

func NewRows(data ...[]any) *Rows {
	return &Rows{data: data, pos: -1}
}

// WithErr makes Err report err once iteration ends.
func (r *Rows) WithErr(err error) *Rows {
	r.err = err
	return r
}

func (r *Rows) Close() { r.closed = true }

func (r *Rows) Closed() bool { return r.closed }

func (r *Rows) Err() error { return r.err }

func (r *Rows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (r *Rows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	r.pos++
	if r.pos >= len(r.data) {
		r.closed = true
		return false
	}
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.data) {
		return fmt.Errorf("scan called without a current row")
	}
	return assign(dest, r.data[r.pos])
}

func (r *Rows) Values() ([]any, error) {
	if r.pos < 0 || r.pos >= len(r.data) {
		return nil, fmt.Errorf("values called without a current row")
	}
	return r.data[r.pos], nil
}

func (r *Rows) RawValues() [][]byte { return nil }

func (r *Rows) Conn() *pgx.Conn { return nil }

// Call records one statement sent to the Executor.
type Call struct {
	Method string
	Query  string
	Args   []any
}

// Executor implements infra.SQLExecutor with pluggable handlers. Unset
// handlers succeed with empty results.
type Executor struct {
	ExecFunc     func(query string, args []any) (pgconn.CommandTag, error)
	QueryRowFunc func(query string, args []any) pgx.Row
	QueryFunc    func(query string, args []any) (pgx.Rows, error)

	mu    sync.Mutex
	calls []Call
}

func (e *Executor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	e.record("exec", query, args)
	if e.ExecFunc == nil {
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return e.ExecFunc(query, args)
}

func (e *Executor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	e.record("query_row", query, args)
	if e.QueryRowFunc == nil {
		return Row{}
	}
	return e.QueryRowFunc(query, args)
}

func (e *Executor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	e.record("query", query, args)
	if e.QueryFunc == nil {
		return NewRows(), nil
	}
	return e.QueryFunc(query, args)
}

// Calls returns a copy of the recorded statements.
func (e *Executor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Call, len(e.calls))
	copy(out, e.calls)
	return out
}

func (e *Executor) record(method, query string, args []any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, Call{Method: method, Query: query, Args: args})
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		if err := assignOne(d, values[i]); err != nil {
			return fmt.Errorf("scan column %d: %w", i, err)
		}
	}
	return nil
}

func assignOne(dest, value any) error {
	target := reflect.ValueOf(dest)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("destination %T is not a pointer", dest)
	}
	elem := target.Elem()
	if value == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(elem.Type()):
		elem.Set(v)
	case elem.Kind() == reflect.Pointer && v.Type().AssignableTo(elem.Type().Elem()):
		ptr := reflect.New(elem.Type().Elem())
		ptr.Elem().Set(v)
		elem.Set(ptr)
	case v.Type().ConvertibleTo(elem.Type()):
		elem.Set(v.Convert(elem.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", value, elem.Type())
	}
	return nil
}

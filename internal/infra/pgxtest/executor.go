// Package pgxtest provides in-memory fakes for infra.SQLExecutor so service
// and handler tests can run without a database.
package pgxtest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Call records one executed statement.
type Call struct {
	Query string
	Args  []any
}

// Executor is a scripted infra.SQLExecutor. Each hook receives the marked
// query text exactly as the caller passed it, so tests can dispatch on the
// sqlinline constants.
type Executor struct {
	mu    sync.Mutex
	calls []Call

	ExecFn     func(query string, args ...any) (pgconn.CommandTag, error)
	QueryRowFn func(query string, args ...any) pgx.Row
	QueryFn    func(query string, args ...any) (pgx.Rows, error)
}

func (e *Executor) record(query string, args []any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, Call{Query: query, Args: args})
}

// Calls returns a snapshot of every statement executed so far.
func (e *Executor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Call, len(e.calls))
	copy(out, e.calls)
	return out
}

func (e *Executor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	e.record(query, args)
	if e.ExecFn == nil {
		return pgconn.CommandTag{}, nil
	}
	return e.ExecFn(query, args...)
}

func (e *Executor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	e.record(query, args)
	if e.QueryRowFn == nil {
		return Row{Err: pgx.ErrNoRows}
	}
	return e.QueryRowFn(query, args...)
}

func (e *Executor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	e.record(query, args)
	if e.QueryFn == nil {
		return NewRows(nil), nil
	}
	return e.QueryFn(query, args...)
}

// Row is a single scripted result row.
type Row struct {
	Values []any
	Err    error
}

func (r Row) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	if len(dest) != len(r.Values) {
		return fmt.Errorf("pgxtest: scan expects %d destinations, got %d", len(r.Values), len(dest))
	}
	return assign(dest, r.Values)
}

func assign(dest, values []any) error {
	for i, v := range values {
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("pgxtest: destination %d is not a pointer", i)
		}
		elem := target.Elem()
		val := reflect.ValueOf(v)
		if !val.IsValid() {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		if !val.Type().AssignableTo(elem.Type()) {
			if val.Type().ConvertibleTo(elem.Type()) {
				val = val.Convert(elem.Type())
			} else {
				return fmt.Errorf("pgxtest: cannot assign %T to destination %d (%s)", v, i, elem.Type())
			}
		}
		elem.Set(val)
	}
	return nil
}

// Rows is a scripted pgx.Rows over fixed row values.
type Rows struct {
	rows [][]any
	idx  int
	err  error
}

// NewRows builds a Rows fake from literal row values.
func NewRows(rows [][]any) *Rows {
	return &Rows{rows: rows}
}

func (r *Rows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return pgx.ErrNoRows
	}
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("pgxtest: scan expects %d destinations, got %d", len(row), len(dest))
	}
	return assign(dest, row)
}

func (r *Rows) Close()                                       {}
func (r *Rows) Err() error                                   { return r.err }
func (r *Rows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *Rows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *Rows) Values() ([]any, error) {
	return nil, fmt.Errorf("pgxtest: Values not supported")
}
func (r *Rows) RawValues() [][]byte { return nil }
func (r *Rows) Conn() *pgx.Conn     { return nil }

var _ pgx.Rows = (*Rows)(nil)

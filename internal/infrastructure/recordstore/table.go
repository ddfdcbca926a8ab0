package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/database"
)

// ScanFunc builds a row value from a single result row.
type ScanFunc[T any] func(scan func(dest ...any) error) (*T, error)

// Filter is an equality predicate on one column.
type Filter struct {
	Column string
	Value  any
}

// Eq returns the predicate column = value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Table is the adapter for one table whose primary key is a UUID column named id.
type Table[T any] struct {
	db      *DB
	name    string
	columns []string
	orderBy string
	scan    ScanFunc[T]
}

// NewTable describes a table. columns are selected in order and handed to scan.
func NewTable[T any](db *DB, name string, columns []string, scan ScanFunc[T]) *Table[T] {
	return &Table[T]{db: db, name: name, columns: columns, scan: scan}
}

// OrderBy sets the ordering used by Scan.
func (t *Table[T]) OrderBy(column string) *Table[T] {
	t.orderBy = column
	return t
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Insert writes a row with a freshly generated id and returns that id.
func (t *Table[T]) Insert(ctx context.Context, columns []string, values ...any) (string, error) {
	if len(columns) != len(values) {
		return "", &PersistenceError{Op: "insert", Table: t.name,
			Err: fmt.Errorf("%d columns but %d values", len(columns), len(values))}
	}

	cols := append([]string{"id"}, columns...)
	args := append([]any{uuid.NewString()}, values...)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.name, strings.Join(cols, ", "), placeholders(1, len(cols)))

	ctx, cancel := t.db.bound(ctx)
	defer cancel()

	var id string
	if err := t.db.executor(ctx).QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return "", t.fail("insert", err)
	}
	if id == "" {
		return "", &PersistenceError{Op: "insert", Table: t.name, Err: errors.New("no id returned")}
	}
	return id, nil
}

// Get returns the row with the given id, or ErrNotFound.
func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return t.First(ctx, Eq("id", uid.String()))
}

// First returns the first row matching all filters, or ErrNotFound.
func (t *Table[T]) First(ctx context.Context, filters ...Filter) (*T, error) {
	where, args := whereClause(filters)
	query := fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1", strings.Join(t.columns, ", "), t.name, where)

	ctx, cancel := t.db.bound(ctx)
	defer cancel()

	row := t.db.executor(ctx).QueryRowContext(ctx, query, args...)
	v, err := t.scan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, t.fail("select", err)
	}
	return v, nil
}

// Scan returns every row matching all filters. It never returns a nil slice.
func (t *Table[T]) Scan(ctx context.Context, filters ...Filter) ([]*T, error) {
	where, args := whereClause(filters)
	query := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(t.columns, ", "), t.name, where)
	if t.orderBy != "" {
		query += " ORDER BY " + t.orderBy
	}

	ctx, cancel := t.db.bound(ctx)
	defer cancel()

	rows, err := t.db.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.fail("scan", err)
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		v, err := t.scan(rows.Scan)
		if err != nil {
			return nil, t.fail("scan", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, t.fail("scan", err)
	}
	return out, nil
}

// Delete removes the row with the given id, or returns ErrNotFound.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	ctx, cancel := t.db.bound(ctx)
	defer cancel()

	res, err := t.db.executor(ctx).ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name), uid.String())
	if err != nil {
		return t.fail("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.fail("delete", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *Table[T]) fail(op string, err error) error {
	if database.IsUniqueViolation(err) {
		err = fmt.Errorf("%w: %v", ErrUniqueViolation, err)
	}
	return &PersistenceError{Op: op, Table: t.name, Err: err}
}

func whereClause(filters []Filter) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, len(filters))
	args := make([]any, len(filters))
	for i, f := range filters {
		conds[i] = fmt.Sprintf("%s = $%d", f.Column, i+1)
		args[i] = f.Value
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}

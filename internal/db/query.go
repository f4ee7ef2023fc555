package db

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Table describes a table with an integer primary key named id.
// Columns lists the remaining columns in the order scanners expect them.
type Table struct {
	Name    string
	Columns []string
}

// Value binds an argument to a column for Insert and Update.
type Value struct {
	Column string
	Arg    any
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc reads one row laid out as id followed by Table.Columns.
type ScanFunc[T any] func(Scanner) (T, error)

var errNoValues = errors.New("no values")

func (t Table) selectList() string {
	return "id, " + strings.Join(t.Columns, ", ")
}

func (t Table) checkColumns(values []Value) error {
	if len(values) == 0 {
		return errNoValues
	}
	for _, v := range values {
		if !slices.Contains(t.Columns, v.Column) {
			return fmt.Errorf("unknown column %q", v.Column)
		}
	}
	return nil
}

// List returns every row of t ordered by id.
func List[T any](ctx context.Context, s *Store, t Table, scan ScanFunc[T]) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", t.selectList(), t.Name)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.Name, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.Name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.Name, err)
	}
	return items, nil
}

// GetByID returns the row with the given id, or an error wrapping ErrNoRows.
func GetByID[T any](ctx context.Context, s *Store, t Table, id int64, scan ScanFunc[T]) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", t.selectList(), t.Name, s.dialect.Placeholder(1))
	item, err := scan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s %d: %w", t.Name, id, err)
	}
	return item, nil
}

// Insert adds a row and returns its store-assigned id.
func Insert(ctx context.Context, s *Store, t Table, values []Value) (int64, error) {
	if err := t.checkColumns(values); err != nil {
		return 0, fmt.Errorf("insert %s: %w", t.Name, err)
	}

	cols := make([]string, len(values))
	marks := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		cols[i] = v.Column
		marks[i] = s.dialect.Placeholder(i + 1)
		args[i] = v.Arg
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.Name, strings.Join(cols, ", "), strings.Join(marks, ", "))

	if s.dialect == Postgres {
		var id int64
		if err := s.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert %s: %w", t.Name, err)
		}
		return id, nil
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", t.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s: last insert id: %w", t.Name, err)
	}
	return id, nil
}

// Update writes values to the row with the given id and returns the number
// of rows affected (0 when the id does not exist).
func Update(ctx context.Context, s *Store, t Table, id int64, values []Value) (int64, error) {
	if err := t.checkColumns(values); err != nil {
		return 0, fmt.Errorf("update %s: %w", t.Name, err)
	}

	sets := make([]string, len(values))
	args := make([]any, 0, len(values)+1)
	for i, v := range values {
		sets[i] = v.Column + " = " + s.dialect.Placeholder(i+1)
		args = append(args, v.Arg)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s", t.Name, strings.Join(sets, ", "), s.dialect.Placeholder(len(args)))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s %d: %w", t.Name, id, err)
	}
	return rowsAffected(res, t, id)
}

// Delete removes the row with the given id and returns the number of rows affected.
func Delete(ctx context.Context, s *Store, t Table, id int64) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", t.Name, s.dialect.Placeholder(1))
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete %s %d: %w", t.Name, id, err)
	}
	return rowsAffected(res, t, id)
}

func rowsAffected(res interface{ RowsAffected() (int64, error) }, t Table, id int64) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s %d: rows affected: %w", t.Name, id, err)
	}
	return n, nil
}

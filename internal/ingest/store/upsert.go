package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jmoiron/sqlx"
)

// col is one column/value pair of a natural key or payload.
type col struct {
	name string
	val  any
}

// upsert describes a natural-key write. key identifies the row; set is written
// on insert and on update; create is written on insert only.
type upsert struct {
	table  string
	key    []col
	set    []col
	create []col
}

// upsertByNaturalKey finds the row by its natural key and updates it, or inserts
// it when absent. A unique violation on insert (lost race) surfaces as a
// *ConflictError.
func (s *Store) upsertByNaturalKey(ctx context.Context, u upsert) (int64, error) {
	id, err := s.findID(ctx, u.table, u.key)
	switch {
	case err == nil:
		if len(u.set) == 0 {
			return id, nil
		}
		return id, s.updateByID(ctx, u.table, id, u.set)
	case !errors.Is(err, ErrNotFound):
		return 0, err
	}

	cols := make([]col, 0, len(u.key)+len(u.set)+len(u.create))
	cols = append(cols, u.key...)
	cols = append(cols, u.set...)
	cols = append(cols, u.create...)

	id, err = s.insert(ctx, u.table, cols)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &ConflictError{Table: u.table, Key: describeKey(u.key), Err: err}
		}
		return 0, errors.Wrapf(err, "insert %s", u.table)
	}
	return id, nil
}

func (s *Store) findID(ctx context.Context, table string, key []col) (int64, error) {
	where := make([]string, len(key))
	args := make([]any, len(key))
	for i, c := range key {
		where[i] = c.name + " = ?"
		args[i] = c.val
	}
	q := s.rebind(fmt.Sprintf("SELECT id FROM %s WHERE %s", table, strings.Join(where, " AND ")))

	var id int64
	err := sqlx.GetContext(ctx, s.q, &id, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrapf(err, "find %s", table)
	}
	return id, nil
}

func (s *Store) updateByID(ctx context.Context, table string, id int64, set []col) error {
	assign := make([]string, 0, len(set)+1)
	args := make([]any, 0, len(set)+1)
	for _, c := range set {
		assign = append(assign, c.name+" = ?")
		args = append(args, c.val)
	}
	assign = append(assign, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	q := s.rebind(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(assign, ", ")))
	if _, err := s.q.ExecContext(ctx, q, args...); err != nil {
		if isUniqueViolation(err) {
			return &ConflictError{Table: table, Key: fmt.Sprintf("id=%d", id), Err: err}
		}
		return errors.Wrapf(err, "update %s", table)
	}
	return nil
}

func (s *Store) insert(ctx context.Context, table string, cols []col) (int64, error) {
	names := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = c.name
		args[i] = c.val
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), placeholders(len(cols)))

	// pgx has no LastInsertId
	if s.Driver() == "pgx" {
		var id int64
		err := s.q.QueryRowxContext(ctx, s.rebind(q+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := s.q.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func placeholders(n int) string {
	return strings.TrimRight(strings.Repeat("?,", n), ",")
}

func describeKey(key []col) string {
	parts := make([]string, len(key))
	for i, c := range key {
		parts[i] = fmt.Sprintf("%s=%v", c.name, deref(c.val))
	}
	return strings.Join(parts, ",")
}

func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *int64:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

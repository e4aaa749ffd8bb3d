package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jmoiron/sqlx"
)

const defaultChunk = 500

// DeleteBudgetLines removes a project's lines in the given categories and
// periods. Lines of other periods, such as another fiscal year, stay. An empty
// list deletes nothing.
func (s *Store) DeleteBudgetLines(ctx context.Context, projectID int64, categories, periods []string) (int64, error) {
	if len(categories) == 0 || len(periods) == 0 {
		return 0, nil
	}
	return s.deleteIn(ctx, "budget_lines", projectID, inFilter{"category", categories}, inFilter{"period", periods})
}

// DeleteStaffAllocations removes a project's allocations in the given periods.
func (s *Store) DeleteStaffAllocations(ctx context.Context, projectID int64, periods []string) (int64, error) {
	if len(periods) == 0 {
		return 0, nil
	}
	return s.deleteIn(ctx, "staff_allocations", projectID, inFilter{"period", periods})
}

type inFilter struct {
	column string
	values []string
}

func (s *Store) deleteIn(ctx context.Context, table string, projectID int64, filters ...inFilter) (int64, error) {
	where := []string{"project_id = ?"}
	args := []any{projectID}
	for _, f := range filters {
		where = append(where, f.column+" IN (?)")
		args = append(args, f.values)
	}
	q, args, err := sqlx.In(fmt.Sprintf("DELETE FROM %s WHERE %s", table, strings.Join(where, " AND ")), args...)
	if err != nil {
		return 0, errors.Wrapf(err, "delete %s", table)
	}
	res, err := s.q.ExecContext(ctx, s.rebind(q), args...)
	if err != nil {
		return 0, errors.Wrapf(err, "delete %s", table)
	}
	return res.RowsAffected()
}

// InsertBudgetLines bulk inserts lines; callers clear the scope first.
func (s *Store) InsertBudgetLines(ctx context.Context, lines []BudgetLine) error {
	cols := []string{"project_id", "category", "description", "period", "fiscal_year", "amount", "department_id"}
	rows := make([][]any, len(lines))
	for i, b := range lines {
		rows[i] = []any{b.ProjectID, b.Category, b.Description, b.Period, b.FiscalYear, b.Amount, b.DepartmentID}
	}
	return s.chunkedExec(ctx, "budget_lines", cols, rows, defaultChunk)
}

func (s *Store) InsertStaffAllocations(ctx context.Context, allocs []StaffAllocation) error {
	cols := []string{"project_id", "person_id", "period", "hours", "role"}
	rows := make([][]any, len(allocs))
	for i, a := range allocs {
		rows[i] = []any{a.ProjectID, a.PersonID, a.Period, a.Hours, a.Role}
	}
	return s.chunkedExec(ctx, "staff_allocations", cols, rows, defaultChunk)
}

func (s *Store) chunkedExec(ctx context.Context, table string, cols []string, rows [][]any, chunk int) error {
	if len(rows) == 0 {
		return nil
	}
	if chunk <= 0 {
		chunk = defaultChunk
	}
	for i := 0; i < len(rows); i += chunk {
		j := min(i+chunk, len(rows))
		if err := s.bulkInsert(ctx, table, cols, rows[i:j]); err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Table: table, Key: "bulk", Err: err}
			}
			return errors.Wrapf(err, "bulk insert %s", table)
		}
	}
	return nil
}

func (s *Store) bulkInsert(ctx context.Context, table string, cols []string, rows [][]any) error {
	pl := "(" + placeholders(len(cols)) + ")"
	valPlace := strings.TrimRight(strings.Repeat(pl+",", len(rows)), ",")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(cols, ","), valPlace)

	args := make([]any, 0, len(rows)*len(cols))
	for _, r := range rows {
		args = append(args, r...)
	}
	_, err := s.q.ExecContext(ctx, s.rebind(query), args...)
	return err
}

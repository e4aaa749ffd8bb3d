package db

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jmoiron/sqlx"
)

// RequiredTables are the tables the import pipeline writes to.
var RequiredTables = []string{
	"departments",
	"people",
	"projects",
	"project_links",
	"objectives",
	"key_results",
	"pushes",
	"milestones",
	"activities",
	"decision_makers",
	"budget_lines",
	"staff_allocations",
	"comms_profiles",
	"key_messages",
	"calls_to_action",
	"comms_frames",
	"comms_faqs",
}

// OptionalTables are written when present; their absence only disables a feature.
var OptionalTables = []string{"import_runs"}

// ListTables returns the set of tables in the active schema.
func ListTables(ctx context.Context, conn *sqlx.DB) (map[string]bool, error) {
	var q string
	switch conn.DriverName() {
	case SQLDriverMySQL:
		q = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = DATABASE()`
	case SQLDriverPostgres:
		q = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()`
	case SQLDriverSQLite:
		q = `SELECT name FROM sqlite_master WHERE type = 'table'`
	default:
		return nil, errors.New("list tables: unknown driver " + conn.DriverName())
	}

	var names []string
	if err := conn.SelectContext(ctx, &names, q); err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(names))
	for _, n := range names {
		found[n] = true
	}
	return found, nil
}

// CheckSchema reports which required tables are missing and whether each optional
// table exists.
func CheckSchema(ctx context.Context, conn *sqlx.DB) (missing []string, optional map[string]bool, err error) {
	found, err := ListTables(ctx, conn)
	if err != nil {
		return nil, nil, err
	}
	for _, t := range RequiredTables {
		if !found[t] {
			missing = append(missing, t)
		}
	}
	optional = make(map[string]bool, len(OptionalTables))
	for _, t := range OptionalTables {
		optional[t] = found[t]
	}
	return missing, optional, nil
}

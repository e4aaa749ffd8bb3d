package project

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/resolve"
	"dashimport/internal/ingest/store"
	"dashimport/internal/ingest/tabular"
)

var budgetColumns = map[string][]string{
	"category":    {"budget_category", "line_category"},
	"description": {"line_item", "item", "account", "account_name"},
	"amount":      {"annual", "annual_amount", "total", "fy_total", "budget"},
	"department":  {"dept", "department_code"},
}

type budgetKey struct {
	category, description, period string
}

// BudgetFile replaces the budget of project for every category present in
// the file. Rows with month columns keep their monthly amounts; rows with
// only an annual amount are split evenly over the fiscal year, cents
// rounding down and the remainder landing in the last month.
func (im *Importer) BudgetFile(ctx context.Context, slug, path string, fiscalYear int) (*Result, error) {
	t, err := tabular.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return im.Budget(ctx, slug, t, fiscalYear)
}

// Budget is BudgetFile on an already parsed table.
func (im *Importer) Budget(ctx context.Context, slug string, t *tabular.Table, fiscalYear int) (*Result, error) {
	projectID, err := im.projectID(ctx, slug)
	if err != nil {
		return nil, err
	}
	res := &Result{Project: slug}
	cols := bindRaw(t, im.fyStart, budgetColumns)
	periods := normalize.MonthPeriods(fiscalYear, im.fyStart)
	fyLabel := normalize.FiscalYearLabel(fiscalYear)

	amounts := make(map[budgetKey]decimal.Decimal)
	depts := make(map[budgetKey]*string)
	var order []budgetKey
	categories := make(map[string]bool)

	add := func(k budgetKey, v decimal.Decimal, dept *string) {
		if _, seen := amounts[k]; !seen {
			order = append(order, k)
			depts[k] = dept
		}
		// repeated lines in one export add up
		amounts[k] = amounts[k].Add(v)
	}

	for _, r := range t.Rows {
		category := cols.text(r, "category")
		if category == "" {
			res.skip(r.Line, "missing category")
			continue
		}
		desc := cols.text(r, "description")
		dept := cols.get(r, "department")

		monthly, ok, bad := monthValues(cols, r)
		if bad != "" {
			res.skip(r.Line, "%s: unparseable amount %q", category, bad)
			continue
		}
		if ok {
			for pos := range periods {
				if v, ok := monthly[pos]; ok {
					add(budgetKey{category, desc, periods[pos]}, v, dept)
				}
			}
			categories[category] = true
			continue
		}

		annual, ok := normalize.ParseDecimal(cols.get(r, "amount"))
		if !ok {
			res.skip(r.Line, "%s: no monthly or annual amount", category)
			continue
		}
		for i, part := range normalize.SplitEven(annual, len(periods)) {
			add(budgetKey{category, desc, periods[i]}, part, dept)
		}
		categories[category] = true
	}

	for c := range categories {
		res.Scope = append(res.Scope, c)
	}
	sort.Strings(res.Scope)

	err = im.store.WithTx(ctx, func(tx *store.Store) error {
		deptIDs := make(map[string]*int64)
		lines := make([]store.BudgetLine, 0, len(order))
		for _, k := range order {
			deptID, err := departmentID(ctx, tx, deptIDs, depts[k])
			if err != nil {
				return err
			}
			lines = append(lines, store.BudgetLine{
				ProjectID:    projectID,
				Category:     k.category,
				Description:  k.description,
				Period:       k.period,
				FiscalYear:   &fyLabel,
				Amount:       amounts[k],
				DepartmentID: deptID,
			})
		}

		n, err := tx.DeleteBudgetLines(ctx, projectID, res.Scope, periods)
		if err != nil {
			return err
		}
		res.Deleted = n
		if err := tx.InsertBudgetLines(ctx, lines); err != nil {
			return err
		}
		res.Inserted = len(lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.logger.Info("[BUDGET] imported",
		zap.String("project", slug),
		zap.Strings("categories", res.Scope),
		zap.Int64("deleted", res.Deleted),
		zap.Int("inserted", res.Inserted),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// monthValues reads the month columns of a row. ok is false when the row
// has none filled; bad holds the first cell that does not parse.
func monthValues(cols rawColumns, r tabular.Row) (vals map[int]decimal.Decimal, ok bool, bad string) {
	vals = make(map[int]decimal.Decimal)
	for pos, h := range cols.months {
		cell := r.Get(h)
		if cell == nil {
			continue
		}
		v, parsed := normalize.ParseDecimal(cell)
		if !parsed {
			return nil, false, *cell
		}
		vals[pos] = v
	}
	return vals, len(vals) > 0, ""
}

// departmentID resolves an optional department code inside tx, creating
// the department on first sight.
func departmentID(ctx context.Context, tx *store.Store, cache map[string]*int64, code *string) (*int64, error) {
	if code == nil {
		return nil, nil
	}
	c := resolve.DepartmentCode(*code)
	if c == "" {
		return nil, nil
	}
	if id, ok := cache[c]; ok {
		return id, nil
	}
	id, err := tx.UpsertDepartment(ctx, c, c)
	if err != nil {
		return nil, err
	}
	cache[c] = &id
	return &id, nil
}

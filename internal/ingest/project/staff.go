package project

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/store"
	"dashimport/internal/ingest/tabular"
)

var staffColumns = map[string][]string{
	"email": {"person_email", "staff_email", "e_mail"},
	"hours": {"annual_hours", "total_hours", "total"},
	"role":  {"title", "position"},
}

type staffKey struct {
	personID int64
	period   string
}

// StaffFile replaces the project's allocations for every period the file
// fills. Month columns map to the months of fiscalYear; a row with only a
// total is spread evenly over the year.
func (im *Importer) StaffFile(ctx context.Context, slug, path string, fiscalYear int) (*Result, error) {
	t, err := tabular.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return im.Staff(ctx, slug, t, fiscalYear)
}

// Staff is StaffFile on an already parsed table.
func (im *Importer) Staff(ctx context.Context, slug string, t *tabular.Table, fiscalYear int) (*Result, error) {
	projectID, err := im.projectID(ctx, slug)
	if err != nil {
		return nil, err
	}
	res := &Result{Project: slug}
	cols := bindRaw(t, im.fyStart, staffColumns)
	periods := normalize.MonthPeriods(fiscalYear, im.fyStart)

	hours := make(map[staffKey]decimal.Decimal)
	roles := make(map[staffKey]*string)
	var order []staffKey
	inScope := make(map[string]bool)

	add := func(k staffKey, v decimal.Decimal, role *string) {
		if _, seen := hours[k]; !seen {
			order = append(order, k)
			roles[k] = role
		}
		hours[k] = hours[k].Add(v)
		inScope[k.period] = true
	}

	for _, r := range t.Rows {
		email := normalize.Email(cols.get(r, "email"))
		if email == "" {
			res.skip(r.Line, "missing email")
			continue
		}
		personID, err := im.store.FindPersonByEmail(ctx, email)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			res.skip(r.Line, "person %s not found", email)
			continue
		}
		role := cols.get(r, "role")

		monthly, ok, bad := monthValues(cols, r)
		if bad != "" {
			res.skip(r.Line, "%s: unparseable hours %q", email, bad)
			continue
		}
		if ok {
			for pos := range periods {
				if v, ok := monthly[pos]; ok {
					add(staffKey{personID, periods[pos]}, v, role)
				}
			}
			continue
		}

		total, ok := normalize.ParseDecimal(cols.get(r, "hours"))
		if !ok {
			res.skip(r.Line, "%s: no monthly or total hours", email)
			continue
		}
		for i, part := range normalize.SplitEven(total, len(periods)) {
			add(staffKey{personID, periods[i]}, part, role)
		}
	}

	// scope in calendar order of the fiscal year
	for _, p := range periods {
		if inScope[p] {
			res.Scope = append(res.Scope, p)
		}
	}

	allocs := make([]store.StaffAllocation, 0, len(order))
	for _, k := range order {
		allocs = append(allocs, store.StaffAllocation{
			ProjectID: projectID,
			PersonID:  k.personID,
			Period:    k.period,
			Hours:     hours[k],
			Role:      roles[k],
		})
	}

	err = im.store.WithTx(ctx, func(tx *store.Store) error {
		n, err := tx.DeleteStaffAllocations(ctx, projectID, res.Scope)
		if err != nil {
			return err
		}
		res.Deleted = n
		if err := tx.InsertStaffAllocations(ctx, allocs); err != nil {
			return err
		}
		res.Inserted = len(allocs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.logger.Info("[STAFF] imported",
		zap.String("project", slug),
		zap.Strings("periods", res.Scope),
		zap.Int64("deleted", res.Deleted),
		zap.Int("inserted", res.Inserted),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/store"
	"dashimport/internal/ingest/tabular"
)

// periodCell is one period a row writes to and the cell holding its value.
type periodCell struct {
	period     string
	fiscalYear *string
	value      *string
}

// expandPeriods works out which periods a budget or staff row covers:
//   - an explicit period column gives one period;
//   - month columns (wide layout) give one period per filled month, placed
//     in the row's fiscal year;
//   - otherwise the fiscal year label itself is the period.
//
// A non-empty reason means the row must be skipped.
func expandPeriods(env *Env, s *sheet, r tabular.Row, valueCol string) ([]periodCell, string) {
	start := env.fyStart()

	fyRaw := s.get(r, "fiscal_year")
	fy, fyOK := 0, false
	if fyRaw != nil {
		if fy, fyOK = normalize.ParseFiscalYear(*fyRaw); !fyOK {
			return nil, fmt.Sprintf("unparseable fiscal_year %q", *fyRaw)
		}
	}
	label := func(y int) *string {
		l := normalize.FiscalYearLabel(y)
		return &l
	}

	if p := s.get(r, "period"); p != nil {
		pc := periodCell{period: strings.TrimSpace(*p), value: s.get(r, valueCol)}
		if canon, ok := normalize.ParsePeriod(*p); ok {
			pc.period = canon
			if !fyOK {
				t, _ := time.Parse("Jan 2006", canon)
				fy, fyOK = normalize.FiscalYearOf(t, start), true
			}
		}
		if fyOK {
			pc.fiscalYear = label(fy)
		}
		return []periodCell{pc}, ""
	}

	var months []periodCell
	for i := range 12 {
		m := time.Month((start-1+i)%12 + 1)
		h, ok := s.months[m]
		if !ok {
			continue
		}
		v := r.Get(h)
		if v == nil {
			continue
		}
		if !fyOK {
			return nil, "month columns need a fiscal_year"
		}
		months = append(months, periodCell{
			period:     normalize.PeriodForMonth(fy, start, m),
			fiscalYear: label(fy),
			value:      v,
		})
	}
	if len(months) > 0 {
		return months, ""
	}

	if !fyOK {
		return nil, "missing fiscal_year or period"
	}
	return []periodCell{{period: normalize.FiscalYearLabel(fy), fiscalYear: label(fy), value: s.get(r, valueCol)}}, ""
}

// decimals parses the value of every period. Empty cells take def when it
// is non-nil; otherwise they are an error, as is any unparseable cell.
func decimals(cells []periodCell, def *decimal.Decimal) ([]decimal.Decimal, string) {
	out := make([]decimal.Decimal, len(cells))
	for i, c := range cells {
		if c.value == nil {
			if def == nil {
				return nil, fmt.Sprintf("missing value for %s", c.period)
			}
			out[i] = *def
			continue
		}
		d, ok := normalize.ParseDecimal(c.value)
		if !ok {
			return nil, fmt.Sprintf("unparseable value %q for %s", *c.value, c.period)
		}
		out[i] = d
	}
	return out, ""
}

func processBudget(ctx context.Context, env *Env, s *sheet) error {
	zero := decimal.Zero
	for _, r := range s.rows() {
		category := strings.TrimSpace(s.text(r, "category"))
		if category == "" {
			env.skipf(s, r.Line, "missing category")
			continue
		}
		cells, reason := expandPeriods(env, s, r, "amount")
		if reason != "" {
			env.skipf(s, r.Line, "%s: %s", category, reason)
			continue
		}
		amounts, reason := decimals(cells, &zero)
		if reason != "" {
			env.skipf(s, r.Line, "%s: %s", category, reason)
			continue
		}
		projectID, ok, err := project(ctx, env, s, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		dept, err := env.Resolver.Department(ctx, s.get(r, "department"))
		if err != nil {
			return err
		}

		for i, c := range cells {
			if _, err := env.Store.UpsertBudgetLine(ctx, store.BudgetLine{
				ProjectID:    projectID,
				Category:     category,
				Description:  strings.TrimSpace(s.text(r, "description")),
				Period:       c.period,
				FiscalYear:   c.fiscalYear,
				Amount:       amounts[i],
				DepartmentID: dept,
			}); err != nil {
				return err
			}
		}
		env.upserted(s, len(cells))
	}
	return nil
}

func processStaffAllocation(ctx context.Context, env *Env, s *sheet) error {
	for _, r := range s.rows() {
		email := normalize.Email(s.get(r, "email"))
		if email == "" {
			env.skipf(s, r.Line, "missing email")
			continue
		}
		cells, reason := expandPeriods(env, s, r, "hours")
		if reason != "" {
			env.skipf(s, r.Line, "%s: %s", email, reason)
			continue
		}
		hours, reason := decimals(cells, nil)
		if reason != "" {
			env.skipf(s, r.Line, "%s: %s", email, reason)
			continue
		}
		projectID, ok, err := project(ctx, env, s, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		personID, found, err := env.Resolver.Person(ctx, email)
		if err != nil {
			return err
		}
		if !found {
			env.skipf(s, r.Line, "person %s not found", email)
			continue
		}

		for i, c := range cells {
			if _, err := env.Store.UpsertStaffAllocation(ctx, store.StaffAllocation{
				ProjectID: projectID,
				PersonID:  personID,
				Period:    c.period,
				Hours:     hours[i],
				Role:      s.get(r, "role"),
			}); err != nil {
				return err
			}
		}
		env.upserted(s, len(cells))
	}
	return nil
}

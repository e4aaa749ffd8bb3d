package project_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashimport/internal/ingest/project"
	"dashimport/internal/ingest/store"
	"dashimport/internal/testhelpers"
)

func setup(t *testing.T) (*store.Store, *project.Importer) {
	t.Helper()
	ctx := context.Background()
	st := testhelpers.NewSQLiteStore(t)
	_, err := st.UpsertProject(ctx, store.Project{Slug: "water", Name: "Clean Water", Status: "ACTIVE"})
	require.NoError(t, err)
	_, err = st.UpsertPerson(ctx, store.Person{Email: "jane@x.org", Name: "Jane", Role: "EDITOR", IsActive: true})
	require.NoError(t, err)
	return st, project.NewImporter(st, 1, nil)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func amounts(t *testing.T, st *store.Store, category string) []string {
	t.Helper()
	var out []string
	require.NoError(t, st.DB().SelectContext(context.Background(), &out,
		`SELECT amount FROM budget_lines WHERE category = ? ORDER BY id`, category))
	return out
}

func TestBudget_AnnualSplit(t *testing.T) {
	st, im := setup(t)
	ctx := context.Background()

	// a line outside the file's categories survives the import
	projectID, err := st.FindProjectBySlug(ctx, "water")
	require.NoError(t, err)
	_, err = st.UpsertBudgetLine(ctx, store.BudgetLine{ProjectID: projectID, Category: "Rent", Period: "Jan 2026"})
	require.NoError(t, err)

	path := writeFile(t, "raw.tsv", "Category\tLine Item\tAnnual\n"+
		"Travel\tFlights\t100\n"+
		"Staff\t\t\n"+
		"Print\tFlyers\tabc\n")

	res, err := im.BudgetFile(ctx, "water", path, 2026)
	require.NoError(t, err)
	assert.Equal(t, []string{"Travel"}, res.Scope)
	assert.Equal(t, 12, res.Inserted)
	assert.Equal(t, 2, res.Skipped)
	assert.EqualValues(t, 0, res.Deleted)

	got := amounts(t, st, "Travel")
	require.Len(t, got, 12)
	for _, a := range got[:11] {
		assert.Equal(t, "8.33", a)
	}
	assert.Equal(t, "8.37", got[11])

	var first, last string
	require.NoError(t, st.DB().GetContext(ctx, &first, `SELECT period FROM budget_lines WHERE category = 'Travel' ORDER BY id LIMIT 1`))
	require.NoError(t, st.DB().GetContext(ctx, &last, `SELECT period FROM budget_lines WHERE category = 'Travel' ORDER BY id DESC LIMIT 1`))
	assert.Equal(t, "Jan 2026", first)
	assert.Equal(t, "Dec 2026", last)

	// same file again replaces the category instead of adding to it
	res, err = im.BudgetFile(ctx, "water", path, 2026)
	require.NoError(t, err)
	assert.EqualValues(t, 12, res.Deleted)
	n, err := st.Count(ctx, "budget_lines")
	require.NoError(t, err)
	assert.EqualValues(t, 13, n)
}

func TestBudget_OtherFiscalYearKept(t *testing.T) {
	st, im := setup(t)
	ctx := context.Background()
	path := writeFile(t, "raw.csv", "Category,Description,Annual\nTravel,Flights,1200\n")

	res, err := im.BudgetFile(ctx, "water", path, 2025)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Inserted)

	res, err = im.BudgetFile(ctx, "water", path, 2026)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Deleted)
	assert.Equal(t, 12, res.Inserted)

	n, err := st.Count(ctx, "budget_lines")
	require.NoError(t, err)
	assert.EqualValues(t, 24, n)

	var years []string
	require.NoError(t, st.DB().SelectContext(ctx, &years,
		`SELECT DISTINCT fiscal_year FROM budget_lines ORDER BY fiscal_year`))
	assert.Equal(t, []string{"FY25", "FY26"}, years)

	// re-importing one year replaces only that year
	res, err = im.BudgetFile(ctx, "water", path, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 12, res.Deleted)
	n, err = st.Count(ctx, "budget_lines")
	require.NoError(t, err)
	assert.EqualValues(t, 24, n)
}

func TestBudget_MonthColumnsAndRepeats(t *testing.T) {
	st, im := setup(t)
	path := writeFile(t, "raw.csv", "Category,Description,Jan,Feb,Dept\n"+
		"Events,Venue,500,,ops\n"+
		"Events,Venue,250,\"1,000\",ops\n"+
		"Events,Catering,,(20),\n")

	res, err := im.BudgetFile(context.Background(), "water", path, 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	assert.Zero(t, res.Skipped)

	var rows []struct {
		Description string `db:"description"`
		Period      string `db:"period"`
		Amount      string `db:"amount"`
	}
	require.NoError(t, st.DB().SelectContext(context.Background(), &rows,
		`SELECT description, period, amount FROM budget_lines ORDER BY id`))
	require.Len(t, rows, 3)
	assert.Equal(t, "Venue", rows[0].Description)
	assert.Equal(t, "Jan 2026", rows[0].Period)
	assert.Equal(t, "750", rows[0].Amount)
	assert.Equal(t, "1000", rows[1].Amount)
	assert.Equal(t, "-20", rows[2].Amount)

	n, err := st.Count(context.Background(), "departments")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestBudget_UnknownProject(t *testing.T) {
	_, im := setup(t)
	path := writeFile(t, "raw.csv", "Category,Annual\nTravel,12\n")
	_, err := im.BudgetFile(context.Background(), "nope", path, 2026)
	require.Error(t, err)
	assert.True(t, errors.Is(err, project.ErrUnknownProject))
}

func TestStaff(t *testing.T) {
	st, im := setup(t)
	ctx := context.Background()

	monthly := writeFile(t, "staff.csv", "Email,Jan,Feb,Role\njane@x.org,10,,Lead\nghost@x.org,5,,\n")
	res, err := im.StaffFile(ctx, "water", monthly, 2026)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jan 2026"}, res.Scope)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Contains(t, strings.Join(res.Warnings, "\n"), "person ghost@x.org not found")

	annual := writeFile(t, "staff.csv", "email,hours\njane@x.org,120\n")
	res, err = im.StaffFile(ctx, "water", annual, 2026)
	require.NoError(t, err)
	assert.Len(t, res.Scope, 12)
	assert.EqualValues(t, 1, res.Deleted)
	assert.Equal(t, 12, res.Inserted)

	var hours []string
	require.NoError(t, st.DB().SelectContext(ctx, &hours, `SELECT hours FROM staff_allocations ORDER BY id`))
	require.Len(t, hours, 12)
	assert.Equal(t, "10", hours[0])
}

const brief = `# Clean Water brief

## Audience
City residents
and councillors.

## Tone
Warm, urgent.

## Key Messages
- Water is a **right**.
- Every family deserves
  clean taps.

## Calls to Action
- [Sign the petition](https://x.org/sign)
- Call your councillor: https://x.org/call
- Share the story

## Frames
### Health
Clean water is public health.
- fewer hospital visits

## FAQ
- **Who pays?** The city budget.
- Is it safe?: Yes.

## Notes
Ignored section.
`

func TestParseBrief(t *testing.T) {
	b, err := project.ParseBrief(strings.NewReader(brief))
	require.NoError(t, err)

	require.NotNil(t, b.Audience)
	assert.Equal(t, "City residents\nand councillors.", *b.Audience)
	require.NotNil(t, b.Tone)
	assert.Nil(t, b.Positioning)

	assert.Equal(t, []string{"Water is a right.", "Every family deserves clean taps."}, b.KeyMessages)

	require.Len(t, b.CTAs, 3)
	assert.Equal(t, "Sign the petition", b.CTAs[0].Text)
	assert.Equal(t, "https://x.org/sign", *b.CTAs[0].URL)
	assert.Equal(t, "Call your councillor", b.CTAs[1].Text)
	assert.Equal(t, "https://x.org/call", *b.CTAs[1].URL)
	assert.Nil(t, b.CTAs[2].URL)

	require.Len(t, b.Frames, 1)
	assert.Equal(t, "Health", b.Frames[0].Title)
	assert.Equal(t, "Clean water is public health.\n- fewer hospital visits", *b.Frames[0].Body)

	require.Len(t, b.FAQs, 2)
	assert.Equal(t, "Who pays?", b.FAQs[0].Title)
	assert.Equal(t, "The city budget.", *b.FAQs[0].Body)
	assert.Equal(t, "Is it safe?", b.FAQs[1].Title)
}

func TestComms_Idempotent(t *testing.T) {
	st, im := setup(t)
	ctx := context.Background()
	path := writeFile(t, "brief.md", brief)

	res, err := im.CommsFile(ctx, "water", path)
	require.NoError(t, err)
	assert.Equal(t, []string{"profile", "key_messages", "calls_to_action", "frames", "faqs"}, res.Scope)
	assert.Equal(t, 8, res.Inserted)

	_, err = im.CommsFile(ctx, "water", path)
	require.NoError(t, err)

	for table, want := range map[string]int64{
		"comms_profiles":  1,
		"key_messages":    2,
		"calls_to_action": 3,
		"comms_frames":    1,
		"comms_faqs":      2,
	} {
		n, err := st.Count(ctx, table)
		require.NoError(t, err)
		assert.Equal(t, want, n, table)
	}

	var tone string
	require.NoError(t, st.DB().GetContext(ctx, &tone, `SELECT tone FROM comms_profiles`))
	assert.Equal(t, "Warm, urgent.", tone)
}

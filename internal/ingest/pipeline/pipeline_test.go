package pipeline_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dashimport/internal/ingest/classify"
	"dashimport/internal/ingest/pipeline"
	"dashimport/internal/ingest/store"
	"dashimport/internal/testhelpers"
)

func writeBundle(t *testing.T, root, bundle string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, bundle)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func hasWarning(res *pipeline.Result, sub string) bool {
	for _, w := range res.Warnings {
		if strings.Contains(w, sub) {
			return true
		}
	}
	return false
}

func sampleRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeBundle(t, root, "alpha", map[string]string{
		"People.csv":      "name,email,role,department\nJane Doe,jane@x.org,ADMIN,ENG\nOmar,omar@x.org,editor,ops\n",
		"Team Roster.csv": "name,email\nIgnored,ignored@x.org\n",
		"Projects.csv":    "slug,name,status,owner_email\nwater,Clean Water,ACTIVE,jane@x.org\n",
		"Objectives.csv":  "title,is_current\nShip pilot,yes\n",
		"Key Results.csv": "objective_title,code\nShip pilot,KR1\nGrow reach,KR2\n",
		"Pushes.csv":      "sequence,start_date,end_date\n1,2025-01-01,2025-03-31\nabc,2025-04-01,2025-06-30\n",
		"Budget.csv":      "category,fiscal_year\nTravel,FY25\n",
		"Opponents.csv":   "name\nBig Bottled Co\n",
		"Pressure.csv":    "source\nCity council\n",
	})
	writeBundle(t, root, "beta", map[string]string{
		"Staff Allocation.csv": "project_slug,email,fiscal_year,Jan,Feb\nwater,omar@x.org,FY26,10,12\n",
		"Key Messages.csv":     "project_slug,message\nwater,Water is a right\n",
		"FAQ.csv":              "project_slug,question,answer\nwater,\"Who pays?\",The city\n",
		"Milestones.csv":       "title,due_date\n\"bad\"x,2025-01-01\n",
	})
	// not a bundle
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("hi"), 0o644))
	return root
}

func newPipeline(st *store.Store) *pipeline.Pipeline {
	return pipeline.New(st, pipeline.Options{Logger: zap.NewNop(), RecordRuns: true})
}

func TestRun(t *testing.T) {
	st := testhelpers.NewSQLiteStore(t)
	ctx := context.Background()
	root := sampleRoot(t)

	res, err := newPipeline(st).Run(ctx, root)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta"}, res.Bundles)
	assert.Equal(t, 2, res.Upserted[classify.People])
	assert.Equal(t, 1, res.Upserted[classify.Projects])
	assert.Equal(t, 1, res.Upserted[classify.KeyResults])
	assert.Equal(t, 1, res.Skipped[classify.KeyResults])
	assert.Equal(t, 1, res.Upserted[classify.Pushes])
	assert.Equal(t, 1, res.Skipped[classify.Pushes])
	assert.Equal(t, 1, res.Upserted[classify.Budget])
	assert.Equal(t, 2, res.Upserted[classify.StaffAllocation])
	assert.Equal(t, 1, res.Upserted[classify.KeyMessages])
	assert.Equal(t, 1, res.Upserted[classify.FAQs])

	assert.True(t, hasWarning(res, "alpha/Team Roster.csv: another sheet already matched"))
	assert.True(t, hasWarning(res, "alpha/Opponents.csv: looks like opponents data"))
	assert.True(t, hasWarning(res, "alpha/Pressure.csv: no data model for PressureSources"))
	assert.True(t, hasWarning(res, `objective "Grow reach" not found`))
	assert.True(t, hasWarning(res, "beta/Milestones.csv"))

	status, err := st.RunStatus(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.RunStatusOK, status)

	var stats string
	require.NoError(t, st.DB().GetContext(ctx, &stats, `SELECT stats FROM import_runs WHERE run_id = ?`, res.RunID))
	var decoded pipeline.Result
	require.NoError(t, sonic.UnmarshalString(stats, &decoded))
	assert.Equal(t, res.Upserted[classify.People], decoded.Upserted[classify.People])
}

func TestRun_Idempotent(t *testing.T) {
	st := testhelpers.NewSQLiteStore(t)
	ctx := context.Background()
	root := sampleRoot(t)

	tables := []string{
		"departments", "people", "projects", "objectives", "key_results", "pushes",
		"budget_lines", "staff_allocations", "comms_profiles", "key_messages", "comms_faqs",
	}
	counts := func() map[string]int64 {
		out := make(map[string]int64, len(tables))
		for _, tbl := range tables {
			n, err := st.Count(ctx, tbl)
			require.NoError(t, err)
			out[tbl] = n
		}
		return out
	}

	_, err := newPipeline(st).Run(ctx, root)
	require.NoError(t, err)
	first := counts()

	_, err = newPipeline(st).Run(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, first, counts())
	assert.EqualValues(t, 2, first["staff_allocations"])
	assert.EqualValues(t, 2, first["departments"])
}

func TestRun_ReferentialCompleteness(t *testing.T) {
	st := testhelpers.NewSQLiteStore(t)
	ctx := context.Background()

	_, err := newPipeline(st).Run(ctx, sampleRoot(t))
	require.NoError(t, err)

	orphans := map[string]string{
		"key_results without objective":  `SELECT COUNT(*) FROM key_results k LEFT JOIN objectives o ON o.id = k.objective_id WHERE o.id IS NULL`,
		"projects with missing owner":    `SELECT COUNT(*) FROM projects p LEFT JOIN people x ON x.id = p.owner_person_id WHERE p.owner_person_id IS NOT NULL AND x.id IS NULL`,
		"allocations without person":     `SELECT COUNT(*) FROM staff_allocations a LEFT JOIN people x ON x.id = a.person_id WHERE x.id IS NULL`,
		"messages without comms profile": `SELECT COUNT(*) FROM key_messages m LEFT JOIN comms_profiles c ON c.id = m.comms_profile_id WHERE c.id IS NULL`,
	}
	for name, q := range orphans {
		var n int
		require.NoError(t, st.DB().GetContext(ctx, &n, q), name)
		assert.Zero(t, n, name)
	}
}

func TestRun_MissingRoot(t *testing.T) {
	st := testhelpers.NewSQLiteStore(t)
	_, err := newPipeline(st).Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestRun_EmptyRoot(t *testing.T) {
	st := testhelpers.NewSQLiteStore(t)
	res, err := newPipeline(st).Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, res.Bundles)
	assert.Zero(t, res.TotalUpserted())
}

func TestRun_Workbook(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "gamma")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "People"))
	require.NoError(t, f.SetSheetRow("People", "A1", &[]any{"name", "email", "role"}))
	require.NoError(t, f.SetSheetRow("People", "A2", &[]any{"Ana", "ana@x.org", "VIEWER"}))
	_, err := f.NewSheet("Projects")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Projects", "A1", &[]any{"slug", "name", "status"}))
	require.NoError(t, f.SetSheetRow("Projects", "A2", &[]any{"housing", "Housing", "PLANNING"}))
	_, err = f.NewSheet("Objectives")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Objectives", "A1", &[]any{"title"}))
	require.NoError(t, f.SetSheetRow("Objectives", "A2", &[]any{"Build homes"}))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "Gamma Dashboard.xlsx")))
	require.NoError(t, f.Close())

	// delimited files win over worksheets of the same kind
	writeBundle(t, root, "gamma", map[string]string{
		"People.csv": "name,email,role\nBen,ben@x.org,EDITOR\n",
	})

	st := testhelpers.NewSQLiteStore(t)
	res, err := newPipeline(st).Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Upserted[classify.People])
	assert.Equal(t, 1, res.Upserted[classify.Projects])
	assert.Equal(t, 1, res.Upserted[classify.Objectives])
	assert.True(t, hasWarning(res, "gamma/Gamma Dashboard.xlsx:People: another sheet already matched"))

	_, err = st.FindPersonByEmail(context.Background(), "ben@x.org")
	require.NoError(t, err)
}

func TestRunWithConfig(t *testing.T) {
	cfg := testhelpers.SQLiteConfig(t)
	st := testhelpers.OpenStore(t, cfg)

	res, err := pipeline.RunWithConfig(context.Background(), pipeline.RunConfig{Config: cfg, Exclusive: true}, sampleRoot(t))
	require.NoError(t, err)

	n, err := st.Count(context.Background(), "import_runs")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var buf bytes.Buffer
	require.NoError(t, res.WriteSummary(&buf))
	assert.Contains(t, buf.String(), "2 bundles")
	assert.Contains(t, buf.String(), "People")
	assert.Contains(t, buf.String(), "2 rows upserted")
}

func TestRunWithConfig_RecordsRunStatus(t *testing.T) {
	ctx := context.Background()
	cfg := testhelpers.SQLiteConfig(t)
	st := testhelpers.OpenStore(t, cfg)
	root := t.TempDir()
	writeBundle(t, root, "solo", map[string]string{
		"People.csv": "name,email\nJane,jane@x.org\n",
	})

	res, err := pipeline.RunWithConfig(ctx, pipeline.RunConfig{Config: cfg}, root)
	assert.Nil(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Upserted[classify.People])

	status, err := st.RunStatus(ctx, res.RunID)
	assert.Nil(t, err)
	assert.Equal(t, store.RunStatusOK, status)

	n, err := st.Count(ctx, "people")
	assert.Nil(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRunWithConfig_WithoutRunsTable(t *testing.T) {
	ctx := context.Background()
	cfg := testhelpers.SQLiteConfig(t)
	st := testhelpers.OpenStore(t, cfg)
	_, err := st.DB().ExecContext(ctx, `DROP TABLE import_runs`)
	require.NoError(t, err)

	res, err := pipeline.RunWithConfig(ctx, pipeline.RunConfig{Config: cfg}, sampleRoot(t))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Upserted[classify.People])
}

func TestRunWithConfig_Unmigrated(t *testing.T) {
	cfg := testhelpers.SQLiteConfig(t)
	_, err := pipeline.RunWithConfig(context.Background(), pipeline.RunConfig{Config: cfg}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate")
}

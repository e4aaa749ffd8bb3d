package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("a\n1\n"), 0o644))
	}
}

func TestNormalizeName(t *testing.T) {
	for in, want := range map[string]string{
		"People.csv":                  "people",
		"Demo Plan - Key Results.csv": "key results",
		"01_Decision-Makers.csv":      "decision makers",
		"staff_allocation.csv.gz":     "staff allocation",
		"Budget raw.txt":              "budget raw",
		"  Calls to Action ":          "calls to action",
		"2025 Budget.csv":             "budget",
	} {
		assert.Equal(t, want, NormalizeName(in), in)
	}
}

func TestMatch_DeclaredOrder(t *testing.T) {
	c := Default()
	for name, want := range map[string]Kind{
		"People.csv":           People,
		"projects.csv":         Projects,
		"Objectives.csv":       Objectives,
		"KeyResults.csv":       KeyResults,
		"key_results.csv":      KeyResults,
		"Pushes.csv":           Pushes,
		"Milestones.csv":       Milestones,
		"Activities.csv":       Activities,
		"Decision Makers.csv":  DecisionMakers,
		"Project Budget.csv":   Budget,
		"budget raw.txt":       Budget,
		"Staff Allocation.csv": StaffAllocation,
		"Comms Profile.csv":    CommsProfile,
		"Key Messages.csv":     KeyMessages,
		"CTAs.csv":             CTAs,
		"Calls to Action.csv":  CTAs,
		"Comms Frames.csv":     CommsFrames,
		"FAQ.csv":              FAQs,
		"Pressure Sources.csv": PressureSources,
	} {
		got, ok := c.Match(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := c.Match("scratch notes.csv")
	assert.False(t, ok)
}

func TestClassify_FirstMatchPerKindWins(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "1_Projects.csv", "2_Projects.csv", "People.csv", "notes.csv", "readme.md")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	res, err := Default().Classify(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "1_Projects.csv"), res.Sheets[Projects].Path)
	assert.Equal(t, filepath.Join(dir, "People.csv"), res.Sheets[People].Path)
	assert.Len(t, res.Sheets, 2)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, "2_Projects.csv", res.Duplicates[0].Label())
}

func TestClassify_DelimitedBeforeWorkbook(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Pushes.tsv")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Pushes"))
	_, err := f.NewSheet("Milestones")
	require.NoError(t, err)
	_, err = f.NewSheet("Opponents")
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(filepath.Join(dir, "Alpha.xlsx")))
	require.NoError(t, f.Close())

	res, err := Default().Classify(dir)
	require.NoError(t, err)

	assert.Equal(t, Source{Path: filepath.Join(dir, "Pushes.tsv")}, res.Sheets[Pushes])
	assert.Equal(t, Source{Path: filepath.Join(dir, "Alpha.xlsx"), Sheet: "Milestones"}, res.Sheets[Milestones])
	assert.Equal(t, "Alpha.xlsx:Milestones", res.Sheets[Milestones].Label())
	require.Len(t, res.Unmodelled, 1)
	assert.Equal(t, "Opponents", res.Unmodelled[0].Sheet)
}

func TestClassify_CorruptWorkbookIsReported(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plan.xlsx"), []byte("nope"), 0o644))

	res, err := Default().Classify(dir)
	require.NoError(t, err)
	require.Len(t, res.Unreadable, 1)
	assert.Error(t, res.Unreadable[0].Err)
}

func TestClassify_MissingDir(t *testing.T) {
	_, err := Default().Classify(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestUnmodelled(t *testing.T) {
	lbl, ok := Unmodelled("Coalition Partners.csv")
	assert.True(t, ok)
	assert.Equal(t, "coalition partners", lbl)

	_, ok = Unmodelled("People.csv")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yml := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(yml, []byte(`
- kind: People
  patterns: ["^crew$"]
`), 0o644))
	c, err := LoadFile(yml)
	require.NoError(t, err)

	k, ok := c.Match("Crew.csv")
	assert.True(t, ok)
	assert.Equal(t, People, k)
	_, ok = c.Match("People.csv")
	assert.False(t, ok, "people defaults replaced")
	k, _ = c.Match("Projects.csv")
	assert.Equal(t, Projects, k, "other kinds keep defaults")

	js := filepath.Join(dir, "patterns.json")
	require.NoError(t, os.WriteFile(js, []byte(`[{"kind":"FAQs","patterns":["^questions$"]}]`), 0o644))
	c, err = LoadFile(js)
	require.NoError(t, err)
	k, ok = c.Match("questions.csv")
	assert.True(t, ok)
	assert.Equal(t, FAQs, k)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`[{kind: Opponents, patterns: ["x"]}]`), 0o644))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "Opponents")

	_, err = LoadFile(filepath.Join(dir, "patterns.toml"))
	assert.Error(t, err)

	c, err = LoadFile("")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestNew_BadPattern(t *testing.T) {
	_, err := New([]Rule{{Kind: Budget, Patterns: []string{"budget("}}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "compile Budget pattern")
}

package sheets

import (
	"regexp"
	"strings"

	"dashimport/internal/ingest/classify"
)

// Column is a consumed column: its canonical name plus header aliases seen in
// exported sheets. Matching is on canonical header form.
type Column struct {
	Name    string
	Aliases []string
}

func col(name string, aliases ...string) Column {
	return Column{Name: name, Aliases: aliases}
}

var projectSlug = col("project_slug", "project", "slug")

// Columns lists the columns each processor consumes. Budget and
// StaffAllocation additionally consume month columns (Jan..Dec).
var Columns = map[classify.Kind][]Column{
	classify.People: {
		col("name", "full_name", "person"),
		col("email", "e_mail", "email_address"),
		col("role", "access_role"),
		col("department", "department_code", "dept"),
		col("active", "is_active"),
	},
	classify.Projects: {
		col("slug", "project_slug"),
		col("name", "project_name", "title"),
		col("status", "project_status"),
		col("start_date", "start"),
		col("end_date", "end"),
		col("owner_email", "owner", "lead", "lead_email"),
		col("department", "department_code", "dept"),
		col("description", "summary"),
		col("links", "link", "urls"),
	},
	classify.Objectives: {
		projectSlug,
		col("title", "objective", "objective_title"),
		col("description"),
		col("is_current", "current"),
		col("sort_order", "order"),
	},
	classify.KeyResults: {
		projectSlug,
		col("objective_title", "objective"),
		col("code", "kr", "kr_code"),
		col("description", "key_result", "title"),
		col("target_value", "target"),
		col("current_value", "current", "actual"),
		col("unit", "units"),
		col("status"),
	},
	classify.Pushes: {
		projectSlug,
		col("sequence", "sequence_index", "push", "push_number", "number"),
		col("name"),
		col("start_date", "start"),
		col("end_date", "end"),
		col("goal", "theme", "focus"),
	},
	classify.Milestones: {
		projectSlug,
		col("title", "milestone", "name"),
		col("due_date", "due", "date"),
		col("due_quarter", "quarter"),
		col("year"),
		col("push", "push_number", "push_sequence"),
		col("department", "lead_department", "dept"),
		col("status"),
		col("description", "notes"),
	},
	classify.Activities: {
		projectSlug,
		col("push", "push_number", "push_sequence", "sequence"),
		col("title", "activity", "name"),
		col("status"),
		col("owner_email", "owner"),
		col("department", "dept"),
		col("description", "notes"),
	},
	classify.DecisionMakers: {
		projectSlug,
		col("name"),
		col("title", "position", "role"),
		col("organization", "org", "agency"),
		col("stance"),
		col("influence", "influence_level"),
		col("notes"),
	},
	classify.Budget: {
		projectSlug,
		col("category"),
		col("description", "line_item", "item"),
		col("fiscal_year", "fy", "year"),
		col("period", "month"),
		col("amount", "total", "annual_amount", "annual"),
		col("department", "dept"),
	},
	classify.StaffAllocation: {
		projectSlug,
		col("email", "person_email", "staff_email", "person"),
		col("fiscal_year", "fy", "year"),
		col("period", "month"),
		col("hours"),
		col("role"),
	},
	classify.CommsProfile: {
		projectSlug,
		col("audience", "primary_audience"),
		col("positioning"),
		col("tone", "voice"),
		col("summary"),
	},
	classify.KeyMessages: {
		projectSlug,
		col("message", "text", "key_message"),
		col("audience"),
		col("sort_order", "order", "priority"),
	},
	classify.CTAs: {
		projectSlug,
		col("text", "cta", "call_to_action"),
		col("audience"),
		col("url", "link"),
	},
	classify.CommsFrames: {
		projectSlug,
		col("title", "frame"),
		col("description"),
	},
	classify.FAQs: {
		projectSlug,
		col("question", "q"),
		col("answer", "a"),
	},
}

// wide kinds also take one column per month.
var wide = map[classify.Kind]bool{
	classify.Budget:          true,
	classify.StaffAllocation: true,
}

var reHeaderSep = regexp.MustCompile(`[^a-z0-9]+`)

// Canonical is the comparable form of a header: lowercase, runs of other
// characters collapsed to one underscore.
func Canonical(header string) string {
	return strings.Trim(reHeaderSep.ReplaceAllString(strings.ToLower(header), "_"), "_")
}

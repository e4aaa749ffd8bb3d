package store

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

type Person struct {
	Email        string
	Name         string
	Role         string
	DepartmentID *int64
	IsActive     bool
}

type Project struct {
	Slug          string
	Name          string
	Status        string
	StartDate     *time.Time
	EndDate       *time.Time
	Description   *string
	OwnerPersonID *int64
	DepartmentID  *int64
}

type Objective struct {
	ProjectID   int64
	Title       string
	Description *string
	IsCurrent   bool
	SortOrder   int
}

type KeyResult struct {
	ProjectID    int64
	ObjectiveID  int64
	Code         string
	Description  *string
	TargetValue  *string
	CurrentValue *string
	Unit         *string
	Status       *string
}

type Push struct {
	ProjectID     int64
	SequenceIndex int
	Name          string
	StartDate     time.Time
	EndDate       time.Time
	Goal          *string
}

type Milestone struct {
	ProjectID    int64
	Title        string
	DueDate      time.Time
	PushID       *int64
	DepartmentID *int64
	Status       *string
	Description  *string
}

type Activity struct {
	ProjectID     int64
	PushID        int64
	Title         string
	Status        *string
	OwnerPersonID *int64
	DepartmentID  *int64
	Description   *string
}

type DecisionMaker struct {
	ProjectID    int64
	Name         string
	Title        *string
	Organization *string
	Stance       string
	Influence    *string
	Notes        *string
}

type BudgetLine struct {
	ProjectID    int64
	Category     string
	Description  string
	Period       string
	FiscalYear   *string
	Amount       decimal.Decimal
	DepartmentID *int64
}

type StaffAllocation struct {
	ProjectID int64
	PersonID  int64
	Period    string
	Hours     decimal.Decimal
	Role      *string
}

// UpsertDepartment creates the department on first sight. The name is only set
// on insert so a name fixed up later is not overwritten by the code.
func (s *Store) UpsertDepartment(ctx context.Context, code, name string) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table:  "departments",
		key:    []col{{"code", code}},
		create: []col{{"name", name}, {"is_active", true}},
	})
}

func (s *Store) UpsertPerson(ctx context.Context, p Person) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "people",
		key:   []col{{"email", p.Email}},
		set: []col{
			{"name", p.Name},
			{"role", p.Role},
			{"department_id", p.DepartmentID},
			{"is_active", p.IsActive},
		},
	})
}

func (s *Store) FindPersonByEmail(ctx context.Context, email string) (int64, error) {
	return s.findID(ctx, "people", []col{{"email", email}})
}

func (s *Store) UpsertProject(ctx context.Context, p Project) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "projects",
		key:   []col{{"slug", p.Slug}},
		set: []col{
			{"name", p.Name},
			{"status", p.Status},
			{"start_date", p.StartDate},
			{"end_date", p.EndDate},
			{"description", p.Description},
			{"owner_person_id", p.OwnerPersonID},
			{"department_id", p.DepartmentID},
		},
	})
}

func (s *Store) FindProjectBySlug(ctx context.Context, slug string) (int64, error) {
	return s.findID(ctx, "projects", []col{{"slug", slug}})
}

func (s *Store) UpsertProjectLink(ctx context.Context, projectID int64, url, kind string) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "project_links",
		key:   []col{{"project_id", projectID}, {"url", url}},
		set:   []col{{"kind", kind}},
	})
}

// UpsertObjective writes the objective. A current objective first clears the
// flag on its siblings so a project has at most one.
func (s *Store) UpsertObjective(ctx context.Context, o Objective) (int64, error) {
	if o.IsCurrent {
		q := s.rebind(`UPDATE objectives SET is_current = ?, updated_at = CURRENT_TIMESTAMP
WHERE project_id = ? AND title <> ? AND is_current = ?`)
		if _, err := s.q.ExecContext(ctx, q, false, o.ProjectID, o.Title, true); err != nil {
			return 0, errors.Wrap(err, "clear current objectives")
		}
	}
	return s.upsertByNaturalKey(ctx, upsert{
		table: "objectives",
		key:   []col{{"project_id", o.ProjectID}, {"title", o.Title}},
		set: []col{
			{"description", o.Description},
			{"is_current", o.IsCurrent},
			{"sort_order", o.SortOrder},
		},
	})
}

func (s *Store) FindObjective(ctx context.Context, projectID int64, title string) (int64, error) {
	return s.findID(ctx, "objectives", []col{{"project_id", projectID}, {"title", title}})
}

func (s *Store) UpsertKeyResult(ctx context.Context, kr KeyResult) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "key_results",
		key:   []col{{"objective_id", kr.ObjectiveID}, {"code", kr.Code}},
		set: []col{
			{"project_id", kr.ProjectID},
			{"description", kr.Description},
			{"target_value", kr.TargetValue},
			{"current_value", kr.CurrentValue},
			{"unit", kr.Unit},
			{"status", kr.Status},
		},
	})
}

func (s *Store) UpsertPush(ctx context.Context, p Push) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "pushes",
		key:   []col{{"project_id", p.ProjectID}, {"sequence_index", p.SequenceIndex}},
		set: []col{
			{"name", p.Name},
			{"start_date", p.StartDate},
			{"end_date", p.EndDate},
			{"goal", p.Goal},
		},
	})
}

func (s *Store) FindPush(ctx context.Context, projectID int64, seq int) (int64, error) {
	return s.findID(ctx, "pushes", []col{{"project_id", projectID}, {"sequence_index", seq}})
}

func (s *Store) UpsertMilestone(ctx context.Context, m Milestone) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "milestones",
		key:   []col{{"project_id", m.ProjectID}, {"title", m.Title}},
		set: []col{
			{"due_date", m.DueDate},
			{"push_id", m.PushID},
			{"department_id", m.DepartmentID},
			{"status", m.Status},
			{"description", m.Description},
		},
	})
}

func (s *Store) UpsertActivity(ctx context.Context, a Activity) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "activities",
		key:   []col{{"push_id", a.PushID}, {"title", a.Title}},
		set: []col{
			{"project_id", a.ProjectID},
			{"status", a.Status},
			{"owner_person_id", a.OwnerPersonID},
			{"department_id", a.DepartmentID},
			{"description", a.Description},
		},
	})
}

func (s *Store) UpsertDecisionMaker(ctx context.Context, d DecisionMaker) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "decision_makers",
		key:   []col{{"project_id", d.ProjectID}, {"name", d.Name}},
		set: []col{
			{"title", d.Title},
			{"organization", d.Organization},
			{"stance", d.Stance},
			{"influence", d.Influence},
			{"notes", d.Notes},
		},
	})
}

func (s *Store) UpsertBudgetLine(ctx context.Context, b BudgetLine) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "budget_lines",
		key: []col{
			{"project_id", b.ProjectID},
			{"category", b.Category},
			{"description", b.Description},
			{"period", b.Period},
		},
		set: []col{
			{"fiscal_year", b.FiscalYear},
			{"amount", b.Amount},
			{"department_id", b.DepartmentID},
		},
	})
}

func (s *Store) UpsertStaffAllocation(ctx context.Context, a StaffAllocation) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "staff_allocations",
		key: []col{
			{"project_id", a.ProjectID},
			{"person_id", a.PersonID},
			{"period", a.Period},
		},
		set: []col{{"hours", a.Hours}, {"role", a.Role}},
	})
}

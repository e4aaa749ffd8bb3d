package sheets

import (
	"context"
	"strings"

	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/store"
	"dashimport/internal/ingest/tabular"
)

func processObjectives(ctx context.Context, env *Env, s *sheet) error {
	for i, r := range s.rows() {
		title := strings.TrimSpace(s.text(r, "title"))
		if title == "" {
			env.skipf(s, r.Line, "missing title")
			continue
		}
		projectID, ok, err := project(ctx, env, s, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		id, err := env.Store.UpsertObjective(ctx, store.Objective{
			ProjectID:   projectID,
			Title:       title,
			Description: s.get(r, "description"),
			IsCurrent:   normalize.Bool(s.get(r, "is_current"), false),
			SortOrder:   optInt(s.get(r, "sort_order"), i+1),
		})
		if err != nil {
			return err
		}
		env.Resolver.RememberObjective(projectID, title, id)
		env.upserted(s, 1)
	}
	return nil
}

func processKeyResults(ctx context.Context, env *Env, s *sheet) error {
	for _, r := range s.rows() {
		code := strings.ToUpper(strings.TrimSpace(s.text(r, "code")))
		objective := strings.TrimSpace(s.text(r, "objective_title"))
		if code == "" {
			env.skipf(s, r.Line, "missing code")
			continue
		}
		if objective == "" {
			env.skipf(s, r.Line, "missing objective_title for %s", code)
			continue
		}
		projectID, ok, err := project(ctx, env, s, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		objectiveID, found, err := env.Resolver.Objective(ctx, projectID, objective)
		if err != nil {
			return err
		}
		if !found {
			env.skipf(s, r.Line, "objective %q not found for %s", objective, code)
			continue
		}

		if _, err := env.Store.UpsertKeyResult(ctx, store.KeyResult{
			ProjectID:    projectID,
			ObjectiveID:  objectiveID,
			Code:         code,
			Description:  s.get(r, "description"),
			TargetValue:  s.get(r, "target_value"),
			CurrentValue: s.get(r, "current_value"),
			Unit:         s.get(r, "unit"),
			Status:       workStatus(env, s, r),
		}); err != nil {
			return err
		}
		env.upserted(s, 1)
	}
	return nil
}

// workStatus normalizes an optional status cell; unknown values become nil
// with a warning.
func workStatus(env *Env, s *sheet, r tabular.Row) *string {
	raw := s.get(r, "status")
	if raw == nil {
		return nil
	}
	st, ok := normalize.NormalizeEnum(raw, WorkStatuses)
	if !ok {
		env.warnf(s, r.Line, "unknown status %q ignored", *raw)
		return nil
	}
	v := string(st)
	return &v
}

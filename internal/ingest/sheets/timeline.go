package sheets

import (
	"context"
	"fmt"
	"strings"

	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/store"
)

func processPushes(ctx context.Context, env *Env, s *sheet) error {
	for _, r := range s.rows() {
		seq, ok := parseInt(s.get(r, "sequence"))
		if !ok {
			env.skipf(s, r.Line, "sequence %q is not a number", s.text(r, "sequence"))
			continue
		}
		start := normalize.ParseDate(s.get(r, "start_date"))
		end := normalize.ParseDate(s.get(r, "end_date"))
		if start == nil || end == nil {
			env.skipf(s, r.Line, "push %d needs valid start_date and end_date (got %q, %q)",
				seq, s.text(r, "start_date"), s.text(r, "end_date"))
			continue
		}
		if end.Before(*start) {
			env.skipf(s, r.Line, "push %d ends before it starts", seq)
			continue
		}
		projectID, ok, err := project(ctx, env, s, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		name := strings.TrimSpace(s.text(r, "name"))
		if name == "" {
			name = fmt.Sprintf("Push %d", seq)
		}
		id, err := env.Store.UpsertPush(ctx, store.Push{
			ProjectID:     projectID,
			SequenceIndex: seq,
			Name:          name,
			StartDate:     *start,
			EndDate:       *end,
			Goal:          s.get(r, "goal"),
		})
		if err != nil {
			return err
		}
		env.Resolver.RememberPush(projectID, seq, id)
		env.upserted(s, 1)
	}
	return nil
}

func processMilestones(ctx context.Context, env *Env, s *sheet) error {
	for _, r := range s.rows() {
		title := strings.TrimSpace(s.text(r, "title"))
		if title == "" {
			env.skipf(s, r.Line, "missing title")
			continue
		}

		due := normalize.ParseDate(s.get(r, "due_date"))
		if due == nil {
			if q := s.get(r, "due_quarter"); q != nil {
				year := optInt(s.get(r, "year"), 0)
				if rng, ok := normalize.ParseQuarter(*q, year, env.fyStart()); ok {
					due = &rng.End
				}
			}
		}
		if due == nil {
			env.skipf(s, r.Line, "milestone %q has no usable due_date or due_quarter (got %q, %q)",
				title, s.text(r, "due_date"), s.text(r, "due_quarter"))
			continue
		}

		projectID, ok, err := project(ctx, env, s, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		var pushID *int64
		if raw := s.get(r, "push"); raw != nil {
			if seq, ok := parseInt(raw); ok {
				id, found, err := env.Resolver.Push(ctx, projectID, seq)
				if err != nil {
					return err
				}
				if found {
					pushID = &id
				} else {
					env.warnf(s, r.Line, "push %d not found for milestone %q, left unlinked", seq, title)
				}
			} else {
				env.warnf(s, r.Line, "push %q is not a number, left unlinked", *raw)
			}
		}

		dept, err := env.Resolver.Department(ctx, s.get(r, "department"))
		if err != nil {
			return err
		}

		if _, err := env.Store.UpsertMilestone(ctx, store.Milestone{
			ProjectID:    projectID,
			Title:        title,
			DueDate:      *due,
			PushID:       pushID,
			DepartmentID: dept,
			Status:       workStatus(env, s, r),
			Description:  s.get(r, "description"),
		}); err != nil {
			return err
		}
		env.upserted(s, 1)
	}
	return nil
}

func processActivities(ctx context.Context, env *Env, s *sheet) error {
	for _, r := range s.rows() {
		title := strings.TrimSpace(s.text(r, "title"))
		if title == "" {
			env.skipf(s, r.Line, "missing title")
			continue
		}
		seq, ok := parseInt(s.get(r, "push"))
		if !ok {
			env.skipf(s, r.Line, "activity %q needs a numeric push (got %q)", title, s.text(r, "push"))
			continue
		}
		projectID, ok, err := project(ctx, env, s, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		pushID, found, err := env.Resolver.Push(ctx, projectID, seq)
		if err != nil {
			return err
		}
		if !found {
			env.skipf(s, r.Line, "push %d not found for activity %q", seq, title)
			continue
		}

		var owner *int64
		if email := normalize.Email(s.get(r, "owner_email")); email != "" {
			id, found, err := env.Resolver.Person(ctx, email)
			if err != nil {
				return err
			}
			if found {
				owner = &id
			} else {
				env.warnf(s, r.Line, "owner %s of activity %q not found", email, title)
			}
		}

		dept, err := env.Resolver.Department(ctx, s.get(r, "department"))
		if err != nil {
			return err
		}

		if _, err := env.Store.UpsertActivity(ctx, store.Activity{
			ProjectID:     projectID,
			PushID:        pushID,
			Title:         title,
			Status:        workStatus(env, s, r),
			OwnerPersonID: owner,
			DepartmentID:  dept,
			Description:   s.get(r, "description"),
		}); err != nil {
			return err
		}
		env.upserted(s, 1)
	}
	return nil
}

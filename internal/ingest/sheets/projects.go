package sheets

import (
	"context"
	"strings"
	"time"

	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/store"
	"dashimport/internal/ingest/tabular"
)

func processProjects(ctx context.Context, env *Env, s *sheet) error {
	for _, r := range s.rows() {
		slug := strings.TrimSpace(s.text(r, "slug"))
		name := strings.TrimSpace(s.text(r, "name"))
		if slug == "" {
			env.skipf(s, r.Line, "missing slug")
			continue
		}
		if name == "" {
			env.skipf(s, r.Line, "missing name for project %q", slug)
			continue
		}

		status, ok := normalize.NormalizeEnum(s.get(r, "status"), ProjectStatuses)
		if !ok {
			if raw := s.get(r, "status"); raw != nil {
				env.warnf(s, r.Line, "unknown status %q for project %q, using %s", *raw, slug, ProjectPlanning)
			} else {
				env.warnf(s, r.Line, "missing status for project %q, using %s", slug, ProjectPlanning)
			}
			status = ProjectPlanning
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
				env.warnf(s, r.Line, "owner %s of project %q not found, imported without owner", email, slug)
			}
		}

		dept, err := env.Resolver.Department(ctx, s.get(r, "department"))
		if err != nil {
			return err
		}

		id, err := env.Store.UpsertProject(ctx, store.Project{
			Slug:          slug,
			Name:          name,
			Status:        string(status),
			StartDate:     dateCell(env, s, r, "start_date"),
			EndDate:       dateCell(env, s, r, "end_date"),
			Description:   s.get(r, "description"),
			OwnerPersonID: owner,
			DepartmentID:  dept,
		})
		if err != nil {
			return err
		}
		env.Resolver.RememberProject(slug, id)

		for _, link := range normalize.SplitLinks(s.get(r, "links")) {
			if _, err := env.Store.UpsertProjectLink(ctx, id, link, normalize.LinkKind(link)); err != nil {
				return err
			}
		}
		env.upserted(s, 1)
	}
	return nil
}

// dateCell parses an optional date column; a value that does not parse is
// dropped with a warning.
func dateCell(env *Env, s *sheet, r tabular.Row, name string) *time.Time {
	v := s.get(r, name)
	t := normalize.ParseDate(v)
	if v != nil && t == nil {
		env.warnf(s, r.Line, "unparseable %s %q ignored", name, *v)
	}
	return t
}

package sheets

import (
	"context"
	"strings"

	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/store"
)

func processPeople(ctx context.Context, env *Env, s *sheet) error {
	for _, r := range s.rows() {
		email := normalize.Email(s.get(r, "email"))
		if email == "" {
			env.skipf(s, r.Line, "missing email")
			continue
		}
		if err := env.validate().Var(email, "email"); err != nil {
			env.skipf(s, r.Line, "invalid email %q", email)
			continue
		}

		name := strings.TrimSpace(s.text(r, "name"))
		if name == "" {
			name = email[:strings.IndexByte(email, '@')]
		}

		role, ok := normalize.NormalizeEnum(s.get(r, "role"), Roles)
		if !ok {
			if raw := s.get(r, "role"); raw != nil {
				env.warnf(s, r.Line, "unknown role %q for %s, using %s", *raw, email, RoleViewer)
			} else {
				env.warnf(s, r.Line, "missing role for %s, using %s", email, RoleViewer)
			}
			role = RoleViewer
		}

		dept, err := env.Resolver.Department(ctx, s.get(r, "department"))
		if err != nil {
			return err
		}

		id, err := env.Store.UpsertPerson(ctx, store.Person{
			Email:        email,
			Name:         name,
			Role:         string(role),
			DepartmentID: dept,
			IsActive:     normalize.Bool(s.get(r, "active"), true),
		})
		if err != nil {
			return err
		}
		env.Resolver.RememberPerson(email, id)
		env.upserted(s, 1)
	}
	return nil
}

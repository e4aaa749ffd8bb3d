package sheets

import (
	"context"
	"strings"

	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/store"
)

func processDecisionMakers(ctx context.Context, env *Env, s *sheet) error {
	for _, r := range s.rows() {
		name := strings.TrimSpace(s.text(r, "name"))
		if name == "" {
			env.skipf(s, r.Line, "missing name")
			continue
		}
		projectID, ok, err := project(ctx, env, s, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		stance, ok := normalize.NormalizeEnum(s.get(r, "stance"), Stances)
		if !ok {
			if raw := s.get(r, "stance"); raw != nil {
				env.warnf(s, r.Line, "unknown stance %q for %s, using %s", *raw, name, StanceUnknown)
			}
			stance = StanceUnknown
		}

		if _, err := env.Store.UpsertDecisionMaker(ctx, store.DecisionMaker{
			ProjectID:    projectID,
			Name:         name,
			Title:        s.get(r, "title"),
			Organization: s.get(r, "organization"),
			Stance:       string(stance),
			Influence:    s.get(r, "influence"),
			Notes:        s.get(r, "notes"),
		}); err != nil {
			return err
		}
		env.upserted(s, 1)
	}
	return nil
}

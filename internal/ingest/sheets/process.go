package sheets

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"dashimport/internal/ingest/classify"
	"dashimport/internal/ingest/tabular"
)

type processor func(ctx context.Context, env *Env, s *sheet) error

var processors = map[classify.Kind]processor{
	classify.People:          processPeople,
	classify.Projects:        processProjects,
	classify.Objectives:      processObjectives,
	classify.KeyResults:      processKeyResults,
	classify.Pushes:          processPushes,
	classify.Milestones:      processMilestones,
	classify.Activities:      processActivities,
	classify.DecisionMakers:  processDecisionMakers,
	classify.Budget:          processBudget,
	classify.StaffAllocation: processStaffAllocation,
	classify.CommsProfile:    processCommsProfile,
	classify.KeyMessages:     processKeyMessages,
	classify.CTAs:            processCTAs,
	classify.CommsFrames:     processCommsFrames,
	classify.FAQs:            processFAQs,
}

// Order is the dependency order processors run in: people and projects
// first, parents before children.
var Order = []classify.Kind{
	classify.People,
	classify.Projects,
	classify.Objectives,
	classify.KeyResults,
	classify.Pushes,
	classify.Milestones,
	classify.Activities,
	classify.DecisionMakers,
	classify.Budget,
	classify.StaffAllocation,
	classify.CommsProfile,
	classify.KeyMessages,
	classify.CTAs,
	classify.CommsFrames,
	classify.FAQs,
}

// Process imports one table of the given kind. Row problems become skips and
// warnings; the returned error is a store failure.
func Process(ctx context.Context, env *Env, kind classify.Kind, t *tabular.Table) error {
	p, ok := processors[kind]
	if !ok {
		env.Recorder.Warn(env.Bundle + "/" + t.Name + ": no data model for " + string(kind) + " yet, skipped")
		return nil
	}
	s := bindSheet(kind, t)
	for _, h := range s.unused {
		if !s.hasData(h) {
			env.warnf(s, 0, "unused column %q (empty)", h)
			continue
		}
		if sg := suggest(kind, h); sg != "" {
			env.warnf(s, 0, "unused column %q (did you mean %q?)", h, sg)
		} else {
			env.warnf(s, 0, "unused column %q", h)
		}
	}
	env.logger().Info("[SHEET] processing",
		zap.String("bundle", env.Bundle),
		zap.String("sheet", t.Name),
		zap.String("kind", string(kind)),
		zap.Int("rows", len(t.Rows)),
	)
	return p(ctx, env, s)
}

// DefaultProjectSlug is the project rows without a project_slug belong to:
// the only project of the bundle's Projects sheet, else the bundle name.
func DefaultProjectSlug(bundle string, projects *tabular.Table) string {
	if projects != nil {
		s := bindSheet(classify.Projects, projects)
		var slugs []string
		for _, r := range s.rows() {
			if v := strings.TrimSpace(s.text(r, "slug")); v != "" {
				slugs = append(slugs, v)
			}
		}
		if len(slugs) == 1 {
			return slugs[0]
		}
	}
	return bundle
}

// project resolves the row's project. ok=false means the row was skipped.
func project(ctx context.Context, env *Env, s *sheet, r tabular.Row) (int64, bool, error) {
	slug := strings.TrimSpace(s.text(r, "project_slug"))
	if slug == "" {
		slug = env.DefaultProject
	}
	if slug == "" {
		env.skipf(s, r.Line, "missing project_slug")
		return 0, false, nil
	}
	id, ok, err := env.Resolver.Project(ctx, slug)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		env.skipf(s, r.Line, "unknown project %q", slug)
		return 0, false, nil
	}
	return id, true, nil
}

// parseInt reads whole numbers, tolerating a trailing ".0" from spreadsheets.
func parseInt(v *string) (int, bool) {
	if v == nil {
		return 0, false
	}
	t := strings.TrimSuffix(strings.TrimSpace(*v), ".0")
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, false
	}
	return n, true
}

// optInt returns def for a missing or non-numeric cell.
func optInt(v *string, def int) int {
	if n, ok := parseInt(v); ok {
		return n
	}
	return def
}

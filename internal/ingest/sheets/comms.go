package sheets

import (
	"context"
	"strings"

	"dashimport/internal/ingest/store"
	"dashimport/internal/ingest/tabular"
)

func processCommsProfile(ctx context.Context, env *Env, s *sheet) error {
	for _, r := range s.rows() {
		projectID, ok, err := project(ctx, env, s, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		id, err := env.Store.UpsertCommsProfile(ctx, store.CommsProfile{
			ProjectID:   projectID,
			Audience:    s.get(r, "audience"),
			Positioning: s.get(r, "positioning"),
			Tone:        s.get(r, "tone"),
			Summary:     s.get(r, "summary"),
		})
		if err != nil {
			return err
		}
		env.Resolver.RememberCommsProfile(projectID, id)
		env.upserted(s, 1)
	}
	return nil
}

// commsRows runs fn for every row that has text in col and a resolvable
// project, passing the project's comms profile id.
func commsRows(ctx context.Context, env *Env, s *sheet, col string, fn func(r tabular.Row, profileID int64, text string) error) error {
	for _, r := range s.rows() {
		text := strings.TrimSpace(s.text(r, col))
		if text == "" {
			env.skipf(s, r.Line, "missing %s", col)
			continue
		}
		projectID, ok, err := project(ctx, env, s, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		profileID, err := env.Resolver.CommsProfile(ctx, projectID)
		if err != nil {
			return err
		}
		if err := fn(r, profileID, text); err != nil {
			return err
		}
		env.upserted(s, 1)
	}
	return nil
}

func processKeyMessages(ctx context.Context, env *Env, s *sheet) error {
	i := 0
	return commsRows(ctx, env, s, "message", func(r tabular.Row, profileID int64, text string) error {
		i++
		_, err := env.Store.UpsertKeyMessage(ctx, store.KeyMessage{
			ProfileID: profileID,
			Text:      text,
			Audience:  s.get(r, "audience"),
			SortOrder: optInt(s.get(r, "sort_order"), i),
		})
		return err
	})
}

func processCTAs(ctx context.Context, env *Env, s *sheet) error {
	return commsRows(ctx, env, s, "text", func(r tabular.Row, profileID int64, text string) error {
		_, err := env.Store.UpsertCallToAction(ctx, store.CallToAction{
			ProfileID: profileID,
			Text:      text,
			Audience:  s.get(r, "audience"),
			URL:       s.get(r, "url"),
		})
		return err
	})
}

func processCommsFrames(ctx context.Context, env *Env, s *sheet) error {
	return commsRows(ctx, env, s, "title", func(r tabular.Row, profileID int64, title string) error {
		_, err := env.Store.UpsertCommsFrame(ctx, store.CommsFrame{
			ProfileID:   profileID,
			Title:       title,
			Description: s.get(r, "description"),
		})
		return err
	})
}

func processFAQs(ctx context.Context, env *Env, s *sheet) error {
	return commsRows(ctx, env, s, "question", func(r tabular.Row, profileID int64, q string) error {
		_, err := env.Store.UpsertCommsFaq(ctx, store.CommsFaq{
			ProfileID: profileID,
			Question:  q,
			Answer:    s.get(r, "answer"),
		})
		return err
	})
}

package project

import (
	"context"
	"os"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"dashimport/internal/ingest/store"
)

// CommsFile imports a Markdown comms brief into the project's comms profile.
// Items are matched by content, so re-importing an edited brief updates the
// items it still contains and adds the new ones. The profile fields are
// replaced when the brief has any profile section.
func (im *Importer) CommsFile(ctx context.Context, slug, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open comms brief")
	}
	defer f.Close()

	b, err := ParseBrief(f)
	if err != nil {
		return nil, err
	}
	return im.Comms(ctx, slug, b)
}

// Comms writes a parsed brief.
func (im *Importer) Comms(ctx context.Context, slug string, b *Brief) (*Result, error) {
	projectID, err := im.projectID(ctx, slug)
	if err != nil {
		return nil, err
	}
	res := &Result{Project: slug}
	if b.HasProfile() {
		res.Scope = append(res.Scope, "profile")
	}
	for _, s := range []struct {
		name string
		n    int
	}{
		{"key_messages", len(b.KeyMessages)},
		{"calls_to_action", len(b.CTAs)},
		{"frames", len(b.Frames)},
		{"faqs", len(b.FAQs)},
	} {
		if s.n > 0 {
			res.Scope = append(res.Scope, s.name)
		}
	}

	err = im.store.WithTx(ctx, func(tx *store.Store) error {
		var profileID int64
		var err error
		if b.HasProfile() {
			profileID, err = tx.UpsertCommsProfile(ctx, store.CommsProfile{
				ProjectID:   projectID,
				Audience:    b.Audience,
				Positioning: b.Positioning,
				Tone:        b.Tone,
				Summary:     b.Summary,
			})
		} else {
			profileID, err = tx.EnsureCommsProfile(ctx, projectID)
		}
		if err != nil {
			return err
		}

		for i, m := range b.KeyMessages {
			if _, err := tx.UpsertKeyMessage(ctx, store.KeyMessage{ProfileID: profileID, Text: m, SortOrder: i + 1}); err != nil {
				return err
			}
		}
		for _, c := range b.CTAs {
			if _, err := tx.UpsertCallToAction(ctx, store.CallToAction{ProfileID: profileID, Text: c.Text, URL: c.URL}); err != nil {
				return err
			}
		}
		for _, f := range b.Frames {
			if _, err := tx.UpsertCommsFrame(ctx, store.CommsFrame{ProfileID: profileID, Title: f.Title, Description: f.Body}); err != nil {
				return err
			}
		}
		for _, q := range b.FAQs {
			if _, err := tx.UpsertCommsFaq(ctx, store.CommsFaq{ProfileID: profileID, Question: q.Title, Answer: q.Body}); err != nil {
				return err
			}
		}
		res.Inserted = len(b.KeyMessages) + len(b.CTAs) + len(b.Frames) + len(b.FAQs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.logger.Info("[COMMS] imported",
		zap.String("project", slug),
		zap.Int("messages", len(b.KeyMessages)),
		zap.Int("ctas", len(b.CTAs)),
		zap.Int("frames", len(b.Frames)),
		zap.Int("faqs", len(b.FAQs)),
	)
	return res, nil
}

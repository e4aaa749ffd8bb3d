package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

type CommsProfile struct {
	ProjectID   int64
	Audience    *string
	Positioning *string
	Tone        *string
	Summary     *string
}

type KeyMessage struct {
	ProfileID int64
	Text      string
	Audience  *string
	SortOrder int
}

type CallToAction struct {
	ProfileID int64
	Text      string
	Audience  *string
	URL       *string
}

type CommsFrame struct {
	ProfileID   int64
	Title       string
	Description *string
}

type CommsFaq struct {
	ProfileID int64
	Question  string
	Answer    *string
}

// ContentHash keys comms rows by their content: case and whitespace runs are
// ignored so a re-export with different wrapping matches the same row.
func ContentHash(text string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])
}

func (s *Store) UpsertCommsProfile(ctx context.Context, p CommsProfile) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "comms_profiles",
		key:   []col{{"project_id", p.ProjectID}},
		set: []col{
			{"audience", p.Audience},
			{"positioning", p.Positioning},
			{"tone", p.Tone},
			{"summary", p.Summary},
		},
	})
}

// EnsureCommsProfile returns the project's profile, creating an empty one if needed.
func (s *Store) EnsureCommsProfile(ctx context.Context, projectID int64) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "comms_profiles",
		key:   []col{{"project_id", projectID}},
	})
}

func (s *Store) UpsertKeyMessage(ctx context.Context, m KeyMessage) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "key_messages",
		key:   []col{{"comms_profile_id", m.ProfileID}, {"text_hash", ContentHash(m.Text)}},
		set:   []col{{"text", m.Text}, {"audience", m.Audience}, {"sort_order", m.SortOrder}},
	})
}

func (s *Store) UpsertCallToAction(ctx context.Context, c CallToAction) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "calls_to_action",
		key:   []col{{"comms_profile_id", c.ProfileID}, {"text_hash", ContentHash(c.Text)}},
		set:   []col{{"text", c.Text}, {"audience", c.Audience}, {"url", c.URL}},
	})
}

func (s *Store) UpsertCommsFrame(ctx context.Context, f CommsFrame) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "comms_frames",
		key:   []col{{"comms_profile_id", f.ProfileID}, {"text_hash", ContentHash(f.Title)}},
		set:   []col{{"title", f.Title}, {"description", f.Description}},
	})
}

func (s *Store) UpsertCommsFaq(ctx context.Context, f CommsFaq) (int64, error) {
	return s.upsertByNaturalKey(ctx, upsert{
		table: "comms_faqs",
		key:   []col{{"comms_profile_id", f.ProfileID}, {"text_hash", ContentHash(f.Question)}},
		set:   []col{{"question", f.Question}, {"answer", f.Answer}},
	})
}

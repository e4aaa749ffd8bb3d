// Package resolve memoizes natural key to id lookups for one import run.
package resolve

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"dashimport/internal/ingest/store"
)

// Store is the subset of *store.Store the resolvers use.
type Store interface {
	UpsertDepartment(ctx context.Context, code, name string) (int64, error)
	FindPersonByEmail(ctx context.Context, email string) (int64, error)
	FindProjectBySlug(ctx context.Context, slug string) (int64, error)
	FindObjective(ctx context.Context, projectID int64, title string) (int64, error)
	FindPush(ctx context.Context, projectID int64, seq int) (int64, error)
	EnsureCommsProfile(ctx context.Context, projectID int64) (int64, error)
}

type objectiveKey struct {
	projectID int64
	title     string
}

type pushKey struct {
	projectID int64
	seq       int
}

// Resolver caches ids by natural key. Misses are not cached, so a row written
// later in the run is found by subsequent lookups. Not safe for concurrent use.
type Resolver struct {
	store Store

	departments map[string]int64
	people      map[string]int64
	projects    map[string]int64
	objectives  map[objectiveKey]int64
	pushes      map[pushKey]int64
	profiles    map[int64]int64
}

func New(s Store) *Resolver {
	return &Resolver{
		store:       s,
		departments: make(map[string]int64),
		people:      make(map[string]int64),
		projects:    make(map[string]int64),
		objectives:  make(map[objectiveKey]int64),
		pushes:      make(map[pushKey]int64),
		profiles:    make(map[int64]int64),
	}
}

// DepartmentCode canonicalizes a department code.
func DepartmentCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Department returns the id for code, creating {code, name: code} on first
// sight. A nil or blank code means no department and returns nil.
func (r *Resolver) Department(ctx context.Context, code *string) (*int64, error) {
	if code == nil {
		return nil, nil
	}
	c := DepartmentCode(*code)
	if c == "" {
		return nil, nil
	}
	if id, ok := r.departments[c]; ok {
		return &id, nil
	}
	id, err := r.store.UpsertDepartment(ctx, c, c)
	if err != nil {
		return nil, err
	}
	r.departments[c] = id
	return &id, nil
}

// Person looks up a person by email. It never creates one.
func (r *Resolver) Person(ctx context.Context, email string) (int64, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, false, nil
	}
	if id, ok := r.people[email]; ok {
		return id, true, nil
	}
	return lookup(r.people, email, func() (int64, error) { return r.store.FindPersonByEmail(ctx, email) })
}

// Project looks up a project by slug. It never creates one.
func (r *Resolver) Project(ctx context.Context, slug string) (int64, bool, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, false, nil
	}
	if id, ok := r.projects[slug]; ok {
		return id, true, nil
	}
	return lookup(r.projects, slug, func() (int64, error) { return r.store.FindProjectBySlug(ctx, slug) })
}

func (r *Resolver) Objective(ctx context.Context, projectID int64, title string) (int64, bool, error) {
	k := objectiveKey{projectID, strings.TrimSpace(title)}
	if id, ok := r.objectives[k]; ok {
		return id, true, nil
	}
	return lookup(r.objectives, k, func() (int64, error) { return r.store.FindObjective(ctx, projectID, k.title) })
}

func (r *Resolver) Push(ctx context.Context, projectID int64, seq int) (int64, bool, error) {
	k := pushKey{projectID, seq}
	if id, ok := r.pushes[k]; ok {
		return id, true, nil
	}
	return lookup(r.pushes, k, func() (int64, error) { return r.store.FindPush(ctx, projectID, seq) })
}

// CommsProfile returns the project's comms profile, creating an empty one so
// child rows always have a parent.
func (r *Resolver) CommsProfile(ctx context.Context, projectID int64) (int64, error) {
	if id, ok := r.profiles[projectID]; ok {
		return id, nil
	}
	id, err := r.store.EnsureCommsProfile(ctx, projectID)
	if err != nil {
		return 0, err
	}
	r.profiles[projectID] = id
	return id, nil
}

// The Remember methods record ids written by the People, Projects, Objectives,
// Pushes and CommsProfile processors.

func (r *Resolver) RememberPerson(email string, id int64) {
	r.people[strings.ToLower(strings.TrimSpace(email))] = id
}

func (r *Resolver) RememberProject(slug string, id int64) {
	r.projects[strings.TrimSpace(slug)] = id
}

func (r *Resolver) RememberObjective(projectID int64, title string, id int64) {
	r.objectives[objectiveKey{projectID, strings.TrimSpace(title)}] = id
}

func (r *Resolver) RememberPush(projectID int64, seq int, id int64) {
	r.pushes[pushKey{projectID, seq}] = id
}

func (r *Resolver) RememberCommsProfile(projectID, id int64) {
	r.profiles[projectID] = id
}

func lookup[K comparable](cache map[K]int64, key K, find func() (int64, error)) (int64, bool, error) {
	id, err := find()
	if errors.Is(err, store.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	cache[key] = id
	return id, true, nil
}

package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashimport/internal/ingest/store"
)

type fakeStore struct {
	calls       map[string]int
	departments map[string]int64
	people      map[string]int64
	projects    map[string]int64
	objectives  map[string]int64
	pushes      map[int]int64
	profiles    map[int64]int64
}

func newFake() *fakeStore {
	return &fakeStore{
		calls:       map[string]int{},
		departments: map[string]int64{},
		people:      map[string]int64{},
		projects:    map[string]int64{},
		objectives:  map[string]int64{},
		pushes:      map[int]int64{},
		profiles:    map[int64]int64{},
	}
}

func (f *fakeStore) UpsertDepartment(_ context.Context, code, name string) (int64, error) {
	f.calls["dept"]++
	if id, ok := f.departments[code]; ok {
		return id, nil
	}
	id := int64(len(f.departments) + 1)
	f.departments[code] = id
	return id, nil
}

func (f *fakeStore) FindPersonByEmail(_ context.Context, email string) (int64, error) {
	f.calls["person"]++
	if id, ok := f.people[email]; ok {
		return id, nil
	}
	return 0, store.ErrNotFound
}

func (f *fakeStore) FindProjectBySlug(_ context.Context, slug string) (int64, error) {
	f.calls["project"]++
	if id, ok := f.projects[slug]; ok {
		return id, nil
	}
	return 0, store.ErrNotFound
}

func (f *fakeStore) FindObjective(_ context.Context, _ int64, title string) (int64, error) {
	f.calls["objective"]++
	if id, ok := f.objectives[title]; ok {
		return id, nil
	}
	return 0, store.ErrNotFound
}

func (f *fakeStore) FindPush(_ context.Context, _ int64, seq int) (int64, error) {
	f.calls["push"]++
	if id, ok := f.pushes[seq]; ok {
		return id, nil
	}
	return 0, store.ErrNotFound
}

func (f *fakeStore) EnsureCommsProfile(_ context.Context, projectID int64) (int64, error) {
	f.calls["profile"]++
	if id, ok := f.profiles[projectID]; ok {
		return id, nil
	}
	id := projectID * 10
	f.profiles[projectID] = id
	return id, nil
}

func sp(s string) *string { return &s }

func TestDepartment_CachesAndCanonicalizes(t *testing.T) {
	ctx := context.Background()
	fs := newFake()
	r := New(fs)

	id, err := r.Department(ctx, sp(" eng "))
	require.NoError(t, err)
	require.NotNil(t, id)

	again, err := r.Department(ctx, sp("ENG"))
	require.NoError(t, err)
	assert.Equal(t, *id, *again)
	assert.Equal(t, 1, fs.calls["dept"])

	none, err := r.Department(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
	none, err = r.Department(ctx, sp("  "))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPerson_LookupOnlyAndMissesNotCached(t *testing.T) {
	ctx := context.Background()
	fs := newFake()
	r := New(fs)

	_, ok, err := r.Person(ctx, "jane@x.org")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, fs.people, "lookup must not create")

	fs.people["jane@x.org"] = 4
	id, ok, err := r.Person(ctx, "Jane@X.org ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 4, id)

	_, _, err = r.Person(ctx, "jane@x.org")
	require.NoError(t, err)
	assert.Equal(t, 2, fs.calls["person"])
}

func TestRemembered_SkipStore(t *testing.T) {
	ctx := context.Background()
	fs := newFake()
	r := New(fs)

	r.RememberProject("demo", 1)
	r.RememberObjective(1, "Grow", 2)
	r.RememberPush(1, 3, 5)
	r.RememberPerson("A@x.org", 9)
	r.RememberCommsProfile(1, 7)

	id, ok, err := r.Project(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 1, id)

	id, ok, _ = r.Objective(ctx, 1, " Grow ")
	assert.True(t, ok)
	assert.EqualValues(t, 2, id)

	id, ok, _ = r.Push(ctx, 1, 3)
	assert.True(t, ok)
	assert.EqualValues(t, 5, id)

	id, ok, _ = r.Person(ctx, "a@x.org")
	assert.True(t, ok)
	assert.EqualValues(t, 9, id)

	id, err = r.CommsProfile(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)

	assert.Empty(t, fs.calls)
}

func TestCommsProfile_Ensures(t *testing.T) {
	ctx := context.Background()
	fs := newFake()
	r := New(fs)

	id, err := r.CommsProfile(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 30, id)
	_, err = r.CommsProfile(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, fs.calls["profile"])
}

func TestMissingObjectiveAndPush(t *testing.T) {
	ctx := context.Background()
	r := New(newFake())

	_, ok, err := r.Objective(ctx, 1, "Nope")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.Push(ctx, 1, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.Project(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeckhq/agentdeck/pkg/catalog"
	"github.com/agentdeckhq/agentdeck/pkg/project"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCreateAndGetProject(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	created, err := st.CreateProject(ctx, "webshop", "/home/u/code/webshop")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := st.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "webshop", got.Name)
	assert.Equal(t, "/home/u/code/webshop", got.Path)
	assert.False(t, got.ScannedAt.Valid)

	byPath, err := st.GetProjectByPath(ctx, "/home/u/code/webshop")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byPath.ID)
}

func TestCreateProjectRejectsDuplicatePath(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	_, err := st.CreateProject(ctx, "one", "/p")
	require.NoError(t, err)
	_, err = st.CreateProject(ctx, "two", "/p")
	assert.Error(t, err)
}

func TestGetProjectNotFound(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	_, err := st.GetProject(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = st.GetProjectByPath(ctx, "/nowhere")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListProjects(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	projects, err := st.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	_, err = st.CreateProject(ctx, "a", "/a")
	require.NoError(t, err)
	_, err = st.CreateProject(ctx, "b", "/b")
	require.NoError(t, err)

	projects, err = st.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestSaveAndDecodeProfile(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	proj, err := st.CreateProject(ctx, "svc", "/svc")
	require.NoError(t, err)

	// Unscanned projects decode to a nil profile.
	before, err := proj.Profile()
	require.NoError(t, err)
	assert.Nil(t, before)

	saved := &project.Profile{
		Languages:  []string{"go"},
		Frameworks: []string{"gin"},
		Type:       project.TypeService,
		Tooling:    []string{"docker"},
	}
	require.NoError(t, st.SaveProfile(ctx, proj.ID, saved))

	got, err := st.GetProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.True(t, got.ScannedAt.Valid)

	decoded, err := got.Profile()
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, saved.Languages, decoded.Languages)
	assert.Equal(t, saved.Frameworks, decoded.Frameworks)
	assert.Equal(t, saved.Type, decoded.Type)
}

func TestSaveProfileUnknownProject(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	err := st.SaveProfile(ctx, "missing", &project.Profile{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestItemLifecycle(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	proj, err := st.CreateProject(ctx, "p", "/p")
	require.NoError(t, err)

	reviewer := catalog.Item{Slug: "reviewer", Name: "Code Reviewer", Kind: catalog.KindAgent, Tier: catalog.TierBasic}
	writer := catalog.Item{Slug: "writer", Name: "Test Writer", Kind: catalog.KindAgent, Tier: catalog.TierAdvanced}

	require.NoError(t, st.AddItem(ctx, proj.ID, reviewer))
	require.NoError(t, st.AddItem(ctx, proj.ID, writer))

	// Duplicate adds violate the primary key.
	assert.Error(t, st.AddItem(ctx, proj.ID, reviewer))

	items, err := st.ListItems(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "reviewer", items[0].Slug)
	assert.Equal(t, "writer", items[1].Slug)

	names, err := st.ItemNames(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Code Reviewer", "Test Writer"}, names)

	require.NoError(t, st.RemoveItem(ctx, proj.ID, "reviewer"))
	names, err = st.ItemNames(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Test Writer"}, names)

	err = st.RemoveItem(ctx, proj.ID, "reviewer")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestActivityFeed(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	proj, err := st.CreateProject(ctx, "p", "/p")
	require.NoError(t, err)

	item := catalog.Item{Slug: "reviewer", Name: "Code Reviewer", Kind: catalog.KindAgent, Tier: catalog.TierBasic}
	require.NoError(t, st.AddItem(ctx, proj.ID, item))
	require.NoError(t, st.SaveProfile(ctx, proj.ID, &project.Profile{Type: project.TypeWeb}))
	require.NoError(t, st.RemoveItem(ctx, proj.ID, "reviewer"))

	entries, err := st.RecentActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, EventItemRemoved, entries[0].Event)
	assert.Equal(t, EventScanned, entries[1].Event)
	assert.Equal(t, EventItemAdded, entries[2].Event)
	assert.Equal(t, "Code Reviewer", entries[2].Detail)
}

func TestRecentActivityLimit(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	proj, err := st.CreateProject(ctx, "p", "/p")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, st.SaveProfile(ctx, proj.ID, &project.Profile{Type: project.TypeCLI}))
	}

	entries, err := st.RecentActivity(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

package menu

import (
	"context"
	"path/filepath"
	"testing"

	"caterpro-ai/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db.SQL)
}

func TestRepositorySaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := Menu{
		MenuTitle:   "Harvest Gala",
		Description: "Seasonal dinner service.",
		MainCourses: []string{"Braised short rib", "Roasted cauliflower steak"},
	}

	id, err := repo.Save(ctx, "Harvest Gala", m)
	require.NoError(t, err)
	require.NotZero(t, id)

	saved, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, "Harvest Gala", saved.Title)
	assert.Equal(t, m.MenuTitle, saved.Content.MenuTitle)
	assert.Equal(t, m.MainCourses, saved.Content.MainCourses)
	assert.False(t, saved.SavedAt.IsZero())
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := newTestRepo(t)

	saved, err := repo.Get(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestRepositoryListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, "First", Menu{MenuTitle: "First"})
	require.NoError(t, err)
	secondID, err := repo.Save(ctx, "Second", Menu{MenuTitle: "Second"})
	require.NoError(t, err)

	menus, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, menus, 2)
	assert.Equal(t, secondID, menus[0].ID)
	assert.Equal(t, "Second", menus[0].Title)
}

func TestRepositoryDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Save(ctx, "Ephemeral", Menu{MenuTitle: "Ephemeral"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))

	saved, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

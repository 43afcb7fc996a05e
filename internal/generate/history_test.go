package generate

import (
	"context"
	"path/filepath"
	"testing"

	"caterpro-ai/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) *HistoryRepository {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewHistoryRepository(db.SQL)
}

func TestHistoryRecordAndList(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()

	_, err := repo.Record(ctx, Request{
		EventType:           "Wedding Reception",
		GuestCount:          "51-100",
		Cuisine:             "French",
		DietaryRestrictions: []string{"Gluten-Free", "Vegan"},
	})
	require.NoError(t, err)

	id, err := repo.Record(ctx, Request{
		EventType:  "Corporate Lunch",
		GuestCount: "10-25",
		Cuisine:    "Any",
	})
	require.NoError(t, err)

	items, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, "Corporate Lunch", items[0].EventType)
	assert.Nil(t, items[0].DietaryRestrictions)
	assert.Equal(t, []string{"Gluten-Free", "Vegan"}, items[1].DietaryRestrictions)
}

func TestHistoryListRespectsLimit(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Record(ctx, Request{EventType: "Gala", GuestCount: "100+"})
		require.NoError(t, err)
	}

	items, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestHistoryTrimTo(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 5; i++ {
		id, err := repo.Record(ctx, Request{EventType: "Gala", GuestCount: "100+"})
		require.NoError(t, err)
		lastID = id
	}

	removed, err := repo.TrimTo(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	items, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, lastID, items[0].ID)
}

func TestHistoryClear(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()

	_, err := repo.Record(ctx, Request{EventType: "Gala", GuestCount: "100+"})
	require.NoError(t, err)

	require.NoError(t, repo.Clear(ctx))

	items, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

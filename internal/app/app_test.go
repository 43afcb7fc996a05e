package app

import (
	"context"
	"path/filepath"
	"testing"

	"caterpro-ai/internal/database"
	"caterpro-ai/internal/events"
	"caterpro-ai/internal/generate"
	"caterpro-ai/internal/llm"
	"caterpro-ai/internal/menu"
	"caterpro-ai/internal/metrics"
	"caterpro-ai/internal/share"
	"caterpro-ai/internal/shared"
	"caterpro-ai/internal/store"
	"caterpro-ai/internal/subscription"
	"caterpro-ai/internal/suppliers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTextGen struct {
	content string
}

func (m *mockTextGen) GenerateContent(_ context.Context, _ llm.Request) (llm.ContentResponse, error) {
	return llm.ContentResponse{
		Content: m.content,
		Usage:   shared.TokenUsage{PromptTokens: 10, CompletionTokens: 20, Model: "test-model"},
	}, nil
}

func newTestApp(t *testing.T, plan subscription.Plan, content string) (*App, *events.Bus) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := events.NewBus()
	st, err := store.New(filepath.Join(dir, "state.json"), bus, zap.NewNop())
	require.NoError(t, err)

	subs := subscription.NewManager(subscription.State{Plan: plan}, st, bus)
	menus := menu.NewRepository(db.SQL)
	generator := generate.NewGenerator(&mockTextGen{content: content})

	a := NewApp(
		generator,
		menus,
		generate.NewHistoryRepository(db.SQL),
		metrics.NewStore(db.SQL),
		subs,
		st,
		share.NewService(db.SQL, menus, "test-key", "https://example.com"),
		suppliers.NewFinder(&mockTextGen{content: `{"suppliers": []}`}, "http://unused.invalid"),
		zap.NewNop(),
	)
	return a, bus
}

const menuJSON = `{
	"menuTitle": "Test Menu",
	"description": "A test proposal.",
	"appetizers": ["Bruschetta"],
	"mainCourses": ["Roast Chicken"]
}`

func TestGenerateMenuRecordsHistoryAndMetrics(t *testing.T) {
	a, _ := newTestApp(t, subscription.PlanBusiness, menuJSON)
	ctx := context.Background()

	result, err := a.GenerateMenu(ctx, generate.Request{EventType: "Gala", GuestCount: "100+"})
	require.NoError(t, err)
	assert.Equal(t, "Test Menu", result.Menu.MenuTitle)
	assert.Equal(t, 2, result.TotalItems)

	items, err := a.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Gala", items[0].EventType)

	usage, err := a.DailyUsage(1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 1, usage[0].TotalExecution)
}

func TestGenerateMenuDailyLimit(t *testing.T) {
	a, bus := newTestApp(t, subscription.PlanFree, menuJSON)
	ctx := context.Background()

	prompts := 0
	bus.Subscribe(events.TopicUpgradePrompt, func(any) { prompts++ })

	for i := 0; i < subscription.MaxFreeDailyGenerations; i++ {
		_, err := a.GenerateMenu(ctx, generate.Request{EventType: "Gala"})
		require.NoError(t, err)
	}

	_, err := a.GenerateMenu(ctx, generate.Request{EventType: "Gala"})
	require.ErrorIs(t, err, ErrDailyLimitReached)
	assert.Equal(t, 1, prompts)

	// The denied attempt must not be recorded.
	items, err := a.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, items, subscription.MaxFreeDailyGenerations)
}

func TestSaveMenuGated(t *testing.T) {
	a, bus := newTestApp(t, subscription.PlanFree, menuJSON)
	ctx := context.Background()

	var denied subscription.Feature
	bus.Subscribe(events.TopicUpgradePrompt, func(payload any) {
		denied, _ = payload.(subscription.Feature)
	})

	_, err := a.SaveMenu(ctx, "Gala", menu.Menu{MenuTitle: "Gala"})
	require.ErrorIs(t, err, ErrFeatureLocked)
	assert.Equal(t, subscription.FeatureSaveMenus, denied)

	require.NoError(t, a.Subscription().SetPlan(subscription.PlanProfessional))
	id, err := a.SaveMenu(ctx, "Gala", menu.Menu{MenuTitle: "Gala"})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestShareMenuRequiresBusiness(t *testing.T) {
	a, _ := newTestApp(t, subscription.PlanProfessional, menuJSON)
	ctx := context.Background()

	id, err := a.SaveMenu(ctx, "Gala", menu.Menu{MenuTitle: "Gala"})
	require.NoError(t, err)

	_, err = a.ShareMenu(ctx, id)
	require.ErrorIs(t, err, ErrFeatureLocked)

	require.NoError(t, a.Subscription().SetPlan(subscription.PlanBusiness))
	link, err := a.ShareMenu(ctx, id)
	require.NoError(t, err)

	resolved, err := a.ResolveSharedMenu(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "Gala", resolved.Title)
}

func TestDeleteMenuAndClearHistory(t *testing.T) {
	a, _ := newTestApp(t, subscription.PlanBusiness, menuJSON)
	ctx := context.Background()

	_, err := a.GenerateMenu(ctx, generate.Request{EventType: "Gala"})
	require.NoError(t, err)

	id, err := a.SaveMenu(ctx, "Gala", menu.Menu{MenuTitle: "Gala"})
	require.NoError(t, err)

	require.NoError(t, a.DeleteMenu(ctx, id))
	menus, err := a.SavedMenus(ctx)
	require.NoError(t, err)
	assert.Empty(t, menus)

	require.NoError(t, a.ClearHistory(ctx))
	items, err := a.History(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRegenerateItemReplacesInPlace(t *testing.T) {
	a, _ := newTestApp(t, subscription.PlanBusiness, "Herb-Roasted Chicken with Pan Jus")
	ctx := context.Background()

	m := menu.Menu{MainCourses: []string{"Roast Chicken", "Baked Cod"}}
	require.NoError(t, a.RegenerateItem(ctx, &m, "mainCourses", 0, "make it fancier"))

	assert.Equal(t, []string{"Herb-Roasted Chicken with Pan Jus", "Baked Cod"}, m.MainCourses)
}

func TestRegenerateItemValidatesSection(t *testing.T) {
	a, _ := newTestApp(t, subscription.PlanBusiness, "X")
	ctx := context.Background()

	m := menu.Menu{MainCourses: []string{"Roast Chicken"}}
	require.Error(t, a.RegenerateItem(ctx, &m, "shoppingList", 0, "x"))
	require.Error(t, a.RegenerateItem(ctx, &m, "mainCourses", 5, "x"))
}

func TestAddCustomItemAppends(t *testing.T) {
	a, _ := newTestApp(t, subscription.PlanBusiness, "Burrata with Heirloom Tomatoes")
	ctx := context.Background()

	m := menu.Menu{Appetizers: []string{"Bruschetta"}}
	item, err := a.AddCustomItem(ctx, &m, "appetizers", "something with burrata")
	require.NoError(t, err)

	assert.Equal(t, "Burrata with Heirloom Tomatoes", item)
	assert.Equal(t, []string{"Bruschetta", "Burrata with Heirloom Tomatoes"}, m.Appetizers)
}

func TestFindSuppliersRequiresShoppingList(t *testing.T) {
	a, _ := newTestApp(t, subscription.PlanBusiness, menuJSON)

	_, err := a.FindSuppliers(context.Background(), &menu.Menu{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no shopping list")
}

func TestQuotaStatePersisted(t *testing.T) {
	a, _ := newTestApp(t, subscription.PlanFree, menuJSON)
	ctx := context.Background()

	_, err := a.GenerateMenu(ctx, generate.Request{EventType: "Gala"})
	require.NoError(t, err)

	reloaded := a.State().Load()
	assert.Equal(t, 1, reloaded.Subscription.GenerationsToday)
	assert.Equal(t, subscription.PlanFree, reloaded.Subscription.Plan)
}

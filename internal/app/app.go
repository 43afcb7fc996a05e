package app

import (
	"context"
	"errors"
	"fmt"

	"caterpro-ai/internal/generate"
	"caterpro-ai/internal/menu"
	"caterpro-ai/internal/metrics"
	"caterpro-ai/internal/share"
	"caterpro-ai/internal/store"
	"caterpro-ai/internal/subscription"
	"caterpro-ai/internal/suppliers"

	"go.uber.org/zap"
)

var (
	// ErrDailyLimitReached is returned when the free daily generation
	// quota is exhausted. The upgrade prompt has already been signalled.
	ErrDailyLimitReached = errors.New("daily generation limit reached")
	// ErrFeatureLocked is returned when the active plan does not unlock
	// the requested feature. The upgrade prompt has already been signalled.
	ErrFeatureLocked = errors.New("feature requires a higher plan")
)

// App wires the generation pipeline, entitlements and persistence into
// the operations the presentation layer calls.
type App struct {
	generator    *generate.Generator
	menus        *menu.Repository
	history      *generate.HistoryRepository
	metricsStore *metrics.Store
	subs         *subscription.Manager
	state        *store.Store
	shares       *share.Service
	finder       *suppliers.Finder
	logger       *zap.Logger
}

// NewApp creates and initializes a new App instance.
func NewApp(
	generator *generate.Generator,
	menus *menu.Repository,
	history *generate.HistoryRepository,
	metricsStore *metrics.Store,
	subs *subscription.Manager,
	state *store.Store,
	shares *share.Service,
	finder *suppliers.Finder,
	logger *zap.Logger,
) *App {
	return &App{
		generator:    generator,
		menus:        menus,
		history:      history,
		metricsStore: metricsStore,
		subs:         subs,
		state:        state,
		shares:       shares,
		finder:       finder,
		logger:       logger,
	}
}

// Subscription exposes the entitlement manager for plan queries and changes.
func (a *App) Subscription() *subscription.Manager {
	return a.subs
}

// State exposes the persisted application state store.
func (a *App) State() *store.Store {
	return a.state
}

// GenerateMenu runs the daily-quota check, generates a menu and records
// history and usage metrics. Remote errors come back unclassified; the
// caller classifies them where the result is displayed.
func (a *App) GenerateMenu(ctx context.Context, req generate.Request) (generate.Result, error) {
	permitted, err := a.subs.AttemptGeneration()
	if err != nil {
		a.logger.Warn("failed to persist generation attempt", zap.Error(err))
	}
	if !permitted {
		return generate.Result{}, ErrDailyLimitReached
	}

	result, err := a.generator.Generate(ctx, req)
	if err != nil {
		return generate.Result{}, err
	}

	if _, err := a.history.Record(ctx, req); err != nil {
		a.logger.Warn("failed to record generation history", zap.Error(err))
	}
	if err := a.metricsStore.RecordMeta(result.Meta); err != nil {
		a.logger.Warn("failed to record usage metrics", zap.Error(err))
	}

	a.logger.Info("menu generated",
		zap.String("eventType", req.EventType),
		zap.Int("totalItems", result.TotalItems),
		zap.Duration("latency", result.Meta.Latency),
	)
	return result, nil
}

// RegenerateItem replaces one entry of a list section in place, gated
// on the itemEditing feature.
func (a *App) RegenerateItem(ctx context.Context, m *menu.Menu, section string, index int, instruction string) error {
	if !a.subs.AttemptAccess(subscription.FeatureItemEditing) {
		return fmt.Errorf("%s: %w", subscription.FeatureItemEditing, ErrFeatureLocked)
	}

	existing := m.StringSection(section)
	if existing == nil {
		return fmt.Errorf("unknown menu section %q", section)
	}
	if index < 0 || index >= len(*existing) {
		return fmt.Errorf("no item at index %d in section %q", index, section)
	}

	item, meta, err := a.generator.RegenerateItem(ctx, (*existing)[index], instruction)
	if err != nil {
		return err
	}
	if err := a.metricsStore.RecordMeta(meta); err != nil {
		a.logger.Warn("failed to record usage metrics", zap.Error(err))
	}

	return m.ReplaceItem(section, index, item)
}

// AddCustomItem generates one new item from a free-text description and
// appends it to the section, gated on the customItemGeneration feature.
func (a *App) AddCustomItem(ctx context.Context, m *menu.Menu, section, description string) (string, error) {
	if !a.subs.AttemptAccess(subscription.FeatureCustomItemGeneration) {
		return "", fmt.Errorf("%s: %w", subscription.FeatureCustomItemGeneration, ErrFeatureLocked)
	}

	item, meta, err := a.generator.GenerateCustomItem(ctx, description, section)
	if err != nil {
		return "", err
	}
	if err := a.metricsStore.RecordMeta(meta); err != nil {
		a.logger.Warn("failed to record usage metrics", zap.Error(err))
	}

	if err := m.InsertItem(section, item); err != nil {
		return "", err
	}
	return item, nil
}

// SaveMenu persists the menu under a title, gated on the saveMenus feature.
func (a *App) SaveMenu(ctx context.Context, title string, m menu.Menu) (int64, error) {
	if !a.subs.AttemptAccess(subscription.FeatureSaveMenus) {
		return 0, fmt.Errorf("%s: %w", subscription.FeatureSaveMenus, ErrFeatureLocked)
	}
	return a.menus.Save(ctx, title, m)
}

// SavedMenus lists all saved menus, newest first.
func (a *App) SavedMenus(ctx context.Context) ([]menu.SavedMenu, error) {
	return a.menus.List(ctx)
}

// DeleteMenu removes a saved menu.
func (a *App) DeleteMenu(ctx context.Context, id int64) error {
	return a.menus.Delete(ctx, id)
}

// ShareMenu issues a signed share link for a saved menu, gated on the
// shareableLinks feature.
func (a *App) ShareMenu(ctx context.Context, menuID int64) (share.Link, error) {
	if !a.subs.AttemptAccess(subscription.FeatureShareableLinks) {
		return share.Link{}, fmt.Errorf("%s: %w", subscription.FeatureShareableLinks, ErrFeatureLocked)
	}
	return a.shares.Create(ctx, menuID)
}

// ResolveSharedMenu returns the menu a share token points to. Viewing a
// shared menu is not gated; only creating links is.
func (a *App) ResolveSharedMenu(ctx context.Context, token string) (*menu.SavedMenu, error) {
	return a.shares.Resolve(ctx, token)
}

// FindSuppliers matches the menu's shopping list against the supplier
// directory, gated on the findSuppliers feature.
func (a *App) FindSuppliers(ctx context.Context, m *menu.Menu) ([]suppliers.Supplier, error) {
	if !a.subs.AttemptAccess(subscription.FeatureFindSuppliers) {
		return nil, fmt.Errorf("%s: %w", subscription.FeatureFindSuppliers, ErrFeatureLocked)
	}
	if len(m.ShoppingList) == 0 {
		return nil, errors.New("menu has no shopping list to source")
	}

	ingredients := make([]string, 0, len(m.ShoppingList))
	for _, item := range m.ShoppingList {
		ingredients = append(ingredients, item.Name)
	}
	return a.finder.Find(ctx, ingredients)
}

// History lists recent generation parameters, newest first.
func (a *App) History(ctx context.Context, limit int) ([]generate.HistoryItem, error) {
	return a.history.ListRecent(ctx, limit)
}

// ClearHistory removes all generation history.
func (a *App) ClearHistory(ctx context.Context) error {
	return a.history.Clear(ctx)
}

// SetChecked toggles one preparation-checklist entry.
func (a *App) SetChecked(key string, checked bool) error {
	return a.state.SetChecked(key, checked)
}

// CleanupMetrics removes execution metrics older than the given number
// of days and reports how many were deleted.
func (a *App) CleanupMetrics(olderThanDays int) (int64, error) {
	return a.metricsStore.Cleanup(olderThanDays)
}

// DailyUsage reports token usage per day for the last N days.
func (a *App) DailyUsage(days int) ([]metrics.DailyUsage, error) {
	return a.metricsStore.GetDailyUsage(days)
}

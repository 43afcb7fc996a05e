package subscription

import (
	"testing"
	"time"

	"caterpro-ai/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPersister struct {
	saved []State
}

func (p *memPersister) SaveSubscription(s State) error {
	p.saved = append(p.saved, s)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestParsePlanMigration(t *testing.T) {
	cases := map[string]Plan{
		"free":         PlanFree,
		"starter":      PlanStarter,
		"professional": PlanProfessional,
		"business":     PlanBusiness,
		"premium":      PlanProfessional,
		"pro":          PlanBusiness,
		"enterprise":   PlanBusiness,
	}
	for name, want := range cases {
		got, ok := ParsePlan(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ParsePlan("platinum")
	assert.False(t, ok)
}

func TestFeatureGates(t *testing.T) {
	assert.False(t, PlanFree.CanAccess(FeatureUnlimitedGenerations))
	assert.True(t, PlanStarter.CanAccess(FeatureNoWatermark))
	assert.False(t, PlanStarter.CanAccess(FeatureSaveMenus))
	assert.True(t, PlanProfessional.CanAccess(FeatureSaveMenus))
	assert.False(t, PlanProfessional.CanAccess(FeatureShareableLinks))
	assert.True(t, PlanBusiness.CanAccess(FeatureShareableLinks))
	assert.True(t, PlanBusiness.CanAccess(FeatureNoWatermark), "higher tiers keep lower entitlements")

	assert.False(t, PlanBusiness.CanAccess(Feature("madeUpFeature")), "unknown features are denied")
}

func TestAttemptAccessPublishesUpgradePrompt(t *testing.T) {
	bus := events.NewBus()
	var prompted []any
	bus.Subscribe(events.TopicUpgradePrompt, func(p any) { prompted = append(prompted, p) })

	m := NewManager(State{Plan: PlanFree}, &memPersister{}, bus)
	assert.False(t, m.AttemptAccess(FeatureSaveMenus))
	require.Len(t, prompted, 1)
	assert.Equal(t, FeatureSaveMenus, prompted[0])

	m2 := NewManager(State{Plan: PlanBusiness}, &memPersister{}, bus)
	assert.True(t, m2.AttemptAccess(FeatureSaveMenus))
	assert.Len(t, prompted, 1, "granted access must not prompt")
}

func TestQuotaReset(t *testing.T) {
	today := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	persist := &memPersister{}
	m := NewManager(State{
		Plan:               PlanFree,
		GenerationsToday:   MaxFreeDailyGenerations,
		LastGenerationDate: "2026-08-27",
	}, persist, events.NewBus())
	m.now = fixedClock(today)

	ok, err := m.AttemptGeneration()
	require.NoError(t, err)
	assert.True(t, ok, "stale date must reset the count basis")

	state := m.State()
	assert.Equal(t, 1, state.GenerationsToday)
	assert.Equal(t, "2026-08-28", state.LastGenerationDate)
	assert.Len(t, persist.saved, 1)
}

func TestQuotaExhaustion(t *testing.T) {
	today := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	bus := events.NewBus()
	prompted := 0
	bus.Subscribe(events.TopicUpgradePrompt, func(any) { prompted++ })

	persist := &memPersister{}
	initial := State{
		Plan:               PlanFree,
		GenerationsToday:   MaxFreeDailyGenerations,
		LastGenerationDate: "2026-08-28",
	}
	m := NewManager(initial, persist, bus)
	m.now = fixedClock(today)

	ok, err := m.AttemptGeneration()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, prompted)
	assert.Equal(t, initial, m.State(), "denied attempt must not mutate state")
	assert.Empty(t, persist.saved, "denied attempt must not persist")
}

func TestUnlimitedPlansAlwaysPermit(t *testing.T) {
	today := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	persist := &memPersister{}
	m := NewManager(State{Plan: PlanStarter}, persist, events.NewBus())
	m.now = fixedClock(today)

	for i := 0; i < MaxFreeDailyGenerations+2; i++ {
		ok, err := m.AttemptGeneration()
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, "2026-08-28", m.State().LastGenerationDate)
	assert.Equal(t, -1, m.RemainingToday())
}

func TestRemainingToday(t *testing.T) {
	today := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	m := NewManager(State{
		Plan:               PlanFree,
		GenerationsToday:   2,
		LastGenerationDate: "2026-08-28",
	}, &memPersister{}, events.NewBus())
	m.now = fixedClock(today)
	assert.Equal(t, 1, m.RemainingToday())

	m.state.LastGenerationDate = "2026-08-01"
	assert.Equal(t, MaxFreeDailyGenerations, m.RemainingToday(), "stale date counts as zero used")
}

func TestSetPlanPersists(t *testing.T) {
	persist := &memPersister{}
	m := NewManager(State{Plan: PlanFree}, persist, events.NewBus())

	require.NoError(t, m.SetPlan(PlanProfessional))
	assert.Equal(t, PlanProfessional, m.Plan())
	require.Len(t, persist.saved, 1)
	assert.Equal(t, PlanProfessional, persist.saved[0].Plan)

	assert.Error(t, m.SetPlan(Plan("platinum")))
}

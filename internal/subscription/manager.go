package subscription

import (
	"fmt"
	"sync"
	"time"

	"caterpro-ai/internal/events"
)

// MaxFreeDailyGenerations is the number of generations a plan without
// unlimitedGenerations gets per calendar day.
const MaxFreeDailyGenerations = 3

const dateLayout = "2006-01-02"

// State is the persisted subscription snapshot. GenerationsToday is
// only meaningful while LastGenerationDate equals the current day;
// otherwise it is treated as zero.
type State struct {
	Plan               Plan   `json:"plan"`
	GenerationsToday   int    `json:"generationsToday"`
	LastGenerationDate string `json:"lastGenerationDate"`
}

// Persister writes the subscription state after every mutation.
type Persister interface {
	SaveSubscription(s State) error
}

// Manager tracks the active plan and the daily generation quota. All
// gated actions pass through AttemptAccess; all generations pass
// through AttemptGeneration.
type Manager struct {
	mu      sync.Mutex
	state   State
	persist Persister
	bus     *events.Bus
	now     func() time.Time
}

// NewManager creates a Manager seeded with previously persisted state.
func NewManager(initial State, persist Persister, bus *events.Bus) *Manager {
	if !initial.Plan.Valid() {
		initial.Plan = PlanFree
	}
	return &Manager{
		state:   initial,
		persist: persist,
		bus:     bus,
		now:     time.Now,
	}
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Plan returns the active plan.
func (m *Manager) Plan() Plan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Plan
}

// SetPlan switches the active plan and persists the new state.
func (m *Manager) SetPlan(p Plan) error {
	if !p.Valid() {
		return fmt.Errorf("unknown plan %q", p)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Plan = p
	if err := m.persist.SaveSubscription(m.state); err != nil {
		return fmt.Errorf("failed to persist plan change: %w", err)
	}
	return nil
}

// CanAccess reports whether the active plan unlocks the feature,
// without side effects.
func (m *Manager) CanAccess(f Feature) bool {
	return m.Plan().CanAccess(f)
}

// AttemptAccess permits the action when the feature gate passes.
// Denial publishes the upgrade-prompt event.
func (m *Manager) AttemptAccess(f Feature) bool {
	if m.CanAccess(f) {
		return true
	}
	m.bus.Publish(events.TopicUpgradePrompt, f)
	return false
}

// AttemptGeneration runs the daily-quota transition. A stale
// LastGenerationDate resets the effective count to zero before the
// check. Denial publishes the upgrade-prompt event and leaves the
// state untouched.
func (m *Manager) AttemptGeneration() (bool, error) {
	m.mu.Lock()

	today := m.now().Format(dateLayout)
	count := m.state.GenerationsToday
	if m.state.LastGenerationDate != today {
		count = 0
	}

	if m.state.Plan.CanAccess(FeatureUnlimitedGenerations) {
		m.state.GenerationsToday = count + 1
		m.state.LastGenerationDate = today
		err := m.persist.SaveSubscription(m.state)
		m.mu.Unlock()
		return true, err
	}

	if count >= MaxFreeDailyGenerations {
		m.mu.Unlock()
		m.bus.Publish(events.TopicUpgradePrompt, FeatureUnlimitedGenerations)
		return false, nil
	}

	m.state.GenerationsToday = count + 1
	m.state.LastGenerationDate = today
	err := m.persist.SaveSubscription(m.state)
	m.mu.Unlock()
	return true, err
}

// RemainingToday reports how many generations the current day still
// allows, or -1 for unlimited plans.
func (m *Manager) RemainingToday() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Plan.CanAccess(FeatureUnlimitedGenerations) {
		return -1
	}
	count := m.state.GenerationsToday
	if m.state.LastGenerationDate != m.now().Format(dateLayout) {
		count = 0
	}
	if remaining := MaxFreeDailyGenerations - count; remaining > 0 {
		return remaining
	}
	return 0
}

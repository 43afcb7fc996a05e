// Package store persists the application state (subscription and
// checked-item set) as a versioned JSON file. Unreadable state is
// replaced by the default rather than surfaced: losing a counter is
// cheaper than blocking startup.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"caterpro-ai/internal/events"
	"caterpro-ai/internal/subscription"

	"go.uber.org/zap"
)

// CurrentVersion is the schema version this release writes.
const CurrentVersion = 2

// AppState is the full persisted snapshot. Writes always cover the
// whole snapshot; there are no partial updates.
type AppState struct {
	Version      int                `json:"version"`
	Subscription subscription.State `json:"subscription"`
	CheckedItems map[string]bool    `json:"checkedItems"`
}

// DefaultState is the state for a fresh install or an unreadable
// file. New users start on the business tier so they can trial every
// feature before choosing a plan.
func DefaultState() AppState {
	return AppState{
		Version:      CurrentVersion,
		Subscription: subscription.State{Plan: subscription.PlanBusiness},
		CheckedItems: map[string]bool{},
	}
}

// Store owns the state file. All mutations go through Save, which
// writes the snapshot synchronously and then notifies listeners.
type Store struct {
	mu      sync.Mutex
	path    string
	current AppState
	bus     *events.Bus
	logger  *zap.Logger
}

// New creates the Store, ensures the parent directory exists, and
// loads (migrating if needed) whatever state is on disk.
func New(path string, bus *events.Bus, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	s := &Store{path: path, bus: bus, logger: logger}
	s.current = s.loadFromDisk()
	return s, nil
}

// Load returns the current state snapshot.
func (s *Store) Load() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.current)
}

// Save replaces the snapshot on disk and publishes a state-change
// event after the write completes.
func (s *Store) Save(state AppState) error {
	state.Version = CurrentVersion
	if state.CheckedItems == nil {
		state.CheckedItems = map[string]bool{}
	}

	s.mu.Lock()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	s.current = cloneState(state)
	s.mu.Unlock()

	s.bus.Publish(events.TopicStateChanged, state)
	return nil
}

// OnChange registers a listener for every completed Save and returns
// a disposer.
func (s *Store) OnChange(fn func(AppState)) func() {
	return s.bus.Subscribe(events.TopicStateChanged, func(payload any) {
		if state, ok := payload.(AppState); ok {
			fn(state)
		}
	})
}

// SaveSubscription persists a new subscription state, keeping the rest
// of the snapshot intact. It satisfies subscription.Persister.
func (s *Store) SaveSubscription(sub subscription.State) error {
	state := s.Load()
	state.Subscription = sub
	return s.Save(state)
}

// SetChecked records whether a checklist entry is ticked.
func (s *Store) SetChecked(key string, checked bool) error {
	state := s.Load()
	if checked {
		state.CheckedItems[key] = true
	} else {
		delete(state.CheckedItems, key)
	}
	return s.Save(state)
}

func (s *Store) loadFromDisk() AppState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read state file, using defaults", zap.Error(err))
		}
		return DefaultState()
	}

	state, err := migrate(data)
	if err != nil {
		s.logger.Warn("failed to parse state file, using defaults", zap.Error(err))
		return DefaultState()
	}
	return state
}

// migrate walks the schema chain from whatever version is on disk up
// to CurrentVersion.
func migrate(data []byte) (AppState, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return AppState{}, fmt.Errorf("state file is not JSON: %w", err)
	}

	for probe.Version < CurrentVersion {
		var err error
		switch probe.Version {
		case 0:
			data, err = migrateV0toV1(data)
		case 1:
			data, err = migrateV1toV2(data)
		}
		if err != nil {
			return AppState{}, err
		}
		probe.Version++
	}

	var state AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return AppState{}, fmt.Errorf("failed to parse state v%d: %w", CurrentVersion, err)
	}
	if state.CheckedItems == nil {
		state.CheckedItems = map[string]bool{}
	}
	plan, ok := subscription.ParsePlan(string(state.Subscription.Plan))
	if !ok {
		return AppState{}, fmt.Errorf("unknown plan %q in state file", state.Subscription.Plan)
	}
	state.Subscription.Plan = plan
	return state, nil
}

// migrateV0toV1 wraps the original bare subscription object into the
// versioned envelope.
func migrateV0toV1(data []byte) ([]byte, error) {
	var sub subscription.State
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("failed to parse legacy state: %w", err)
	}
	return json.Marshal(map[string]any{
		"version":      1,
		"subscription": sub,
	})
}

// migrateV1toV2 rewrites legacy plan names and adds the checked-item
// set.
func migrateV1toV2(data []byte) ([]byte, error) {
	var v1 struct {
		Subscription subscription.State `json:"subscription"`
		CheckedItems map[string]bool    `json:"checkedItems"`
	}
	if err := json.Unmarshal(data, &v1); err != nil {
		return nil, fmt.Errorf("failed to parse state v1: %w", err)
	}

	plan, ok := subscription.ParsePlan(string(v1.Subscription.Plan))
	if !ok {
		return nil, fmt.Errorf("unknown plan %q in state v1", v1.Subscription.Plan)
	}
	v1.Subscription.Plan = plan
	if v1.CheckedItems == nil {
		v1.CheckedItems = map[string]bool{}
	}

	return json.Marshal(AppState{
		Version:      2,
		Subscription: v1.Subscription,
		CheckedItems: v1.CheckedItems,
	})
}

func cloneState(state AppState) AppState {
	out := state
	out.CheckedItems = make(map[string]bool, len(state.CheckedItems))
	for k, v := range state.CheckedItems {
		out.CheckedItems[k] = v
	}
	return out
}

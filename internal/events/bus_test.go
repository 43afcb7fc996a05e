package events

import "testing"

func TestSubscribePublish(t *testing.T) {
	bus := NewBus()

	var got []any
	dispose := bus.Subscribe(TopicUpgradePrompt, func(payload any) {
		got = append(got, payload)
	})

	bus.Publish(TopicUpgradePrompt, "saveMenus")
	if len(got) != 1 || got[0] != "saveMenus" {
		t.Fatalf("expected one event with payload 'saveMenus', got %v", got)
	}

	// Other topics must not reach this subscriber.
	bus.Publish(TopicStateChanged, nil)
	if len(got) != 1 {
		t.Errorf("expected subscriber to ignore other topics, got %d events", len(got))
	}

	dispose()
	bus.Publish(TopicUpgradePrompt, "again")
	if len(got) != 1 {
		t.Errorf("expected no delivery after dispose, got %d events", len(got))
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	bus := NewBus()
	dispose := bus.Subscribe(TopicStateChanged, func(any) {})
	dispose()
	dispose() // second call must not panic

	fired := false
	bus.Subscribe(TopicStateChanged, func(any) { fired = true })
	bus.Publish(TopicStateChanged, nil)
	if !fired {
		t.Error("expected remaining subscriber to still receive events")
	}
}

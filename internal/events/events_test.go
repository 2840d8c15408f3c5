package events

import (
	"testing"
	"time"

	"github.com/foldlab/foldpipe/internal/models"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
		return nil
	}
}

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventSlotStatus)
	bus.PublishSlotStatus(models.SlotPrimary, models.SlotUploading, "Uploading...")

	ev, ok := receive(t, ch).(*SlotStatusEvent)
	if !ok {
		t.Fatal("Expected SlotStatusEvent")
	}
	if ev.Slot != models.SlotPrimary || ev.Status != models.SlotUploading {
		t.Errorf("got slot %v status %v", ev.Slot, ev.Status)
	}
	if ev.Message != "Uploading..." {
		t.Errorf("Message = %q", ev.Message)
	}
	if ev.Timestamp().IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch1 := bus.Subscribe(EventTrigger)
	ch2 := bus.Subscribe(EventTrigger)
	bus.PublishTrigger(false, "Processing...")

	for _, ch := range []<-chan Event{ch1, ch2} {
		ev := receive(t, ch).(*TriggerEvent)
		if ev.Enabled || ev.Label != "Processing..." {
			t.Errorf("got %+v", ev)
		}
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	all := bus.SubscribeAll()
	bus.PublishTheme(models.ThemeDark, "☀")
	bus.PublishRegion("output", "text", "hello")

	if receive(t, all).Type() != EventTheme {
		t.Error("first event should be theme")
	}
	region := receive(t, all).(*RegionEvent)
	if region.Region != "output" || region.Body != "hello" {
		t.Errorf("got %+v", region)
	}
}

func TestEventBus_TypeFiltering(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventRunState)
	bus.PublishSlotClear(models.SlotSecondary)

	select {
	case ev := <-ch:
		t.Errorf("unexpected event %v", ev.Type())
	case <-time.After(20 * time.Millisecond):
	}
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	_ = bus.Subscribe(EventRunState)
	bus.PublishRunState(models.PipelineRun{State: models.RunRunning})
	bus.PublishRunState(models.PipelineRun{State: models.RunSucceeded})

	if got := bus.GetDroppedEventCount(); got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}
}

func TestEventBus_CloseAndPublishAfterClose(t *testing.T) {
	bus := NewEventBus(10)
	ch := bus.Subscribe(EventTheme)
	bus.Close()
	bus.Close() // idempotent

	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
	bus.PublishTheme(models.ThemeLight, "☾") // must not panic

	late := bus.Subscribe(EventTheme)
	if _, ok := <-late; ok {
		t.Error("subscription after close should be closed")
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventSlotClear)
	bus.Unsubscribe(EventSlotClear, ch)
	bus.PublishSlotClear(models.SlotPrimary)

	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel should be closed and empty")
	}
}

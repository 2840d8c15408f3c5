package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/foldlab/foldpipe/internal/constants"
	"github.com/foldlab/foldpipe/internal/models"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventSlotStatus EventType = "slot_status" // Upload slot status changed
	EventSlotClear  EventType = "slot_clear"  // Slot input selection must be cleared
	EventRunState   EventType = "run_state"   // Pipeline run snapshot changed
	EventRegion     EventType = "region"      // A display region received new content
	EventTrigger    EventType = "trigger"     // Trigger control enabled/label changed
	EventTheme      EventType = "theme"       // Theme changed
	EventProgress   EventType = "progress"    // Upload bytes streamed
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// SlotStatusEvent reports a new status for an upload slot
type SlotStatusEvent struct {
	BaseEvent
	Slot    models.Slot
	Status  models.SlotStatus
	Message string
}

// SlotClearEvent asks the front end to drop the slot's selected file
type SlotClearEvent struct {
	BaseEvent
	Slot models.Slot
}

// RunStateEvent carries a pipeline run snapshot
type RunStateEvent struct {
	BaseEvent
	Run models.PipelineRun
}

// RegionEvent carries the full content of one display region
type RegionEvent struct {
	BaseEvent
	Region string // "status", "output", "steps"
	Kind   string // "empty", "text", "markup", "progress"
	Body   string
}

// TriggerEvent reports the state of the run trigger control
type TriggerEvent struct {
	BaseEvent
	Enabled bool
	Label   string
}

// ThemeEvent reports the active theme and its indicator icon
type ThemeEvent struct {
	BaseEvent
	Theme models.Theme
	Icon  string
}

// ProgressEvent reports bytes streamed for an upload
type ProgressEvent struct {
	BaseEvent
	Slot    models.Slot
	Stage   string
	Current int64
	Total   int64
}

// Fraction is Current/Total clamped to [0,1], zero when Total is unknown.
func (e *ProgressEvent) Fraction() float64 {
	if e.Total <= 0 {
		return 0
	}
	f := float64(e.Current) / float64(e.Total)
	if f > 1 {
		return 1
	}
	return f
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking. Events for a
// full subscriber are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishSlotStatus is a convenience method for publishing slot status events
func (eb *EventBus) PublishSlotStatus(slot models.Slot, status models.SlotStatus, message string) {
	eb.Publish(&SlotStatusEvent{
		BaseEvent: newBase(EventSlotStatus),
		Slot:      slot,
		Status:    status,
		Message:   message,
	})
}

// PublishSlotClear is a convenience method for publishing slot clear events
func (eb *EventBus) PublishSlotClear(slot models.Slot) {
	eb.Publish(&SlotClearEvent{BaseEvent: newBase(EventSlotClear), Slot: slot})
}

// PublishRunState is a convenience method for publishing run snapshots
func (eb *EventBus) PublishRunState(run models.PipelineRun) {
	eb.Publish(&RunStateEvent{BaseEvent: newBase(EventRunState), Run: run})
}

// PublishRegion is a convenience method for publishing region content
func (eb *EventBus) PublishRegion(region, kind, body string) {
	eb.Publish(&RegionEvent{
		BaseEvent: newBase(EventRegion),
		Region:    region,
		Kind:      kind,
		Body:      body,
	})
}

// PublishTrigger is a convenience method for publishing trigger state
func (eb *EventBus) PublishTrigger(enabled bool, label string) {
	eb.Publish(&TriggerEvent{BaseEvent: newBase(EventTrigger), Enabled: enabled, Label: label})
}

// PublishTheme is a convenience method for publishing theme changes
func (eb *EventBus) PublishTheme(theme models.Theme, icon string) {
	eb.Publish(&ThemeEvent{BaseEvent: newBase(EventTheme), Theme: theme, Icon: icon})
}

// PublishProgress is a helper to publish upload progress
func (eb *EventBus) PublishProgress(slot models.Slot, stage string, current, total int64) {
	eb.Publish(&ProgressEvent{
		BaseEvent: newBase(EventProgress),
		Slot:      slot,
		Stage:     stage,
		Current:   current,
		Total:     total,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
// This prevents memory leaks from abandoned subscriptions
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			close(subCh)
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel created by SubscribeAll
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			close(subCh)
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}

package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventReservationCreated       = "reservation_created"
	EventReservationStatusChanged = "reservation_status_changed"
	EventRoomStatusChanged        = "room_status_changed"
	EventServiceBookingCreated    = "service_booking_created"
	EventServiceBookingCancelled  = "service_booking_cancelled"
)

// AllTypes lists every event type the core publishes.
var AllTypes = []string{
	EventReservationCreated,
	EventReservationStatusChanged,
	EventRoomStatusChanged,
	EventServiceBookingCreated,
	EventServiceBookingCancelled,
}

// ReservationEventPayload is the reservation snapshot sent to consumers.
type ReservationEventPayload struct {
	ReservationID int64  `json:"reservation_id"`
	UserID        int64  `json:"user_id"`
	RoomID        int64  `json:"room_id"`
	Status        string `json:"status"`
	PrevStatus    string `json:"prev_status,omitempty"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	ChangedByID   int64  `json:"changed_by_id,omitempty"`
}

// RoomStatusPayload describes a room status change and what caused it.
type RoomStatusPayload struct {
	RoomID     int64  `json:"room_id"`
	Number     string `json:"number"`
	Status     string `json:"status"`
	PrevStatus string `json:"prev_status"`
	Cause      string `json:"cause"`
	Warning    string `json:"warning,omitempty"`
}

// ServiceBookingPayload describes a service booking change.
type ServiceBookingPayload struct {
	BookingID     int64  `json:"booking_id"`
	UserID        int64  `json:"user_id"`
	ServiceID     int64  `json:"service_id"`
	SlotID        int64  `json:"slot_id"`
	ReservationID int64  `json:"reservation_id"`
	Participants  int    `json:"participants"`
	Status        string `json:"status"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// Publisher is the producer side of the bus.
type Publisher interface {
	PublishJSON(eventType string, payload any) error
}

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	onError     func(event *Event, err error)
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// OnError installs a callback for handler failures.
func (b *EventBus) OnError(fn func(event *Event, err error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = fn
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run synchronously
// in subscription order; a failing handler does not stop the others.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	onError := b.onError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}

// PublishJSON serializes the payload and publishes an event. A nil bus drops
// the event.
func (b *EventBus) PublishJSON(eventType string, payload any) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// Nop discards events.
type Nop struct{}

func (Nop) PublishJSON(string, any) error { return nil }

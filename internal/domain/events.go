package domain

import "time"

type EventType string

const (
	EventBookingRequested EventType = "booking.requested"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingOnSite    EventType = "booking.on_site"
	EventBookingCancelled EventType = "booking.cancelled"
	EventBookingCompleted EventType = "booking.completed"
	EventBookingExpired   EventType = "booking.expired"
)

// BookingEvent is emitted on every accepted lifecycle transition. Delivery
// (email, push) is the external notifier's concern; the core only records facts.
type BookingEvent struct {
	Type        EventType `json:"type"`
	BookingID   int64     `json:"booking_id"`
	SlotID      int64     `json:"slot_id"`
	UserID      int64     `json:"user_id"`
	SlotStartAt time.Time `json:"slot_start_at"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

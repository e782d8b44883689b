package booking

import (
	"context"
	"time"

	"rentview/internal/domain"
)

// transitions is the closed lifecycle table. Anything not listed here is an
// illegal transition, including every move out of a terminal status.
var transitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:   {domain.BookingConfirmed, domain.BookingCancelled, domain.BookingExpired},
	domain.BookingConfirmed: {domain.BookingOnSite, domain.BookingCancelled, domain.BookingExpired},
	domain.BookingOnSite:    {domain.BookingCompleted},
}

func canTransition(from, to domain.BookingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

var eventForStatus = map[domain.BookingStatus]domain.EventType{
	domain.BookingConfirmed: domain.EventBookingConfirmed,
	domain.BookingOnSite:    domain.EventBookingOnSite,
	domain.BookingCancelled: domain.EventBookingCancelled,
	domain.BookingCompleted: domain.EventBookingCompleted,
	domain.BookingExpired:   domain.EventBookingExpired,
}

// Lifecycle guards the transition table and emits a domain event for every
// accepted transition.
type Lifecycle struct {
	sink EventSink
}

func NewLifecycle(sink EventSink) *Lifecycle {
	return &Lifecycle{sink: sink}
}

// Check validates a requested transition against the table.
func (l *Lifecycle) Check(from, to domain.BookingStatus) error {
	if !canTransition(from, to) {
		return ErrIllegalTransition
	}
	return nil
}

// Emitted publishes the event for a transition that was just applied.
// Publishing failures never fail the request; notification is best effort.
func (l *Lifecycle) Emitted(ctx context.Context, b *domain.Booking, slotStartAt time.Time, reason string) {
	if l.sink == nil {
		return
	}
	evType, ok := eventForStatus[b.Status]
	if !ok {
		return
	}
	_ = l.sink.Publish(ctx, domain.BookingEvent{
		Type:        evType,
		BookingID:   b.ID,
		SlotID:      b.SlotID,
		UserID:      b.UserID,
		SlotStartAt: slotStartAt,
		Reason:      reason,
		OccurredAt:  time.Now().UTC(),
	})
}

// Requested publishes the creation event; creation is not a transition so it
// sits outside the table.
func (l *Lifecycle) Requested(ctx context.Context, b *domain.Booking, slotStartAt time.Time) {
	if l.sink == nil {
		return
	}
	_ = l.sink.Publish(ctx, domain.BookingEvent{
		Type:        domain.EventBookingRequested,
		BookingID:   b.ID,
		SlotID:      b.SlotID,
		UserID:      b.UserID,
		SlotStartAt: slotStartAt,
		OccurredAt:  time.Now().UTC(),
	})
}

// MultiSink fans one event out to several sinks (in-app notifications, the
// live feed). Errors from one sink do not stop the others.
type MultiSink []EventSink

func (m MultiSink) Publish(ctx context.Context, ev domain.BookingEvent) error {
	for _, s := range m {
		_ = s.Publish(ctx, ev)
	}
	return nil
}

package booking

import (
	"context"
	"time"

	"rentview/internal/domain"
)

// BookingRepository is the ledger of booking requests and their lifecycle.
type BookingRepository interface {
	ReserveSlotAndCreate(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetActiveBySlot(ctx context.Context, slotID int64) (*domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, address string) (bool, error)
	CancelAndFreeSlot(ctx context.Context, id int64, from domain.BookingStatus, reason string, freeSlot bool) (bool, error)
	ListActiveOverdue(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	Expire(ctx context.Context, id int64) (bool, error)
}

// SlotReader resolves slot identity and timing for validation. Slot status
// mutation never goes through here; it happens only inside the ledger's
// transactional methods.
type SlotReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
}

// EventSink receives domain events on accepted transitions. Implementations
// must not block the request path.
type EventSink interface {
	Publish(ctx context.Context, ev domain.BookingEvent) error
}

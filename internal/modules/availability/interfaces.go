package availability

import (
	"context"
	"time"

	"rentview/internal/domain"
)

// WindowRepository persists admin-declared availability windows
type WindowRepository interface {
	Create(ctx context.Context, w *domain.Window) error
	Update(ctx context.Context, w *domain.Window) error
	GetByID(ctx context.Context, id int64) (*domain.Window, error)
	HasOverlap(ctx context.Context, start, end time.Time, excludeID int64) (bool, error)
	List(ctx context.Context, from, to time.Time) ([]domain.Window, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// SlotRepository persists the slots materialized from windows
type SlotRepository interface {
	UpsertBatch(ctx context.Context, slots []domain.Slot) error
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	ListFree(ctx context.Context, from time.Time) ([]domain.Slot, error)
	ListReserved(ctx context.Context) ([]domain.Slot, error)
	ListByWindow(ctx context.Context, windowID int64) ([]domain.Slot, error)
	CountReservedForWindow(ctx context.Context, windowID int64) (int64, error)
	DeleteFreeOutsideRange(ctx context.Context, windowID int64, start, end time.Time) error
	DeleteByWindow(ctx context.Context, windowID int64) error
}

// BookingCanceller releases active bookings when a window is force-deleted.
// Implemented by the booking service; an interface here avoids a module cycle.
type BookingCanceller interface {
	CancelBySlot(ctx context.Context, slotID int64, reason string) error
}

package availability

import (
	"context"
	"errors"
	"time"

	"rentview/internal/domain"
	"rentview/internal/repository"
)

type Service struct {
	windows      WindowRepository
	slots        SlotRepository
	canceller    BookingCanceller
	slotDuration time.Duration
	minLeadTime  time.Duration

	now func() time.Time
}

func NewService(
	windows WindowRepository,
	slots SlotRepository,
	canceller BookingCanceller,
	slotDuration time.Duration,
	minLeadTime time.Duration,
) *Service {
	return &Service{
		windows:      windows,
		slots:        slots,
		canceller:    canceller,
		slotDuration: slotDuration,
		minLeadTime:  minLeadTime,
		now:          time.Now,
	}
}

// CreateWindow persists a new availability window and materializes its slots.
// Windows in the same scheduling scope must not overlap.
func (s *Service) CreateWindow(ctx context.Context, userID int64, req CreateWindowRequest) (*domain.Window, error) {
	if !req.StartAt.Before(req.EndAt) {
		return nil, ErrValidation
	}

	overlap, err := s.windows.HasOverlap(ctx, req.StartAt, req.EndAt, 0)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrWindowOverlap
	}

	w := &domain.Window{
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		Active:    true,
		CreatedBy: userID,
	}
	if err := s.windows.Create(ctx, w); err != nil {
		return nil, err
	}

	if err := s.slots.UpsertBatch(ctx, Materialize(*w, s.slotDuration)); err != nil {
		return nil, err
	}
	return w, nil
}

// UpdateWindow re-validates overlap against all other windows and
// re-materializes slots. Free slots that fell outside the new bounds are
// dropped; reserved slots and their bookings are untouched.
func (s *Service) UpdateWindow(ctx context.Context, id int64, req UpdateWindowRequest) (*domain.Window, error) {
	if !req.StartAt.Before(req.EndAt) {
		return nil, ErrValidation
	}

	w, err := s.windows.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}

	overlap, err := s.windows.HasOverlap(ctx, req.StartAt, req.EndAt, id)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrWindowOverlap
	}

	w.StartAt = req.StartAt
	w.EndAt = req.EndAt
	if err := s.windows.Update(ctx, w); err != nil {
		return nil, s.mapNotFound(err)
	}

	if err := s.slots.DeleteFreeOutsideRange(ctx, id, req.StartAt, req.EndAt); err != nil {
		return nil, err
	}
	if err := s.slots.UpsertBatch(ctx, Materialize(*w, s.slotDuration)); err != nil {
		return nil, err
	}
	return w, nil
}

// ToggleActive flips the window's active flag. Slots of inactive windows
// disappear from availability queries but keep their reservations.
func (s *Service) ToggleActive(ctx context.Context, id int64) (*domain.Window, error) {
	w, err := s.windows.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if err := s.windows.SetActive(ctx, id, !w.Active); err != nil {
		return nil, s.mapNotFound(err)
	}
	w.Active = !w.Active
	return w, nil
}

// DeleteWindow removes a window and its slots. While any slot is reserved the
// delete is refused unless cascade is set, in which case the active bookings
// are cancelled first.
func (s *Service) DeleteWindow(ctx context.Context, id int64, cascade bool) error {
	if _, err := s.windows.GetByID(ctx, id); err != nil {
		return s.mapNotFound(err)
	}

	reserved, err := s.slots.CountReservedForWindow(ctx, id)
	if err != nil {
		return err
	}
	if reserved > 0 {
		if !cascade {
			return ErrWindowHasReservations
		}
		slots, err := s.slots.ListByWindow(ctx, id)
		if err != nil {
			return err
		}
		for _, slot := range slots {
			if slot.Status == domain.SlotFree {
				continue
			}
			if err := s.canceller.CancelBySlot(ctx, slot.ID, "availability window removed"); err != nil {
				return err
			}
		}
	}

	if err := s.slots.DeleteByWindow(ctx, id); err != nil {
		return err
	}
	return s.mapNotFound(s.windows.Delete(ctx, id))
}

func (s *Service) GetWindow(ctx context.Context, id int64) (*domain.Window, error) {
	w, err := s.windows.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return w, nil
}

func (s *Service) ListWindows(ctx context.Context, from, to time.Time) ([]domain.Window, error) {
	return s.windows.List(ctx, from, to)
}

// AvailableSlots lists free, bookable slots: active window, start at least the
// minimum lead time away, ordered by start time.
func (s *Service) AvailableSlots(ctx context.Context) ([]domain.Slot, error) {
	return s.slots.ListFree(ctx, s.now().Add(s.minLeadTime))
}

func (s *Service) UnavailableSlots(ctx context.Context) ([]domain.Slot, error) {
	return s.slots.ListReserved(ctx)
}

func (s *Service) mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

package booking

import (
	"context"
	"errors"
	"time"

	"rentview/internal/domain"
	"rentview/internal/repository"
)

const (
	reserveAttempts = 3
	reserveBackoff  = 50 * time.Millisecond
)

// Service coordinates slot reservation and the booking lifecycle. It is the
// sole writer of slot and booking mutations; handlers and other modules go
// through it.
type Service struct {
	bookings    BookingRepository
	slots       SlotReader
	lifecycle   *Lifecycle
	minLeadTime time.Duration
	expiryGrace time.Duration

	now func() time.Time
}

func NewService(
	bookings BookingRepository,
	slots SlotReader,
	lifecycle *Lifecycle,
	minLeadTime time.Duration,
	expiryGrace time.Duration,
) *Service {
	return &Service{
		bookings:    bookings,
		slots:       slots,
		lifecycle:   lifecycle,
		minLeadTime: minLeadTime,
		expiryGrace: expiryGrace,
		now:         time.Now,
	}
}

// RequestBooking validates the slot and reserves it atomically. If N clients
// race for one slot, exactly one gets the booking; the rest see
// ErrSlotUnavailable and must re-query.
func (s *Service) RequestBooking(ctx context.Context, userID int64, req CreateBookingRequest) (*domain.Booking, error) {
	slot, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if slot.StartAt.Before(s.now().Add(s.minLeadTime)) {
		return nil, ErrValidation
	}

	b := &domain.Booking{
		SlotID:  req.SlotID,
		UserID:  userID,
		Address: req.Address,
	}
	if err := s.withRetry(func() error {
		return s.bookings.ReserveSlotAndCreate(ctx, b)
	}); err != nil {
		if errors.Is(err, repository.ErrSlotNotFree) {
			return nil, ErrSlotUnavailable
		}
		if repository.IsTransient(err) {
			return nil, ErrStorageBusy
		}
		return nil, err
	}

	s.lifecycle.Requested(ctx, b, slot.StartAt)
	return b, nil
}

// withRetry re-runs the atomic reservation on transient storage failures
// (lock timeouts, deadlocks) with doubling backoff before giving up.
func (s *Service) withRetry(op func() error) error {
	backoff := reserveBackoff
	var err error
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		err = op()
		if err == nil || !repository.IsTransient(err) {
			return err
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return err
}

// UpdateStatus applies one transition named by the status parameter. The
// handler already rejected unknown status strings.
func (s *Service) UpdateStatus(ctx context.Context, id, actorID int64, actorRole string, to domain.BookingStatus, address string) (*domain.Booking, error) {
	switch to {
	case domain.BookingConfirmed:
		return s.Confirm(ctx, id, actorID, actorRole)
	case domain.BookingOnSite:
		return s.MarkOnSite(ctx, id, actorID, actorRole, address)
	case domain.BookingCompleted:
		return s.Complete(ctx, id, actorID, actorRole)
	case domain.BookingCancelled:
		return s.Cancel(ctx, id, actorID, actorRole, "")
	default:
		// pending is only set at creation, expired only by the sweep
		return nil, ErrIllegalTransition
	}
}

// Confirm moves PENDING -> CONFIRMED. Admin action.
func (s *Service) Confirm(ctx context.Context, id, actorID int64, actorRole string) (*domain.Booking, error) {
	if actorRole != string(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	return s.advance(ctx, id, domain.BookingPending, domain.BookingConfirmed, "")
}

// MarkOnSite moves CONFIRMED -> ON_SITE and records the meeting address.
func (s *Service) MarkOnSite(ctx context.Context, id, actorID int64, actorRole, address string) (*domain.Booking, error) {
	if actorRole != string(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	if address == "" {
		return nil, ErrValidation
	}
	return s.advance(ctx, id, domain.BookingConfirmed, domain.BookingOnSite, address)
}

// Complete moves ON_SITE -> COMPLETED once the visit finished.
func (s *Service) Complete(ctx context.Context, id, actorID int64, actorRole string) (*domain.Booking, error) {
	if actorRole != string(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	return s.advance(ctx, id, domain.BookingOnSite, domain.BookingCompleted, "")
}

func (s *Service) advance(ctx context.Context, id int64, from, to domain.BookingStatus, address string) (*domain.Booking, error) {
	b, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.Check(b.Status, to); err != nil {
		return nil, err
	}
	if b.Status != from {
		return nil, ErrIllegalTransition
	}

	applied, err := s.bookings.UpdateStatus(ctx, id, from, to, address)
	if err != nil {
		return nil, err
	}
	if !applied {
		// lost a race with another actor
		return nil, ErrIllegalTransition
	}

	b, err = s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.lifecycle.Emitted(ctx, b, s.slotStart(ctx, b.SlotID), "")
	return b, nil
}

// Cancel terminates a booking and frees its slot. Idempotent: cancelling an
// already-cancelled booking is a no-op success, so a double-confirming client
// never sees an error on the second call. Once the slot time has elapsed the
// booking can only expire, not cancel.
func (s *Service) Cancel(ctx context.Context, id, actorID int64, actorRole, reason string) (*domain.Booking, error) {
	b, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorRole != string(domain.RoleAdmin) && b.UserID != actorID {
		return nil, ErrForbidden
	}

	if b.Status == domain.BookingCancelled {
		return b, nil
	}
	if b.Status != domain.BookingPending && b.Status != domain.BookingConfirmed {
		return nil, ErrIllegalTransition
	}

	slot, err := s.slots.GetByID(ctx, b.SlotID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if slot != nil && slot.StartAt.Before(s.now()) {
		return nil, ErrIllegalTransition
	}

	applied, err := s.bookings.CancelAndFreeSlot(ctx, id, b.Status, reason, slot != nil)
	if err != nil {
		return nil, err
	}
	if !applied {
		// concurrent cancel already won; treat it as success if terminal-cancelled
		b, err = s.getByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if b.Status == domain.BookingCancelled {
			return b, nil
		}
		return nil, ErrIllegalTransition
	}

	b, err = s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var slotStartAt time.Time
	if slot != nil {
		slotStartAt = slot.StartAt
	}
	s.lifecycle.Emitted(ctx, b, slotStartAt, reason)
	return b, nil
}

// CancelBySlot cancels whatever active booking holds the slot. Used by the
// availability module when a window is force-deleted; already-released slots
// are a no-op.
func (s *Service) CancelBySlot(ctx context.Context, slotID int64, reason string) error {
	b, err := s.bookings.GetActiveBySlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if b.Status == domain.BookingOnSite {
		// visit already in progress; leave it to complete
		return nil
	}

	applied, err := s.bookings.CancelAndFreeSlot(ctx, b.ID, b.Status, reason, false)
	if err != nil {
		return err
	}
	if applied {
		b.Status = domain.BookingCancelled
		s.lifecycle.Emitted(ctx, b, s.slotStart(ctx, slotID), reason)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id, actorID int64, actorRole string) (*domain.Booking, error) {
	b, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != string(domain.RoleAdmin) && b.UserID != actorID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListAll(ctx)
}

func (s *Service) ListByUser(ctx context.Context, userID, actorID int64, actorRole string) ([]domain.Booking, error) {
	if actorRole != string(domain.RoleAdmin) && userID != actorID {
		return nil, ErrForbidden
	}
	return s.bookings.ListByUser(ctx, userID)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	return s.bookings.ListByStatus(ctx, status)
}

func (s *Service) getByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) slotStart(ctx context.Context, slotID int64) time.Time {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return time.Time{}
	}
	return slot.StartAt
}

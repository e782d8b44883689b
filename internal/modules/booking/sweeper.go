package booking

import (
	"context"
	"log"

	"rentview/internal/domain"
)

// ExpireOverdue moves pending/confirmed bookings whose slot started more than
// the grace period ago to EXPIRED and frees their slots. It must run with a
// single owner; the status guard inside the ledger makes a duplicate sweep of
// the same booking a no-op regardless.
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.expiryGrace)

	overdue, err := s.bookings.ListActiveOverdue(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range overdue {
		applied, err := s.bookings.Expire(ctx, b.ID)
		if err != nil {
			log.Printf("expiry_sweep booking_id=%d error=%q", b.ID, err)
			continue
		}
		if !applied {
			continue
		}
		expired++

		b.Status = domain.BookingExpired
		s.lifecycle.Emitted(ctx, &b, s.slotStart(ctx, b.SlotID), "slot time passed without progression")
	}
	return expired, nil
}

package booking

import (
	"time"

	"rentview/internal/domain"
)

type CreateBookingRequest struct {
	SlotID  int64  `json:"slot_id" binding:"required" validate:"required,gt=0"`
	Address string `json:"address" validate:"max=500"`
}

type BookingResponse struct {
	ID                 int64     `json:"id"`
	SlotID             int64     `json:"slot_id"`
	UserID             int64     `json:"user_id"`
	Address            string    `json:"address,omitempty"`
	Status             string    `json:"status"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	RequestedAt        time.Time `json:"requested_at"`
	StatusUpdatedAt    time.Time `json:"status_updated_at"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		SlotID:             b.SlotID,
		UserID:             b.UserID,
		Address:            b.Address,
		Status:             string(b.Status),
		CancellationReason: b.CancellationReason,
		RequestedAt:        b.RequestedAt,
		StatusUpdatedAt:    b.StatusUpdatedAt,
	}
}

func toBookingResponses(bs []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bs))
	for i := range bs {
		out = append(out, toBookingResponse(&bs[i]))
	}
	return out
}

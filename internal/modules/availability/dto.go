package availability

import (
	"time"

	"rentview/internal/domain"
)

type CreateWindowRequest struct {
	StartAt time.Time `json:"start_at" binding:"required" validate:"required"`
	EndAt   time.Time `json:"end_at" binding:"required" validate:"required,gtfield=StartAt"`
}

type UpdateWindowRequest struct {
	StartAt time.Time `json:"start_at" binding:"required" validate:"required"`
	EndAt   time.Time `json:"end_at" binding:"required" validate:"required,gtfield=StartAt"`
}

// SlotResponse adds a monotonic version so clients can detect staleness
// instead of sleeping after mutations.
type SlotResponse struct {
	ID       int64     `json:"id"`
	WindowID int64     `json:"window_id"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	Status   string    `json:"status"`
	Version  int64     `json:"version"`
}

func toSlotResponse(s domain.Slot) SlotResponse {
	return SlotResponse{
		ID:       s.ID,
		WindowID: s.WindowID,
		StartAt:  s.StartAt,
		EndAt:    s.EndAt,
		Status:   string(s.Status),
		Version:  s.Version(),
	}
}

func toSlotResponses(slots []domain.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotResponse(s))
	}
	return out
}

package domain

import "time"

// Window is an admin-declared interval during which property viewings may be
// scheduled. Slots are derived from it; windows in the same scope never overlap.
type Window struct {
	ID        int64     `json:"id"`
	StartAt   time.Time `json:"start_at" validate:"required"`
	EndAt     time.Time `json:"end_at" validate:"required"`
	Active    bool      `json:"active"`
	CreatedBy int64     `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

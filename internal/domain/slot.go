package domain

import "time"

type SlotStatus string

const (
	SlotFree     SlotStatus = "free"
	SlotReserved SlotStatus = "reserved"
)

// Slot is one bookable sub-interval of a window. Slots are keyed by
// (window_id, start_at) so re-materializing a window never duplicates them.
type Slot struct {
	ID        int64      `json:"id"`
	WindowID  int64      `json:"window_id"`
	StartAt   time.Time  `json:"start_at"`
	EndAt     time.Time  `json:"end_at"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Version is a monotonic freshness marker for slot queries. Clients compare it
// instead of sleeping after mutations.
func (s Slot) Version() int64 { return s.UpdatedAt.UnixNano() }

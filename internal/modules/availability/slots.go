package availability

import (
	"time"

	"rentview/internal/domain"
)

// Materialize partitions [StartAt, EndAt) into consecutive slots of fixed
// duration, dropping any trailing remainder shorter than the duration. The
// function is pure: the same window always yields the identical slot set.
func Materialize(w domain.Window, slotDuration time.Duration) []domain.Slot {
	if slotDuration <= 0 || !w.StartAt.Before(w.EndAt) {
		return nil
	}

	var out []domain.Slot
	for start := w.StartAt; !start.Add(slotDuration).After(w.EndAt); start = start.Add(slotDuration) {
		out = append(out, domain.Slot{
			WindowID: w.ID,
			StartAt:  start,
			EndAt:    start.Add(slotDuration),
			Status:   domain.SlotFree,
		})
	}
	return out
}

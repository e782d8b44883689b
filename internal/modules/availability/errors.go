package availability

import "errors"

var (
	ErrValidation            = errors.New("validation error")
	ErrNotFound              = errors.New("window not found")
	ErrWindowOverlap         = errors.New("window overlaps an existing window")
	ErrWindowHasReservations = errors.New("window has reserved slots")
)

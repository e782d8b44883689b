package booking

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrNotFound          = errors.New("booking not found")
	ErrForbidden         = errors.New("forbidden")
	ErrStorageBusy       = errors.New("storage busy, retries exhausted")
)

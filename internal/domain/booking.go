package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingOnSite    BookingStatus = "on_site"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingExpired   BookingStatus = "expired"
)

// ParseBookingStatus maps a request parameter to a known status. Unknown values
// are rejected at the boundary rather than stored as free-form strings.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingOnSite,
		BookingCancelled, BookingCompleted, BookingExpired:
		return BookingStatus(s), true
	}
	return "", false
}

// IsTerminal reports whether no further transition may leave the status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted || s == BookingExpired
}

// IsActive reports whether the booking still holds its slot. At most one active
// booking may reference a slot at any time.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed || s == BookingOnSite
}

type Booking struct {
	ID                 int64         `json:"id"`
	SlotID             int64         `json:"slot_id" validate:"required"`
	UserID             int64         `json:"user_id" validate:"required"`
	Address            string        `json:"address,omitempty"`
	Status             BookingStatus `json:"status"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	RequestedAt        time.Time     `json:"requested_at"`
	StatusUpdatedAt    time.Time     `json:"status_updated_at"`

	Slot *Slot `json:"slot,omitempty"`
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTenant Role = "tenant"
)

package domain

import "time"

type NotificationType string

const (
	NotifBookingRequested NotificationType = "booking_requested"
	NotifBookingConfirmed NotificationType = "booking_confirmed"
	NotifBookingOnSite    NotificationType = "booking_on_site"
	NotifBookingCancelled NotificationType = "booking_cancelled"
	NotifBookingCompleted NotificationType = "booking_completed"
	NotifBookingExpired   NotificationType = "booking_expired"
)

// Notification is the in-app record written for each domain event so users see
// booking decisions without an external delivery channel.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

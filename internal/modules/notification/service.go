package notification

import (
	"context"
	"fmt"

	"rentview/internal/domain"
	"rentview/internal/repository"
)

// Service turns booking domain events into in-app notifications. Actual
// delivery channels (email, push) belong to the external notifier; this keeps
// an inbox the web client can poll.
type Service struct {
	repo *repository.NotificationRepository
}

func NewService(repo *repository.NotificationRepository) *Service {
	return &Service{repo: repo}
}

// Publish implements the booking event sink.
func (s *Service) Publish(ctx context.Context, ev domain.BookingEvent) error {
	notifType, title, message := render(ev)
	if notifType == "" {
		return nil
	}
	return s.repo.Create(ctx, &domain.Notification{
		UserID:  ev.UserID,
		Type:    notifType,
		Title:   title,
		Message: message,
	})
}

func render(ev domain.BookingEvent) (domain.NotificationType, string, string) {
	when := ev.SlotStartAt.Format("02.01.2006 15:04")
	switch ev.Type {
	case domain.EventBookingRequested:
		return domain.NotifBookingRequested, "Viewing requested",
			fmt.Sprintf("Your viewing request for %s was received and awaits confirmation", when)
	case domain.EventBookingConfirmed:
		return domain.NotifBookingConfirmed, "Viewing confirmed",
			fmt.Sprintf("Your viewing on %s was confirmed", when)
	case domain.EventBookingOnSite:
		return domain.NotifBookingOnSite, "Agent on site",
			fmt.Sprintf("The agent arrived for your viewing on %s", when)
	case domain.EventBookingCancelled:
		msg := fmt.Sprintf("Your viewing on %s was cancelled", when)
		if ev.Reason != "" {
			msg += ": " + ev.Reason
		}
		return domain.NotifBookingCancelled, "Viewing cancelled", msg
	case domain.EventBookingCompleted:
		return domain.NotifBookingCompleted, "Viewing completed",
			fmt.Sprintf("Your viewing on %s was completed", when)
	case domain.EventBookingExpired:
		return domain.NotifBookingExpired, "Viewing expired",
			fmt.Sprintf("Your viewing request for %s expired without confirmation", when)
	}
	return "", "", ""
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}

	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

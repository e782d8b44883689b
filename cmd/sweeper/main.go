package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"rentview/internal/config"
	"rentview/internal/database"
	"rentview/internal/modules/booking"
	"rentview/internal/modules/notification"
	"rentview/internal/repository"
)

// One-shot expiry sweep: pending/confirmed bookings whose slot started more
// than the grace period ago become EXPIRED and release their slot. Run it
// from a single cron so the sweep has one owner.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	cfg, err := config.LoadBookingRuntimeConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	lifecycle := booking.NewLifecycle(notification.NewService(notifRepo))
	service := booking.NewService(bookingRepo, slotRepo, lifecycle, cfg.MinLeadTime, cfg.ExpiryGrace)

	expired, err := service.ExpireOverdue(context.Background())
	if err != nil {
		log.Fatalf("expiry sweep failed: %v", err)
	}

	log.Printf("expiry sweep completed: expired=%d", expired)
}

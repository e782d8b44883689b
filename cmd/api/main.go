package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"rentview/internal/config"
	"rentview/internal/database"
	"rentview/internal/middleware"
	"rentview/internal/modules/availability"
	"rentview/internal/modules/booking"
	"rentview/internal/modules/live"
	"rentview/internal/modules/notification"
	jwtsvc "rentview/internal/pkg/jwt"
	"rentview/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	cfg, err := config.LoadBookingRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	windowRepo := repository.NewWindowRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	notifService := notification.NewService(notifRepo)
	notifHandler := notification.NewHandler(notifService)

	hub := live.NewHub()
	liveHandler := live.NewHandler(hub)

	lifecycle := booking.NewLifecycle(booking.MultiSink{notifService, hub})

	bookingService := booking.NewService(bookingRepo, slotRepo, lifecycle, cfg.MinLeadTime, cfg.ExpiryGrace)
	bookingHandler := booking.NewHandler(bookingService)

	availabilityService := availability.NewService(windowRepo, slotRepo, bookingService, cfg.SlotDuration, cfg.MinLeadTime)
	availabilityHandler := availability.NewHandler(availabilityService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			availabilityHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			notifHandler.RegisterRoutes(protected)
			liveHandler.RegisterRoutes(protected)
		}
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"time"

	"rentview/internal/database"
	"rentview/internal/domain"
	"rentview/internal/modules/availability"
	"rentview/internal/repository"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "rentview.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM slots")
	db.Exec("DELETE FROM availability_windows")

	ctx := context.Background()
	windowRepo := repository.NewWindowRepository(db)
	slotRepo := repository.NewSlotRepository(db)

	// A week of morning viewing windows starting two days out
	log.Println("Creating availability windows...")
	base := time.Now().AddDate(0, 0, 2).Truncate(24 * time.Hour)
	for day := 0; day < 7; day++ {
		start := base.AddDate(0, 0, day).Add(9 * time.Hour)
		w := &domain.Window{
			StartAt: start,
			EndAt:   start.Add(3 * time.Hour),
			Active:  true,
		}
		if err := windowRepo.Create(ctx, w); err != nil {
			log.Fatal("window create failed:", err)
		}
		if err := slotRepo.UpsertBatch(ctx, availability.Materialize(*w, 30*time.Minute)); err != nil {
			log.Fatal("slot materialize failed:", err)
		}
		log.Printf("window %d: %s - %s", w.ID, w.StartAt.Format("02.01 15:04"), w.EndAt.Format("15:04"))
	}

	log.Println("Seed completed")
}

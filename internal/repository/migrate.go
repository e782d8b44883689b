package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every table this service owns.
// The storage models are private, so migration lives next to them.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&windowModel{},
		&slotModel{},
		&bookingModel{},
		&notificationModel{},
	)
}

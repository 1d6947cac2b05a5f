package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or updates the relational schema
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&Flights{},
		&Passengers{},
		&Bookings{},
		&Decisions{},
		&NotificationJobs{},
		&AdminOverrides{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

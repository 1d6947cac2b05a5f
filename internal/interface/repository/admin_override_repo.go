package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
)

// GormAdminOverrideRepository implements the AdminOverrideRepository interface
type GormAdminOverrideRepository struct {
	db *gorm.DB
}

// NewGormAdminOverrideRepository creates a new GORM admin override repository
func NewGormAdminOverrideRepository(db *gorm.DB) repository.AdminOverrideRepository {
	return &GormAdminOverrideRepository{
		db: db,
	}
}

// AdminOverrides GORM model for database mapping
type AdminOverrides struct {
	ID               string    `gorm:"column:id;type:uuid;primaryKey"`
	FlightID         string    `gorm:"column:flight_id;type:uuid;index"`
	Reason           string    `gorm:"column:reason"`
	OriginalDecision string    `gorm:"column:original_decision"`
	OverriddenBy     string    `gorm:"column:overridden_by"`
	JobsEnqueued     int       `gorm:"column:jobs_enqueued"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name
func (AdminOverrides) TableName() string {
	return "admin_overrides"
}

// Create inserts an override record
func (r *GormAdminOverrideRepository) Create(ctx context.Context, override *entity.AdminOverride) error {
	model := AdminOverrides{
		ID:               override.ID,
		FlightID:         override.FlightID,
		Reason:           override.Reason,
		OriginalDecision: string(override.OriginalDecision),
		OverriddenBy:     override.OverriddenBy,
		JobsEnqueued:     override.JobsEnqueued,
		CreatedAt:        override.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

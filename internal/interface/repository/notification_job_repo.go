package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
)

var dueStatuses = []string{string(entity.JobPending), string(entity.JobRetrying)}

// GormNotificationJobRepository implements the NotificationJobRepository interface
type GormNotificationJobRepository struct {
	db *gorm.DB
}

// NewGormNotificationJobRepository creates a new GORM notification job repository
func NewGormNotificationJobRepository(db *gorm.DB) repository.NotificationJobRepository {
	return &GormNotificationJobRepository{
		db: db,
	}
}

// NotificationJobs GORM model for database mapping
type NotificationJobs struct {
	ID             string            `gorm:"column:id;type:uuid;primaryKey"`
	FlightID       string            `gorm:"column:flight_id;type:uuid;index"`
	BookingID      string            `gorm:"column:booking_id;type:uuid;index"`
	Channel        string            `gorm:"column:channel"`
	Status         string            `gorm:"column:status;index:idx_jobs_status_created,priority:1"`
	Payload        datatypes.JSONMap `gorm:"column:payload;type:jsonb"`
	IdempotencyKey string            `gorm:"column:idempotency_key;uniqueIndex"`
	RetryCount     int               `gorm:"column:retry_count"`
	ErrorMessage   string            `gorm:"column:error_message"`
	CreatedAt      time.Time         `gorm:"column:created_at;index:idx_jobs_status_created,priority:2"`
	UpdatedAt      time.Time         `gorm:"column:updated_at"`
}

// TableName overrides the default table name
func (NotificationJobs) TableName() string {
	return "notification_jobs"
}

// TryInsert relies on the unique idempotency key. A conflicting insert affects no rows.
func (r *GormNotificationJobRepository) TryInsert(ctx context.Context, job *entity.NotificationJob) (repository.InsertOutcome, error) {
	model := NotificationJobs{
		ID:             job.ID,
		FlightID:       job.FlightID,
		BookingID:      job.BookingID,
		Channel:        string(job.Channel),
		Status:         string(job.Status),
		Payload:        datatypes.JSONMap(job.Payload),
		IdempotencyKey: job.IdempotencyKey,
		RetryCount:     job.RetryCount,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return repository.Inserted, result.Error
	}
	if result.RowsAffected == 0 {
		return repository.AlreadyExists, nil
	}
	return repository.Inserted, nil
}

// FindDue returns PENDING and RETRYING jobs, oldest first
func (r *GormNotificationJobRepository) FindDue(ctx context.Context, limit int) ([]*entity.NotificationJob, error) {
	var models []NotificationJobs
	result := r.db.WithContext(ctx).
		Where("status IN ?", dueStatuses).
		Order("created_at ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toJobEntities(models), nil
}

// Claim is a conditional update. Losing the race affects no rows.
func (r *GormNotificationJobRepository) Claim(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&NotificationJobs{}).
		Where("id = ? AND status IN ?", id, dueStatuses).
		Updates(map[string]interface{}{
			"status":     string(entity.JobProcessing),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Complete stores the outcome of a delivery attempt
func (r *GormNotificationJobRepository) Complete(ctx context.Context, id string, update repository.JobUpdate) error {
	result := r.db.WithContext(ctx).
		Model(&NotificationJobs{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        string(update.Status),
			"retry_count":   update.RetryCount,
			"error_message": update.ErrorMessage,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification job %s not found", id)
	}
	return nil
}

// ResetStaleClaims hands PROCESSING jobs abandoned by a crashed worker back to the queue
func (r *GormNotificationJobRepository) ResetStaleClaims(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&NotificationJobs{}).
		Where("status = ? AND updated_at < ?", string(entity.JobProcessing), olderThan).
		Updates(map[string]interface{}{
			"status":     string(entity.JobRetrying),
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// HasSentSince reports whether any job for the flight reached SENT at or after since
func (r *GormNotificationJobRepository) HasSentSince(ctx context.Context, flightID string, since time.Time) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&NotificationJobs{}).
		Where("flight_id = ? AND status = ? AND updated_at >= ?", flightID, string(entity.JobSent), since).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// ListRecent returns the newest jobs first
func (r *GormNotificationJobRepository) ListRecent(ctx context.Context, limit int) ([]*entity.NotificationJob, error) {
	var models []NotificationJobs
	result := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toJobEntities(models), nil
}

func toJobEntities(models []NotificationJobs) []*entity.NotificationJob {
	jobs := make([]*entity.NotificationJob, 0, len(models))
	for _, m := range models {
		jobs = append(jobs, &entity.NotificationJob{
			ID:             m.ID,
			FlightID:       m.FlightID,
			BookingID:      m.BookingID,
			Channel:        entity.Channel(m.Channel),
			Status:         entity.JobStatus(m.Status),
			Payload:        map[string]interface{}(m.Payload),
			IdempotencyKey: m.IdempotencyKey,
			RetryCount:     m.RetryCount,
			ErrorMessage:   m.ErrorMessage,
			CreatedAt:      m.CreatedAt,
			UpdatedAt:      m.UpdatedAt,
		})
	}
	return jobs
}

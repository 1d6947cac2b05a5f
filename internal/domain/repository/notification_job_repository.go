package repository

import (
	"context"
	"time"

	"flightalert-service/internal/domain/entity"
)

// InsertOutcome tells whether TryInsert stored a new row
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	AlreadyExists
)

// JobUpdate is the result of one delivery attempt applied to a claimed job
type JobUpdate struct {
	Status       entity.JobStatus
	RetryCount   int
	ErrorMessage string
}

// NotificationJobRepository defines the durable job queue
type NotificationJobRepository interface {
	// TryInsert stores the job unless a job with the same idempotency key exists.
	TryInsert(ctx context.Context, job *entity.NotificationJob) (InsertOutcome, error)
	FindDue(ctx context.Context, limit int) ([]*entity.NotificationJob, error)
	// Claim moves a PENDING or RETRYING job to PROCESSING. False means another worker owns it.
	Claim(ctx context.Context, id string) (bool, error)
	Complete(ctx context.Context, id string, update JobUpdate) error
	ResetStaleClaims(ctx context.Context, olderThan time.Time) (int64, error)
	HasSentSince(ctx context.Context, flightID string, since time.Time) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.NotificationJob, error)
}

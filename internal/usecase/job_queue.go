package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
	"flightalert-service/pkg/metrics"
)

const (
	DefaultBatchSize = 50
	// StaleClaimAfter is how long a job may sit in PROCESSING before another pass reclaims it
	StaleClaimAfter = 5 * time.Minute
)

// EnqueueStatus tells whether an enqueue stored a new job
type EnqueueStatus string

const (
	Enqueued         EnqueueStatus = "ENQUEUED"
	BlockedDuplicate EnqueueStatus = "BLOCKED_DUPLICATE"
)

// EnqueueRequest describes one logical alert for one booking on one channel
type EnqueueRequest struct {
	FlightID       string
	BookingID      string
	Channel        entity.Channel
	Payload        map[string]interface{}
	IdempotencyKey string
}

// EnqueueResult is the outcome of an enqueue. JobID is empty for duplicates.
type EnqueueResult struct {
	Status EnqueueStatus
	JobID  string
}

// IdempotencyKey builds the key for a regular orchestrator run
func IdempotencyKey(requestID, bookingID string, channel entity.Channel) string {
	return fmt.Sprintf("%s_%s_%s", requestID, bookingID, channel)
}

// OverrideIdempotencyKey builds the key for an admin override run
func OverrideIdempotencyKey(requestID, bookingID string, channel entity.Channel) string {
	return "override_" + IdempotencyKey(requestID, bookingID, channel)
}

// JobOutcome is the result of processing a single job in a batch
type JobOutcome struct {
	JobID   string
	Status  entity.JobStatus
	Skipped bool
	Err     error
}

// BatchReport summarises one worker pass
type BatchReport struct {
	Fetched  int
	Outcomes []JobOutcome
}

// Count returns how many processed jobs ended in status
func (r BatchReport) Count(status entity.JobStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Skipped && o.Err == nil && o.Status == status {
			n++
		}
	}
	return n
}

// JobQueueOptions tune the worker pass
type JobQueueOptions struct {
	BatchSize int
	// StoreTimeout bounds each store call made while processing a job
	StoreTimeout time.Duration
}

// JobQueue is the durable notification queue with at-least-once delivery
type JobQueue struct {
	jobRepo      repository.NotificationJobRepository
	bookingRepo  repository.BookingRepository
	logRepo      repository.NotificationLogRepository
	dispatcher   *Dispatcher
	metrics      *metrics.Metrics
	logger       logger.Logger
	batchSize    int
	storeTimeout time.Duration
	now          func() time.Time
}

// NewJobQueue creates a new job queue
func NewJobQueue(
	jobRepo repository.NotificationJobRepository,
	bookingRepo repository.BookingRepository,
	logRepo repository.NotificationLogRepository,
	dispatcher *Dispatcher,
	opts JobQueueOptions,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *JobQueue {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 10 * time.Second
	}
	return &JobQueue{
		jobRepo:      jobRepo,
		bookingRepo:  bookingRepo,
		logRepo:      logRepo,
		dispatcher:   dispatcher,
		metrics:      metrics,
		logger:       logger,
		batchSize:    opts.BatchSize,
		storeTimeout: opts.StoreTimeout,
		now:          time.Now,
	}
}

// Enqueue stores a PENDING job. A duplicate idempotency key is reported as
// BlockedDuplicate, not as an error.
func (q *JobQueue) Enqueue(ctx context.Context, req EnqueueRequest) (EnqueueResult, error) {
	if req.FlightID == "" || req.BookingID == "" || req.Channel == "" || req.IdempotencyKey == "" {
		return EnqueueResult{}, fmt.Errorf("%w: flight, booking, channel and idempotency key are required", entity.ErrInvalidParameter)
	}

	now := q.now()
	job := &entity.NotificationJob{
		ID:             uuid.NewString(),
		FlightID:       req.FlightID,
		BookingID:      req.BookingID,
		Channel:        req.Channel,
		Status:         entity.JobPending,
		Payload:        req.Payload,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	outcome, err := q.jobRepo.TryInsert(ctx, job)
	if err != nil {
		q.metrics.ErrorsCount.WithLabelValues("enqueue").Inc()
		return EnqueueResult{}, fmt.Errorf("failed to enqueue job: %w", err)
	}

	if outcome == repository.AlreadyExists {
		q.metrics.JobsDuplicate.Inc()
		q.logger.Warn("Duplicate job blocked by idempotency", "idempotencyKey", req.IdempotencyKey)
		return EnqueueResult{Status: BlockedDuplicate}, nil
	}

	q.metrics.JobsEnqueued.WithLabelValues(string(req.Channel)).Inc()
	q.logger.Debug("Job enqueued",
		"jobId", job.ID,
		"bookingId", req.BookingID,
		"channel", req.Channel)
	return EnqueueResult{Status: Enqueued, JobID: job.ID}, nil
}

// ProcessPendingJobs drains one batch of PENDING and RETRYING jobs, oldest first.
// A failure on one job is recorded in its outcome and never stops the batch.
func (q *JobQueue) ProcessPendingJobs(ctx context.Context) (BatchReport, error) {
	if reset, err := q.jobRepo.ResetStaleClaims(ctx, q.now().Add(-StaleClaimAfter)); err != nil {
		q.logger.Error("Failed to reset stale claims", "error", err)
	} else if reset > 0 {
		q.logger.Warn("Reset stale job claims", "count", reset)
	}

	jobs, err := q.jobRepo.FindDue(ctx, q.batchSize)
	if err != nil {
		q.metrics.ErrorsCount.WithLabelValues("fetch_jobs").Inc()
		return BatchReport{}, fmt.Errorf("failed to fetch pending jobs: %w", err)
	}
	q.metrics.BatchSize.Observe(float64(len(jobs)))

	report := BatchReport{Fetched: len(jobs)}
	if len(jobs) == 0 {
		return report, nil
	}

	q.logger.Info("Processing pending jobs", "count", len(jobs))
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		outcome := q.processJob(ctx, job)
		if outcome.Err != nil {
			q.metrics.ErrorsCount.WithLabelValues("process_job").Inc()
			q.logger.Error("Failed to process job", "jobId", job.ID, "error", outcome.Err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	q.logger.Info("Finished processing jobs",
		"sent", report.Count(entity.JobSent),
		"retrying", report.Count(entity.JobRetrying),
		"failed", report.Count(entity.JobFailed),
		"blocked", report.Count(entity.JobBlocked))
	return report, nil
}

func (q *JobQueue) processJob(ctx context.Context, job *entity.NotificationJob) JobOutcome {
	claimed, err := q.claim(ctx, job.ID)
	if err != nil {
		return JobOutcome{JobID: job.ID, Err: fmt.Errorf("claim: %w", err)}
	}
	if !claimed {
		q.logger.Debug("Job claimed by another worker", "jobId", job.ID)
		return JobOutcome{JobID: job.ID, Skipped: true}
	}

	sendErr := q.deliver(ctx, job)

	update := repository.JobUpdate{Status: entity.JobSent, RetryCount: job.RetryCount}
	switch {
	case sendErr == nil:
	case errors.Is(sendErr, entity.ErrNoRecipient):
		update.Status = entity.JobBlocked
		update.ErrorMessage = sendErr.Error()
	default:
		update.RetryCount = job.RetryCount + 1
		update.ErrorMessage = sendErr.Error()
		update.Status = entity.JobRetrying
		if update.RetryCount >= entity.MaxRetries {
			update.Status = entity.JobFailed
		}
	}

	// The attempt already happened, so its outcome is stored even if the pass was cancelled mid-send.
	outcomeCtx := context.WithoutCancel(ctx)
	q.appendLog(outcomeCtx, job, update)
	q.metrics.DeliveriesTotal.WithLabelValues(string(job.Channel), string(update.Status)).Inc()

	storeCtx, cancel := context.WithTimeout(outcomeCtx, q.storeTimeout)
	defer cancel()
	if err := q.jobRepo.Complete(storeCtx, job.ID, update); err != nil {
		return JobOutcome{JobID: job.ID, Status: update.Status, Err: fmt.Errorf("complete: %w", err)}
	}

	return JobOutcome{JobID: job.ID, Status: update.Status}
}

func (q *JobQueue) claim(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, q.storeTimeout)
	defer cancel()
	return q.jobRepo.Claim(ctx, id)
}

// deliver resolves the booking's passenger and hands the job to the dispatcher
func (q *JobQueue) deliver(ctx context.Context, job *entity.NotificationJob) error {
	lookupCtx, cancel := context.WithTimeout(ctx, q.storeTimeout)
	booking, err := q.bookingRepo.FindByID(lookupCtx, job.BookingID)
	cancel()
	if err != nil {
		return fmt.Errorf("resolve booking %s: %w", job.BookingID, err)
	}

	return q.dispatcher.Dispatch(ctx, repository.Delivery{
		JobID:     job.ID,
		BookingID: job.BookingID,
		Passenger: booking.Passenger,
		Channel:   job.Channel,
		Payload:   job.Payload,
	})
}

func (q *JobQueue) appendLog(ctx context.Context, job *entity.NotificationJob, update repository.JobUpdate) {
	status := update.Status
	if status == entity.JobRetrying {
		status = entity.JobFailed
	}
	entry := &entity.NotificationLog{
		ID:        uuid.NewString(),
		JobID:     job.ID,
		BookingID: job.BookingID,
		FlightID:  job.FlightID,
		Channel:   job.Channel,
		Status:    status,
		Attempt:   job.RetryCount + 1,
		Payload:   job.Payload,
		Error:     update.ErrorMessage,
		SentAt:    q.now(),
	}

	ctx, cancel := context.WithTimeout(ctx, q.storeTimeout)
	defer cancel()
	if err := q.logRepo.Append(ctx, entry); err != nil {
		q.metrics.ErrorsCount.WithLabelValues("append_log").Inc()
		q.logger.Error("Failed to append notification log", "jobId", job.ID, "error", err)
	}
}

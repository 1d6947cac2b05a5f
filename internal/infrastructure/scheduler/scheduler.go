package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/usecase"
	"flightalert-service/pkg/logger"
)

// JobProcessor drains the notification queue once
type JobProcessor interface {
	ProcessPendingJobs(ctx context.Context) (usecase.BatchReport, error)
}

// FlightSyncer pulls live flight state from the aviation provider
type FlightSyncer interface {
	Sync(ctx context.Context, simulate bool) (*usecase.SyncReport, error)
}

// Config holds the cron specs and per-run deadlines
type Config struct {
	WorkerSpec    string
	SyncSpec      string
	WorkerTimeout time.Duration
	SyncTimeout   time.Duration
}

// AlertScheduler runs the notification worker and the optional flight sync on cron specs
type AlertScheduler struct {
	cronEngine *cron.Cron
	jobs       JobProcessor
	sync       FlightSyncer
	cfg        Config
	logger     logger.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewAlertScheduler creates the scheduler. sync may be nil when no sync schedule is set.
func NewAlertScheduler(jobs JobProcessor, sync FlightSyncer, cfg Config, log logger.Logger) *AlertScheduler {
	if cfg.WorkerTimeout <= 0 {
		cfg.WorkerTimeout = 5 * time.Minute
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = 5 * time.Minute
	}

	cl := cronLogger{log}
	ctx, cancel := context.WithCancel(context.Background())
	return &AlertScheduler{
		// A pass still running when the next tick fires is not doubled up
		cronEngine: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs:   jobs,
		sync:   sync,
		cfg:    cfg,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the jobs and starts the cron engine
func (s *AlertScheduler) Start() error {
	s.logger.Info("Starting alert scheduler", "workerSpec", s.cfg.WorkerSpec, "syncSpec", s.cfg.SyncSpec)

	if s.cfg.WorkerSpec != "" {
		if _, err := s.cronEngine.AddFunc(s.cfg.WorkerSpec, s.RunWorker); err != nil {
			return fmt.Errorf("invalid worker schedule %q: %w", s.cfg.WorkerSpec, err)
		}
	}

	if s.cfg.SyncSpec != "" && s.sync != nil {
		if _, err := s.cronEngine.AddFunc(s.cfg.SyncSpec, s.RunSync); err != nil {
			return fmt.Errorf("invalid sync schedule %q: %w", s.cfg.SyncSpec, err)
		}
	}

	s.cronEngine.Start()
	s.logger.Info("Alert scheduler started", "entries", len(s.cronEngine.Entries()))
	return nil
}

// RunWorker performs one worker pass under the worker deadline
func (s *AlertScheduler) RunWorker() {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.WorkerTimeout)
	defer cancel()

	report, err := s.jobs.ProcessPendingJobs(ctx)
	if err != nil {
		s.logger.Error("Worker pass failed", "error", err)
		return
	}
	if report.Fetched > 0 {
		s.logger.Info("Worker pass finished",
			"fetched", report.Fetched,
			"sent", report.Count(entity.JobSent),
			"retrying", report.Count(entity.JobRetrying),
			"failed", report.Count(entity.JobFailed),
			"blocked", report.Count(entity.JobBlocked))
	}
}

// RunSync performs one flight sync under the sync deadline
func (s *AlertScheduler) RunSync() {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.SyncTimeout)
	defer cancel()

	report, err := s.sync.Sync(ctx, false)
	if err != nil {
		s.logger.Error("Flight sync failed", "error", err)
		return
	}
	s.logger.Info("Flight sync finished", "processed", report.Processed)
}

// Stop stops scheduling, cancels running passes and waits for them to return
func (s *AlertScheduler) Stop() {
	s.logger.Info("Stopping alert scheduler")
	ctx := s.cronEngine.Stop()
	s.cancel()
	<-ctx.Done()
	s.logger.Info("Alert scheduler stopped")
}

// cronLogger adapts logger.Logger to cron.Logger
type cronLogger struct {
	logger logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

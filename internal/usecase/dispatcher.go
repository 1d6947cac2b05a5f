package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
	"flightalert-service/pkg/metrics"
)

// DispatcherOptions tune delivery behaviour per call
type DispatcherOptions struct {
	// SendTimeout bounds a single notifier call
	SendTimeout time.Duration
	// RatePerSecond limits sends per channel; zero or less disables limiting
	RatePerSecond float64
	Burst         int
}

// Dispatcher routes a delivery to the notifier registered for its channel
type Dispatcher struct {
	notifiers map[entity.Channel]repository.Notifier
	limiters  map[entity.Channel]*rate.Limiter
	timeout   time.Duration
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewDispatcher creates a dispatcher over the given channel notifiers
func NewDispatcher(
	notifiers map[entity.Channel]repository.Notifier,
	opts DispatcherOptions,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Dispatcher {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	limiters := make(map[entity.Channel]*rate.Limiter, len(notifiers))
	for channel := range notifiers {
		limiters[channel] = rate.NewLimiter(limit, opts.Burst)
	}

	return &Dispatcher{
		notifiers: notifiers,
		limiters:  limiters,
		timeout:   opts.SendTimeout,
		metrics:   metrics,
		logger:    logger,
	}
}

// Dispatch delivers the message over its channel within the send timeout.
// A timeout or transport error is returned as-is so the queue can retry it.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery repository.Delivery) error {
	notifier, ok := d.notifiers[delivery.Channel]
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrNoNotifier, delivery.Channel)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.limiters[delivery.Channel].Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	err := notifier.Send(ctx, delivery)
	d.metrics.DeliveryDuration.WithLabelValues(string(delivery.Channel)).Observe(time.Since(start).Seconds())
	if err != nil {
		d.logger.Warn("Delivery failed",
			"jobId", delivery.JobID,
			"bookingId", delivery.BookingID,
			"channel", delivery.Channel,
			"error", err)
		return err
	}

	d.logger.Debug("Delivery succeeded",
		"jobId", delivery.JobID,
		"bookingId", delivery.BookingID,
		"channel", delivery.Channel)
	return nil
}

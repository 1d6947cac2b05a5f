package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
	"flightalert-service/templates"
)

// OverrideResult reports what an admin override did
type OverrideResult struct {
	OverrideID       string                 `json:"override_id"`
	JobsEnqueued     int                    `json:"jobs_enqueued"`
	Duplicates       int                    `json:"duplicates"`
	CooldownActive   bool                   `json:"cooldown_active"`
	OriginalDecision entity.DecisionOutcome `json:"original_decision,omitempty"`
}

// AdminOverride forces EMAIL notifications for a flight, bypassing a BLOCK decision.
// It still goes through the cooldown guard and the idempotent queue.
type AdminOverride struct {
	flightRepo   repository.FlightRepository
	bookingRepo  repository.BookingRepository
	decisionRepo repository.DecisionRepository
	overrideRepo repository.AdminOverrideRepository
	cooldown     *CooldownGuard
	queue        *JobQueue
	logger       logger.Logger
	newRequestID func() string
	now          func() time.Time
}

// NewAdminOverride creates the admin override use case
func NewAdminOverride(
	flightRepo repository.FlightRepository,
	bookingRepo repository.BookingRepository,
	decisionRepo repository.DecisionRepository,
	overrideRepo repository.AdminOverrideRepository,
	cooldown *CooldownGuard,
	queue *JobQueue,
	logger logger.Logger,
) *AdminOverride {
	return &AdminOverride{
		flightRepo:   flightRepo,
		bookingRepo:  bookingRepo,
		decisionRepo: decisionRepo,
		overrideRepo: overrideRepo,
		cooldown:     cooldown,
		queue:        queue,
		logger:       logger,
		newRequestID: uuid.NewString,
		now:          time.Now,
	}
}

// Override enqueues one EMAIL job per booking under the override_ key namespace
// and records the override with the decision it superseded.
func (a *AdminOverride) Override(ctx context.Context, flightID, reason, actor string) (OverrideResult, error) {
	flightID, reason = strings.TrimSpace(flightID), strings.TrimSpace(reason)
	if flightID == "" || reason == "" {
		return OverrideResult{}, fmt.Errorf("%w: flightId and reason are required", entity.ErrInvalidParameter)
	}

	flight, err := a.flightRepo.FindByID(ctx, flightID)
	if err != nil {
		return OverrideResult{}, err
	}

	result := OverrideResult{OverrideID: uuid.NewString()}
	latest, err := a.decisionRepo.LatestByFlight(ctx, flightID)
	if err != nil {
		return OverrideResult{}, fmt.Errorf("failed to load latest decision: %w", err)
	}
	if latest != nil {
		result.OriginalDecision = latest.Result.Decision
	}

	log := a.logger.With("flightId", flightID, "actor", actor, "overrideId", result.OverrideID)
	log.Info("Admin override requested", "reason", reason, "originalDecision", result.OriginalDecision)

	// Open product question: overrides bypass BLOCK but never the cooldown.
	cooling, err := a.cooldown.Active(ctx, flightID)
	if err != nil {
		return OverrideResult{}, fmt.Errorf("failed to check cooldown: %w", err)
	}
	result.CooldownActive = cooling

	var enqueueErr error
	if !cooling {
		enqueueErr = a.enqueue(ctx, flight, reason, &result)
	} else {
		log.Warn("Cooldown active, override enqueued nothing")
	}

	// Recorded even after a partial enqueue so every queued override job has an audit row.
	record := &entity.AdminOverride{
		ID:               result.OverrideID,
		FlightID:         flightID,
		Reason:           reason,
		OriginalDecision: result.OriginalDecision,
		OverriddenBy:     actor,
		JobsEnqueued:     result.JobsEnqueued,
		CreatedAt:        a.now(),
	}
	if err := a.overrideRepo.Create(context.WithoutCancel(ctx), record); err != nil {
		return result, errors.Join(enqueueErr, fmt.Errorf("failed to record override: %w", err))
	}
	if enqueueErr != nil {
		log.Error("Admin override partially enqueued", "jobsEnqueued", result.JobsEnqueued, "error", enqueueErr)
		return result, enqueueErr
	}

	log.Info("Admin override processed", "jobsEnqueued", result.JobsEnqueued, "duplicates", result.Duplicates)
	return result, nil
}

func (a *AdminOverride) enqueue(ctx context.Context, flight *entity.Flight, reason string, result *OverrideResult) error {
	bookings, err := a.bookingRepo.ListByFlight(ctx, flight.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch bookings: %w", err)
	}

	requestID := a.newRequestID()
	for _, booking := range bookings {
		tpl := templates.Resolve(booking.Passenger.Language(), templates.AdminOverride, entity.ChannelEmail)
		res, err := a.queue.Enqueue(ctx, EnqueueRequest{
			FlightID:  flight.ID,
			BookingID: booking.ID,
			Channel:   entity.ChannelEmail,
			Payload: map[string]interface{}{
				entity.PayloadMessage:      templates.Render(tpl, templates.Vars{"flightNumber": flight.FlightNumber, "reason": reason}),
				entity.PayloadType:         string(templates.AdminOverride),
				entity.PayloadFlightID:     flight.ID,
				entity.PayloadFlightNumber: flight.FlightNumber,
				entity.PayloadAdminReason:  reason,
			},
			IdempotencyKey: OverrideIdempotencyKey(requestID, booking.ID, entity.ChannelEmail),
		})
		if err != nil {
			return fmt.Errorf("booking %s: %w", booking.ID, err)
		}
		if res.Status == Enqueued {
			result.JobsEnqueued++
		} else {
			result.Duplicates++
		}
	}
	return nil
}

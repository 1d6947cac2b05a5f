package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
	"flightalert-service/pkg/metrics"
	"flightalert-service/templates"
)

// Orchestrator turns flight updates into notification jobs:
// triggers, cooldown, decision, enforcement, fan-out.
type Orchestrator struct {
	bookingRepo  repository.BookingRepository
	decisionRepo repository.DecisionRepository
	cooldown     *CooldownGuard
	engine       *DecisionEngine
	queue        *JobQueue
	metrics      *metrics.Metrics
	logger       logger.Logger
	newRequestID func() string
	now          func() time.Time
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	bookingRepo repository.BookingRepository,
	decisionRepo repository.DecisionRepository,
	cooldown *CooldownGuard,
	engine *DecisionEngine,
	queue *JobQueue,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		bookingRepo:  bookingRepo,
		decisionRepo: decisionRepo,
		cooldown:     cooldown,
		engine:       engine,
		queue:        queue,
		metrics:      metrics,
		logger:       logger,
		newRequestID: uuid.NewString,
		now:          time.Now,
	}
}

// ProcessFlightUpdate evaluates one flight update. It returns nil when no trigger
// fired or the flight is cooling down, and the recorded decision otherwise, even
// when enforcement stopped the fan-out.
func (o *Orchestrator) ProcessFlightUpdate(ctx context.Context, oldFlight *entity.Flight, newFlight entity.Flight, simulate bool) (*entity.DecisionResult, error) {
	log := o.logger.With("flightId", newFlight.ID, "flightNumber", newFlight.FlightNumber, "simulate", simulate)

	triggers := DetectTriggers(oldFlight, newFlight)
	if !triggers.Any() {
		o.metrics.SuppressedTotal.WithLabelValues("no_trigger").Inc()
		return nil, nil
	}

	cooling, err := o.cooldown.Active(ctx, newFlight.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check cooldown: %w", err)
	}
	if cooling {
		o.metrics.SuppressedTotal.WithLabelValues("cooldown").Inc()
		log.Info("Cooldown active, suppressing alert", "window", CooldownWindow.String())
		return nil, nil
	}

	passengerCount, err := o.bookingRepo.CountByFlight(ctx, newFlight.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	disruption := entity.DisruptionContext{
		FlightID:       newFlight.ID,
		FlightStatus:   newFlight.Status,
		DelayMinutes:   newFlight.DelayMinutes,
		PassengerCount: int(passengerCount),
		// Not computed yet: any SENT job in the last 10 minutes already trips the cooldown above.
		AlertsSentLast10Min: 0,
		GateChange:          triggers.GateChange,
		TerminalChange:      triggers.TerminalChange,
		IsSimulation:        simulate,
	}

	result := o.engine.Evaluate(disruption)
	record := &entity.Decision{
		ID:        uuid.NewString(),
		FlightID:  newFlight.ID,
		Result:    result,
		Context:   disruption,
		CreatedAt: o.now(),
	}
	if err := o.decisionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}
	o.metrics.DecisionsTotal.WithLabelValues(string(result.Decision), string(result.Severity)).Inc()
	log.Info("Decision recorded",
		"decision", result.Decision,
		"severity", result.Severity,
		"riskScore", result.RiskScore,
		"reason", result.Reason)

	// Cancellations go out even when blocked. Open product question, kept as is.
	if result.Decision == entity.DecisionBlock && newFlight.Status != entity.FlightCancelled {
		o.metrics.SuppressedTotal.WithLabelValues("blocked").Inc()
		log.Warn("Decision blocked notifications")
		return &result, nil
	}
	if result.Decision == entity.DecisionBlock {
		log.Warn("Blocked decision overridden for cancellation")
	}

	if simulate {
		o.metrics.SuppressedTotal.WithLabelValues("simulation").Inc()
		log.Info("Simulation run, no jobs enqueued")
		return &result, nil
	}

	if err := o.fanOut(ctx, newFlight, triggers.DisruptionType(), result, log); err != nil {
		return &result, err
	}
	return &result, nil
}

// fanOut enqueues one job per booking and channel. Enqueue failures are collected
// so one bad booking does not hide the others.
func (o *Orchestrator) fanOut(ctx context.Context, flight entity.Flight, kind templates.DisruptionType, result entity.DecisionResult, log logger.Logger) error {
	bookings, err := o.bookingRepo.ListByFlight(ctx, flight.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch bookings: %w", err)
	}

	requestID := o.newRequestID()
	var errs []error
	enqueued, duplicates := 0, 0

	for _, booking := range bookings {
		lang := booking.Passenger.Language()
		vars := templates.Vars{
			"flightNumber": flight.FlightNumber,
			"delayMinutes": strconv.Itoa(flight.DelayMinutes),
			"gate":         flight.Gate,
			"terminal":     flight.Terminal,
			"nextSteps":    templates.NextSteps(lang),
		}

		for _, channel := range entity.FanOutChannels {
			message := templates.Render(templates.Resolve(lang, kind, channel), vars)
			res, err := o.queue.Enqueue(ctx, EnqueueRequest{
				FlightID:  flight.ID,
				BookingID: booking.ID,
				Channel:   channel,
				Payload: map[string]interface{}{
					entity.PayloadMessage:      message,
					entity.PayloadType:         string(kind),
					entity.PayloadFlightID:     flight.ID,
					entity.PayloadFlightNumber: flight.FlightNumber,
					entity.PayloadDecision:     string(result.Decision),
					entity.PayloadRiskScore:    result.RiskScore,
					entity.PayloadSeverity:     string(result.Severity),
					entity.PayloadReason:       result.Reason,
				},
				IdempotencyKey: IdempotencyKey(requestID, booking.ID, channel),
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("booking %s channel %s: %w", booking.ID, channel, err))
				continue
			}
			if res.Status == BlockedDuplicate {
				duplicates++
				continue
			}
			enqueued++
		}
	}

	log.Info("Fan-out complete",
		"requestId", requestID,
		"bookings", len(bookings),
		"enqueued", enqueued,
		"duplicates", duplicates,
		"failed", len(errs))
	return errors.Join(errs...)
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
)

// FlightUpdateProcessor evaluates a flight update for notifications
type FlightUpdateProcessor interface {
	ProcessFlightUpdate(ctx context.Context, oldFlight *entity.Flight, newFlight entity.Flight, simulate bool) (*entity.DecisionResult, error)
}

// UpdateResult is the stored flight plus the decision its update produced, if any
type UpdateResult struct {
	Flight   entity.Flight          `json:"flight"`
	Decision *entity.DecisionResult `json:"decision,omitempty"`
}

// FlightService applies flight mutations and feeds them to the orchestrator
type FlightService struct {
	flightRepo repository.FlightRepository
	processor  FlightUpdateProcessor
	logger     logger.Logger
	now        func() time.Time
}

// NewFlightService creates a new flight service
func NewFlightService(flightRepo repository.FlightRepository, processor FlightUpdateProcessor, logger logger.Logger) *FlightService {
	return &FlightService{
		flightRepo: flightRepo,
		processor:  processor,
		logger:     logger,
		now:        time.Now,
	}
}

// UpdateFlight applies patch to the stored flight. In simulation the flight is not
// persisted and the orchestrator enqueues nothing.
func (s *FlightService) UpdateFlight(ctx context.Context, id string, patch entity.FlightPatch, simulate bool) (*UpdateResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: flight id is required", entity.ErrInvalidParameter)
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	oldFlight, err := s.flightRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, oldFlight, patch.Apply(*oldFlight), simulate)
}

func (s *FlightService) apply(ctx context.Context, oldFlight *entity.Flight, newFlight entity.Flight, simulate bool) (*UpdateResult, error) {
	if !simulate {
		newFlight.UpdatedAt = s.now()
		if err := s.flightRepo.Update(ctx, &newFlight); err != nil {
			return nil, fmt.Errorf("failed to update flight: %w", err)
		}
	}

	s.logger.Info("Flight update",
		"flightId", newFlight.ID,
		"oldStatus", oldFlight.Status,
		"newStatus", newFlight.Status,
		"oldDelay", oldFlight.DelayMinutes,
		"newDelay", newFlight.DelayMinutes,
		"simulate", simulate)

	decision, err := s.processor.ProcessFlightUpdate(ctx, oldFlight, newFlight, simulate)
	if err != nil {
		return &UpdateResult{Flight: newFlight, Decision: decision}, fmt.Errorf("failed to process flight update: %w", err)
	}
	return &UpdateResult{Flight: newFlight, Decision: decision}, nil
}

func validatePatch(patch entity.FlightPatch) error {
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: unknown flight status %q", entity.ErrInvalidParameter, *patch.Status)
	}
	if patch.DelayMinutes != nil && *patch.DelayMinutes < 0 {
		return fmt.Errorf("%w: delay_minutes must not be negative", entity.ErrInvalidParameter)
	}
	return nil
}

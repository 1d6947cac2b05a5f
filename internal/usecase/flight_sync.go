package usecase

import (
	"context"
	"fmt"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
)

// A delay at or above this many minutes marks a live flight DELAYED
const delayedStatusMinutes = 15

// Sync statuses reported per flight
const (
	SyncUpdated   = "UPDATED"
	SyncSimulated = "SIMULATED"
	SyncUnchanged = "UNCHANGED"
	SyncNoData    = "NO_DATA"
	SyncError     = "ERROR"
)

// SyncUpdate describes what a sync did to one flight
type SyncUpdate struct {
	FlightNumber string                 `json:"flight"`
	Status       string                 `json:"status"`
	NewStatus    entity.FlightStatus    `json:"new_status,omitempty"`
	DelayMinutes int                    `json:"delay_minutes"`
	Decision     *entity.DecisionResult `json:"mcp,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// SyncReport summarises one sync run
type SyncReport struct {
	Simulated bool         `json:"simulated"`
	Processed int          `json:"processed"`
	Updates   []SyncUpdate `json:"updates"`
}

// FlightSync pulls live flight state from the aviation data provider
type FlightSync struct {
	flightRepo repository.FlightRepository
	source     repository.AviationDataSource
	flights    *FlightService
	logger     logger.Logger
}

// NewFlightSync creates a new flight sync
func NewFlightSync(flightRepo repository.FlightRepository, source repository.AviationDataSource, flights *FlightService, logger logger.Logger) *FlightSync {
	return &FlightSync{
		flightRepo: flightRepo,
		source:     source,
		flights:    flights,
		logger:     logger,
	}
}

// MapProviderStatus converts a provider flight status and delay into ours
func MapProviderStatus(providerStatus string, delayMinutes int) entity.FlightStatus {
	var status entity.FlightStatus
	switch providerStatus {
	case "cancelled", "diverted":
		return entity.FlightCancelled
	case "incident":
		status = entity.FlightDelayed
	default:
		status = entity.FlightOnTime
	}
	if delayMinutes >= delayedStatusMinutes {
		status = entity.FlightDelayed
	}
	return status
}

// Sync refreshes every stored flight. Provider and per-flight failures are reported, not returned.
func (s *FlightSync) Sync(ctx context.Context, simulate bool) (*SyncReport, error) {
	flights, err := s.flightRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}

	report := &SyncReport{Simulated: simulate, Processed: len(flights)}
	s.logger.Info("Starting flight sync", "flights", len(flights), "simulate", simulate)

	for _, flight := range flights {
		update := s.syncOne(ctx, flight, simulate)
		if update.Status != SyncUnchanged {
			report.Updates = append(report.Updates, update)
		}
	}
	return report, nil
}

func (s *FlightSync) syncOne(ctx context.Context, flight *entity.Flight, simulate bool) SyncUpdate {
	update := SyncUpdate{FlightNumber: flight.FlightNumber}

	snapshot, err := s.source.GetFlightStatus(ctx, flight.FlightNumber)
	if err != nil {
		s.logger.Warn("Aviation data lookup failed", "flightNumber", flight.FlightNumber, "error", err)
		update.Status, update.Error = SyncError, err.Error()
		return update
	}
	if snapshot == nil {
		s.logger.Warn("No aviation data for flight", "flightNumber", flight.FlightNumber)
		update.Status = SyncNoData
		return update
	}

	newFlight := *flight
	newFlight.Status = MapProviderStatus(snapshot.ProviderStatus, snapshot.DelayMinutes)
	newFlight.DelayMinutes = snapshot.DelayMinutes
	// Providers often omit gate and terminal; keep what we know
	if snapshot.Gate != "" {
		newFlight.Gate = snapshot.Gate
	}
	if snapshot.Terminal != "" {
		newFlight.Terminal = snapshot.Terminal
	}
	update.NewStatus, update.DelayMinutes = newFlight.Status, newFlight.DelayMinutes

	if newFlight.Status == flight.Status &&
		newFlight.DelayMinutes == flight.DelayMinutes &&
		newFlight.Gate == flight.Gate &&
		newFlight.Terminal == flight.Terminal {
		update.Status = SyncUnchanged
		return update
	}

	res, err := s.flights.apply(ctx, flight, newFlight, simulate)
	if res != nil {
		update.Decision = res.Decision
	}
	if err != nil {
		s.logger.Error("Failed to apply synced flight", "flightNumber", flight.FlightNumber, "error", err)
		update.Status, update.Error = SyncError, err.Error()
		return update
	}

	update.Status = SyncUpdated
	if simulate {
		update.Status = SyncSimulated
	}
	return update
}

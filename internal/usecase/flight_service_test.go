package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightalert-service/internal/domain/entity"
)

func TestFlightService_UpdateFlight(t *testing.T) {
	h := newHarness(t, testBookings("f1", 1), onTimeFlight())

	status := entity.FlightDelayed
	delay := 45
	res, err := h.flightSvc.UpdateFlight(context.Background(), "f1", entity.FlightPatch{Status: &status, DelayMinutes: &delay}, false)
	require.NoError(t, err)
	require.NotNil(t, res.Decision)
	assert.Equal(t, entity.DecisionApprove, res.Decision.Decision)
	assert.Equal(t, 45, res.Flight.DelayMinutes)
	assert.Equal(t, "A1", res.Flight.Gate)

	stored, err := h.flights.FindByID(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, entity.FlightDelayed, stored.Status)
	assert.Equal(t, 45, stored.DelayMinutes)
	assert.Equal(t, h.clock, stored.UpdatedAt)
	assert.Equal(t, len(entity.FanOutChannels), h.jobs.count())
}

func TestFlightService_SimulateLeavesFlightUntouched(t *testing.T) {
	h := newHarness(t, testBookings("f1", 1), onTimeFlight())

	status := entity.FlightCancelled
	res, err := h.flightSvc.UpdateFlight(context.Background(), "f1", entity.FlightPatch{Status: &status}, true)
	require.NoError(t, err)
	require.NotNil(t, res.Decision)
	assert.Equal(t, entity.DecisionBlock, res.Decision.Decision)
	assert.Equal(t, entity.FlightCancelled, res.Flight.Status)

	stored, err := h.flights.FindByID(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, entity.FlightOnTime, stored.Status)
	assert.Equal(t, 0, h.jobs.count())
	assert.Equal(t, 1, h.decisions.count())
}

func TestFlightService_Validation(t *testing.T) {
	h := newHarness(t, nil, onTimeFlight())

	bad := entity.FlightStatus("BOARDING")
	_, err := h.flightSvc.UpdateFlight(context.Background(), "f1", entity.FlightPatch{Status: &bad}, false)
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)

	negative := -5
	_, err = h.flightSvc.UpdateFlight(context.Background(), "f1", entity.FlightPatch{DelayMinutes: &negative}, false)
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)

	_, err = h.flightSvc.UpdateFlight(context.Background(), "nope", entity.FlightPatch{}, false)
	assert.ErrorIs(t, err, entity.ErrFlightNotFound)
}

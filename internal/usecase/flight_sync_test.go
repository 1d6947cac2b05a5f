package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/pkg/logger"
)

type stubSource map[string]*entity.FlightSnapshot

func (s stubSource) GetFlightStatus(_ context.Context, flightNumber string) (*entity.FlightSnapshot, error) {
	if flightNumber == "ERR1" {
		return nil, errors.New("provider timeout")
	}
	return s[flightNumber], nil
}

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		provider string
		delay    int
		want     entity.FlightStatus
	}{
		{"scheduled", 0, entity.FlightOnTime},
		{"active", 14, entity.FlightOnTime},
		{"active", 15, entity.FlightDelayed},
		{"landed", 40, entity.FlightDelayed},
		{"incident", 0, entity.FlightDelayed},
		{"cancelled", 0, entity.FlightCancelled},
		{"cancelled", 90, entity.FlightCancelled},
		{"diverted", 20, entity.FlightCancelled},
		{"", 0, entity.FlightOnTime},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapProviderStatus(tt.provider, tt.delay), "%s/%d", tt.provider, tt.delay)
	}
}

func TestFlightSync_Sync(t *testing.T) {
	flights := []entity.Flight{
		{ID: "f1", FlightNumber: "AA100", Status: entity.FlightOnTime, Gate: "A1", Terminal: "1"},
		{ID: "f2", FlightNumber: "BA200", Status: entity.FlightOnTime, Gate: "B2", Terminal: "2"},
		{ID: "f3", FlightNumber: "NODATA", Status: entity.FlightOnTime},
		{ID: "f4", FlightNumber: "ERR1", Status: entity.FlightOnTime},
	}
	h := newHarness(t, testBookings("f1", 1), flights...)
	source := stubSource{
		"AA100": {FlightNumber: "AA100", ProviderStatus: "active", DelayMinutes: 50, Gate: "A1", Terminal: "1"},
		"BA200": {FlightNumber: "BA200", ProviderStatus: "scheduled", Gate: "B2", Terminal: "2"},
	}
	sync := NewFlightSync(h.flights, source, h.flightSvc, logger.NewNopLogger())

	report, err := sync.Sync(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Processed)
	require.Len(t, report.Updates, 3)

	updated := report.Updates[0]
	assert.Equal(t, "AA100", updated.FlightNumber)
	assert.Equal(t, SyncUpdated, updated.Status)
	assert.Equal(t, entity.FlightDelayed, updated.NewStatus)
	require.NotNil(t, updated.Decision)
	assert.Equal(t, entity.DecisionApprove, updated.Decision.Decision)

	assert.Equal(t, SyncNoData, report.Updates[1].Status)
	assert.Equal(t, SyncError, report.Updates[2].Status)
	assert.Equal(t, "provider timeout", report.Updates[2].Error)

	stored, err := h.flights.FindByID(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, 50, stored.DelayMinutes)
	assert.Equal(t, len(entity.FanOutChannels), h.jobs.count())
}

func TestFlightSync_Simulate(t *testing.T) {
	h := newHarness(t, testBookings("f1", 1), entity.Flight{ID: "f1", FlightNumber: "AA100", Status: entity.FlightOnTime})
	source := stubSource{"AA100": {FlightNumber: "AA100", ProviderStatus: "cancelled"}}
	sync := NewFlightSync(h.flights, source, h.flightSvc, logger.NewNopLogger())

	report, err := sync.Sync(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, report.Simulated)
	require.Len(t, report.Updates, 1)
	assert.Equal(t, SyncSimulated, report.Updates[0].Status)
	assert.Equal(t, entity.FlightCancelled, report.Updates[0].NewStatus)

	stored, err := h.flights.FindByID(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, entity.FlightOnTime, stored.Status)
	assert.Equal(t, 0, h.jobs.count())
}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightalert-service/internal/domain/entity"
)

func onTimeFlight() entity.Flight {
	return entity.Flight{ID: "f1", FlightNumber: "AA100", Status: entity.FlightOnTime, Gate: "A1", Terminal: "1"}
}

func TestOrchestrator_ModerateDelayFansOut(t *testing.T) {
	old := onTimeFlight()
	h := newHarness(t, testBookings("f1", 2), old)
	h.orchestrator.newRequestID = func() string { return "req-1" }

	updated := old
	updated.Status, updated.DelayMinutes = entity.FlightDelayed, 45

	result, err := h.orchestrator.ProcessFlightUpdate(context.Background(), &old, updated, false)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, entity.DecisionApprove, result.Decision)
	assert.Equal(t, entity.SeverityMedium, result.Severity)
	assert.InDelta(t, 0.4, result.RiskScore, 1e-9)

	require.Equal(t, 1, h.decisions.count())
	assert.Equal(t, 2, h.decisions.items[0].Context.PassengerCount)
	assert.False(t, h.decisions.items[0].Context.IsSimulation)

	require.Equal(t, 2*len(entity.FanOutChannels), h.jobs.count())
	first := h.jobs.jobs[0]
	assert.Equal(t, entity.ChannelInApp, first.Channel)
	assert.Equal(t, "req-1_booking-000_IN_APP", first.IdempotencyKey)
	assert.Equal(t, "Your flight AA100 is delayed by 45 minutes.", first.Message())
	assert.Equal(t, "DELAY", first.Payload[entity.PayloadType])
	assert.Equal(t, "APPROVE", first.Payload[entity.PayloadDecision])
	assert.Equal(t, "MEDIUM", first.Payload[entity.PayloadSeverity])

	email := h.jobs.jobs[1]
	assert.Equal(t, entity.ChannelEmail, email.Channel)
	assert.Equal(t, "Flight AA100 is delayed by 45 minutes.", email.Message())
}

func TestOrchestrator_CancellationOverridesBlock(t *testing.T) {
	old := onTimeFlight()
	h := newHarness(t, testBookings("f1", 1), old)

	updated := old
	updated.Status = entity.FlightCancelled

	result, err := h.orchestrator.ProcessFlightUpdate(context.Background(), &old, updated, false)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, entity.DecisionBlock, result.Decision)
	assert.Equal(t, entity.SeverityCritical, result.Severity)
	assert.Equal(t, "Flight cancelled.", result.Reason)

	require.Equal(t, len(entity.FanOutChannels), h.jobs.count())
	email := h.jobs.jobs[1]
	assert.Equal(t, "Flight AA100 has been CANCELLED. Next steps: Rebook via app or visit valid-url.com", email.Message())
}

func TestOrchestrator_BlockStopsNonCancelledFanOut(t *testing.T) {
	old := onTimeFlight()
	h := newHarness(t, testBookings("f1", 3), old)

	updated := old
	updated.Status, updated.DelayMinutes = entity.FlightDelayed, 130

	result, err := h.orchestrator.ProcessFlightUpdate(context.Background(), &old, updated, false)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, entity.DecisionBlock, result.Decision)
	assert.Equal(t, 1, h.decisions.count())
	assert.Equal(t, 0, h.jobs.count())
}

func TestOrchestrator_CooldownSuppressesSecondAlert(t *testing.T) {
	old := onTimeFlight()
	h := newHarness(t, testBookings("f1", 1), old)

	delayed := old
	delayed.Status, delayed.DelayMinutes = entity.FlightDelayed, 45
	_, err := h.orchestrator.ProcessFlightUpdate(context.Background(), &old, delayed, false)
	require.NoError(t, err)

	_, err = h.queue.ProcessPendingJobs(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(entity.FanOutChannels), h.jobs.byStatus(entity.JobSent))

	h.advance(5 * time.Minute)
	moved := delayed
	moved.Gate = "C3"
	result, err := h.orchestrator.ProcessFlightUpdate(context.Background(), &delayed, moved, false)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 1, h.decisions.count())
	assert.Equal(t, len(entity.FanOutChannels), h.jobs.count())

	h.advance(6 * time.Minute)
	result, err = h.orchestrator.ProcessFlightUpdate(context.Background(), &delayed, moved, false)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 2, h.decisions.count())
	assert.Equal(t, 2*len(entity.FanOutChannels), h.jobs.count())
}

func TestOrchestrator_SimulationRecordsDecisionOnly(t *testing.T) {
	old := onTimeFlight()
	h := newHarness(t, testBookings("f1", 2), old)

	updated := old
	updated.Status, updated.DelayMinutes = entity.FlightDelayed, 75

	result, err := h.orchestrator.ProcessFlightUpdate(context.Background(), &old, updated, true)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, entity.DecisionFlag, result.Decision)
	require.Equal(t, 1, h.decisions.count())
	assert.True(t, h.decisions.items[0].Context.IsSimulation)
	assert.Equal(t, 0, h.jobs.count())
}

func TestOrchestrator_NoTrigger(t *testing.T) {
	old := onTimeFlight()
	h := newHarness(t, testBookings("f1", 1), old)

	updated := old
	updated.DelayMinutes = 10

	result, err := h.orchestrator.ProcessFlightUpdate(context.Background(), &old, updated, false)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, h.decisions.count())
	assert.Equal(t, 0, h.jobs.count())
}

func TestOrchestrator_RerunWithSameRequestIDIsDeduplicated(t *testing.T) {
	old := onTimeFlight()
	h := newHarness(t, testBookings("f1", 2), old)
	h.orchestrator.newRequestID = func() string { return "fixed" }

	updated := old
	updated.Status = entity.FlightCancelled

	for i := 0; i < 2; i++ {
		_, err := h.orchestrator.ProcessFlightUpdate(context.Background(), &old, updated, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, h.decisions.count())
	assert.Equal(t, 2*len(entity.FanOutChannels), h.jobs.count())
}

func TestOrchestrator_BookingLookupFailure(t *testing.T) {
	old := onTimeFlight()
	h := newHarness(t, nil, old)
	h.bookings.err = errors.New("db down")

	updated := old
	updated.Status = entity.FlightCancelled

	result, err := h.orchestrator.ProcessFlightUpdate(context.Background(), &old, updated, false)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, h.jobs.count())
}

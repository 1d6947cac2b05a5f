package usecase

import (
	"flightalert-service/internal/domain/entity"
	"flightalert-service/templates"
)

// DelayThresholdMinutes is the delay at which passengers are first alerted
const DelayThresholdMinutes = 30

// Triggers are the disruption edges found between two flight snapshots
type Triggers struct {
	Delay          bool
	Cancellation   bool
	GateChange     bool
	TerminalChange bool
}

// Any reports whether at least one trigger fired
func (t Triggers) Any() bool {
	return t.Delay || t.Cancellation || t.GateChange || t.TerminalChange
}

// DisruptionType picks the message family, most severe first
func (t Triggers) DisruptionType() templates.DisruptionType {
	switch {
	case t.Cancellation:
		return templates.Cancelled
	case t.Delay:
		return templates.Delay
	default:
		return templates.GateChange
	}
}

// DetectTriggers compares the previous and the new snapshot of a flight.
// A nil old flight is treated as on time with no delay, gate or terminal.
func DetectTriggers(oldFlight *entity.Flight, newFlight entity.Flight) Triggers {
	var prev entity.Flight
	if oldFlight != nil {
		prev = *oldFlight
	}
	return Triggers{
		Delay:          prev.DelayMinutes < DelayThresholdMinutes && newFlight.DelayMinutes >= DelayThresholdMinutes,
		Cancellation:   prev.Status != entity.FlightCancelled && newFlight.Status == entity.FlightCancelled,
		GateChange:     prev.Gate != newFlight.Gate && newFlight.Gate != "",
		TerminalChange: prev.Terminal != newFlight.Terminal && newFlight.Terminal != "",
	}
}

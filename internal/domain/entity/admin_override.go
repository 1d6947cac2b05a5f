package entity

import "time"

// AdminOverride records an operator forcing notifications for a flight
type AdminOverride struct {
	ID               string
	FlightID         string
	Reason           string
	OriginalDecision DecisionOutcome
	OverriddenBy     string
	JobsEnqueued     int
	CreatedAt        time.Time
}

package entity

import "time"

// DecisionOutcome is the policy result of a risk evaluation
type DecisionOutcome string

const (
	DecisionApprove DecisionOutcome = "APPROVE"
	DecisionFlag    DecisionOutcome = "FLAG"
	DecisionBlock   DecisionOutcome = "BLOCK"
)

// Severity ranks how disruptive an event is for passengers
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// DisruptionContext is the input of a single risk evaluation. It is never stored on its own.
type DisruptionContext struct {
	FlightID            string       `json:"flight_id"`
	FlightStatus        FlightStatus `json:"flight_status"`
	DelayMinutes        int          `json:"delay_minutes"`
	PassengerCount      int          `json:"passenger_count"`
	AlertsSentLast10Min int          `json:"alerts_sent_last_10_min"`
	GateChange          bool         `json:"gate_change"`
	TerminalChange      bool         `json:"terminal_change"`
	IsSimulation        bool         `json:"is_simulation"`
}

// DecisionResult is the output of the decision engine
type DecisionResult struct {
	Decision  DecisionOutcome `json:"decision"`
	Severity  Severity        `json:"severity"`
	RiskScore float64         `json:"risk_score"`
	Reason    string          `json:"reason"`
}

// Decision is the persisted, immutable audit record of one evaluation
type Decision struct {
	ID        string            `json:"id"`
	FlightID  string            `json:"flight_id"`
	Result    DecisionResult    `json:"result"`
	Context   DisruptionContext `json:"context"`
	CreatedAt time.Time         `json:"created_at"`
}

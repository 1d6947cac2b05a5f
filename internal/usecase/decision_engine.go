package usecase

import "flightalert-service/internal/domain/entity"

// Risk thresholds for mapping a score to a decision
const (
	blockAbove   = 0.8
	flagAtOrOver = 0.5
)

// RiskAccumulator is the running state the decision rules operate on
type RiskAccumulator struct {
	Risk     float64
	Severity entity.Severity
	Reason   string
}

// DecisionRule adjusts the accumulator for one aspect of the disruption
type DecisionRule func(ctx entity.DisruptionContext, acc *RiskAccumulator)

// DefaultRules is the ordered rule chain. Order matters: overrides precede additive modifiers.
var DefaultRules = []DecisionRule{
	DelayRule,
	CancellationRule,
	StructuralChangeRule,
	PassengerVolumeRule,
	AlertFrequencyRule,
}

// DelayRule raises severity by delay threshold. The highest matching threshold wins.
func DelayRule(ctx entity.DisruptionContext, acc *RiskAccumulator) {
	if ctx.DelayMinutes >= 30 {
		acc.Severity, acc.Risk, acc.Reason = entity.SeverityMedium, 0.4, "Moderate delay (>30m)."
	}
	if ctx.DelayMinutes >= 60 {
		acc.Severity, acc.Risk, acc.Reason = entity.SeverityHigh, 0.7, "Significant delay (>60m)."
	}
	if ctx.DelayMinutes >= 120 {
		acc.Severity, acc.Risk, acc.Reason = entity.SeverityCritical, 0.9, "Major delay (>120m)."
	}
}

// CancellationRule overrides any delay-based result
func CancellationRule(ctx entity.DisruptionContext, acc *RiskAccumulator) {
	if ctx.FlightStatus == entity.FlightCancelled {
		acc.Severity, acc.Risk, acc.Reason = entity.SeverityCritical, 0.95, "Flight cancelled."
	}
}

// StructuralChangeRule gives gate and terminal changes a floor of medium risk
func StructuralChangeRule(ctx entity.DisruptionContext, acc *RiskAccumulator) {
	if !ctx.GateChange && !ctx.TerminalChange {
		return
	}
	const changeRisk = 0.3
	if acc.Risk < changeRisk {
		acc.Severity, acc.Risk, acc.Reason = entity.SeverityMedium, changeRisk, "Gate/Terminal change detected."
		return
	}
	acc.Reason += " + Gate/Terminal change."
}

// PassengerVolumeRule adds risk for heavily booked flights
func PassengerVolumeRule(ctx entity.DisruptionContext, acc *RiskAccumulator) {
	if ctx.PassengerCount > 100 {
		acc.Risk += 0.1
		acc.Reason += " High passenger volume."
	}
}

// AlertFrequencyRule adds risk when passengers were alerted recently
func AlertFrequencyRule(ctx entity.DisruptionContext, acc *RiskAccumulator) {
	if ctx.AlertsSentLast10Min > 0 {
		acc.Risk += 0.2
		acc.Reason += " Frequent alerts detected."
	}
}

// DecisionEngine maps a disruption context to a policy decision. It is pure and
// must not reach any external service.
type DecisionEngine struct {
	rules []DecisionRule
}

// NewDecisionEngine creates an engine with the given rules, or DefaultRules when none are given
func NewDecisionEngine(rules ...DecisionRule) *DecisionEngine {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &DecisionEngine{rules: rules}
}

// Evaluate runs every rule in order and maps the clamped score to a decision.
// IsSimulation is carried through untouched so previews match live runs.
func (e *DecisionEngine) Evaluate(ctx entity.DisruptionContext) entity.DecisionResult {
	acc := RiskAccumulator{
		Risk:     0.1,
		Severity: entity.SeverityLow,
		Reason:   "Normal operation.",
	}
	for _, rule := range e.rules {
		rule(ctx, &acc)
	}

	risk := clamp(acc.Risk, 0, 1)
	return entity.DecisionResult{
		Decision:  decisionFor(risk),
		Severity:  acc.Severity,
		RiskScore: risk,
		Reason:    acc.Reason,
	}
}

func decisionFor(risk float64) entity.DecisionOutcome {
	switch {
	case risk > blockAbove:
		return entity.DecisionBlock
	case risk >= flagAtOrOver:
		return entity.DecisionFlag
	default:
		return entity.DecisionApprove
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

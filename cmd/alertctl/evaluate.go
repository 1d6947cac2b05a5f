package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/usecase"
)

// EvaluateResult is an offline decision preview
type EvaluateResult struct {
	Context  entity.DisruptionContext `json:"context"`
	Decision entity.DecisionResult    `json:"decision"`
}

func evaluateCmd() *cobra.Command {
	var (
		status         string
		delay          int
		passengers     int
		alertsSent     int
		gateChange     bool
		terminalChange bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Preview the risk decision for a disruption",
		Long: `Run the decision engine on a hand-built disruption context. Nothing is
stored and no service is contacted.

Examples:
  alertctl evaluate --status DELAYED --delay 130 --passengers 200
  alertctl evaluate --status ON_TIME --gate-change -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flightStatus := entity.FlightStatus(strings.ToUpper(status))
			if !flightStatus.Valid() {
				return fmt.Errorf("%w: unknown flight status %q", entity.ErrInvalidParameter, status)
			}
			if delay < 0 || passengers < 0 || alertsSent < 0 {
				return fmt.Errorf("%w: counts must not be negative", entity.ErrInvalidParameter)
			}

			ctx := entity.DisruptionContext{
				FlightID:            "preview",
				FlightStatus:        flightStatus,
				DelayMinutes:        delay,
				PassengerCount:      passengers,
				AlertsSentLast10Min: alertsSent,
				GateChange:          gateChange,
				TerminalChange:      terminalChange,
				IsSimulation:        true,
			}
			result := EvaluateResult{
				Context:  ctx,
				Decision: usecase.NewDecisionEngine().Evaluate(ctx),
			}
			return outputResult(cmd.OutOrStdout(), result, outputFmt)
		},
	}

	cmd.Flags().StringVar(&status, "status", string(entity.FlightDelayed), "Flight status: ON_TIME, DELAYED, CANCELLED")
	cmd.Flags().IntVar(&delay, "delay", 0, "Delay in minutes")
	cmd.Flags().IntVar(&passengers, "passengers", 0, "Passengers affected")
	cmd.Flags().IntVar(&alertsSent, "alerts-sent", 0, "Alerts already sent in the last 10 minutes")
	cmd.Flags().BoolVar(&gateChange, "gate-change", false, "The gate changed")
	cmd.Flags().BoolVar(&terminalChange, "terminal-change", false, "The terminal changed")
	return cmd
}

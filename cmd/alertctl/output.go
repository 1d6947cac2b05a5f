package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"sigs.k8s.io/yaml"

	"flightalert-service/internal/usecase"
)

func outputResult(w io.Writer, result interface{}, format string) error {
	switch format {
	case "json":
		return outputJSON(w, result)
	case "yaml":
		return outputYAML(w, result)
	case "table", "":
		return outputTable(w, result)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func outputJSON(w io.Writer, result interface{}) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func outputYAML(w io.Writer, result interface{}) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(data))
	return nil
}

func outputTable(out io.Writer, result interface{}) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch r := result.(type) {
	case EvaluateResult:
		return outputEvaluateTable(w, r)
	case ProcessJobsResult:
		return outputProcessJobsTable(w, r)
	case usecase.SyncReport:
		return outputSyncTable(w, r)
	default:
		return outputJSON(out, result)
	}
}

func outputEvaluateTable(w *tabwriter.Writer, r EvaluateResult) error {
	fmt.Fprintf(w, "DECISION:\t%s\n", r.Decision.Decision)
	fmt.Fprintf(w, "SEVERITY:\t%s\n", r.Decision.Severity)
	fmt.Fprintf(w, "RISK SCORE:\t%.2f\n", r.Decision.RiskScore)
	fmt.Fprintf(w, "REASON:\t%s\n", r.Decision.Reason)
	return nil
}

func outputProcessJobsTable(w *tabwriter.Writer, r ProcessJobsResult) error {
	fmt.Fprintf(w, "FETCHED\t%d\n", r.Fetched)
	fmt.Fprintf(w, "SENT\t%d\n", r.Sent)
	fmt.Fprintf(w, "RETRYING\t%d\n", r.Retrying)
	fmt.Fprintf(w, "FAILED\t%d\n", r.Failed)
	fmt.Fprintf(w, "BLOCKED\t%d\n\n", r.Blocked)

	if len(r.Jobs) > 0 {
		fmt.Fprintln(w, "JOB\tSTATUS\tERROR")
		for _, j := range r.Jobs {
			status := j.Status
			if j.Skipped {
				status = "SKIPPED"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", j.JobID, status, j.Error)
		}
	}
	return nil
}

func outputSyncTable(w *tabwriter.Writer, r usecase.SyncReport) error {
	fmt.Fprintf(w, "SIMULATED\t%t\n", r.Simulated)
	fmt.Fprintf(w, "PROCESSED\t%d\n\n", r.Processed)

	fmt.Fprintln(w, "FLIGHT\tRESULT\tSTATUS\tDELAY\tDECISION")
	for _, u := range r.Updates {
		decision := "-"
		if u.Decision != nil {
			decision = string(u.Decision.Decision)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", u.FlightNumber, u.Status, u.NewStatus, u.DelayMinutes, decision)
	}
	return nil
}

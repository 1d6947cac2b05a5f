package main

import (
	"github.com/spf13/cobra"

	"flightalert-service/internal/app"
	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/usecase"
)

// ProcessJobsResult is the outcome of one worker pass
type ProcessJobsResult struct {
	Fetched  int          `json:"fetched"`
	Sent     int          `json:"sent"`
	Retrying int          `json:"retrying"`
	Failed   int          `json:"failed"`
	Blocked  int          `json:"blocked"`
	Jobs     []JobOutcome `json:"jobs"`
}

// JobOutcome is one processed job
type JobOutcome struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

func processJobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process-jobs",
		Short: "Run one notification worker pass",
		Long: `Claim up to one batch of PENDING and RETRYING jobs and deliver them.

Examples:
  alertctl process-jobs
  alertctl process-jobs -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				report, err := a.Queue.ProcessPendingJobs(cmd.Context())
				if err != nil {
					return err
				}
				return outputResult(cmd.OutOrStdout(), newProcessJobsResult(report), outputFmt)
			})
		},
	}
}

func newProcessJobsResult(report usecase.BatchReport) ProcessJobsResult {
	result := ProcessJobsResult{
		Fetched:  report.Fetched,
		Sent:     report.Count(entity.JobSent),
		Retrying: report.Count(entity.JobRetrying),
		Failed:   report.Count(entity.JobFailed),
		Blocked:  report.Count(entity.JobBlocked),
		Jobs:     make([]JobOutcome, 0, len(report.Outcomes)),
	}
	for _, o := range report.Outcomes {
		job := JobOutcome{JobID: o.JobID, Status: string(o.Status), Skipped: o.Skipped}
		if o.Err != nil {
			job.Error = o.Err.Error()
		}
		result.Jobs = append(result.Jobs, job)
	}
	return result
}

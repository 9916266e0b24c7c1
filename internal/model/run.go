package model

import "time"

// RunStatus represents the terminal state of a coding run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete" // all responses coded, no error-log entries
	RunStatusDegraded RunStatus = "degraded" // completed but some items degraded to ERROR
	RunStatusFailed   RunStatus = "failed"   // aborted before completing the input set
)

// Run is the persisted record of one coding run.
type Run struct {
	ID          string    `json:"id"`
	Model       string    `json:"model"`
	Status      RunStatus `json:"status"`
	Responses   int       `json:"responses"`
	Rows        int       `json:"rows"`
	Errors      int       `json:"errors"`
	ResultsFile string    `json:"results_file"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

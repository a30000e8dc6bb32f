package domain

import "time"

// Row is a loosely typed record produced by the external pipeline. The runner
// only counts rows; it never interprets their fields.
type Row map[string]any

// Result is what one successful pipeline invocation reports back.
type Result struct {
	ExecutionTime time.Duration
	Current       []Row
	Forecast      []Row
}

// AttemptOutcome is the terminal state of a single pipeline attempt.
type AttemptOutcome string

const (
	AttemptSucceeded AttemptOutcome = "success"
	AttemptFailed    AttemptOutcome = "failure"
)

// Attempt records one pipeline invocation inside a retry loop.
type Attempt struct {
	Number  int
	Outcome AttemptOutcome
	Err     error
	Result  *Result
}

// RunOutcome is the terminal state of a scheduled occasion.
type RunOutcome string

const (
	RunSucceeded RunOutcome = "success"
	RunExhausted RunOutcome = "exhausted"
	RunCancelled RunOutcome = "cancelled"
)

// Trigger labels describing why an occasion ran.
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerOnce     = "once"
)

// RunEvent summarizes one occasion for downstream consumers.
type RunEvent struct {
	RunID                string     `json:"run_id"`
	Trigger              string     `json:"trigger"`
	StartedAt            time.Time  `json:"started_at"`
	FinishedAt           time.Time  `json:"finished_at"`
	Attempts             int        `json:"attempts"`
	Outcome              RunOutcome `json:"outcome"`
	Error                string     `json:"error,omitempty"`
	ExecutionTimeSeconds float64    `json:"execution_time_seconds,omitempty"`
	CurrentRecords       int        `json:"current_records"`
	ForecastRecords      int        `json:"forecast_records"`
}

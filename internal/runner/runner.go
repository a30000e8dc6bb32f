// Package runner re-runs the weather pipeline on a schedule with bounded
// retry on failure.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/couchcryptid/weather-automation/internal/observability"
	"github.com/couchcryptid/weather-automation/internal/pipeline"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const publishTimeout = 10 * time.Second

// Config bounds the retry loop and sets how often the schedule is checked.
type Config struct {
	MaxAttempts  int
	RetryDelay   time.Duration
	PollInterval time.Duration
}

// DefaultConfig returns 3 attempts, 5 minutes apart, with a 1 minute poll.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		RetryDelay:   5 * time.Minute,
		PollInterval: time.Minute,
	}
}

// Publisher receives a summary of every finished occasion.
type Publisher interface {
	Publish(ctx context.Context, event domain.RunEvent) error
}

// Runner drives pipeline occasions: an immediate startup run, then one run
// per trigger activation, each retried up to Config.MaxAttempts times.
type Runner struct {
	cfg         Config
	newPipeline pipeline.Factory
	trigger     Trigger
	publisher   Publisher
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.RunnerMetrics
	ready       atomic.Bool
}

// New creates a Runner. publisher may be nil.
func New(cfg Config, newPipeline pipeline.Factory, trigger Trigger, publisher Publisher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.RunnerMetrics) *Runner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	return &Runner{
		cfg:         cfg,
		newPipeline: newPipeline,
		trigger:     trigger,
		publisher:   publisher,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once at least one occasion has succeeded.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no pipeline run has succeeded yet")
	}
	return nil
}

// report is the outcome of one retry loop.
type report struct {
	outcome  domain.RunOutcome
	attempts int
	last     domain.Attempt
}

// ExecuteWithRetry runs the pipeline until it succeeds, attempts are
// exhausted, or ctx is cancelled during a retry wait. It reports success.
func (r *Runner) ExecuteWithRetry(ctx context.Context) bool {
	return r.executeWithRetry(ctx, r.logger).outcome == domain.RunSucceeded
}

func (r *Runner) executeWithRetry(ctx context.Context, logger *slog.Logger) report {
	n := r.cfg.MaxAttempts
	for k := 1; ; k++ {
		logger.Info("starting pipeline attempt", "attempt", k, "max_attempts", n)
		a := r.attempt(ctx, k)
		r.metrics.Attempts.WithLabelValues(string(a.Outcome)).Inc()

		if a.Outcome == domain.AttemptSucceeded {
			logger.Info("pipeline completed successfully",
				"attempt", k,
				"execution_time", fmt.Sprintf("%.2fs", a.Result.ExecutionTime.Seconds()),
				"current_records", len(a.Result.Current),
				"forecast_records", len(a.Result.Forecast),
			)
			return report{outcome: domain.RunSucceeded, attempts: k, last: a}
		}

		logger.Error("pipeline attempt failed", "attempt", k, "max_attempts", n, "error", a.Err)
		if k >= n {
			logger.Error("pipeline failed after all attempts", "attempts", n)
			return report{outcome: domain.RunExhausted, attempts: k, last: a}
		}

		logger.Info("retrying pipeline", "retry_in", r.cfg.RetryDelay.String(), "next_attempt", k+1)
		if !sleepWithContext(ctx, r.clock, r.cfg.RetryDelay) {
			logger.Warn("retry wait interrupted", "attempt", k, "reason", ctx.Err())
			return report{outcome: domain.RunCancelled, attempts: k, last: a}
		}
	}
}

// attempt constructs a fresh pipeline and invokes it once. A panic inside the
// pipeline counts as a failed attempt.
func (r *Runner) attempt(ctx context.Context, k int) (a domain.Attempt) {
	a.Number = k
	a.Outcome = domain.AttemptFailed

	defer func() {
		if p := recover(); p != nil {
			a.Outcome = domain.AttemptFailed
			a.Result = nil
			a.Err = fmt.Errorf("pipeline panicked: %v", p)
		}
	}()

	res, err := r.newPipeline().Run(ctx)
	switch {
	case err != nil:
		a.Err = err
	case res == nil:
		a.Err = pipeline.ErrNoResult
	default:
		a.Outcome = domain.AttemptSucceeded
		a.Result = res
	}
	return a
}

// OnScheduleTick runs one occasion labelled with trigger.
func (r *Runner) OnScheduleTick(ctx context.Context, trigger string) {
	r.occasion(ctx, trigger)
}

func (r *Runner) occasion(ctx context.Context, trigger string) bool {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID, "trigger", trigger)
	started := r.clock.Now()

	logger.Info("scheduled job triggered", "started_at", started)
	rep := r.executeWithRetry(ctx, logger)
	finished := r.clock.Now()

	ok := rep.outcome == domain.RunSucceeded
	if ok {
		logger.Info("scheduled job completed successfully", "duration", finished.Sub(started).String())
	} else {
		logger.Error("scheduled job failed", "outcome", rep.outcome, "attempts", rep.attempts)
	}

	r.record(trigger, rep, started, finished)
	r.publish(ctx, logger, newRunEvent(runID, trigger, rep, started, finished))
	return ok
}

func (r *Runner) record(trigger string, rep report, started, finished time.Time) {
	r.metrics.Occasions.WithLabelValues(trigger, string(rep.outcome)).Inc()
	r.metrics.RunDuration.Observe(finished.Sub(started).Seconds())
	if rep.outcome != domain.RunSucceeded {
		return
	}
	r.metrics.LastSuccess.Set(float64(finished.Unix()))
	r.metrics.Records.WithLabelValues("current").Set(float64(len(rep.last.Result.Current)))
	r.metrics.Records.WithLabelValues("forecast").Set(float64(len(rep.last.Result.Forecast)))
	r.ready.Store(true)
}

// publish sends the run event. Failures are logged only. The send outlives
// ctx so that a cancelled occasion is still reported.
func (r *Runner) publish(ctx context.Context, logger *slog.Logger, event domain.RunEvent) {
	if r.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := r.publisher.Publish(pubCtx, event); err != nil {
		logger.Warn("publish run event failed", "error", err)
	}
}

func newRunEvent(runID, trigger string, rep report, started, finished time.Time) domain.RunEvent {
	ev := domain.RunEvent{
		RunID:      runID,
		Trigger:    trigger,
		StartedAt:  started,
		FinishedAt: finished,
		Attempts:   rep.attempts,
		Outcome:    rep.outcome,
	}
	if rep.last.Err != nil {
		ev.Error = rep.last.Err.Error()
	}
	if res := rep.last.Result; res != nil {
		ev.ExecutionTimeSeconds = res.ExecutionTime.Seconds()
		ev.CurrentRecords = len(res.Current)
		ev.ForecastRecords = len(res.Forecast)
	}
	return ev
}

// Run performs an immediate startup occasion and then one occasion each time
// the trigger comes due, checked every PollInterval. Activations missed while
// an occasion was running are not replayed. Run returns nil when ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context) error {
	next := r.trigger.Next(r.clock.Now())
	r.logger.Info("scheduler started",
		"schedule", r.trigger.String(),
		"next_run", next,
		"max_attempts", r.cfg.MaxAttempts,
		"retry_delay", r.cfg.RetryDelay.String(),
	)
	r.metrics.RunnerRunning.Set(1)
	defer r.metrics.RunnerRunning.Set(0)

	r.logger.Info("running startup job")
	r.occasion(ctx, domain.TriggerStartup)

	ticker := r.clock.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scheduler stopped", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if r.clock.Now().Before(next) {
				continue
			}
			r.occasion(ctx, domain.TriggerSchedule)
			next = r.trigger.Next(r.clock.Now())
			r.logger.Info("next run scheduled", "next_run", next)
		}
	}
}

// RunOnce runs a single occasion and returns a process exit code: 0 on
// success, 1 otherwise.
func (r *Runner) RunOnce(ctx context.Context) int {
	if r.occasion(ctx, domain.TriggerOnce) {
		return 0
	}
	return 1
}

// sleepWithContext waits d on clock. It returns false if ctx ends first.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

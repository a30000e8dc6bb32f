// Command runner re-runs the weather ETL pipeline on a schedule, retrying
// failed attempts, and serves /healthz, /readyz, and /metrics.
//
// Usage:
//
//	runner                         # startup run, then every RUN_INTERVAL
//	runner --at 06:00              # startup run, then daily at 06:00
//	runner once --max-attempts 5   # a single retried run; exit 1 if exhausted
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/weather-automation/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weather-automation/internal/adapter/kafka"
	"github.com/couchcryptid/weather-automation/internal/config"
	"github.com/couchcryptid/weather-automation/internal/observability"
	"github.com/couchcryptid/weather-automation/internal/pipeline"
	"github.com/couchcryptid/weather-automation/internal/runner"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// errExhausted makes `runner once` exit 1 without printing usage.
var errExhausted = errors.New("pipeline failed after all attempts")

type overrides struct {
	maxAttempts int
	retryDelay  time.Duration
	interval    time.Duration
	at          string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errExhausted) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o overrides

	root := &cobra.Command{
		Use:           "runner",
		Short:         "Run the weather pipeline on a schedule with retry",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	bindFlags(root, &o)

	root.AddCommand(&cobra.Command{
		Use:   "once",
		Short: "Run the pipeline once with retry and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			return once(cmd.Context(), cfg)
		},
	})

	return root
}

func bindFlags(cmd *cobra.Command, o *overrides) {
	flags := cmd.PersistentFlags()
	flags.IntVar(&o.maxAttempts, "max-attempts", 0, "attempts per run (overrides MAX_ATTEMPTS)")
	flags.DurationVar(&o.retryDelay, "retry-delay", 0, "wait between attempts (overrides RETRY_DELAY)")
	flags.DurationVar(&o.interval, "interval", 0, "run every interval (overrides RUN_INTERVAL, sets SCHEDULE_MODE=interval)")
	flags.StringVar(&o.at, "at", "", "run daily at HH:MM (overrides RUN_AT, sets SCHEDULE_MODE=daily)")
}

// loadConfig reads the environment, then applies any flags the user set.
func loadConfig(cmd *cobra.Command, o overrides) (*config.Runner, error) {
	cfg, err := config.LoadRunner()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts = o.maxAttempts
	}
	if flags.Changed("retry-delay") {
		cfg.RetryDelay = o.retryDelay
	}
	if flags.Changed("interval") {
		cfg.ScheduleMode = config.ScheduleInterval
		cfg.RunInterval = o.interval
	}
	if flags.Changed("at") {
		cfg.ScheduleMode = config.ScheduleDaily
		cfg.RunAt = o.at
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type app struct {
	runner    *runner.Runner
	logger    *slog.Logger
	publisher *kafkaadapter.Writer
	closeLog  func() error
}

func newApp(cfg *config.Runner) (*app, error) {
	w, closer, err := observability.LogWriter(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg.Logging, w)
	slog.SetDefault(logger)

	newPipeline, err := pipeline.NewFactory(cfg, logger)
	if err != nil {
		closer.Close() //nolint:errcheck // already failing
		return nil, err
	}
	trigger, err := runner.NewTrigger(cfg)
	if err != nil {
		closer.Close() //nolint:errcheck // already failing
		return nil, err
	}

	a := &app{logger: logger, closeLog: closer.Close}

	var publisher runner.Publisher
	if cfg.RunEventsEnabled {
		a.publisher = kafkaadapter.NewWriter(cfg, logger)
		publisher = a.publisher
		logger.Info("run events enabled", "topic", cfg.KafkaRunsTopic, "brokers", cfg.KafkaBrokers)
	}

	a.runner = runner.New(
		runner.Config{MaxAttempts: cfg.MaxAttempts, RetryDelay: cfg.RetryDelay, PollInterval: cfg.PollInterval},
		newPipeline,
		trigger,
		publisher,
		clockwork.NewRealClock(),
		logger,
		observability.NewRunnerMetrics(),
	)
	return a, nil
}

func (a *app) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := a.closeLog(); err != nil {
		fmt.Fprintln(os.Stderr, "close log file:", err)
	}
}

func serve(parent context.Context, cfg *config.Runner) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpadapter.NewServer(cfg.HTTPAddr, a.runner, a.logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", "error", err)
		}
	}()

	if err := a.runner.Run(ctx); err != nil {
		a.logger.Error("scheduler error", "error", err)
	}
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

func once(parent context.Context, cfg *config.Runner) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if code := a.runner.RunOnce(ctx); code != 0 {
		return errExhausted
	}
	return nil
}

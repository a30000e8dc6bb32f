package config

import (
	"errors"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Pipeline invocation modes.
const (
	PipelineCommand = "command"
	PipelineHTTP    = "http"
)

// Schedule trigger modes.
const (
	ScheduleInterval = "interval"
	ScheduleDaily    = "daily"
	ScheduleCron     = "cron"
)

// Runner holds the scheduled runner settings, populated from environment
// variables.
type Runner struct {
	PipelineMode    string
	PipelineCommand []string
	PipelineDir     string
	PipelineURL     string
	PipelineTimeout time.Duration

	MaxAttempts  int
	RetryDelay   time.Duration
	PollInterval time.Duration

	ScheduleMode     string
	RunInterval      time.Duration
	RunAt            string
	RunCron          string
	ScheduleTimezone string

	HTTPAddr        string
	ShutdownTimeout time.Duration
	Logging         Logging

	// Run event publishing.
	KafkaBrokers     []string
	KafkaRunsTopic   string
	RunEventsEnabled bool
}

// LoadRunner reads runner configuration from environment variables, applying
// defaults where unset.
func LoadRunner() (*Runner, error) {
	loadDotenv()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	pipelineTimeout, err := parseDuration("PIPELINE_TIMEOUT", "30m")
	if err != nil {
		return nil, err
	}
	maxAttempts, err := parsePositiveInt("MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("RETRY_DELAY", "5m")
	if err != nil {
		return nil, err
	}
	pollInterval, err := parseDuration("POLL_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}
	runInterval, err := parseDuration("RUN_INTERVAL", "3h")
	if err != nil {
		return nil, err
	}

	logging := loadLogging()
	logging.Dir = sharedcfg.EnvOrDefault("LOG_DIR", "logs")
	logging.File = sharedcfg.EnvOrDefault("LOG_FILE", "pipeline_automation.log")
	if logging.MaxSizeMB, err = parsePositiveInt("LOG_MAX_SIZE_MB", 10); err != nil {
		return nil, err
	}
	if logging.MaxBackups, err = parsePositiveInt("LOG_MAX_BACKUPS", 5); err != nil {
		return nil, err
	}
	if logging.MaxAgeDays, err = parsePositiveInt("LOG_MAX_AGE_DAYS", 28); err != nil {
		return nil, err
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	runEventsEnabled := brokers != ""
	if v := os.Getenv("RUN_EVENTS_ENABLED"); v != "" {
		runEventsEnabled = v == "true"
	}
	if brokers == "" {
		brokers = "localhost:9092"
	}

	cfg := &Runner{
		PipelineMode:    sharedcfg.EnvOrDefault("PIPELINE_MODE", PipelineCommand),
		PipelineCommand: strings.Fields(sharedcfg.EnvOrDefault("PIPELINE_COMMAND", "python weather_pipeline.py --json")),
		PipelineDir:     os.Getenv("PIPELINE_DIR"),
		PipelineURL:     os.Getenv("PIPELINE_URL"),
		PipelineTimeout: pipelineTimeout,

		MaxAttempts:  maxAttempts,
		RetryDelay:   retryDelay,
		PollInterval: pollInterval,

		ScheduleMode:     sharedcfg.EnvOrDefault("SCHEDULE_MODE", ScheduleInterval),
		RunInterval:      runInterval,
		RunAt:            sharedcfg.EnvOrDefault("RUN_AT", "06:00"),
		RunCron:          os.Getenv("RUN_CRON"),
		ScheduleTimezone: os.Getenv("SCHEDULE_TIMEZONE"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8081"),
		ShutdownTimeout: shutdownTimeout,
		Logging:         logging,

		KafkaBrokers:     sharedcfg.ParseBrokers(brokers),
		KafkaRunsTopic:   sharedcfg.EnvOrDefault("KAFKA_RUN_EVENTS_TOPIC", "weather-pipeline-runs"),
		RunEventsEnabled: runEventsEnabled,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints. It is called by LoadRunner and
// again after command-line overrides are applied.
func (c *Runner) Validate() error {
	switch c.PipelineMode {
	case PipelineCommand:
		if len(c.PipelineCommand) == 0 {
			return errors.New("PIPELINE_COMMAND is required when PIPELINE_MODE is command")
		}
	case PipelineHTTP:
		if c.PipelineURL == "" {
			return errors.New("PIPELINE_URL is required when PIPELINE_MODE is http")
		}
	default:
		return errors.New("invalid PIPELINE_MODE: must be command or http")
	}

	if c.MaxAttempts < 1 {
		return errors.New("invalid MAX_ATTEMPTS")
	}
	if c.RetryDelay < 0 {
		return errors.New("invalid RETRY_DELAY")
	}

	switch c.ScheduleMode {
	case ScheduleInterval:
		if c.RunInterval < time.Second {
			return errors.New("invalid RUN_INTERVAL: must be at least 1s")
		}
	case ScheduleDaily:
		if _, err := time.Parse("15:04", c.RunAt); err != nil {
			return errors.New("invalid RUN_AT: expected HH:MM")
		}
	case ScheduleCron:
		if c.RunCron == "" {
			return errors.New("RUN_CRON is required when SCHEDULE_MODE is cron")
		}
	default:
		return errors.New("invalid SCHEDULE_MODE: must be interval, daily, or cron")
	}

	if c.ScheduleTimezone != "" {
		if _, err := time.LoadLocation(c.ScheduleTimezone); err != nil {
			return errors.New("invalid SCHEDULE_TIMEZONE")
		}
	}

	if c.RunEventsEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when RUN_EVENTS_ENABLED is true")
		}
		if c.KafkaRunsTopic == "" {
			return errors.New("KAFKA_RUN_EVENTS_TOPIC is required when RUN_EVENTS_ENABLED is true")
		}
	}
	return nil
}

package runner

import (
	"fmt"
	"time"

	"github.com/couchcryptid/weather-automation/internal/config"
	"github.com/robfig/cron/v3"
)

// Trigger is a recurring schedule policy.
type Trigger interface {
	// Next returns the first activation strictly after t.
	Next(t time.Time) time.Time
	String() string
}

type schedule struct {
	cron.Schedule
	desc string
}

func (s schedule) String() string { return s.desc }

// Interval fires every d, measured from the time Next is asked. Sub-second
// precision is dropped.
func Interval(d time.Duration) Trigger {
	return schedule{Schedule: cron.Every(d), desc: "every " + d.String()}
}

// Daily fires once a day at the wall-clock time hhmm ("HH:MM") in tz. An
// empty tz means the local zone.
func Daily(hhmm, tz string) (Trigger, error) {
	at, err := time.Parse("15:04", hhmm)
	if err != nil {
		return nil, fmt.Errorf("parse daily time %q: %w", hhmm, err)
	}
	spec := fmt.Sprintf("%d %d * * *", at.Minute(), at.Hour())
	s, err := cron.ParseStandard(withTimezone(spec, tz))
	if err != nil {
		return nil, fmt.Errorf("parse daily schedule: %w", err)
	}
	return schedule{Schedule: s, desc: "daily at " + hhmm + zoneSuffix(tz)}, nil
}

// Cron fires on a standard five-field cron expression in tz.
func Cron(expr, tz string) (Trigger, error) {
	s, err := cron.ParseStandard(withTimezone(expr, tz))
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return schedule{Schedule: s, desc: "cron " + expr + zoneSuffix(tz)}, nil
}

// NewTrigger builds the single active policy selected by cfg.ScheduleMode.
func NewTrigger(cfg *config.Runner) (Trigger, error) {
	switch cfg.ScheduleMode {
	case config.ScheduleInterval:
		return Interval(cfg.RunInterval), nil
	case config.ScheduleDaily:
		return Daily(cfg.RunAt, cfg.ScheduleTimezone)
	case config.ScheduleCron:
		return Cron(cfg.RunCron, cfg.ScheduleTimezone)
	default:
		return nil, fmt.Errorf("unknown schedule mode %q", cfg.ScheduleMode)
	}
}

func withTimezone(spec, tz string) string {
	if tz == "" {
		return spec
	}
	return "CRON_TZ=" + tz + " " + spec
}

func zoneSuffix(tz string) string {
	if tz == "" {
		return ""
	}
	return " (" + tz + ")"
}

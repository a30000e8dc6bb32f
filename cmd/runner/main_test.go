package main

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/couchcryptid/weather-automation/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*cobra.Command, overrides) {
	t.Helper()
	var o overrides
	cmd := &cobra.Command{Use: "runner"}
	bindFlags(cmd, &o)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, o
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("MAX_ATTEMPTS", "4")

	cmd, o := parse(t)
	cfg, err := loadConfig(cmd, o)

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, config.ScheduleInterval, cfg.ScheduleMode)
	assert.Equal(t, 3*time.Hour, cfg.RunInterval)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("MAX_ATTEMPTS", "4")
	t.Setenv("RETRY_DELAY", "1m")

	cmd, o := parse(t, "--max-attempts", "6", "--retry-delay", "30s", "--at", "07:30")
	cfg, err := loadConfig(cmd, o)

	require.NoError(t, err)
	assert.Equal(t, 6, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.RetryDelay)
	assert.Equal(t, config.ScheduleDaily, cfg.ScheduleMode)
	assert.Equal(t, "07:30", cfg.RunAt)
}

func TestLoadConfig_IntervalFlag(t *testing.T) {
	t.Setenv("SCHEDULE_MODE", "daily")

	cmd, o := parse(t, "--interval", "45m")
	cfg, err := loadConfig(cmd, o)

	require.NoError(t, err)
	assert.Equal(t, config.ScheduleInterval, cfg.ScheduleMode)
	assert.Equal(t, 45*time.Minute, cfg.RunInterval)
}

func TestLoadConfig_InvalidFlagValues(t *testing.T) {
	tests := map[string][]string{
		"MAX_ATTEMPTS": {"--max-attempts", "0"},
		"RUN_AT":       {"--at", "25:99"},
		"RUN_INTERVAL": {"--interval", "10ms"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			cmd, o := parse(t, args...)
			_, err := loadConfig(cmd, o)
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestOnce_ExhaustedReturnsError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX false binary")
	}
	t.Setenv("PIPELINE_COMMAND", "false")
	t.Setenv("MAX_ATTEMPTS", "1")
	t.Setenv("LOG_DIR", t.TempDir())

	cmd, o := parse(t)
	cfg, err := loadConfig(cmd, o)
	require.NoError(t, err)

	err = once(context.Background(), cfg)
	require.ErrorIs(t, err, errExhausted)
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
)

const stderrExcerptBytes = 1024

// Command runs the ETL program as a child process and reads the result from
// its stdout.
type Command struct {
	argv    []string
	dir     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommand creates a Command for argv, run in dir. A zero timeout leaves
// the process bounded only by the caller's context.
func NewCommand(argv []string, dir string, timeout time.Duration, logger *slog.Logger) *Command {
	return &Command{
		argv:    argv,
		dir:     dir,
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes the program once.
func (c *Command) Run(ctx context.Context) (*domain.Result, error) {
	if len(c.argv) == 0 {
		return nil, errors.New("pipeline command is empty")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Dir = c.dir
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("starting pipeline command", "argv", c.argv, "dir", c.dir)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("pipeline command: %w", ctx.Err())
		}
		return nil, fmt.Errorf("pipeline command %s: %w: %s", c.argv[0], err, excerpt(stderr.Bytes(), stderrExcerptBytes))
	}

	return decodeOutput(stdout.Bytes())
}

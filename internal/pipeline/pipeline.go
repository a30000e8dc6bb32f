// Package pipeline invokes the external weather ETL program and decodes the
// result it reports.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-automation/internal/config"
	"github.com/couchcryptid/weather-automation/internal/domain"
)

// ErrNoResult marks a pipeline run that finished without reporting a result.
var ErrNoResult = errors.New("pipeline returned no result")

// Pipeline runs the ETL job once. A nil result with a nil error means the
// job produced nothing.
type Pipeline interface {
	Run(ctx context.Context) (*domain.Result, error)
}

// Factory constructs a fresh Pipeline for each attempt.
type Factory func() Pipeline

// Func adapts a plain function to the Pipeline interface.
type Func func(ctx context.Context) (*domain.Result, error)

// Run calls f.
func (f Func) Run(ctx context.Context) (*domain.Result, error) {
	return f(ctx)
}

// NewFactory returns the Factory selected by cfg.PipelineMode.
func NewFactory(cfg *config.Runner, logger *slog.Logger) (Factory, error) {
	switch cfg.PipelineMode {
	case config.PipelineCommand:
		return func() Pipeline {
			return NewCommand(cfg.PipelineCommand, cfg.PipelineDir, cfg.PipelineTimeout, logger)
		}, nil
	case config.PipelineHTTP:
		return func() Pipeline {
			return NewHTTP(cfg.PipelineURL, cfg.PipelineTimeout, logger)
		}, nil
	default:
		return nil, fmt.Errorf("unknown pipeline mode %q", cfg.PipelineMode)
	}
}

// wireResult is the JSON shape emitted by the ETL program.
type wireResult struct {
	ExecutionTime *float64 `json:"execution_time"`
	Data          *struct {
		Current  []domain.Row `json:"current"`
		Forecast []domain.Row `json:"forecast"`
	} `json:"data"`
}

// DecodeResult parses a pipeline result. An empty body, a JSON null, or an
// object carrying neither execution_time nor data decodes to nil.
func DecodeResult(r io.Reader) (*domain.Result, error) {
	var w *wireResult
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if w == nil || (w.ExecutionTime == nil && w.Data == nil) {
		return nil, nil
	}

	res := &domain.Result{}
	if w.ExecutionTime != nil {
		res.ExecutionTime = time.Duration(*w.ExecutionTime * float64(time.Second))
	}
	if w.Data != nil {
		res.Current = w.Data.Current
		res.Forecast = w.Data.Forecast
	}
	return res, nil
}

// decodeOutput decodes b as a whole, falling back to the last line that
// opens a JSON document running to the end of the output. This covers a
// program that logged to stdout before printing its result, compact or
// indented.
func decodeOutput(b []byte) (*domain.Result, error) {
	res, err := DecodeResult(bytes.NewReader(b))
	if err == nil {
		return res, nil
	}
	for end := len(b); end > 0; {
		start := bytes.LastIndexByte(b[:end], '\n') + 1
		line := bytes.TrimSpace(b[start:end])
		if start > 0 && len(line) > 0 && line[0] == '{' {
			if tail := bytes.TrimSpace(b[start:]); json.Valid(tail) {
				return DecodeResult(bytes.NewReader(tail))
			}
		}
		end = start - 1
	}
	return nil, err
}

// excerpt trims b to its last n bytes for error messages.
func excerpt(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}

package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/weather-automation/internal/config"
	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/couchcryptid/weather-automation/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResult = `{"execution_time": 12.34, "data": {"current": [{"city": "Austin", "temperature": 88.2}], "forecast": [{"city": "Austin"}, {"city": "Dallas"}]}}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeResult(t *testing.T) {
	res, err := pipeline.DecodeResult(strings.NewReader(sampleResult))
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 12340*time.Millisecond, res.ExecutionTime)
	require.Len(t, res.Current, 1)
	assert.Equal(t, "Austin", res.Current[0]["city"])
	assert.InDelta(t, 88.2, res.Current[0]["temperature"], 1e-9)
	assert.Len(t, res.Forecast, 2)
}

func TestDecodeResult_NoResult(t *testing.T) {
	for name, body := range map[string]string{
		"empty":        "",
		"whitespace":   "  \n",
		"null":         "null",
		"empty object": "{}",
	} {
		t.Run(name, func(t *testing.T) {
			res, err := pipeline.DecodeResult(strings.NewReader(body))
			require.NoError(t, err)
			assert.Nil(t, res)
		})
	}
}

func TestDecodeResult_DataWithoutTiming(t *testing.T) {
	res, err := pipeline.DecodeResult(strings.NewReader(`{"data": {"current": [], "forecast": []}}`))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Zero(t, res.ExecutionTime)
	assert.Empty(t, res.Current)
}

func TestDecodeResult_Malformed(t *testing.T) {
	_, err := pipeline.DecodeResult(strings.NewReader(`{"execution_time": "slow"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode result")
}

func TestFunc(t *testing.T) {
	want := &domain.Result{ExecutionTime: time.Second}
	var p pipeline.Pipeline = pipeline.Func(func(context.Context) (*domain.Result, error) {
		return want, nil
	})

	got, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestNewFactory(t *testing.T) {
	logger := discardLogger()

	f, err := pipeline.NewFactory(&config.Runner{
		PipelineMode:    config.PipelineCommand,
		PipelineCommand: []string{"python", "weather_pipeline.py"},
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &pipeline.Command{}, f())

	f, err = pipeline.NewFactory(&config.Runner{
		PipelineMode: config.PipelineHTTP,
		PipelineURL:  "http://localhost:9000/run",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &pipeline.HTTP{}, f())

	_, err = pipeline.NewFactory(&config.Runner{PipelineMode: "grpc"}, logger)
	require.Error(t, err)
}

func TestNewFactory_FreshPipelinePerCall(t *testing.T) {
	f, err := pipeline.NewFactory(&config.Runner{
		PipelineMode: config.PipelineHTTP,
		PipelineURL:  "http://localhost:9000/run",
	}, discardLogger())
	require.NoError(t, err)

	assert.NotSame(t, f(), f())
}

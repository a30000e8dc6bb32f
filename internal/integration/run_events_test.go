//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/weather-automation/internal/adapter/kafka"
	"github.com/couchcryptid/weather-automation/internal/config"
	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/couchcryptid/weather-automation/internal/observability"
	"github.com/couchcryptid/weather-automation/internal/pipeline"
	"github.com/couchcryptid/weather-automation/internal/runner"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRunsTopic = "test-weather-pipeline-runs"

// TestRunEventsPublished drives two one-shot occasions through the runner,
// one succeeding and one exhausting its attempts, and reads both run events
// back from Kafka.
func TestRunEventsPublished(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testRunsTopic)

	cfg := &config.Runner{KafkaBrokers: []string{broker}, KafkaRunsTopic: testRunsTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	fail := true
	factory := func() pipeline.Pipeline {
		return pipeline.Func(func(context.Context) (*domain.Result, error) {
			if fail {
				return nil, errors.New("upstream api unavailable")
			}
			return &domain.Result{
				ExecutionTime: 1500 * time.Millisecond,
				Current:       []domain.Row{{"city": "Austin"}},
				Forecast:      []domain.Row{{"city": "Austin"}, {"city": "Dallas"}},
			}, nil
		})
	}

	r := runner.New(
		runner.Config{MaxAttempts: 2, RetryDelay: 0, PollInterval: time.Minute},
		factory,
		runner.Interval(time.Hour),
		writer,
		clockwork.NewRealClock(),
		discardLogger(),
		observability.NewRunnerMetricsForTesting(),
	)

	assert.Equal(t, 1, r.RunOnce(ctx))
	fail = false
	assert.Equal(t, 0, r.RunOnce(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testRunsTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	var events []domain.RunEvent
	headers := make([]map[string]string, 0, 2)
	for range 2 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read run event")

		var ev domain.RunEvent
		require.NoError(t, json.Unmarshal(msg.Value, &ev))
		assert.Equal(t, ev.RunID, string(msg.Key))
		events = append(events, ev)

		h := make(map[string]string, len(msg.Headers))
		for _, kv := range msg.Headers {
			h[kv.Key] = string(kv.Value)
		}
		headers = append(headers, h)
	}

	exhausted, succeeded := events[0], events[1]

	assert.Equal(t, domain.RunExhausted, exhausted.Outcome)
	assert.Equal(t, 2, exhausted.Attempts)
	assert.Contains(t, exhausted.Error, "upstream api unavailable")
	assert.Equal(t, "exhausted", headers[0]["outcome"])
	assert.Equal(t, domain.TriggerOnce, headers[0]["trigger"])

	assert.Equal(t, domain.RunSucceeded, succeeded.Outcome)
	assert.Equal(t, 1, succeeded.Attempts)
	assert.Equal(t, 1, succeeded.CurrentRecords)
	assert.Equal(t, 2, succeeded.ForecastRecords)
	assert.InDelta(t, 1.5, succeeded.ExecutionTimeSeconds, 1e-9)
	assert.NotEqual(t, exhausted.RunID, succeeded.RunID)
}

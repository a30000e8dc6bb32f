//go:build integration

package integration_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/weather-automation/internal/dashboard"
	"github.com/couchcryptid/weather-automation/internal/observability"
	"github.com/couchcryptid/weather-automation/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastInsert = `INSERT INTO forecast_data
	(city, date, temp_min, temp_max, temp_avg, humidity, wind_speed, precipitation_prob, conditions)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func exec(ctx context.Context, t *testing.T, connStr, sql string, args ...any) {
	t.Helper()
	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, sql, args...)
	require.NoError(t, err)
}

// TestPostgresReader covers the read path against a real server: a missing
// alerts relation, NULL numerics, ordering, read-only sessions, and a
// dashboard render on top.
func TestPostgresReader(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	connStr := startPostgres(ctx, t)

	exec(ctx, t, connStr, `CREATE TABLE forecast_data (
		city TEXT NOT NULL, date DATE NOT NULL,
		temp_min DOUBLE PRECISION, temp_max DOUBLE PRECISION, temp_avg DOUBLE PRECISION,
		humidity DOUBLE PRECISION, wind_speed DOUBLE PRECISION, precipitation_prob DOUBLE PRECISION,
		conditions TEXT, PRIMARY KEY (city, date))`)
	for _, r := range []struct {
		city string
		day  int
		max  any
	}{{"Dallas", 1, 60.0}, {"Austin", 2, 72.0}, {"Austin", 1, nil}} {
		exec(ctx, t, connStr, forecastInsert,
			r.city, time.Date(2026, 1, r.day, 0, 0, 0, 0, time.UTC), 50.0, r.max, 60.0, 40.0, 5.0, 10.0, "Clear")
	}

	pool, err := store.OpenPool(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	metrics := observability.NewDashboardMetricsForTesting()
	pg := store.NewPostgres(pool, 5*time.Second, metrics, discardLogger())

	require.NoError(t, pg.Ping(ctx))

	rows, err := pg.Forecasts(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Austin", rows[0].City)
	assert.Equal(t, 1, rows[0].Date.Day())
	assert.Zero(t, rows[0].TempMax, "NULL temp_max reads as zero")
	assert.Equal(t, "Austin", rows[1].City)
	assert.Equal(t, "Dallas", rows[2].City)

	alerts, err := pg.Alerts(ctx)
	require.NoError(t, err, "missing alerts_data is not an error")
	assert.Empty(t, alerts)

	// Sessions opened by the dashboard pool refuse writes.
	_, err = pool.Exec(ctx, `DELETE FROM forecast_data`)
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "read-only")

	exec(ctx, t, connStr, `CREATE TABLE alerts_data (
		event TEXT, severity TEXT, urgency TEXT, area_desc TEXT, expires TEXT,
		headline TEXT, instruction TEXT, extracted_at TIMESTAMPTZ NOT NULL)`)
	now := time.Now().UTC()
	exec(ctx, t, connStr, `INSERT INTO alerts_data VALUES
		('Tornado Warning', 'Extreme', 'Immediate', 'Travis, TX', NULL, 'Take cover', NULL, $1),
		('Flood Watch', 'Minor', 'Future', 'Harris, TX', '2026-01-02T00:00:00Z', 'Flooding possible', NULL, $2)`,
		now.Add(-time.Hour), now.Add(-2*time.Hour))

	alerts, err = pg.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Tornado Warning", alerts[0].Event, "newest extraction first")
	assert.Empty(t, alerts[0].Expires)
	assert.Empty(t, alerts[0].Instruction)

	svc := dashboard.NewService(pg, 24*time.Hour, clockwork.NewRealClock(), metrics, discardLogger())
	page := svc.Render(ctx, dashboard.Filters{City: "Austin", Rows: dashboard.DefaultRows})
	assert.Empty(t, page.Error)
	assert.Equal(t, 2, page.Metrics.Count)
	assert.Equal(t, 1, page.Triage.Tornado.Count)
	assert.Equal(t, 1, page.Triage.Advisories)
}

// TestCachedReaderServesRepeatRenders checks that a cached reader answers a
// second read from the cache after the relation changes underneath it.
func TestCachedReaderServesRepeatRenders(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	connStr := startPostgres(ctx, t)
	exec(ctx, t, connStr, store.Schema)
	exec(ctx, t, connStr, forecastInsert,
		"Austin", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50.0, 70.0, 60.0, 40.0, 5.0, 10.0, "Sunny")

	pool, err := store.OpenPool(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	metrics := observability.NewDashboardMetricsForTesting()
	clock := clockwork.NewFakeClock()
	cached := store.NewCached(
		store.NewPostgres(pool, 5*time.Second, metrics, discardLogger()),
		store.NewMemory(8, clock),
		time.Minute, time.Minute, metrics, discardLogger(),
	)

	first, err := cached.Forecasts(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	exec(ctx, t, connStr, forecastInsert,
		"Dallas", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 40.0, 60.0, 50.0, 40.0, 5.0, 10.0, "Clear")

	second, err := cached.Forecasts(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, second))

	clock.Advance(2 * time.Minute)
	third, err := cached.Forecasts(ctx)
	require.NoError(t, err)
	assert.Len(t, third, 2)
}

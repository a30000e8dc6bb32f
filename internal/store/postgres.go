package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/couchcryptid/weather-automation/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const undefinedTable = "42P01"

const (
	forecastQuery = `SELECT city, date,
	COALESCE(temp_min, 0)::double precision,
	COALESCE(temp_max, 0)::double precision,
	COALESCE(temp_avg, 0)::double precision,
	COALESCE(humidity, 0)::double precision,
	COALESCE(wind_speed, 0)::double precision,
	COALESCE(precipitation_prob, 0)::double precision,
	COALESCE(conditions, '')
FROM forecast_data
ORDER BY city, date`

	alertQuery = `SELECT COALESCE(event, ''), COALESCE(severity, ''), COALESCE(urgency, ''),
	COALESCE(area_desc, ''), COALESCE(CAST(expires AS text), ''),
	COALESCE(headline, ''), COALESCE(instruction, ''), extracted_at
FROM alerts_data
ORDER BY extracted_at DESC`
)

// DBTX is the subset of *pgxpool.Pool the store needs.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OpenPool connects to databaseURL with every session forced read-only.
func OpenPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	cfg.ConnConfig.RuntimeParams["application_name"] = "weather-dashboard"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return pool, nil
}

// Postgres implements Reader over a pgx connection pool.
type Postgres struct {
	db      DBTX
	timeout time.Duration
	metrics *observability.DashboardMetrics
	logger  *slog.Logger
}

// NewPostgres creates a Reader. A zero timeout leaves queries bounded only by
// the caller's context.
func NewPostgres(db DBTX, timeout time.Duration, metrics *observability.DashboardMetrics, logger *slog.Logger) *Postgres {
	return &Postgres{db: db, timeout: timeout, metrics: metrics, logger: logger}
}

// Forecasts loads forecast_data.
func (p *Postgres) Forecasts(ctx context.Context) ([]domain.ForecastRow, error) {
	rows, err := query(ctx, p, ForecastTable, forecastQuery, scanForecast)
	if err != nil {
		return nil, fmt.Errorf("load forecasts: %w", err)
	}
	return rows, nil
}

// Alerts loads alerts_data. An undefined table is not an error.
func (p *Postgres) Alerts(ctx context.Context) ([]domain.AlertRow, error) {
	rows, err := query(ctx, p, AlertTable, alertQuery, scanAlert)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
			p.logger.Debug("alerts table not found, treating as empty")
			return []domain.AlertRow{}, nil
		}
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	return rows, nil
}

// Ping checks connectivity when the underlying handle supports it.
func (p *Postgres) Ping(ctx context.Context) error {
	if pinger, ok := p.db.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func query[T any](ctx context.Context, p *Postgres, table, sql string, scan pgx.RowToFunc[T]) ([]T, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := collect(ctx, p.db, sql, scan)
	p.metrics.StoreDuration.WithLabelValues(table).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.metrics.StoreQueries.WithLabelValues(table, outcome).Inc()
	return result, err
}

func collect[T any](ctx context.Context, db DBTX, sql string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}

func scanForecast(row pgx.CollectableRow) (domain.ForecastRow, error) {
	var r domain.ForecastRow
	err := row.Scan(&r.City, &r.Date, &r.TempMin, &r.TempMax, &r.TempAvg,
		&r.Humidity, &r.WindSpeed, &r.PrecipitationProb, &r.Conditions)
	return r, err
}

func scanAlert(row pgx.CollectableRow) (domain.AlertRow, error) {
	var r domain.AlertRow
	err := row.Scan(&r.Event, &r.Severity, &r.Urgency, &r.AreaDesc, &r.Expires,
		&r.Headline, &r.Instruction, &r.ExtractedAt)
	return r, err
}

// Package store reads the forecast and alert relations that the ETL pipeline
// writes. Nothing in this package mutates the store.
package store

import (
	"context"

	"github.com/couchcryptid/weather-automation/internal/domain"
)

// Relation names.
const (
	ForecastTable = "forecast_data"
	AlertTable    = "alerts_data"
)

// Reader loads the two dashboard relations.
type Reader interface {
	// Forecasts returns every forecast row ordered by city, then date.
	Forecasts(ctx context.Context) ([]domain.ForecastRow, error)
	// Alerts returns every alert row, newest extraction first. A missing
	// alerts relation yields an empty slice.
	Alerts(ctx context.Context) ([]domain.AlertRow, error)
	Ping(ctx context.Context) error
}

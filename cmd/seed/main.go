// Command seed fills a local Postgres with deterministic forecast and alert
// rows so the dashboard can be developed without running the ETL pipeline.
// Tables are created if absent.
//
// Usage:
//
//	go run ./cmd/seed \
//	  -database-url postgres://localhost:5432/weather_project?sslmode=disable \
//	  -start 2026-01-01 -days 7 -reset
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/couchcryptid/weather-automation/internal/store"
	"github.com/jackc/pgx/v5"
)

type city struct {
	name     string
	baseTemp float64 // January mean °F
	humidity float64
	area     string
}

var cities = []city{
	{name: "Austin", baseTemp: 62, humidity: 60, area: "Travis, TX"},
	{name: "Chicago", baseTemp: 28, humidity: 70, area: "Cook, IL"},
	{name: "Dallas", baseTemp: 56, humidity: 62, area: "Dallas, TX"},
	{name: "Denver", baseTemp: 38, humidity: 45, area: "Denver, CO"},
	{name: "Houston", baseTemp: 63, humidity: 75, area: "Harris, TX"},
	{name: "Miami", baseTemp: 76, humidity: 72, area: "Miami-Dade, FL"},
	{name: "New York", baseTemp: 36, humidity: 63, area: "New York, NY"},
	{name: "Phoenix", baseTemp: 66, humidity: 35, area: "Maricopa, AZ"},
}

var conditions = []string{"Sunny", "Clear", "Partly Cloudy", "Cloudy", "Overcast", "Light Rain", "Rain", "Thunderstorm", "Fog", "Snow"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	databaseURL := flag.String("database-url", "postgres://localhost:5432/weather_project?sslmode=disable", "Postgres connection string")
	start := flag.String("start", time.Now().UTC().Format(domain.DateLayout), "first forecast date (YYYY-MM-DD)")
	days := flag.Int("days", 7, "forecast days per city")
	seed := flag.Uint64("seed", 42, "random seed")
	reset := flag.Bool("reset", false, "truncate both tables first")
	flag.Parse()

	from, err := time.Parse(domain.DateLayout, *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	if *days < 1 {
		return errors.New("invalid -days: must be at least 1")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, *databaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	forecasts := mockForecasts(from, *days, *seed)
	alerts := mockAlerts(time.Now().UTC())

	if err := load(ctx, conn, forecasts, alerts, *reset); err != nil {
		return err
	}
	log.Printf("seeded %d forecast rows and %d alert rows", len(forecasts), len(alerts))
	return nil
}

// mockForecasts returns days rows per city starting at from, ordered by city
// then date. The same seed always produces the same rows.
func mockForecasts(from time.Time, days int, seed uint64) []domain.ForecastRow {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rows := make([]domain.ForecastRow, 0, len(cities)*days)
	for _, c := range cities {
		for d := range days {
			avg := c.baseTemp + 8*math.Sin(float64(d)/3) + rng.Float64()*6 - 3
			spread := 8 + rng.Float64()*10
			rows = append(rows, domain.ForecastRow{
				City:              c.name,
				Date:              from.AddDate(0, 0, d),
				TempMin:           round1(avg - spread/2),
				TempMax:           round1(avg + spread/2),
				TempAvg:           round1(avg),
				Humidity:          math.Min(100, math.Max(0, round1(c.humidity+rng.Float64()*20-10))),
				WindSpeed:         round1(2 + rng.Float64()*18),
				PrecipitationProb: float64(rng.IntN(11) * 10),
				Conditions:        conditions[rng.IntN(len(conditions))],
			})
		}
	}
	return rows
}

// mockAlerts covers every banner: a recent tornado warning, a recent severe
// thunderstorm watch, a recent extreme non-convective alert, a minor
// advisory, and a tornado watch outside the 24h window.
func mockAlerts(now time.Time) []domain.AlertRow {
	expires := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }
	return []domain.AlertRow{
		{
			Event: "Tornado Warning", Severity: domain.SeverityExtreme, Urgency: "Immediate",
			AreaDesc: cities[0].area, Expires: expires(time.Hour),
			Headline:    "Tornado Warning issued for Travis County until further notice",
			Instruction: "TAKE COVER NOW! Move to a basement or an interior room on the lowest floor of a sturdy building.",
			ExtractedAt: now.Add(-time.Hour),
		},
		{
			Event: "Severe Thunderstorm Watch", Severity: domain.SeveritySevere, Urgency: "Expected",
			AreaDesc: cities[2].area, Expires: expires(6 * time.Hour),
			Headline:    "Severe Thunderstorm Watch in effect for Dallas County",
			ExtractedAt: now.Add(-2 * time.Hour),
		},
		{
			Event: "Winter Storm Warning", Severity: domain.SeveritySevere, Urgency: "Expected",
			AreaDesc: cities[3].area, Expires: expires(18 * time.Hour),
			Headline:    "Winter Storm Warning for Denver metro, 8 to 14 inches of snow",
			ExtractedAt: now.Add(-3 * time.Hour),
		},
		{
			Event: "Flood Watch", Severity: domain.SeverityMinor, Urgency: "Future",
			AreaDesc: cities[4].area, Expires: expires(24 * time.Hour),
			Headline:    "Flood Watch for Harris County",
			ExtractedAt: now.Add(-2 * time.Hour),
		},
		{
			Event: "Tornado Watch", Severity: domain.SeveritySevere, Urgency: "Expected",
			AreaDesc: cities[2].area, Expires: expires(-24 * time.Hour),
			Headline:    "Tornado Watch expired",
			ExtractedAt: now.Add(-30 * time.Hour),
		},
	}
}

func load(ctx context.Context, conn *pgx.Conn, forecasts []domain.ForecastRow, alerts []domain.AlertRow, reset bool) error {
	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, store.Schema); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
		if reset {
			if _, err := tx.Exec(ctx, "TRUNCATE forecast_data, alerts_data"); err != nil {
				return fmt.Errorf("truncate: %w", err)
			}
		}

		batch := &pgx.Batch{}
		for _, r := range forecasts {
			batch.Queue(`INSERT INTO forecast_data
	(city, date, temp_min, temp_max, temp_avg, humidity, wind_speed, precipitation_prob, conditions)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (city, date) DO UPDATE SET
	temp_min = EXCLUDED.temp_min, temp_max = EXCLUDED.temp_max, temp_avg = EXCLUDED.temp_avg,
	humidity = EXCLUDED.humidity, wind_speed = EXCLUDED.wind_speed,
	precipitation_prob = EXCLUDED.precipitation_prob, conditions = EXCLUDED.conditions`,
				r.City, r.Date, r.TempMin, r.TempMax, r.TempAvg, r.Humidity, r.WindSpeed, r.PrecipitationProb, r.Conditions)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert forecasts: %w", err)
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{store.AlertTable},
			[]string{"event", "severity", "urgency", "area_desc", "expires", "headline", "instruction", "extracted_at"},
			pgx.CopyFromSlice(len(alerts), func(i int) ([]any, error) {
				a := alerts[i]
				return []any{a.Event, a.Severity, a.Urgency, a.AreaDesc, a.Expires, a.Headline, a.Instruction, a.ExtractedAt}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy alerts: %w", err)
		}
		return nil
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

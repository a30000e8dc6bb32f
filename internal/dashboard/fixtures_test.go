package dashboard_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jan(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }

// texasRows covers Austin and Dallas from Jan 1 to Jan 5, ordered by city
// then date as the store returns them.
func texasRows() []domain.ForecastRow {
	var rows []domain.ForecastRow
	for _, c := range []struct {
		city string
		base float64
	}{{"Austin", 70}, {"Dallas", 60}} {
		for d := 1; d <= 5; d++ {
			rows = append(rows, domain.ForecastRow{
				City:              c.city,
				Date:              jan(d),
				TempMin:           c.base - 15 + float64(d),
				TempMax:           c.base + float64(d),
				TempAvg:           c.base - 7 + float64(d),
				Humidity:          50 + float64(d),
				WindSpeed:         5 + float64(d)/2,
				PrecipitationProb: float64(10 * d),
				Conditions:        []string{"Sunny", "Partly Cloudy", "Sunny", "Rain", "Clear"}[d-1],
			})
		}
	}
	return rows
}

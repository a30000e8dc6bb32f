package dashboard_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/weather-automation/internal/dashboard"
	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFilters_CityAndClosedDateRange(t *testing.T) {
	rows := texasRows()

	got := dashboard.ApplyFilters(rows, dashboard.Filters{City: "Austin", From: jan(2), To: jan(3)})

	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "Austin", r.City)
	}
	assert.Equal(t, jan(2), got[0].Date)
	assert.Equal(t, jan(3), got[1].Date)
}

func TestApplyFilters_AllCities(t *testing.T) {
	rows := texasRows()

	assert.Len(t, dashboard.ApplyFilters(rows, dashboard.Filters{}), len(rows))
	assert.Len(t, dashboard.ApplyFilters(rows, dashboard.Filters{City: dashboard.AllCities}), len(rows))
}

func TestApplyFilters_DateRangeIgnoresClock(t *testing.T) {
	rows := []domain.ForecastRow{{City: "Austin", Date: jan(3).Add(18 * time.Hour)}}

	got := dashboard.ApplyFilters(rows, dashboard.Filters{From: jan(3), To: jan(3)})
	assert.Len(t, got, 1)
}

func TestApplyFilters_TemperatureBandOnHigh(t *testing.T) {
	rows := texasRows()

	// Dallas highs are 61..65, Austin 71..75.
	got := dashboard.ApplyFilters(rows, dashboard.Filters{TempLow: ptr(63), TempHigh: ptr(72)})

	var keys []string
	for _, r := range got {
		keys = append(keys, r.Key())
	}
	assert.Equal(t, []string{
		"Austin|2026-01-01", "Austin|2026-01-02",
		"Dallas|2026-01-03", "Dallas|2026-01-04", "Dallas|2026-01-05",
	}, keys)
}

func TestApplyFilters_NoMatch(t *testing.T) {
	got := dashboard.ApplyFilters(texasRows(), dashboard.Filters{City: "El Paso"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyFilters_Idempotent(t *testing.T) {
	rows := texasRows()
	f := dashboard.Filters{City: "Dallas", From: jan(2), TempHigh: ptr(64)}

	first := dashboard.ApplyFilters(rows, f)
	second := dashboard.ApplyFilters(texasRows(), f)
	again := dashboard.ApplyFilters(first, f)

	assert.Empty(t, cmp.Diff(first, second))
	assert.Empty(t, cmp.Diff(first, again))
	assert.Empty(t, cmp.Diff(texasRows(), rows), "input must not be modified")
}

func TestOptions(t *testing.T) {
	rows := texasRows()
	rows[5].TempMin = 45.5
	rows[4].TempMax = 75.2

	opts := dashboard.Options(rows)

	assert.Equal(t, []string{"Austin", "Dallas"}, opts.Cities)
	assert.Equal(t, jan(1), opts.MinDate)
	assert.Equal(t, jan(5), opts.MaxDate)
	assert.Equal(t, 45, opts.TempLow)
	assert.Equal(t, 76, opts.TempHigh)
}

func TestOptions_Empty(t *testing.T) {
	opts := dashboard.Options(nil)
	assert.Empty(t, opts.Cities)
	assert.True(t, opts.MinDate.IsZero())
}

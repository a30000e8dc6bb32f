package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
)

// AllCities selects every city.
const AllCities = "All"

// Row limits offered by the forecast table.
var RowChoices = []int{10, 25, 50, 100}

// DefaultRows is the table's initial row limit.
const DefaultRows = 25

// Filters is the user's selection. Zero values leave a dimension
// unconstrained.
type Filters struct {
	City       string    `json:"city,omitempty"`
	From       time.Time `json:"from,omitzero"`
	To         time.Time `json:"to,omitzero"`
	TempLow    *float64  `json:"tmin,omitempty"`
	TempHigh   *float64  `json:"tmax,omitempty"`
	Rows       int       `json:"rows"`
	AllColumns bool      `json:"all"`
}

// FilterOptions are the bounds offered to the user, derived from the data.
type FilterOptions struct {
	Cities   []string  `json:"cities"`
	MinDate  time.Time `json:"min_date,omitzero"`
	MaxDate  time.Time `json:"max_date,omitzero"`
	TempLow  int       `json:"temp_low"`
	TempHigh int       `json:"temp_high"`
}

// ApplyFilters returns the rows matching f, in input order. The date range
// is closed on both ends and compares calendar dates. The temperature band
// applies to TempMax.
func ApplyFilters(rows []domain.ForecastRow, f Filters) []domain.ForecastRow {
	from, to := civilDate(f.From), civilDate(f.To)

	out := make([]domain.ForecastRow, 0, len(rows))
	for _, r := range rows {
		if f.City != "" && f.City != AllCities && r.City != f.City {
			continue
		}
		d := civilDate(r.Date)
		if !f.From.IsZero() && d.Before(from) {
			continue
		}
		if !f.To.IsZero() && d.After(to) {
			continue
		}
		if f.TempLow != nil && r.TempMax < *f.TempLow {
			continue
		}
		if f.TempHigh != nil && r.TempMax > *f.TempHigh {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Options derives the selectable cities, date bounds, and temperature bounds.
func Options(rows []domain.ForecastRow) FilterOptions {
	opts := FilterOptions{Cities: []string{}}
	if len(rows) == 0 {
		return opts
	}

	seen := make(map[string]struct{})
	minDate, maxDate := civilDate(rows[0].Date), civilDate(rows[0].Date)
	low, high := rows[0].TempMin, rows[0].TempMax
	for _, r := range rows {
		if _, ok := seen[r.City]; !ok {
			seen[r.City] = struct{}{}
			opts.Cities = append(opts.Cities, r.City)
		}
		d := civilDate(r.Date)
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
		low = math.Min(low, r.TempMin)
		high = math.Max(high, r.TempMax)
	}
	sort.Strings(opts.Cities)

	opts.MinDate = minDate
	opts.MaxDate = maxDate
	opts.TempLow = int(math.Floor(low))
	opts.TempHigh = int(math.Ceil(high))
	return opts
}

// civilDate drops the clock part of t, keeping its calendar date.
func civilDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

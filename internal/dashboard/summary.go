package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
)

// TempBand buckets an average temperature for card styling.
type TempBand string

const (
	BandHot  TempBand = "hot"
	BandWarm TempBand = "warm"
	BandMild TempBand = "mild"
	BandCool TempBand = "cool"
)

// BandFor maps a temperature in °F to its band.
func BandFor(temp float64) TempBand {
	switch {
	case temp >= 90:
		return BandHot
	case temp >= 75:
		return BandWarm
	case temp >= 60:
		return BandMild
	default:
		return BandCool
	}
}

// CityCard is one city's conditions on the current date.
type CityCard struct {
	City       string   `json:"city"`
	TempAvg    float64  `json:"temp_avg"`
	TempMax    float64  `json:"temp_max"`
	TempMin    float64  `json:"temp_min"`
	Humidity   float64  `json:"humidity"`
	WindSpeed  float64  `json:"wind_speed"`
	Conditions string   `json:"conditions"`
	Band       TempBand `json:"band"`
}

// Leader names the city holding an extreme value.
type Leader struct {
	City  string  `json:"city"`
	Value float64 `json:"value"`
}

// Current is the "current temperatures" section. The latest date present in
// the forecast relation stands in for today.
type Current struct {
	Date      time.Time  `json:"date,omitzero"`
	Cards     []CityCard `json:"cards"`
	Hottest   Leader     `json:"hottest"`
	Coolest   Leader     `json:"coolest"`
	MostHumid Leader     `json:"most_humid"`
	Windiest  Leader     `json:"windiest"`
}

// CurrentConditions builds a card per city for the latest date in rows,
// sorted by city. Ties for a leader go to the first city alphabetically.
func CurrentConditions(rows []domain.ForecastRow) Current {
	cur := Current{Cards: []CityCard{}}
	if len(rows) == 0 {
		return cur
	}

	latest := civilDate(rows[0].Date)
	for _, r := range rows[1:] {
		if d := civilDate(r.Date); d.After(latest) {
			latest = d
		}
	}
	cur.Date = latest

	var today []domain.ForecastRow
	for _, r := range rows {
		if civilDate(r.Date).Equal(latest) {
			today = append(today, r)
		}
	}
	sort.SliceStable(today, func(i, j int) bool { return today[i].City < today[j].City })

	for i, r := range today {
		cur.Cards = append(cur.Cards, CityCard{
			City:       r.City,
			TempAvg:    r.TempAvg,
			TempMax:    r.TempMax,
			TempMin:    r.TempMin,
			Humidity:   r.Humidity,
			WindSpeed:  r.WindSpeed,
			Conditions: r.Conditions,
			Band:       BandFor(r.TempAvg),
		})
		if i == 0 || r.TempMax > cur.Hottest.Value {
			cur.Hottest = Leader{City: r.City, Value: r.TempMax}
		}
		if i == 0 || r.TempMin < cur.Coolest.Value {
			cur.Coolest = Leader{City: r.City, Value: r.TempMin}
		}
		if i == 0 || r.Humidity > cur.MostHumid.Value {
			cur.MostHumid = Leader{City: r.City, Value: r.Humidity}
		}
		if i == 0 || r.WindSpeed > cur.Windiest.Value {
			cur.Windiest = Leader{City: r.City, Value: r.WindSpeed}
		}
	}
	return cur
}

// Metrics are the headline averages over the filtered rows. Deltas compare
// against the unfiltered averages. All values are zero when Count is zero.
type Metrics struct {
	Count        int     `json:"count"`
	AvgHigh      float64 `json:"avg_high"`
	AvgHighDelta float64 `json:"avg_high_delta"`
	AvgLow       float64 `json:"avg_low"`
	AvgLowDelta  float64 `json:"avg_low_delta"`
	AvgHumidity  float64 `json:"avg_humidity"`
	AvgPrecip    float64 `json:"avg_precip"`
}

// KeyMetrics averages the filtered rows and compares highs and lows with all.
func KeyMetrics(filtered, all []domain.ForecastRow) Metrics {
	m := Metrics{Count: len(filtered)}
	if len(filtered) == 0 {
		return m
	}
	m.AvgHigh = meanOf(filtered, func(r domain.ForecastRow) float64 { return r.TempMax })
	m.AvgLow = meanOf(filtered, func(r domain.ForecastRow) float64 { return r.TempMin })
	m.AvgHumidity = meanOf(filtered, func(r domain.ForecastRow) float64 { return r.Humidity })
	m.AvgPrecip = meanOf(filtered, func(r domain.ForecastRow) float64 { return r.PrecipitationProb })
	if len(all) > 0 {
		m.AvgHighDelta = m.AvgHigh - meanOf(all, func(r domain.ForecastRow) float64 { return r.TempMax })
		m.AvgLowDelta = m.AvgLow - meanOf(all, func(r domain.ForecastRow) float64 { return r.TempMin })
	}
	return m
}

// Stat describes one column within a city. Std is the sample standard
// deviation and is nil for a single row.
type Stat struct {
	Mean float64  `json:"mean"`
	Min  float64  `json:"min"`
	Max  float64  `json:"max"`
	Std  *float64 `json:"std"`
}

// CityStats is one row of the detailed statistics table.
type CityStats struct {
	City         string  `json:"city"`
	Rows         int     `json:"rows"`
	TempMax      Stat    `json:"temp_max"`
	TempMin      Stat    `json:"temp_min"`
	HumidityMean float64 `json:"humidity_mean"`
	PrecipMean   float64 `json:"precipitation_prob_mean"`
	WindMean     float64 `json:"wind_speed_mean"`
}

// CityStatistics groups rows by city, sorted by city, with values rounded
// to two decimals.
func CityStatistics(rows []domain.ForecastRow) []CityStats {
	groups := groupByCity(rows)
	out := make([]CityStats, 0, len(groups))
	for _, city := range sortedKeys(groups) {
		g := groups[city]
		out = append(out, CityStats{
			City:         city,
			Rows:         len(g),
			TempMax:      statOf(g, func(r domain.ForecastRow) float64 { return r.TempMax }),
			TempMin:      statOf(g, func(r domain.ForecastRow) float64 { return r.TempMin }),
			HumidityMean: round(meanOf(g, func(r domain.ForecastRow) float64 { return r.Humidity }), 2),
			PrecipMean:   round(meanOf(g, func(r domain.ForecastRow) float64 { return r.PrecipitationProb }), 2),
			WindMean:     round(meanOf(g, func(r domain.ForecastRow) float64 { return r.WindSpeed }), 2),
		})
	}
	return out
}

func statOf(rows []domain.ForecastRow, field func(domain.ForecastRow) float64) Stat {
	mean := meanOf(rows, field)
	s := Stat{Mean: round(mean, 2), Min: field(rows[0]), Max: field(rows[0])}
	var sq float64
	for _, r := range rows {
		v := field(r)
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sq += (v - mean) * (v - mean)
	}
	if len(rows) > 1 {
		std := round(math.Sqrt(sq/float64(len(rows)-1)), 2)
		s.Std = &std
	}
	return s
}

func meanOf(rows []domain.ForecastRow, field func(domain.ForecastRow) float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += field(r)
	}
	return sum / float64(len(rows))
}

func groupByCity(rows []domain.ForecastRow) map[string][]domain.ForecastRow {
	groups := make(map[string][]domain.ForecastRow)
	for _, r := range rows {
		groups[r.City] = append(groups[r.City], r)
	}
	return groups
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

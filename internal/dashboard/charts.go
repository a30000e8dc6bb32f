package dashboard

import (
	"sort"

	"github.com/couchcryptid/weather-automation/internal/domain"
)

const topConditions = 10

// Point is one (date, value) sample.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series is a named line.
type Series struct {
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Dashed bool    `json:"dashed,omitempty"`
	Points []Point `json:"points"`
}

// CityAverage is one bar group of the city comparison.
type CityAverage struct {
	City string  `json:"city"`
	High float64 `json:"high"`
	Low  float64 `json:"low"`
	Avg  float64 `json:"avg"`
}

// ScatterPoint is one marker of the humidity vs precipitation plot, sized
// by TempMax.
type ScatterPoint struct {
	City       string  `json:"city"`
	Date       string  `json:"date"`
	Humidity   float64 `json:"humidity"`
	Precip     float64 `json:"precipitation_prob"`
	TempMax    float64 `json:"temp_max"`
	Conditions string  `json:"conditions"`
}

// ConditionCount is one slice of the conditions distribution.
type ConditionCount struct {
	Conditions string `json:"conditions"`
	Count      int    `json:"count"`
}

// Heatmap holds the mean TempMax per city and date. A nil cell has no data.
type Heatmap struct {
	Cities []string     `json:"cities"`
	Dates  []string     `json:"dates"`
	Labels []string     `json:"labels"`
	Cells  [][]*float64 `json:"cells"`
}

// Charts are the render instructions for every plot on the page.
type Charts struct {
	TemperatureTrend []Series         `json:"temperature_trend"`
	CityAverages     []CityAverage    `json:"city_averages"`
	HumidityPrecip   []ScatterPoint   `json:"humidity_precipitation"`
	Conditions       []ConditionCount `json:"conditions"`
	Wind             []Series         `json:"wind"`
	Heatmap          Heatmap          `json:"heatmap"`
}

// BuildCharts derives every plot from the filtered rows.
func BuildCharts(rows []domain.ForecastRow) Charts {
	return Charts{
		TemperatureTrend: temperatureTrend(rows),
		CityAverages:     cityAverages(rows),
		HumidityPrecip:   humidityPrecip(rows),
		Conditions:       conditionCounts(rows),
		Wind:             windSeries(rows),
		Heatmap:          heatmap(rows),
	}
}

// temperatureTrend emits a high and a low series per city, cities in order
// of first appearance.
func temperatureTrend(rows []domain.ForecastRow) []Series {
	out := []Series{}
	for _, city := range citiesInOrder(rows) {
		g := byDate(filterCity(rows, city))
		high := Series{Name: city + " - High", City: city, Points: make([]Point, 0, len(g))}
		low := Series{Name: city + " - Low", City: city, Dashed: true, Points: make([]Point, 0, len(g))}
		for _, r := range g {
			d := r.Date.Format(domain.DateLayout)
			high.Points = append(high.Points, Point{Date: d, Value: r.TempMax})
			low.Points = append(low.Points, Point{Date: d, Value: r.TempMin})
		}
		out = append(out, high, low)
	}
	return out
}

func cityAverages(rows []domain.ForecastRow) []CityAverage {
	groups := groupByCity(rows)
	out := make([]CityAverage, 0, len(groups))
	for _, city := range sortedKeys(groups) {
		g := groups[city]
		out = append(out, CityAverage{
			City: city,
			High: round(meanOf(g, func(r domain.ForecastRow) float64 { return r.TempMax }), 1),
			Low:  round(meanOf(g, func(r domain.ForecastRow) float64 { return r.TempMin }), 1),
			Avg:  round(meanOf(g, func(r domain.ForecastRow) float64 { return r.TempAvg }), 1),
		})
	}
	return out
}

func humidityPrecip(rows []domain.ForecastRow) []ScatterPoint {
	out := make([]ScatterPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, ScatterPoint{
			City:       r.City,
			Date:       r.Date.Format(domain.DateLayout),
			Humidity:   r.Humidity,
			Precip:     r.PrecipitationProb,
			TempMax:    r.TempMax,
			Conditions: r.Conditions,
		})
	}
	return out
}

// conditionCounts returns the ten most frequent conditions, most frequent
// first, ties broken by name.
func conditionCounts(rows []domain.ForecastRow) []ConditionCount {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Conditions]++
	}
	out := make([]ConditionCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, ConditionCount{Conditions: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Conditions < out[j].Conditions
	})
	if len(out) > topConditions {
		out = out[:topConditions]
	}
	return out
}

func windSeries(rows []domain.ForecastRow) []Series {
	out := []Series{}
	for _, city := range citiesInOrder(rows) {
		g := byDate(filterCity(rows, city))
		s := Series{Name: city, City: city, Points: make([]Point, 0, len(g))}
		for _, r := range g {
			s.Points = append(s.Points, Point{Date: r.Date.Format(domain.DateLayout), Value: r.WindSpeed})
		}
		out = append(out, s)
	}
	return out
}

func heatmap(rows []domain.ForecastRow) Heatmap {
	type acc struct {
		sum float64
		n   int
	}
	cells := make(map[string]map[string]*acc)
	dates := make(map[string]struct{})
	for _, r := range rows {
		d := r.Date.Format(domain.DateLayout)
		dates[d] = struct{}{}
		if cells[r.City] == nil {
			cells[r.City] = make(map[string]*acc)
		}
		a := cells[r.City][d]
		if a == nil {
			a = &acc{}
			cells[r.City][d] = a
		}
		a.sum += r.TempMax
		a.n++
	}

	h := Heatmap{
		Cities: sortedKeys(cells),
		Dates:  sortedKeys(dates),
		Cells:  [][]*float64{},
	}
	h.Labels = make([]string, len(h.Dates))
	for i, d := range h.Dates {
		h.Labels[i] = d[5:7] + "/" + d[8:10]
	}
	for _, city := range h.Cities {
		row := make([]*float64, len(h.Dates))
		for i, d := range h.Dates {
			if a := cells[city][d]; a != nil {
				v := a.sum / float64(a.n)
				row[i] = &v
			}
		}
		h.Cells = append(h.Cells, row)
	}
	return h
}

func citiesInOrder(rows []domain.ForecastRow) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		if _, ok := seen[r.City]; !ok {
			seen[r.City] = struct{}{}
			out = append(out, r.City)
		}
	}
	return out
}

func filterCity(rows []domain.ForecastRow, city string) []domain.ForecastRow {
	var out []domain.ForecastRow
	for _, r := range rows {
		if r.City == city {
			out = append(out, r)
		}
	}
	return out
}

// byDate sorts rows by date in place, keeping input order for equal dates.
func byDate(rows []domain.ForecastRow) []domain.ForecastRow {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

package domain

import "time"

// DateLayout is the calendar-date format used for forecast dates in query
// parameters and CSV exports.
const DateLayout = "2006-01-02"

// ForecastRow is one row of the forecast_data relation. Rows are unique by
// (City, Date).
type ForecastRow struct {
	City              string    `json:"city"`
	Date              time.Time `json:"date"`
	TempMin           float64   `json:"temp_min"`
	TempMax           float64   `json:"temp_max"`
	TempAvg           float64   `json:"temp_avg"`
	Humidity          float64   `json:"humidity"`
	WindSpeed         float64   `json:"wind_speed"`
	PrecipitationProb float64   `json:"precipitation_prob"`
	Conditions        string    `json:"conditions"`
}

// Key identifies the row by city and calendar date.
func (r ForecastRow) Key() string {
	return r.City + "|" + r.Date.Format(DateLayout)
}

// AlertRow is one row of the alerts_data relation, as extracted from the NWS
// active alerts feed. Rows carry no uniqueness guarantee.
type AlertRow struct {
	Event       string    `json:"event"`
	Severity    string    `json:"severity"`
	Urgency     string    `json:"urgency"`
	AreaDesc    string    `json:"area_desc"`
	Expires     string    `json:"expires"`
	Headline    string    `json:"headline"`
	Instruction string    `json:"instruction"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// NWS CAP severity levels.
const (
	SeverityExtreme  = "Extreme"
	SeveritySevere   = "Severe"
	SeverityModerate = "Moderate"
	SeverityMinor    = "Minor"
)

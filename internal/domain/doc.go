// Package domain models the weather dataset shared by the pipeline runner and
// the dashboard.
//
// # Forecast Data
//
// The external ETL pipeline loads one row per (city, date) into the
// forecast_data relation. Temperatures are degrees Fahrenheit, wind speed is
// mph, and humidity and precipitation probability are percentages (0–100).
// Conditions is a short free-text label such as "Partly Cloudy".
//
// # Alert Data
//
// Severe-weather alerts come from the NWS active alerts feed
// (https://api.weather.gov/alerts/active) and are appended to alerts_data
// on every pipeline run, stamped with extracted_at. The same alert can
// appear on several runs, so readers must not assume uniqueness.
//
// Event labels follow NWS product names:
//
//	"Tornado Warning", "Tornado Watch"
//	"Severe Thunderstorm Warning", "Severe Thunderstorm Watch"
//	"Flash Flood Warning", "Flood Watch", "Winter Storm Warning", ...
//
// Severity uses the CAP scale: Extreme, Severe, Moderate, Minor, Unknown.
// Expires is kept as the string the feed returned.
//
// # Pipeline Results
//
// A pipeline invocation reports its elapsed time and the two row
// collections it loaded. Over the wire (stdout of the ETL program or an HTTP
// response) this is:
//
//	{"execution_time": 12.34, "data": {"current": [...], "forecast": [...]}}
//
// where execution_time is in seconds. A null or empty body means the
// pipeline produced no result, which the runner treats as a failed attempt.
package domain

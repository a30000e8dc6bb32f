// Command validate checks a dashboard CSV export: header and field parsing,
// uniqueness of (city, date), value ranges, and temperature ordering. With
// -against it also checks that a second export holds the same rows, which is
// how an export is compared with a re-export of the same filters.
//
// Usage:
//
//	go run ./cmd/validate -csv weather_data_20260115.csv
//	go run ./cmd/validate -csv before.csv -against after.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/weather-automation/internal/dashboard"
	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/google/go-cmp/cmp"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the CSV export to validate")
	againstPath := flag.String("against", "", "optional second export that must hold the same rows")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *csvPath, *againstPath); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, csvPath, againstPath string) int {
	fmt.Fprintln(w, "=== Weather Export Validation ===")
	fmt.Fprintln(w)

	rows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load %s: %v\n", csvPath, err)
		return 1
	}

	phases := []*phase{
		validateUniqueKeys(rows),
		validateRanges(rows),
		validateTemperatureOrder(rows),
	}

	if againstPath != "" {
		other, err := loadCSV(againstPath)
		if err != nil {
			fmt.Fprintf(w, "FATAL: load %s: %v\n", againstPath, err)
			return 1
		}
		phases = append(phases, validateParity(rows, other))
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d rows, %d cities\n", len(rows), countCities(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func loadCSV(path string) ([]domain.ForecastRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dashboard.ReadCSV(f)
}

func countCities(rows []domain.ForecastRow) int {
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[r.City] = struct{}{}
	}
	return len(seen)
}

func validateUniqueKeys(rows []domain.ForecastRow) *phase {
	p := &phase{name: "Unique (city, date)"}
	seen := make(map[string]int, len(rows))
	for i, r := range rows {
		if r.City == "" {
			p.errorf("row %d: empty city", i+1)
		}
		if first, ok := seen[r.Key()]; ok {
			p.errorf("row %d: duplicate %s (first at row %d)", i+1, r.Key(), first)
			continue
		}
		seen[r.Key()] = i + 1
	}
	return p
}

func validateRanges(rows []domain.ForecastRow) *phase {
	p := &phase{name: "Value ranges"}
	for i, r := range rows {
		checkPercent(p, i+1, "humidity", r.Humidity)
		checkPercent(p, i+1, "precipitation_prob", r.PrecipitationProb)
		if r.WindSpeed < 0 {
			p.errorf("row %d: wind_speed %v is negative", i+1, r.WindSpeed)
		}
	}
	return p
}

func checkPercent(p *phase, row int, field string, v float64) {
	if v < 0 || v > 100 {
		p.errorf("row %d: %s %v outside 0..100", row, field, v)
	}
}

func validateTemperatureOrder(rows []domain.ForecastRow) *phase {
	p := &phase{name: "temp_min <= temp_avg <= temp_max"}
	for i, r := range rows {
		if r.TempMin > r.TempAvg || r.TempAvg > r.TempMax {
			p.errorf("row %d (%s): min %v, avg %v, max %v", i+1, r.Key(), r.TempMin, r.TempAvg, r.TempMax)
		}
	}
	return p
}

// validateParity compares two exports by (city, date), ignoring row order.
func validateParity(a, b []domain.ForecastRow) *phase {
	p := &phase{name: "Export parity"}
	index := func(rows []domain.ForecastRow) map[string]domain.ForecastRow {
		m := make(map[string]domain.ForecastRow, len(rows))
		for _, r := range rows {
			m[r.Key()] = r
		}
		return m
	}
	left, right := index(a), index(b)

	for k, l := range left {
		r, ok := right[k]
		if !ok {
			p.errorf("%s missing from second export", k)
			continue
		}
		if diff := cmp.Diff(l, r); diff != "" {
			p.errorf("%s differs (-first +second):\n%s", k, diff)
		}
	}
	for k := range right {
		if _, ok := left[k]; !ok {
			p.errorf("%s missing from first export", k)
		}
	}
	return p
}

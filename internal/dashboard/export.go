package dashboard

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
)

// CSVHeader is the column order of a forecast export.
var CSVHeader = []string{
	"city", "date", "temp_min", "temp_max", "temp_avg",
	"humidity", "wind_speed", "precipitation_prob", "conditions",
}

// ExportFilename names a download generated at now.
func ExportFilename(now time.Time) string {
	return "weather_data_" + now.Format("20060102") + ".csv"
}

// WriteCSV writes a header row and one record per forecast row.
func WriteCSV(w io.Writer, rows []domain.ForecastRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(toRecord(r)); err != nil {
			return fmt.Errorf("write row %s: %w", r.Key(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an export produced by WriteCSV.
func ReadCSV(r io.Reader) ([]domain.ForecastRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = trimBOM(header[0])
	if !slices.Equal(header, CSVHeader) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	rows := []domain.ForecastRow{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

func toRecord(r domain.ForecastRow) []string {
	return []string{
		r.City,
		r.Date.Format(domain.DateLayout),
		formatFloat(r.TempMin),
		formatFloat(r.TempMax),
		formatFloat(r.TempAvg),
		formatFloat(r.Humidity),
		formatFloat(r.WindSpeed),
		formatFloat(r.PrecipitationProb),
		r.Conditions,
	}
}

func fromRecord(rec []string) (domain.ForecastRow, error) {
	date, err := time.Parse(domain.DateLayout, rec[1])
	if err != nil {
		return domain.ForecastRow{}, fmt.Errorf("date: %w", err)
	}
	r := domain.ForecastRow{City: rec[0], Date: date, Conditions: rec[8]}

	nums := []*float64{&r.TempMin, &r.TempMax, &r.TempAvg, &r.Humidity, &r.WindSpeed, &r.PrecipitationProb}
	for i, dst := range nums {
		v, err := strconv.ParseFloat(rec[i+2], 64)
		if err != nil {
			return domain.ForecastRow{}, fmt.Errorf("%s: %w", CSVHeader[i+2], err)
		}
		*dst = v
	}
	return r, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

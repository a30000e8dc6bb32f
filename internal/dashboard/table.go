package dashboard

import (
	"slices"
	"sort"

	"github.com/couchcryptid/weather-automation/internal/domain"
)

// Column sets for the forecast table.
var (
	AllColumns     = CSVHeader
	SummaryColumns = []string{"city", "date", "temp_max", "temp_min", "conditions", "humidity", "precipitation_prob", "wind_speed"}
)

// TableView is the forecast table as display strings.
type TableView struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Limit   int        `json:"limit"`
	Total   int        `json:"total"`
}

// Table takes the first limit rows, then orders them by city and date. A
// limit outside RowChoices falls back to DefaultRows.
func Table(rows []domain.ForecastRow, limit int, allColumns bool) TableView {
	if !slices.Contains(RowChoices, limit) {
		limit = DefaultRows
	}
	cols := SummaryColumns
	if allColumns {
		cols = AllColumns
	}

	head := slices.Clone(rows[:min(limit, len(rows))])
	sort.SliceStable(head, func(i, j int) bool {
		if head[i].City != head[j].City {
			return head[i].City < head[j].City
		}
		return head[i].Date.Before(head[j].Date)
	})

	view := TableView{Columns: cols, Rows: make([][]string, 0, len(head)), Limit: limit, Total: len(rows)}
	for _, r := range head {
		fields := recordFields(r)
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = fields[c]
		}
		view.Rows = append(view.Rows, line)
	}
	return view
}

func recordFields(r domain.ForecastRow) map[string]string {
	rec := toRecord(r)
	fields := make(map[string]string, len(rec))
	for i, name := range CSVHeader {
		fields[name] = rec[i]
	}
	return fields
}

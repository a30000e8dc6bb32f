package httpadapter

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-automation/internal/dashboard"
	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(domain.DateLayout)
	},
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	"optnum": func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	},
	"std": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return strconv.FormatFloat(*v, 'f', 2, 64)
	},
	"exportURL":  exportURL,
	"rowChoices": func() []int { return dashboard.RowChoices },
	"allCities":  func() string { return dashboard.AllCities },
}).ParseFS(templateFS, "templates/dashboard.html"))

// DashboardService is what the dashboard routes need from dashboard.Service.
type DashboardService interface {
	Render(ctx context.Context, f dashboard.Filters) dashboard.Page
	Filtered(ctx context.Context, f dashboard.Filters) ([]domain.ForecastRow, error)
}

// DashboardHandler maps dashboard requests onto a DashboardService.
type DashboardHandler struct {
	service DashboardService
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(svc DashboardService, clock clockwork.Clock, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{service: svc, clock: clock, logger: logger}
}

// RegisterRoutes mounts the page, JSON, and CSV endpoints.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandlePage)
	r.Get("/api/dashboard", h.HandleDashboard)
	r.Get("/api/forecasts", h.HandleForecasts)
	r.Get("/export.csv", h.HandleExport)
}

// HandlePage renders the HTML dashboard.
func (h *DashboardHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilters(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page := h.service.Render(r.Context(), f)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.logger.Error("render template failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

// HandleDashboard returns the whole page as JSON. A load failure is
// reported in the page's error field with a 200 status, as on the HTML page.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilters(r.URL.Query())
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, h.service.Render(r.Context(), f))
}

// HandleForecasts returns the filtered forecast rows as JSON.
func (h *DashboardHandler) HandleForecasts(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilters(r.URL.Query())
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := h.service.Filtered(r.Context(), f)
	if err != nil {
		h.logger.Error("load forecasts failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusBadGateway, map[string]string{"error": "Error loading data: " + err.Error()})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, rows)
}

// HandleExport streams the filtered rows as a CSV attachment.
func (h *DashboardHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilters(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.service.Filtered(r.Context(), f)
	if err != nil {
		h.logger.Error("load forecasts failed", "error", err)
		http.Error(w, "Error loading data: "+err.Error(), http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := dashboard.WriteCSV(&buf, rows); err != nil {
		h.logger.Error("write csv failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dashboard.ExportFilename(h.clock.Now())))
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

// exportURL links the CSV download for the rows selected by f. Display-only
// settings (rows, all) are left out.
func exportURL(f dashboard.Filters) template.URL {
	q := url.Values{}
	if f.City != "" && f.City != dashboard.AllCities {
		q.Set("city", f.City)
	}
	if !f.From.IsZero() {
		q.Set("from", f.From.Format(domain.DateLayout))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.Format(domain.DateLayout))
	}
	if f.TempLow != nil {
		q.Set("tmin", strconv.FormatFloat(*f.TempLow, 'f', -1, 64))
	}
	if f.TempHigh != nil {
		q.Set("tmax", strconv.FormatFloat(*f.TempHigh, 'f', -1, 64))
	}
	if len(q) == 0 {
		return "/export.csv"
	}
	return template.URL("/export.csv?" + q.Encode()) //nolint:gosec // built from parsed filters, values encoded
}

// ParseFilters reads city, from, to, tmin, tmax, rows, and all from q.
// Missing parameters leave the dimension unconstrained; rows defaults to
// dashboard.DefaultRows.
func ParseFilters(q url.Values) (dashboard.Filters, error) {
	f := dashboard.Filters{City: q.Get("city"), Rows: dashboard.DefaultRows}

	for _, d := range []struct {
		key string
		dst *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		if s := q.Get(d.key); s != "" {
			t, err := time.Parse(domain.DateLayout, s)
			if err != nil {
				return dashboard.Filters{}, fmt.Errorf("invalid %s: want YYYY-MM-DD", d.key)
			}
			*d.dst = t
		}
	}

	for _, p := range []struct {
		key string
		dst **float64
	}{{"tmin", &f.TempLow}, {"tmax", &f.TempHigh}} {
		if s := q.Get(p.key); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return dashboard.Filters{}, fmt.Errorf("invalid %s: want a number", p.key)
			}
			*p.dst = &v
		}
	}

	if s := q.Get("rows"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return dashboard.Filters{}, fmt.Errorf("invalid rows: want one of %v", dashboard.RowChoices)
		}
		f.Rows = n
	}

	if s := q.Get("all"); s != "" {
		all, err := strconv.ParseBool(s)
		if err != nil {
			return dashboard.Filters{}, errors.New("invalid all: want true or false")
		}
		f.AllColumns = all
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return dashboard.Filters{}, errors.New("invalid range: to before from")
	}
	return f, nil
}

package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/couchcryptid/weather-automation/internal/observability"
	"github.com/couchcryptid/weather-automation/internal/store"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// Page is everything one render pass shows. When Error is set the data
// sections are empty.
type Page struct {
	GeneratedAt  time.Time     `json:"generated_at"`
	Filters      Filters       `json:"filters"`
	Options      FilterOptions `json:"options"`
	Current      Current       `json:"current"`
	Triage       AlertTriage   `json:"triage"`
	Metrics      Metrics       `json:"metrics"`
	Charts       Charts        `json:"charts"`
	AlertHistory *AlertHistory `json:"alert_history,omitempty"`
	Table        TableView     `json:"table"`
	Statistics   []CityStats   `json:"statistics"`
	Error        string        `json:"error,omitempty"`
}

// Service builds pages from a store.Reader. Every call reads afresh; any
// caching belongs to the reader.
type Service struct {
	reader  store.Reader
	window  time.Duration
	clock   clockwork.Clock
	metrics *observability.DashboardMetrics
	logger  *slog.Logger
}

// NewService creates a Service. window bounds which alerts count as recent.
func NewService(reader store.Reader, window time.Duration, clock clockwork.Clock, metrics *observability.DashboardMetrics, logger *slog.Logger) *Service {
	return &Service{reader: reader, window: window, clock: clock, metrics: metrics, logger: logger}
}

// Load reads both relations concurrently.
func (s *Service) Load(ctx context.Context) ([]domain.ForecastRow, []domain.AlertRow, error) {
	var (
		forecasts []domain.ForecastRow
		alerts    []domain.AlertRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		forecasts, err = s.reader.Forecasts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		alerts, err = s.reader.Alerts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return forecasts, alerts, nil
}

// Filtered returns the forecast rows matching f.
func (s *Service) Filtered(ctx context.Context, f Filters) ([]domain.ForecastRow, error) {
	rows, err := s.reader.Forecasts(ctx)
	if err != nil {
		return nil, err
	}
	return ApplyFilters(rows, f), nil
}

// Render runs one render pass. A read failure is reported inline on the
// page rather than returned.
func (s *Service) Render(ctx context.Context, f Filters) Page {
	start := s.clock.Now()
	defer func() { s.metrics.RenderDuration.Observe(s.clock.Since(start).Seconds()) }()

	page := Page{GeneratedAt: start, Filters: f}

	forecasts, alerts, err := s.Load(ctx)
	if err != nil {
		s.logger.Error("dashboard load failed", "error", err)
		s.metrics.RenderErrors.Inc()
		page.Error = "Error loading data: " + err.Error()
		return page
	}

	return Build(page, forecasts, alerts, s.window)
}

// Build fills page from already loaded rows.
func Build(page Page, forecasts []domain.ForecastRow, alerts []domain.AlertRow, window time.Duration) Page {
	filtered := ApplyFilters(forecasts, page.Filters)

	page.Options = Options(forecasts)
	page.Current = CurrentConditions(forecasts)
	page.Triage = Triage(alerts, page.GeneratedAt, window)
	page.Metrics = KeyMetrics(filtered, forecasts)
	page.Charts = BuildCharts(filtered)
	if len(alerts) > 0 {
		h := BuildAlertHistory(alerts)
		page.AlertHistory = &h
	}
	page.Table = Table(filtered, page.Filters.Rows, page.Filters.AllColumns)
	page.Statistics = CityStatistics(filtered)
	return page
}

// CheckReadiness reports whether the store answers.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.reader.Ping(ctx)
}

package dashboard_test

import (
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/weather-automation/internal/dashboard"
	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)

func alert(event, severity string, age time.Duration) domain.AlertRow {
	return domain.AlertRow{
		Event:       event,
		Severity:    severity,
		Urgency:     "Immediate",
		AreaDesc:    "Travis, TX",
		Headline:    event + " issued",
		ExtractedAt: now.Add(-age),
	}
}

func TestTriage_StaleTornadoExcluded(t *testing.T) {
	alerts := []domain.AlertRow{
		alert("Tornado Warning", domain.SeverityExtreme, time.Hour),
		alert("Flood Watch", domain.SeverityMinor, 2*time.Hour),
		alert("Tornado Watch", domain.SeveritySevere, 30*time.Hour),
	}

	tr := dashboard.Triage(alerts, now, 24*time.Hour)

	assert.Equal(t, 2, tr.Recent)
	assert.Equal(t, 1, tr.Tornado.Count)
	require.Len(t, tr.Tornado.Top, 1)
	assert.Equal(t, "Tornado Warning", tr.Tornado.Top[0].Event)
	assert.Equal(t, 1, tr.Advisories)
	assert.Zero(t, tr.Thunderstorm.Count)
	assert.Zero(t, tr.OtherSevere.Count)
	assert.False(t, tr.Clear)
}

func TestTriage_CaseInsensitiveAndTopThree(t *testing.T) {
	var alerts []domain.AlertRow
	for i := 0; i < 5; i++ {
		alerts = append(alerts, alert("SEVERE THUNDERSTORM WARNING", domain.SeveritySevere, time.Duration(i)*time.Minute))
	}
	alerts = append(alerts, alert("tornado watch", domain.SeveritySevere, time.Minute))

	tr := dashboard.Triage(alerts, now, 24*time.Hour)

	assert.Equal(t, 5, tr.Thunderstorm.Count)
	assert.Len(t, tr.Thunderstorm.Top, 3)
	assert.Equal(t, 1, tr.Tornado.Count)
	assert.Zero(t, tr.OtherSevere.Count, "tornado and thunderstorm rows are not regrouped")
}

func TestTriage_OtherSevereAndAdvisories(t *testing.T) {
	alerts := []domain.AlertRow{
		alert("Flash Flood Warning", domain.SeverityExtreme, time.Hour),
		alert("Winter Storm Warning", domain.SeveritySevere, time.Hour),
		alert("Wind Advisory", domain.SeverityModerate, time.Hour),
		alert("Special Weather Statement", "Unknown", time.Hour),
		alert("Tornado Watch", domain.SeverityModerate, time.Hour),
	}

	tr := dashboard.Triage(alerts, now, 24*time.Hour)

	assert.Equal(t, 5, tr.Recent)
	assert.Equal(t, 2, tr.OtherSevere.Count)
	assert.Equal(t, 1, tr.Advisories)
	assert.Equal(t, 1, tr.Tornado.Count)
}

func TestTriage_ClearWhenNothingRecent(t *testing.T) {
	tr := dashboard.Triage([]domain.AlertRow{alert("Tornado Warning", domain.SeverityExtreme, 25*time.Hour)}, now, 24*time.Hour)
	assert.True(t, tr.Clear)
	assert.Zero(t, tr.Recent)

	tr = dashboard.Triage(nil, now, 24*time.Hour)
	assert.True(t, tr.Clear)
}

func TestTriage_WindowBoundaryIsExclusive(t *testing.T) {
	tr := dashboard.Triage([]domain.AlertRow{alert("Flood Watch", domain.SeverityMinor, 24*time.Hour)}, now, 24*time.Hour)
	assert.True(t, tr.Clear)
}

func TestTriage_InstructionTruncated(t *testing.T) {
	a := alert("Tornado Warning", domain.SeverityExtreme, time.Minute)
	a.Instruction = strings.Repeat("á", 400)

	tr := dashboard.Triage([]domain.AlertRow{a}, now, 24*time.Hour)

	assert.Equal(t, 300, len([]rune(tr.Tornado.Top[0].Instruction)))
}

func TestBuildAlertHistory(t *testing.T) {
	alerts := []domain.AlertRow{
		alert("Tornado Warning", domain.SeverityExtreme, time.Hour),
		alert("Severe Thunderstorm Watch", domain.SeveritySevere, 2*time.Hour),
		alert("Flash Flood Warning", domain.SeveritySevere, 26*time.Hour),
		alert("Flood Watch", domain.SeverityMinor, 50*time.Hour),
	}

	h := dashboard.BuildAlertHistory(alerts)

	assert.Equal(t, 1, h.Tornado)
	assert.Equal(t, 1, h.Thunderstorm)
	assert.Equal(t, 2, h.Flood)
	assert.Equal(t, 4, h.Total)
	assert.Equal(t, []dashboard.DayCount{
		{Date: "2026-01-13", Count: 1},
		{Date: "2026-01-14", Count: 1},
		{Date: "2026-01-15", Count: 2},
	}, h.Timeline)
	assert.Len(t, h.Recent, 4)
	assert.Equal(t, "Tornado Warning", h.Recent[0].Event)
}

func TestBuildAlertHistory_RecentCapped(t *testing.T) {
	var alerts []domain.AlertRow
	for i := 0; i < 15; i++ {
		alerts = append(alerts, alert("Flood Watch", domain.SeverityMinor, time.Duration(i)*time.Hour))
	}
	assert.Len(t, dashboard.BuildAlertHistory(alerts).Recent, 10)
}

package dashboard

import (
	"strings"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
)

const (
	topAlerts           = 3
	instructionMaxRunes = 300
	recentAlertsDisplay = 10

	tornadoKeyword      = "tornado"
	thunderstormKeyword = "severe thunderstorm"
	floodKeyword        = "flood"
)

// AlertCard is one alert as shown in a banner.
type AlertCard struct {
	Event       string    `json:"event"`
	AreaDesc    string    `json:"area_desc"`
	Severity    string    `json:"severity"`
	Urgency     string    `json:"urgency"`
	Expires     string    `json:"expires"`
	Headline    string    `json:"headline"`
	Instruction string    `json:"instruction,omitempty"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// AlertGroup is a banner category: how many alerts matched and the first few
// to show in detail.
type AlertGroup struct {
	Count int         `json:"count"`
	Top   []AlertCard `json:"top"`
}

// AlertTriage is the banner section of a page. Groups with a zero Count are
// not shown.
type AlertTriage struct {
	Recent       int        `json:"recent"`
	Tornado      AlertGroup `json:"tornado"`
	Thunderstorm AlertGroup `json:"thunderstorm"`
	OtherSevere  AlertGroup `json:"other_severe"`
	Advisories   int        `json:"advisories"`
	Clear        bool       `json:"clear"`
}

// Triage classifies the alerts extracted less than window before now.
// Tornado and severe thunderstorm events are surfaced first. Of the rest,
// Extreme and Severe alerts are counted and detailed, and Moderate and
// Minor alerts are only counted. Clear is set when nothing is recent.
func Triage(alerts []domain.AlertRow, now time.Time, window time.Duration) AlertTriage {
	var t AlertTriage
	for _, a := range alerts {
		if now.Sub(a.ExtractedAt) >= window {
			continue
		}
		t.Recent++

		tornado := isTornado(a.Event)
		thunderstorm := isThunderstorm(a.Event)
		if tornado {
			t.Tornado.add(a)
		}
		if thunderstorm {
			t.Thunderstorm.add(a)
		}
		if tornado || thunderstorm {
			continue
		}

		switch a.Severity {
		case domain.SeverityExtreme, domain.SeveritySevere:
			t.OtherSevere.add(a)
		case domain.SeverityModerate, domain.SeverityMinor:
			t.Advisories++
		}
	}
	t.Clear = t.Recent == 0
	return t
}

func (g *AlertGroup) add(a domain.AlertRow) {
	g.Count++
	if len(g.Top) < topAlerts {
		g.Top = append(g.Top, newAlertCard(a))
	}
}

func newAlertCard(a domain.AlertRow) AlertCard {
	return AlertCard{
		Event:       a.Event,
		AreaDesc:    a.AreaDesc,
		Severity:    a.Severity,
		Urgency:     a.Urgency,
		Expires:     a.Expires,
		Headline:    a.Headline,
		Instruction: truncateRunes(a.Instruction, instructionMaxRunes),
		ExtractedAt: a.ExtractedAt,
	}
}

// AlertHistory summarizes every stored alert regardless of age.
type AlertHistory struct {
	Tornado      int         `json:"tornado"`
	Thunderstorm int         `json:"thunderstorm"`
	Flood        int         `json:"flood"`
	Total        int         `json:"total"`
	Timeline     []DayCount  `json:"timeline"`
	Recent       []AlertCard `json:"recent"`
}

// DayCount is the number of alerts extracted on one calendar date.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// BuildAlertHistory counts alerts by category and by extraction date, and
// keeps the first ten rows. alerts is expected newest first.
func BuildAlertHistory(alerts []domain.AlertRow) AlertHistory {
	h := AlertHistory{
		Total:    len(alerts),
		Timeline: []DayCount{},
		Recent:   []AlertCard{},
	}

	perDay := make(map[string]int)
	for _, a := range alerts {
		if isTornado(a.Event) {
			h.Tornado++
		}
		if isThunderstorm(a.Event) {
			h.Thunderstorm++
		}
		if containsFold(a.Event, floodKeyword) {
			h.Flood++
		}
		perDay[a.ExtractedAt.Format(domain.DateLayout)]++
		if len(h.Recent) < recentAlertsDisplay {
			h.Recent = append(h.Recent, newAlertCard(a))
		}
	}

	for _, d := range sortedKeys(perDay) {
		h.Timeline = append(h.Timeline, DayCount{Date: d, Count: perDay[d]})
	}
	return h
}

func isTornado(event string) bool      { return containsFold(event, tornadoKeyword) }
func isThunderstorm(event string) bool { return containsFold(event, thunderstormKeyword) }

func containsFold(s, lowerSubstr string) bool {
	return strings.Contains(strings.ToLower(s), lowerSubstr)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

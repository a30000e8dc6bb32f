package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
)

const bodyExcerptBytes = 512

// HTTP triggers the ETL job through an HTTP endpoint and decodes the result
// from the response body.
type HTTP struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTP creates an HTTP pipeline posting to url.
func NewHTTP(url string, timeout time.Duration, logger *slog.Logger) *HTTP {
	return &HTTP{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Run posts one run request.
func (h *HTTP) Run(ctx context.Context) (*domain.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pipeline request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, bodyExcerptBytes))
		return nil, fmt.Errorf("pipeline endpoint error: status %d: %s", resp.StatusCode, body)
	}

	return DecodeResult(resp.Body)
}

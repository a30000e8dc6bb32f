package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/weather-automation/internal/domain"
	"github.com/couchcryptid/weather-automation/internal/observability"
	"github.com/jonboulle/clockwork"
)

const keyPrefix = "weather-dashboard:"

// Backend stores encoded query results with a time to live.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cached wraps a Reader so that repeated renders within a TTL reuse the
// previous query result. Backend failures fall through to the inner Reader.
type Cached struct {
	inner       Reader
	backend     Backend
	forecastTTL time.Duration
	alertTTL    time.Duration
	metrics     *observability.DashboardMetrics
	logger      *slog.Logger
}

// NewCached creates a cache decorator around inner.
func NewCached(inner Reader, backend Backend, forecastTTL, alertTTL time.Duration, metrics *observability.DashboardMetrics, logger *slog.Logger) *Cached {
	return &Cached{
		inner:       inner,
		backend:     backend,
		forecastTTL: forecastTTL,
		alertTTL:    alertTTL,
		metrics:     metrics,
		logger:      logger,
	}
}

func (c *Cached) Forecasts(ctx context.Context) ([]domain.ForecastRow, error) {
	return through(ctx, c, ForecastTable, c.forecastTTL, c.inner.Forecasts)
}

func (c *Cached) Alerts(ctx context.Context) ([]domain.AlertRow, error) {
	return through(ctx, c, AlertTable, c.alertTTL, c.inner.Alerts)
}

func (c *Cached) Ping(ctx context.Context) error {
	return c.inner.Ping(ctx)
}

func through[T any](ctx context.Context, c *Cached, table string, ttl time.Duration, load func(context.Context) ([]T, error)) ([]T, error) {
	key := keyPrefix + table

	b, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed, bypassing cache", "table", table, "error", err)
	}
	if ok {
		var rows []T
		if err := json.Unmarshal(b, &rows); err == nil {
			c.metrics.CacheLookups.WithLabelValues(table, "hit").Inc()
			return rows, nil
		}
		c.logger.Warn("discarding undecodable cache entry", "table", table)
	}
	c.metrics.CacheLookups.WithLabelValues(table, "miss").Inc()

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}

	b, err = json.Marshal(rows)
	if err != nil {
		return rows, nil
	}
	if err := c.backend.Set(ctx, key, b, ttl); err != nil {
		c.logger.Warn("cache set failed", "table", table, "error", err)
	}
	return rows, nil
}

// Memory is an in-process Backend: a thread-safe LRU whose entries also
// expire after their TTL.
type Memory struct {
	maxEntries int
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key     string
	value   []byte
	expires time.Time
	prev    *entry
	next    *entry
}

// NewMemory creates a Memory backend holding at most maxEntries keys.
func NewMemory(maxEntries int, clock clockwork.Clock) *Memory {
	return &Memory{
		maxEntries: maxEntries,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false, nil
	}
	c.moveToFront(e)
	return e.value, true, nil
}

func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return nil
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
	return nil
}

// Len reports the number of stored entries, expired or not.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Memory) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Memory) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Memory) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *Memory) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}

package validcache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"listforge/internal/logging"
	"listforge/internal/services/validation"
)

// DefaultTTL is how long a report stays fresh for an unchanged selection.
const DefaultTTL = 60 * time.Second

// FetchFunc retrieves a fresh readiness report.
type FetchFunc func(ctx context.Context) (*validation.Report, error)

type entry struct {
	fingerprint string
	report      *validation.Report
	fetchedAt   time.Time
}

// Cache is the single-slot, TTL-bounded readiness report cache.
type Cache struct {
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	slot *entry
}

// New constructs a cache with the given TTL; zero or negative falls back to
// DefaultTTL.
func New(ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:    ttl,
		logger: logging.NewComponentLogger(logger, "validcache"),
		now:    time.Now,
	}
}

// Get returns the cached report when the fingerprint matches and the entry
// is within TTL; otherwise it calls fetch, stores the result with a fresh
// timestamp, and returns it. The slot is last-write-wins.
func (c *Cache) Get(ctx context.Context, fingerprint string, fetch FetchFunc) (*validation.Report, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return nil, errors.New("selection fingerprint cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.slot != nil && c.slot.fingerprint == fingerprint && now.Sub(c.slot.fetchedAt) < c.ttl {
		c.logger.Debug("readiness report served from cache",
			logging.Duration("age", now.Sub(c.slot.fetchedAt)))
		return c.slot.report, nil
	}

	report, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.slot = &entry{fingerprint: fingerprint, report: report, fetchedAt: c.now()}
	c.logger.Debug("readiness report refreshed")
	return report, nil
}

// Invalidate drops the cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slot = nil
}

package baseline

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"dgu-live/internal/model"
)

// Cache holds the latest baseline rows of one site.
type Cache struct {
	mu      sync.RWMutex
	rows    []model.Baseline
	fetched time.Time
}

// Rows returns a copy of the cached rows.
func (c *Cache) Rows() []model.Baseline {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.rows)
}

// Fetched returns when the rows were last replaced.
func (c *Cache) Fetched() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetched
}

func (c *Cache) set(rows []model.Baseline, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = rows
	c.fetched = at
}

// Poll fetches site into cache now and then every interval until ctx is done.
// A failed fetch keeps the previous rows.
func Poll(ctx context.Context, client *Client, site string, every time.Duration, cache *Cache, logger zerolog.Logger) error {
	fetch := func() {
		rows, err := client.Equipment(ctx, site)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn().Err(err).Str("router_sn", site).Msg("baseline fetch failed")
			}
			return
		}
		cache.set(rows, time.Now())
		logger.Debug().Str("router_sn", site).Int("rows", len(rows)).Msg("baseline refreshed")
	}

	fetch()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fetch()
		}
	}
}

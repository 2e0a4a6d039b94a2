package cache

import (
	"context"
	"sync"

	"github.com/parceldesk/parceldesk/internal/metrics"
	"github.com/parceldesk/parceldesk/internal/repository"
)

type CounterRepository interface {
	CountByStatus(ctx context.Context) ([]repository.StatusCount, error)
}

// StatsCache keeps per-status parcel tallies in memory so the dashboard
// stat widgets never hit the database.
type StatsCache struct {
	mu     sync.RWMutex
	counts map[string]int64
}

func NewStatsCache() *StatsCache {
	return &StatsCache{counts: make(map[string]int64)}
}

func (c *StatsCache) Load(ctx context.Context, repo CounterRepository) error {
	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[string]int64, len(counts))
	for _, sc := range counts {
		c.counts[sc.Status] = sc.Count
	}
	c.updateGaugeLocked()
	return nil
}

func (c *StatsCache) Add(status string, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[status] += n
	c.updateGaugeLocked()
}

func (c *StatsCache) Remove(status string, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[status] -= n; c.counts[status] < 0 {
		c.counts[status] = 0
	}
	c.updateGaugeLocked()
}

func (c *StatsCache) Move(from, to string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[from] > 0 {
		c.counts[from]--
	}
	c.counts[to]++
	c.updateGaugeLocked()
}

// Snapshot returns a copy of the per-status counts.
func (c *StatsCache) Snapshot() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int64, len(c.counts))
	for status, count := range c.counts {
		out[status] = count
	}
	return out
}

func (c *StatsCache) updateGaugeLocked() {
	var total int64
	for _, count := range c.counts {
		total += count
	}
	metrics.ParcelsTracked.Set(float64(total))
}

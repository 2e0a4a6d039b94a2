package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parceldesk/parceldesk/internal/repository"
)

type stubCounterRepo struct {
	counts []repository.StatusCount
}

func (s *stubCounterRepo) CountByStatus(_ context.Context) ([]repository.StatusCount, error) {
	return s.counts, nil
}

func TestStatsCacheLoad(t *testing.T) {
	c := NewStatsCache()
	repo := &stubCounterRepo{counts: []repository.StatusCount{
		{Status: "IN_WAREHOUSE", Count: 5},
		{Status: "RELEASED", Count: 2},
	}}

	require.NoError(t, c.Load(context.Background(), repo))

	snapshot := c.Snapshot()
	assert.Equal(t, int64(5), snapshot["IN_WAREHOUSE"])
	assert.Equal(t, int64(2), snapshot["RELEASED"])
}

func TestStatsCacheAddRemoveMove(t *testing.T) {
	c := NewStatsCache()

	c.Add("IN_WAREHOUSE", 3)
	c.Move("IN_WAREHOUSE", "RELEASED")
	c.Remove("IN_WAREHOUSE", 5)

	snapshot := c.Snapshot()
	// Remove never drives a counter negative.
	assert.Equal(t, int64(0), snapshot["IN_WAREHOUSE"])
	assert.Equal(t, int64(1), snapshot["RELEASED"])
}

func TestStatsCacheSnapshotIsCopy(t *testing.T) {
	c := NewStatsCache()
	c.Add("REGION", 1)

	snapshot := c.Snapshot()
	snapshot["REGION"] = 99

	assert.Equal(t, int64(1), c.Snapshot()["REGION"])
}

func TestStatsCacheConcurrentAccess(t *testing.T) {
	c := NewStatsCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add("IN_WAREHOUSE", 1)
			c.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), c.Snapshot()["IN_WAREHOUSE"])
}

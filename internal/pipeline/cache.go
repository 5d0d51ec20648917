package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/macrolabs/laborcast/models"
)

// CachedClient memoizes series fetches so two registry versions computed in
// one process hit each upstream series once. Fetches are serialized; the
// upstream rate limits are tighter than any lock here.
type CachedClient struct {
	inner models.SeriesClient

	mu      sync.Mutex
	entries map[string][]models.Observation
}

// NewCachedClient wraps a series client with memoization.
func NewCachedClient(inner models.SeriesClient) *CachedClient {
	return &CachedClient{
		inner:   inner,
		entries: make(map[string][]models.Observation),
	}
}

// FetchSeries returns the cached observations when the same series and limit
// were fetched before, otherwise delegates to the wrapped client.
func (c *CachedClient) FetchSeries(ctx context.Context, seriesID string, limit int) ([]models.Observation, error) {
	key := fmt.Sprintf("%s#%d", seriesID, limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if obs, ok := c.entries[key]; ok {
		return obs, nil
	}
	obs, err := c.inner.FetchSeries(ctx, seriesID, limit)
	if err != nil {
		return nil, err
	}
	c.entries[key] = obs
	return obs, nil
}

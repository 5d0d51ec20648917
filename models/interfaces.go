package models

import "context"

// SeriesClient fetches the most recent observations of one upstream series,
// sorted oldest first.
type SeriesClient interface {
	FetchSeries(ctx context.Context, seriesID string, limit int) ([]Observation, error)
}

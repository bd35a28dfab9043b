package forecast

import (
	"context"
	"time"
)

// PointFetcher abstracts a forecast data source for a single coordinate.
type PointFetcher interface {
	FetchPoints(ctx context.Context, lat, lng float64) ([]ForecastPoint, error)
}

// BeachStore is the contract the beach repository must satisfy.
type BeachStore interface {
	Create(ctx context.Context, beach Beach) (int64, error)
	List(ctx context.Context) ([]Beach, error)
	ListByUser(ctx context.Context, user string) ([]Beach, error)
}

// RunStore keeps the history of aggregation runs.
type RunStore interface {
	SaveRun(run Run)
	GetLatest() (Run, error)
	GetRange(from, to time.Time) ([]Run, error)
}

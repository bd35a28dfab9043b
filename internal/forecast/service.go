package forecast

import (
	"context"

	"go.uber.org/zap"
)

// defaultRating is assigned to every beach forecast until a rating model exists.
const defaultRating = 1

// ProcessingError is returned when aggregating forecasts for a set of beaches fails.
// The cause stays reachable through errors.As / errors.Is.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string {
	return "Unexpected error during the forecast processing: " + e.Err.Error()
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Service fetches forecasts for beaches and merges them into a per-time view.
type Service struct {
	fetcher PointFetcher
	logger  *zap.Logger
}

// NewService creates a new Service.
func NewService(fetcher PointFetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher: fetcher,
		logger:  logger.Named("forecast"),
	}
}

// ProcessForecastForBeaches fetches every beach one after the other and groups the
// enriched points by time. The first failing beach aborts the whole call and no
// partial result is returned.
func (s *Service) ProcessForecastForBeaches(ctx context.Context, beaches []Beach) ([]TimeForecast, error) {
	var enriched []BeachForecast

	for i := 0; i < len(beaches); i++ {
		beach := beaches[i]

		points, err := s.fetcher.FetchPoints(ctx, beach.Lat, beach.Lng)
		if err != nil {
			s.logger.Error("forecast fetch failed",
				zap.String("beach", beach.Name),
				zap.Int("index", i),
				zap.Error(err))
			return nil, &ProcessingError{Err: err}
		}

		s.logger.Debug("forecast fetched",
			zap.String("beach", beach.Name),
			zap.Int("points", len(points)))

		enriched = append(enriched, enrichPoints(beach, points)...)
	}

	return groupByTime(enriched), nil
}

func enrichPoints(beach Beach, points []ForecastPoint) []BeachForecast {
	out := make([]BeachForecast, 0, len(points))
	for _, p := range points {
		out = append(out, BeachForecast{
			ForecastPoint: p,
			Lat:           beach.Lat,
			Lng:           beach.Lng,
			Name:          beach.Name,
			Position:      beach.Position,
			Rating:        defaultRating,
		})
	}
	return out
}

// groupByTime buckets forecasts by their time value. Buckets appear in the order
// their time was first seen.
func groupByTime(forecasts []BeachForecast) []TimeForecast {
	grouped := make([]TimeForecast, 0)
	slots := make(map[string]int)

	for _, f := range forecasts {
		idx, ok := slots[f.Time]
		if !ok {
			slots[f.Time] = len(grouped)
			grouped = append(grouped, TimeForecast{
				Time:     f.Time,
				Forecast: []BeachForecast{f},
			})
			continue
		}
		grouped[idx].Forecast = append(grouped[idx].Forecast, f)
	}

	return grouped
}

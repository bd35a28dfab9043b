package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/i474232898/surf-forecast/internal/forecast"
	"github.com/i474232898/surf-forecast/internal/store"
)

type staticBeaches struct {
	beaches []forecast.Beach
	err     error
}

func (s staticBeaches) Create(ctx context.Context, beach forecast.Beach) (int64, error) {
	return 0, errors.New("read only")
}

func (s staticBeaches) List(ctx context.Context) ([]forecast.Beach, error) {
	return s.beaches, s.err
}

func (s staticBeaches) ListByUser(ctx context.Context, user string) ([]forecast.Beach, error) {
	return s.beaches, s.err
}

type fetcherFunc func(ctx context.Context, lat, lng float64) ([]forecast.ForecastPoint, error)

func (f fetcherFunc) FetchPoints(ctx context.Context, lat, lng float64) ([]forecast.ForecastPoint, error) {
	return f(ctx, lat, lng)
}

func TestRunOnceRecordsSuccessfulRun(t *testing.T) {
	is := is.New(t)

	fetcher := fetcherFunc(func(ctx context.Context, lat, lng float64) ([]forecast.ForecastPoint, error) {
		return []forecast.ForecastPoint{
			{Time: "2020-04-26T00:00:00+00:00", WaveHeight: 1},
			{Time: "2020-04-26T01:00:00+00:00", WaveHeight: 1},
		}, nil
	})
	beaches := staticBeaches{beaches: []forecast.Beach{
		{Name: "A", Position: forecast.PositionNorth, Lat: 1, Lng: 1},
		{Name: "B", Position: forecast.PositionSouth, Lat: 2, Lng: 2},
	}}
	runs := store.NewMemoryStore(10, time.Hour)

	s := New(time.Hour, forecast.NewService(fetcher, nil), beaches, runs, nil)
	run := s.RunOnce(context.Background())

	is.True(!run.Failed())
	is.Equal(run.Beaches, 2)
	is.Equal(run.TimeSlots, 2)
	is.Equal(run.Points, 4)
	is.True(!run.FinishedAt.IsZero())

	latest, err := runs.GetLatest()
	is.NoErr(err)
	is.Equal(latest.ID, run.ID)
}

func TestRunOnceRecordsFailure(t *testing.T) {
	is := is.New(t)

	fetcher := fetcherFunc(func(ctx context.Context, lat, lng float64) ([]forecast.ForecastPoint, error) {
		return nil, errors.New("Network Error")
	})
	beaches := staticBeaches{beaches: []forecast.Beach{{Name: "A", Position: forecast.PositionNorth, Lat: 1, Lng: 1}}}
	runs := store.NewMemoryStore(10, time.Hour)

	run := New(time.Hour, forecast.NewService(fetcher, nil), beaches, runs, nil).RunOnce(context.Background())

	is.True(run.Failed())
	is.Equal(run.TimeSlots, 0)

	latest, err := runs.GetLatest()
	is.NoErr(err)
	is.True(latest.Failed())
}

func TestRunOnceWithoutBeaches(t *testing.T) {
	is := is.New(t)

	runs := store.NewMemoryStore(10, time.Hour)
	run := New(time.Hour, forecast.NewService(nil, nil), staticBeaches{}, runs, nil).RunOnce(context.Background())

	is.True(!run.Failed())
	is.Equal(run.Beaches, 0)
}

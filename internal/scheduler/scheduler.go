package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/surf-forecast/internal/forecast"
)

// runTimeout bounds a single aggregation pass.
const runTimeout = 5 * time.Minute

// Scheduler periodically aggregates forecasts for every stored beach.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *forecast.Service
	beaches   forecast.BeachStore
	runs      forecast.RunStore
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(interval time.Duration, service *forecast.Service, beaches forecast.BeachStore, runs forecast.RunStore, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		beaches:   beaches,
		runs:      runs,
		interval:  interval,
		logger:    logger.Named("scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce aggregates all beaches once and records the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (run forecast.Run) {
	run = forecast.Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		run.FinishedAt = time.Now().UTC()
		s.runs.SaveRun(run)
	}()

	beaches, err := s.beaches.List(ctx)
	if err != nil {
		s.logger.Error("failed to load beaches", zap.Error(err))
		run.Error = err.Error()
		return run
	}
	run.Beaches = len(beaches)

	if len(beaches) == 0 {
		s.logger.Info("no beaches configured; nothing to aggregate")
		return run
	}

	s.logger.Info("running forecast aggregation", zap.String("run", run.ID), zap.Int("beaches", len(beaches)))

	slots, err := s.service.ProcessForecastForBeaches(ctx, beaches)
	if err != nil {
		s.logger.Error("forecast aggregation failed", zap.String("run", run.ID), zap.Error(err))
		run.Error = err.Error()
		return run
	}

	run.TimeSlots = len(slots)
	for _, slot := range slots {
		run.Points += len(slot.Forecast)
	}

	s.logger.Info("completed forecast aggregation",
		zap.String("run", run.ID),
		zap.Int("time_slots", run.TimeSlots),
		zap.Int("points", run.Points))

	return run
}

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/cstarr7/power-rankings/internal/config"
	"github.com/cstarr7/power-rankings/internal/models"
	"github.com/cstarr7/power-rankings/internal/service"
)

const refreshTimeout = 10 * time.Minute

type Forecaster interface {
	Refresh(ctx context.Context) (*models.Forecast, error)
}

type Scheduler struct {
	s           gocron.Scheduler
	forecaster  Forecaster
	sendMessage func(string) error
	cron        string
}

func NewScheduler(forecaster Forecaster, sendMessage func(string) error, cfg config.Schedule) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", cfg.Timezone, err)
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:           s,
		forecaster:  forecaster,
		sendMessage: sendMessage,
		cron:        cfg.Cron,
	}, nil
}

func (s *Scheduler) Start() error {
	// Weekly forecast, Tuesday 7:30 by default once Monday night is final.
	_, err := s.s.NewJob(
		gocron.CronJob(s.cron, false),
		gocron.NewTask(s.sendForecast),
		gocron.WithName("weekly forecast"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create forecast job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) sendForecast() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	forecast, err := s.forecaster.Refresh(ctx)
	if err != nil {
		slog.Error("Failed to refresh forecast", "error", err)
		return
	}
	if err := s.sendMessage(service.FormatPlayoffOdds(forecast)); err != nil {
		slog.Error("Failed to send forecast", "error", err)
	}
}

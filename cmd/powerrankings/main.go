package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cstarr7/power-rankings/internal/api/espn"
	"github.com/cstarr7/power-rankings/internal/api/fantasy"
	"github.com/cstarr7/power-rankings/internal/api/fftoday"
	"github.com/cstarr7/power-rankings/internal/api/fixture"
	"github.com/cstarr7/power-rankings/internal/bot"
	"github.com/cstarr7/power-rankings/internal/config"
	"github.com/cstarr7/power-rankings/internal/repository/memory"
	"github.com/cstarr7/power-rankings/internal/repository/sqlite"
	"github.com/cstarr7/power-rankings/internal/scheduler"
	"github.com/cstarr7/power-rankings/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slots, err := config.LoadLeagueFormat(cfg.FormatFile)
	if err != nil {
		return err
	}

	source, err := newSource(cfg, logger)
	if err != nil {
		return err
	}

	var history service.HistoryStore
	if cfg.Storage.HistoryDB != "" {
		store, err := sqlite.Open(cfg.Storage.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		history = store
	}

	repo := memory.NewRepository()
	forecastService := service.NewForecastService(source, repo, history, service.Options{
		LookbackWindow: cfg.Simulation.LookbackWindow,
		WeeksCompleted: cfg.Simulation.WeeksCompleted,
		SimCount:       cfg.Simulation.SimCount,
		PlayoffSlots:   cfg.Simulation.PlayoffSlots,
		Workers:        cfg.Simulation.Workers,
		Seed:           cfg.Simulation.RandomSeed,
		Slots:          slots,
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Mode == config.ModeOnce {
		forecast, err := forecastService.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Print(service.FormatConsole(forecast))
		return nil
	}

	return serve(ctx, cfg, forecastService)
}

func newSource(cfg *config.Config, logger *slog.Logger) (*fantasy.API, error) {
	var league fantasy.Source
	switch cfg.Source.Kind {
	case config.SourceESPN:
		league = espn.NewAPI(espn.NewClient(cfg.ESPNAPI), logger)
	case config.SourceFile:
		league = fixture.NewLeague(cfg.Source.LeagueFile)
	default:
		return nil, fmt.Errorf("%w: unknown league source %q", config.ErrInvalid, cfg.Source.Kind)
	}

	opts := []fantasy.Option{fantasy.WithLogger(logger)}
	if cfg.Source.History == config.HistoryFFToday {
		opts = append(opts, fantasy.WithHistory(
			fftoday.NewClient(cfg.Source.FFTodayLeagueID, fftoday.WithLogger(logger)),
		))
	}
	if cfg.Source.DefenseFile != "" {
		opts = append(opts, fantasy.WithDefenseFile(cfg.Source.DefenseFile))
	}
	return fantasy.NewAPI(league, opts...), nil
}

func serve(ctx context.Context, cfg *config.Config, forecastService *service.ForecastService) error {
	telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, forecastService)
	if err != nil {
		return err
	}

	sched, err := scheduler.NewScheduler(forecastService, telegramBot.SendMessage, cfg.Schedule)
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	http.HandleFunc("/", healthCheckHandler)

	go func() {
		if err := http.ListenAndServe(":80", nil); err != nil {
			slog.Error("Error starting HTTP server", "error", err)
		}
	}()

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			slog.Error("Error running telegram bot", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	return nil
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/cstarr7/power-rankings/internal/api/fantasy"
	"github.com/cstarr7/power-rankings/internal/lineup"
	"github.com/cstarr7/power-rankings/internal/models"
	"github.com/cstarr7/power-rankings/internal/projection"
	"github.com/cstarr7/power-rankings/internal/repository/memory"
	"github.com/cstarr7/power-rankings/internal/simulation"
)

// DefaultPlayoffSlots applies when neither the configuration nor the
// league source names a playoff field size.
const DefaultPlayoffSlots = 6

var ErrTeamNotFound = errors.New("team not found")

type HistoryStore interface {
	SaveForecast(ctx context.Context, f *models.Forecast) (int64, error)
	History(ctx context.Context, teamID string, limit int) ([]models.HistoryEntry, error)
}

type Options struct {
	LookbackWindow int
	// WeeksCompleted overrides the league source when positive.
	WeeksCompleted int
	SimCount       int
	// PlayoffSlots overrides the league source when positive.
	PlayoffSlots int
	Workers      int
	Seed         *uint64
	Slots        []lineup.Slot
	Logger       *slog.Logger
}

type ForecastService struct {
	source  fantasy.Source
	repo    *memory.Repository
	history HistoryStore
	opts    Options
	logger  *slog.Logger
	now     func() time.Time

	// Serializes refreshes so a bot command and the weekly job do not
	// simulate concurrently.
	mu sync.Mutex
}

// NewForecastService wires the pipeline. history may be nil.
func NewForecastService(source fantasy.Source, repo *memory.Repository, history HistoryStore, opts Options) *ForecastService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Slots) == 0 {
		opts.Slots = lineup.DefaultSlots
	}
	return &ForecastService{
		source:  source,
		repo:    repo,
		history: history,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// Refresh loads the league, simulates the rest of the season and stores
// the forecast.
func (s *ForecastService) Refresh(ctx context.Context) (*models.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	league, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s.opts.WeeksCompleted > 0 {
		league.WeeksCompleted = s.opts.WeeksCompleted
	}

	playoffs := s.opts.PlayoffSlots
	if playoffs <= 0 {
		playoffs = league.PlayoffSlots
	}
	if playoffs <= 0 {
		playoffs = DefaultPlayoffSlots
	}

	proj, err := projection.Build(league, projection.Options{
		LookbackWindow: s.opts.LookbackWindow,
		Logger:         s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building projections: %w", err)
	}

	plan, err := simulation.NewPlan(league, proj, s.opts.Slots)
	if err != nil {
		return nil, fmt.Errorf("planning season: %w", err)
	}

	result, err := simulation.Run(ctx, plan, simulation.Options{
		SimCount:     s.opts.SimCount,
		PlayoffSlots: playoffs,
		Workers:      s.opts.Workers,
		Seed:         s.opts.Seed,
		Logger:       s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("running simulation: %w", err)
	}

	forecast := newForecast(league.Name, s.now(), result)
	s.repo.SaveForecast(forecast)

	if s.history != nil {
		runID, err := s.history.SaveForecast(ctx, forecast)
		if err != nil {
			s.logger.Error("Failed to save forecast history", "error", err)
		} else {
			s.logger.Info("Forecast saved", "run_id", runID)
		}
	}
	return forecast, nil
}

func newForecast(league string, at time.Time, r *simulation.Result) *models.Forecast {
	summary := r.Summary()
	f := &models.Forecast{
		League:    league,
		CreatedAt: at,
		Seed:      r.Seed,
		SimCount:  r.SimCount,
		Playoffs:  r.PlayoffSlots,
		Teams:     make([]models.TeamForecast, len(summary)),
	}
	for i, t := range summary {
		f.Teams[i] = models.TeamForecast{
			TeamID:        t.TeamID,
			TeamName:      t.TeamName,
			CurrentWins:   t.CurrentWins,
			CurrentLosses: t.CurrentLosses,
			CurrentRank:   t.CurrentRank,
			CurrentPoints: t.CurrentPoints,
			PointsRank:    t.PointsRank,
			MeanWins:      t.MeanWins,
			MeanLosses:    t.MeanLosses,
			MeanPoints:    t.MeanPoints,
			PlayoffOdds:   t.PlayoffOdds,
			RankOdds:      t.Ranks,
		}
	}
	return f
}

// Latest returns the cached forecast, running one when none exists yet.
func (s *ForecastService) Latest(ctx context.Context) (*models.Forecast, error) {
	if f := s.repo.GetForecast(); f != nil {
		return f, nil
	}
	return s.Refresh(ctx)
}

func (s *ForecastService) GetPlayoffOdds(ctx context.Context) (string, error) {
	f, err := s.Latest(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching forecast: %w", err)
	}
	return FormatPlayoffOdds(f), nil
}

func (s *ForecastService) GetSummary(ctx context.Context) (string, error) {
	f, err := s.Latest(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching forecast: %w", err)
	}
	return FormatSummary(f), nil
}

func (s *ForecastService) GetRankTable(ctx context.Context) (string, error) {
	f, err := s.Latest(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching forecast: %w", err)
	}
	return FormatRankTable(f), nil
}

func (s *ForecastService) GetTeamRanks(ctx context.Context, teamName string) (string, error) {
	f, err := s.Latest(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching forecast: %w", err)
	}
	team, err := FindTeam(f, teamName)
	if err != nil {
		return "", err
	}
	return FormatTeamRanks(f, team), nil
}

func (s *ForecastService) GetHistory(ctx context.Context, teamName string, limit int) (string, error) {
	if s.history == nil {
		return "", fmt.Errorf("forecast history is disabled")
	}
	f, err := s.Latest(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching forecast: %w", err)
	}
	team, err := FindTeam(f, teamName)
	if err != nil {
		return "", err
	}
	entries, err := s.history.History(ctx, team.TeamID, limit)
	if err != nil {
		return "", fmt.Errorf("error fetching history: %w", err)
	}
	return FormatHistory(team, entries), nil
}

// FindTeam matches a team by id, then by the closest fuzzy name match.
func FindTeam(f *models.Forecast, query string) (models.TeamForecast, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.TeamForecast{}, fmt.Errorf("%w: empty name", ErrTeamNotFound)
	}
	for _, t := range f.Teams {
		if strings.EqualFold(t.TeamID, query) || strings.EqualFold(t.TeamName, query) {
			return t, nil
		}
	}

	best, bestRank := -1, -1
	for i, t := range f.Teams {
		rank := fuzzy.RankMatchFold(query, t.TeamName)
		if rank >= 0 && (bestRank == -1 || rank < bestRank) {
			best, bestRank = i, rank
		}
	}
	if best >= 0 {
		return f.Teams[best], nil
	}

	const threshold = 0.6
	bestSimilarity := 0.0
	for i, t := range f.Teams {
		name := strings.ToLower(t.TeamName)
		distance := fuzzy.LevenshteinDistance(strings.ToLower(query), name)
		maxLen := float64(max(len(query), len(name)))
		similarity := 1 - float64(distance)/maxLen
		if similarity > threshold && similarity > bestSimilarity {
			best, bestSimilarity = i, similarity
		}
	}
	if best >= 0 {
		return f.Teams[best], nil
	}
	return models.TeamForecast{}, fmt.Errorf("%w: %q", ErrTeamNotFound, query)
}

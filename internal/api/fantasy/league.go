package fantasy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cstarr7/power-rankings/internal/api/fftoday"
	"github.com/cstarr7/power-rankings/internal/api/fixture"
	"github.com/cstarr7/power-rankings/internal/models"
)

// Source produces a complete league snapshot.
type Source interface {
	Load(ctx context.Context) (*models.League, error)
}

// HistorySource looks up a player's game log by name and position.
type HistorySource interface {
	GameLog(ctx context.Context, name string, pos models.Position) ([]float64, error)
}

const historyFetchLimit = 4

type API struct {
	league      Source
	history     HistorySource
	defenseFile string
	logger      *slog.Logger
}

type Option func(*API)

// WithHistory replaces the game logs of rostered players, except team
// defenses, with the ones returned by h.
func WithHistory(h HistorySource) Option {
	return func(a *API) { a.history = h }
}

func WithDefenseFile(path string) Option {
	return func(a *API) { a.defenseFile = path }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *API) { a.logger = logger }
}

func NewAPI(league Source, opts ...Option) *API {
	a := &API{league: league, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) Load(ctx context.Context) (*models.League, error) {
	league, err := a.league.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading league: %w", err)
	}

	if a.history != nil {
		if err := a.fillHistory(ctx, league); err != nil {
			return nil, fmt.Errorf("loading player history: %w", err)
		}
	}

	if a.defenseFile != "" {
		stats, err := fixture.LoadDefense(a.defenseFile)
		if err != nil {
			return nil, fmt.Errorf("loading defense table: %w", err)
		}
		league.Defense = stats
	}

	a.logger.Info("League loaded",
		"league", league.Name,
		"teams", len(league.Teams),
		"players", len(league.Players),
		"weeks_completed", league.WeeksCompleted,
		"season_length", league.SeasonLength,
	)
	return league, nil
}

func (a *API) fillHistory(ctx context.Context, league *models.League) error {
	index := league.PlayerIndex()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(historyFetchLimit)

	seen := make(map[int]bool)
	for _, team := range league.Teams {
		for _, id := range team.Roster {
			i, ok := index[id]
			if !ok || seen[i] {
				continue
			}
			seen[i] = true
			p := &league.Players[i]
			if p.Position == models.DST {
				continue
			}
			g.Go(func() error {
				scores, err := a.history.GameLog(ctx, p.Name, p.Position)
				if errors.Is(err, fftoday.ErrPlayerNotFound) {
					a.logger.Warn("No game log found", "player", p.Name, "position", p.Position)
					p.Scores = nil
					return nil
				}
				if err != nil {
					return err
				}
				p.Scores = scores
				return nil
			})
		}
	}
	return g.Wait()
}

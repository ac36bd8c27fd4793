package projection

import (
	"fmt"
	"log/slog"

	"github.com/cstarr7/power-rankings/internal/models"
)

type PlayerProjection struct {
	Player       models.Player
	Distribution Distribution
	// FirstWeek is the season week index of Means[0].
	FirstWeek int
	Means     []float64
	Playing   []bool
}

// Week returns the projected mean for a season week index and whether
// the player has a game that week.
func (p *PlayerProjection) Week(week int) (float64, bool) {
	i := week - p.FirstWeek
	if i < 0 || i >= len(p.Means) {
		return 0, false
	}
	return p.Means[i], p.Playing[i]
}

// ProjectPlayer scales the player's mean by the defense multiplier of
// each remaining opponent. Bye weeks and free agents project to zero.
func ProjectPlayer(p models.Player, dist Distribution, schedule models.ProSchedule, matrix DefenseMatrix, firstWeek, seasonLength int) *PlayerProjection {
	n := max(seasonLength-firstWeek, 0)
	proj := &PlayerProjection{
		Player:       p,
		Distribution: dist,
		FirstWeek:    firstWeek,
		Means:        make([]float64, n),
		Playing:      make([]bool, n),
	}
	if p.IsFreeAgent() {
		return proj
	}
	for i := range n {
		opponent, ok := schedule.Opponent(p.ProTeam, firstWeek+i)
		if !ok {
			continue
		}
		proj.Means[i] = dist.Mean * matrix.Multiplier(opponent, p.Position)
		proj.Playing[i] = true
	}
	return proj
}

type Projections struct {
	Baselines    Baselines
	Defense      DefenseMatrix
	FirstWeek    int
	SeasonLength int
	Players      map[string]*PlayerProjection
	// Padded counts players whose history was shorter than the lookback window.
	Padded int
}

type Options struct {
	LookbackWindow int
	Logger         *slog.Logger
}

// Build computes league baselines, the defense matrix and a projection for
// every rostered player. Weeks from league.WeeksCompleted onward are projected.
func Build(league *models.League, opts Options) (*Projections, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if league.WeeksCompleted < 0 || league.WeeksCompleted > league.SeasonLength {
		return nil, fmt.Errorf("weeks completed %d outside season of %d weeks", league.WeeksCompleted, league.SeasonLength)
	}

	rostered, err := league.RosteredPlayers()
	if err != nil {
		return nil, err
	}

	proj := &Projections{
		Baselines:    ComputeBaselines(rostered),
		Defense:      BuildDefenseMatrix(league.Defense, league.WeeksCompleted, league.SeasonLength),
		FirstWeek:    league.WeeksCompleted,
		SeasonLength: league.SeasonLength,
		Players:      make(map[string]*PlayerProjection, len(rostered)),
	}

	for _, p := range rostered {
		if _, done := proj.Players[p.ID]; done {
			continue
		}
		dist, err := PlayerDistribution(p, proj.Baselines, opts.LookbackWindow)
		if err != nil {
			return nil, fmt.Errorf("player distribution: %w", err)
		}
		if len(p.Scores) < opts.LookbackWindow {
			proj.Padded++
		}
		proj.Players[p.ID] = ProjectPlayer(p, dist, league.ProSchedule, proj.Defense, proj.FirstWeek, proj.SeasonLength)
	}

	logger.Info("Projections built",
		"players", len(proj.Players),
		"padded", proj.Padded,
		"positions", len(proj.Baselines),
		"first_week", proj.FirstWeek)
	return proj, nil
}

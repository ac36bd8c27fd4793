package projection

import (
	"errors"
	"fmt"

	"github.com/cstarr7/power-rankings/internal/models"
	"gonum.org/v1/gonum/stat"
)

var ErrMissingBaseline = errors.New("missing positional baseline")

// BaselineError reports a position with no league-wide history. Player is
// the player (or lineup slot) that needed the baseline.
type BaselineError struct {
	Position models.Position
	Player   string
}

func (e *BaselineError) Error() string {
	if e.Player == "" {
		return fmt.Sprintf("position %s: %v", e.Position, ErrMissingBaseline)
	}
	return fmt.Sprintf("%s (%s): %v", e.Player, e.Position, ErrMissingBaseline)
}

func (e *BaselineError) Unwrap() error { return ErrMissingBaseline }

type Distribution struct {
	Mean   float64
	StdDev float64
}

type Baselines map[models.Position]Distribution

// ComputeBaselines pools every historical score of the given players by
// position. Positions with no scores at all get no entry.
func ComputeBaselines(players []models.Player) Baselines {
	pooled := make(map[models.Position][]float64)
	for _, p := range players {
		pooled[p.Position] = append(pooled[p.Position], p.Scores...)
	}

	baselines := make(Baselines, len(pooled))
	for pos, scores := range pooled {
		if len(scores) == 0 {
			continue
		}
		mean, std := stat.PopMeanStdDev(scores, nil)
		baselines[pos] = Distribution{Mean: mean, StdDev: std}
	}
	return baselines
}

func (b Baselines) Lookup(pos models.Position) (Distribution, error) {
	d, ok := b[pos]
	if !ok {
		return Distribution{}, &BaselineError{Position: pos}
	}
	return d, nil
}

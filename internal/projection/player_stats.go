package projection

import (
	"fmt"

	"github.com/cstarr7/power-rankings/internal/models"
	"gonum.org/v1/gonum/stat"
)

// Window returns exactly lookback samples: the most recent real scores
// first, then fill repeated until the window is full.
func Window(scores []float64, fill float64, lookback int) []float64 {
	window := make([]float64, 0, lookback)
	for i := len(scores) - 1; i >= 0 && len(window) < lookback; i-- {
		window = append(window, scores[i])
	}
	for len(window) < lookback {
		window = append(window, fill)
	}
	return window
}

// PlayerDistribution computes a player's scoring mean and population
// standard deviation over a lookback window. Short histories are padded
// with the positional baseline mean, which shrinks their deviation.
func PlayerDistribution(p models.Player, baselines Baselines, lookback int) (Distribution, error) {
	if lookback <= 0 {
		return Distribution{}, fmt.Errorf("lookback window must be positive, got %d", lookback)
	}

	var fill float64
	if len(p.Scores) < lookback {
		baseline, ok := baselines[p.Position]
		if !ok {
			return Distribution{}, &BaselineError{Position: p.Position, Player: p.Name}
		}
		fill = baseline.Mean
		if len(p.Scores) == 0 {
			// Constant window: mean is the baseline mean exactly, deviation is zero.
			return Distribution{Mean: fill}, nil
		}
	}

	mean, std := stat.PopMeanStdDev(Window(p.Scores, fill, lookback), nil)
	return Distribution{Mean: mean, StdDev: std}, nil
}

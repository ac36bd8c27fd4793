package projection

import (
	"sort"

	"github.com/cstarr7/power-rankings/internal/models"
)

// DefenseMatrix holds, per pro defense and offensive position, how many
// more (>1) or fewer (<1) points that position scores against the defense
// than against the league average.
type DefenseMatrix map[string]map[models.Position]float64

// Multiplier returns 1.0 for defenses or positions the matrix does not know.
func (m DefenseMatrix) Multiplier(defense string, pos models.Position) float64 {
	if byPos, ok := m[defense]; ok {
		if v, ok := byPos[pos]; ok {
			return v
		}
	}
	return 1.0
}

// BuildDefenseMatrix blends current and previous season points allowed,
// weighting the current season by the fraction of the season completed,
// then divides each position by its league mean.
func BuildDefenseMatrix(stats *models.DefenseStats, weeksCompleted, seasonLength int) DefenseMatrix {
	matrix := make(DefenseMatrix)
	if stats == nil || len(stats.Current) == 0 && len(stats.Previous) == 0 {
		return matrix
	}

	weight := 1.0
	if seasonLength > 0 {
		weight = float64(weeksCompleted) / float64(seasonLength)
	}
	weight = min(max(weight, 0), 1)

	blended := make(map[string]map[models.Position]float64)
	for _, defense := range defenses(stats) {
		for _, pos := range models.Positions {
			cur, hasCur := lookupAllowed(stats.Current, defense, pos)
			prev, hasPrev := lookupAllowed(stats.Previous, defense, pos)

			var v float64
			switch {
			case hasCur && hasPrev:
				v = weight*cur + (1-weight)*prev
			case hasCur:
				v = cur
			case hasPrev:
				v = prev
			default:
				continue
			}
			if blended[defense] == nil {
				blended[defense] = make(map[models.Position]float64)
			}
			blended[defense][pos] = v
		}
	}

	for _, pos := range models.Positions {
		var sum float64
		var n int
		for _, byPos := range blended {
			if v, ok := byPos[pos]; ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}
		mean := sum / float64(n)
		for defense, byPos := range blended {
			v, ok := byPos[pos]
			if !ok {
				continue
			}
			if matrix[defense] == nil {
				matrix[defense] = make(map[models.Position]float64)
			}
			if mean == 0 {
				matrix[defense][pos] = 1.0
				continue
			}
			matrix[defense][pos] = v / mean
		}
	}

	return matrix
}

func defenses(stats *models.DefenseStats) []string {
	seen := make(map[string]bool)
	for d := range stats.Current {
		seen[d] = true
	}
	for d := range stats.Previous {
		seen[d] = true
	}
	names := make([]string, 0, len(seen))
	for d := range seen {
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}

func lookupAllowed(allowed models.PointsAllowed, defense string, pos models.Position) (float64, bool) {
	if allowed == nil {
		return 0, false
	}
	byPos, ok := allowed[defense]
	if !ok {
		return 0, false
	}
	v, ok := byPos[pos]
	return v, ok
}

package fixture

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cstarr7/power-rankings/internal/models"
)

// defenseFile holds points allowed per game, keyed by pro defense and then
// position name.
type defenseFile struct {
	Current  map[string]map[string]float64 `yaml:"current"`
	Previous map[string]map[string]float64 `yaml:"previous"`
}

func LoadDefense(path string) (*models.DefenseStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read defense file: %w", err)
	}

	var f defenseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse defense file %s: %w", path, err)
	}
	stats, err := f.stats()
	if err != nil {
		return nil, fmt.Errorf("defense file %s: %w", path, err)
	}
	return stats, nil
}

func (f *defenseFile) stats() (*models.DefenseStats, error) {
	current, err := pointsAllowed(f.Current)
	if err != nil {
		return nil, fmt.Errorf("current season: %w", err)
	}
	previous, err := pointsAllowed(f.Previous)
	if err != nil {
		return nil, fmt.Errorf("previous season: %w", err)
	}
	return &models.DefenseStats{Current: current, Previous: previous}, nil
}

func pointsAllowed(raw map[string]map[string]float64) (models.PointsAllowed, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(models.PointsAllowed, len(raw))
	for team, byPos := range raw {
		allowed := make(map[models.Position]float64, len(byPos))
		for name, points := range byPos {
			pos, err := models.ParsePosition(name)
			if err != nil {
				return nil, fmt.Errorf("defense %s: %w", team, err)
			}
			if points < 0 {
				return nil, fmt.Errorf("defense %s allows negative points to %s", team, pos)
			}
			allowed[pos] = points
		}
		out[strings.ToUpper(team)] = allowed
	}
	return out, nil
}

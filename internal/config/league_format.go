package config

import (
	"fmt"
	"os"

	"github.com/cstarr7/power-rankings/internal/lineup"
	"gopkg.in/yaml.v3"
)

type LeagueFormat struct {
	Slots []lineup.Slot `yaml:"slots"`
}

// LoadLeagueFormat reads the starting lineup layout. An empty path yields
// the default ESPN layout.
func LoadLeagueFormat(path string) ([]lineup.Slot, error) {
	if path == "" {
		return lineup.DefaultSlots, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read league format: %w", err)
	}

	var format LeagueFormat
	if err := yaml.Unmarshal(data, &format); err != nil {
		return nil, fmt.Errorf("parse league format: %w", err)
	}
	slots, err := lineup.NormalizeSlots(format.Slots)
	if err != nil {
		return nil, fmt.Errorf("league format %s: %w", path, err)
	}
	return slots, nil
}

// Package fixture reads leagues and defense tables from YAML files.
package fixture

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cstarr7/power-rankings/internal/models"
)

type leagueFile struct {
	Name           string              `yaml:"name"`
	SeasonLength   int                 `yaml:"season_length"`
	WeeksCompleted int                 `yaml:"weeks_completed"`
	PlayoffSlots   int                 `yaml:"playoff_slots"`
	Teams          []teamFile          `yaml:"teams"`
	Players        []playerFile        `yaml:"players"`
	ProSchedule    map[string][]string `yaml:"pro_schedule"`
	Defense        *defenseFile        `yaml:"defense"`
}

type teamFile struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Wins      int      `yaml:"wins"`
	Losses    int      `yaml:"losses"`
	PointsFor float64  `yaml:"points_for"`
	Schedule  []string `yaml:"schedule"`
	Roster    []string `yaml:"roster"`
}

type playerFile struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Position string    `yaml:"position"`
	ProTeam  string    `yaml:"pro_team"`
	Scores   []float64 `yaml:"scores"`
}

// League loads a league from a YAML file.
type League struct {
	path string
}

func NewLeague(path string) *League {
	return &League{path: path}
}

func (l *League) Load(_ context.Context) (*models.League, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read league file: %w", err)
	}
	league, err := ParseLeague(data)
	if err != nil {
		return nil, fmt.Errorf("league file %s: %w", l.path, err)
	}
	return league, nil
}

func ParseLeague(data []byte) (*models.League, error) {
	var f leagueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse league: %w", err)
	}

	league := &models.League{
		Name:           f.Name,
		SeasonLength:   f.SeasonLength,
		WeeksCompleted: f.WeeksCompleted,
		PlayoffSlots:   f.PlayoffSlots,
		ProSchedule:    make(models.ProSchedule, len(f.ProSchedule)),
	}

	for _, t := range f.Teams {
		if t.ID == "" {
			return nil, fmt.Errorf("team %q has no id", t.Name)
		}
		league.Teams = append(league.Teams, models.Team{
			ID:        t.ID,
			Name:      t.Name,
			Wins:      t.Wins,
			Losses:    t.Losses,
			PointsFor: t.PointsFor,
			Schedule:  normalizeWeeks(t.Schedule),
			Roster:    t.Roster,
		})
	}

	for _, p := range f.Players {
		pos, err := models.ParsePosition(p.Position)
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", p.ID, err)
		}
		league.Players = append(league.Players, models.Player{
			ID:       p.ID,
			Name:     p.Name,
			Position: pos,
			ProTeam:  strings.ToUpper(strings.TrimSpace(p.ProTeam)),
			Scores:   p.Scores,
		})
	}

	for team, weeks := range f.ProSchedule {
		normalized := normalizeWeeks(weeks)
		for i, opp := range normalized {
			normalized[i] = strings.ToUpper(opp)
		}
		league.ProSchedule[strings.ToUpper(team)] = normalized
	}
	if err := checkProSchedule(league.ProSchedule); err != nil {
		return nil, err
	}

	if f.Defense != nil {
		stats, err := f.Defense.stats()
		if err != nil {
			return nil, err
		}
		league.Defense = stats
	}
	return league, nil
}

// normalizeWeeks maps BYE markers to models.Bye.
func normalizeWeeks(weeks []string) []string {
	out := make([]string, len(weeks))
	for i, w := range weeks {
		w = strings.TrimSpace(w)
		if strings.EqualFold(w, "bye") || w == "-" {
			w = models.Bye
		}
		out[i] = w
	}
	return out
}

// checkProSchedule requires every opponent to be a pro team of the schedule.
func checkProSchedule(schedule models.ProSchedule) error {
	teams := make([]string, 0, len(schedule))
	for team := range schedule {
		teams = append(teams, team)
	}
	slices.Sort(teams)

	for _, team := range teams {
		for w, opp := range schedule[team] {
			if opp == models.Bye {
				continue
			}
			if _, ok := schedule[opp]; !ok {
				return fmt.Errorf("pro team %s week %d: unknown opponent %q", team, w+1, opp)
			}
		}
	}
	return nil
}

package simulation

import (
	"errors"
	"fmt"

	"github.com/cstarr7/power-rankings/internal/lineup"
	"github.com/cstarr7/power-rankings/internal/models"
	"github.com/cstarr7/power-rankings/internal/projection"
)

var ErrScheduleInconsistent = errors.New("schedule inconsistent")

type ScheduleError struct {
	Team     string
	Week     int // 1-based
	Opponent string
	Reason   string
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("team %s week %d opponent %q: %s: %v", e.Team, e.Week, e.Opponent, e.Reason, ErrScheduleInconsistent)
}

func (e *ScheduleError) Unwrap() error { return ErrScheduleInconsistent }

type slotDist struct {
	mean   float64
	stdDev float64
}

// TeamPlan is the read-only per-team input shared by every trial.
type TeamPlan struct {
	Team models.Team
	// Opponents holds a team index per remaining week, -1 for a bye.
	Opponents []int
	Lineups   []lineup.Weekly
	slots     [][]slotDist
}

// Plan is fully resolved before the first trial and never mutated.
type Plan struct {
	Teams        []TeamPlan
	FirstWeek    int
	SeasonLength int
}

func (p *Plan) Weeks() int {
	return p.SeasonLength - p.FirstWeek
}

func (p *Plan) TeamList() []models.Team {
	teams := make([]models.Team, len(p.Teams))
	for i, tp := range p.Teams {
		teams[i] = tp.Team
	}
	return teams
}

func (p *Plan) TeamIndex(id string) int {
	for i, t := range p.Teams {
		if t.Team.ID == id {
			return i
		}
	}
	return -1
}

// NewPlan resolves every schedule reference and selects a lineup for each
// team and remaining week.
func NewPlan(league *models.League, proj *projection.Projections, slots []lineup.Slot) (*Plan, error) {
	if err := lineup.ValidateSlots(slots); err != nil {
		return nil, err
	}
	if len(league.Teams) == 0 {
		return nil, fmt.Errorf("league has no teams")
	}

	index := make(map[string]int, len(league.Teams))
	for i, t := range league.Teams {
		if _, dup := index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate team id %q", t.ID)
		}
		index[t.ID] = i
	}

	plan := &Plan{
		Teams:        make([]TeamPlan, len(league.Teams)),
		FirstWeek:    proj.FirstWeek,
		SeasonLength: proj.SeasonLength,
	}

	for i, t := range league.Teams {
		if len(t.Schedule) != league.SeasonLength {
			return nil, &ScheduleError{Team: t.ID, Week: len(t.Schedule), Reason: fmt.Sprintf("schedule has %d weeks, season has %d", len(t.Schedule), league.SeasonLength)}
		}
		if t.Wins < 0 || t.Losses < 0 {
			return nil, fmt.Errorf("team %s: negative record %d-%d", t.ID, t.Wins, t.Losses)
		}

		opponents := make([]int, plan.Weeks())
		for w := range opponents {
			week := plan.FirstWeek + w
			opp := t.Schedule[week]
			if opp == models.Bye {
				opponents[w] = -1
				continue
			}
			j, ok := index[opp]
			if !ok {
				return nil, &ScheduleError{Team: t.ID, Week: week + 1, Opponent: opp, Reason: "unknown opponent"}
			}
			if j == i {
				return nil, &ScheduleError{Team: t.ID, Week: week + 1, Opponent: opp, Reason: "team scheduled against itself"}
			}
			if back := league.Teams[j].Schedule; len(back) > week && back[week] != t.ID {
				return nil, &ScheduleError{Team: t.ID, Week: week + 1, Opponent: opp, Reason: fmt.Sprintf("opponent is scheduled against %q", back[week])}
			}
			opponents[w] = j
		}

		roster := make([]*projection.PlayerProjection, 0, len(t.Roster))
		for _, id := range t.Roster {
			p, ok := proj.Players[id]
			if !ok {
				return nil, fmt.Errorf("team %s: no projection for player %q", t.ID, id)
			}
			roster = append(roster, p)
		}

		lineups, err := lineup.Season(roster, slots, plan.FirstWeek, plan.SeasonLength, proj.Baselines)
		if err != nil {
			return nil, fmt.Errorf("team %s lineup: %w", t.ID, err)
		}

		dists := make([][]slotDist, len(lineups))
		for w, l := range lineups {
			dists[w] = make([]slotDist, len(l.Slots))
			for s, a := range l.Slots {
				dists[w][s] = slotDist{mean: a.Mean, stdDev: a.StdDev}
			}
		}

		plan.Teams[i] = TeamPlan{Team: t, Opponents: opponents, Lineups: lineups, slots: dists}
	}

	return plan, nil
}

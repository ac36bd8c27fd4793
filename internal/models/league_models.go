package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoGamesPlayed is returned when a win percentage is requested for a
// team that has not played yet.
var ErrNoGamesPlayed = errors.New("no games played")

type Position string

const (
	QB  Position = "QB"
	RB  Position = "RB"
	WR  Position = "WR"
	TE  Position = "TE"
	K   Position = "K"
	DST Position = "D/ST"
)

// Positions is the closed set of rosterable positions in league order.
var Positions = []Position{QB, RB, WR, TE, K, DST}

func ParsePosition(s string) (Position, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QB":
		return QB, nil
	case "RB":
		return RB, nil
	case "WR":
		return WR, nil
	case "TE":
		return TE, nil
	case "K", "PK":
		return K, nil
	case "D/ST", "DST", "DEF", "D":
		return DST, nil
	}
	return "", fmt.Errorf("unknown position %q", s)
}

// Bye marks a week without an opponent in a schedule.
const Bye = ""

// FreeAgent is the pro team affiliation of an unaffiliated player.
const FreeAgent = ""

type Team struct {
	ID        string
	Name      string
	Wins      int
	Losses    int
	PointsFor float64
	// Schedule holds one opponent team ID (or Bye) per regular season week.
	Schedule []string
	// Roster holds player IDs.
	Roster []string
}

func (t Team) GamesPlayed() int {
	return t.Wins + t.Losses
}

func (t Team) WinPercentage() (float64, error) {
	played := t.GamesPlayed()
	if played == 0 {
		return 0, fmt.Errorf("team %s: %w", t.ID, ErrNoGamesPlayed)
	}
	return float64(t.Wins) / float64(played), nil
}

func (t Team) String() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

type Player struct {
	ID       string
	Name     string
	Position Position
	ProTeam  string
	// Scores are historical per-game fantasy points, most recent last.
	Scores []float64
}

func (p Player) IsFreeAgent() bool {
	return p.ProTeam == FreeAgent
}

func (p Player) String() string {
	return p.Name + ", " + string(p.Position)
}

// ProSchedule maps a pro team to its opponent for each week (Bye when idle).
type ProSchedule map[string][]string

func (s ProSchedule) Opponent(proTeam string, week int) (string, bool) {
	weeks, ok := s[proTeam]
	if !ok || week < 0 || week >= len(weeks) || weeks[week] == Bye {
		return "", false
	}
	return weeks[week], true
}

// PointsAllowed maps a pro defense to the average fantasy points it
// allows per game to each position.
type PointsAllowed map[string]map[Position]float64

type DefenseStats struct {
	Current  PointsAllowed
	Previous PointsAllowed
}

type League struct {
	Name           string
	SeasonLength   int
	WeeksCompleted int
	PlayoffSlots   int
	// Teams are ordered by current standings when the source knows them.
	Teams       []Team
	Players     []Player
	ProSchedule ProSchedule
	Defense     *DefenseStats
}

func (l *League) Team(id string) (Team, bool) {
	for _, t := range l.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

func (l *League) PlayerIndex() map[string]int {
	index := make(map[string]int, len(l.Players))
	for i, p := range l.Players {
		index[p.ID] = i
	}
	return index
}

// RosteredPlayers returns every player on a team roster, in team order.
func (l *League) RosteredPlayers() ([]Player, error) {
	index := l.PlayerIndex()
	var rostered []Player
	for _, team := range l.Teams {
		for _, id := range team.Roster {
			i, ok := index[id]
			if !ok {
				return nil, fmt.Errorf("team %s: unknown player %q on roster", team.ID, id)
			}
			rostered = append(rostered, l.Players[i])
		}
	}
	return rostered, nil
}

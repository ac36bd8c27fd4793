package simulation

import (
	"cmp"
	"slices"
)

type RankRow struct {
	TeamID string
	// Percentages[i] is the share of trials finishing at rank i+1.
	Percentages []float64
}

type TeamSummary struct {
	TeamID        string
	TeamName      string
	CurrentWins   int
	CurrentLosses int
	CurrentRank   int
	CurrentPoints float64
	PointsRank    int
	MeanWins      float64
	MeanLosses    float64
	MeanPoints    float64
	PlayoffOdds   float64
	Ranks         []float64
}

// RankTable returns one row per team in plan order.
func (r *Result) RankTable() []RankRow {
	pct := r.Tally.Percentages()
	rows := make([]RankRow, len(r.Plan.Teams))
	for i, tp := range r.Plan.Teams {
		rows[i] = RankRow{TeamID: tp.Team.ID, Percentages: pct[i]}
	}
	return rows
}

// Summary returns one row per team ordered by current rank.
func (r *Result) Summary() []TeamSummary {
	teams := make([]TeamSummary, len(r.Plan.Teams))
	pct := r.Tally.Percentages()
	odds := r.Tally.PlayoffOdds(r.PlayoffSlots)

	for i, tp := range r.Plan.Teams {
		teams[i] = TeamSummary{
			TeamID:        tp.Team.ID,
			TeamName:      tp.Team.String(),
			CurrentWins:   tp.Team.Wins,
			CurrentLosses: tp.Team.Losses,
			CurrentPoints: tp.Team.PointsFor,
			MeanWins:      r.Tally.MeanWins(i),
			MeanLosses:    r.Tally.MeanLosses(i),
			MeanPoints:    r.Tally.MeanPoints(i),
			PlayoffOdds:   odds[i],
			Ranks:         pct[i],
		}
	}

	for rank, s := range CurrentStandings(r.Plan.TeamList()) {
		teams[s.Index].CurrentRank = rank + 1
	}

	byPoints := make([]int, len(teams))
	for i := range byPoints {
		byPoints[i] = i
	}
	slices.SortStableFunc(byPoints, func(a, b int) int {
		return cmp.Compare(teams[b].CurrentPoints, teams[a].CurrentPoints)
	})
	for rank, i := range byPoints {
		teams[i].PointsRank = rank + 1
	}

	slices.SortFunc(teams, func(a, b TeamSummary) int {
		return cmp.Compare(a.CurrentRank, b.CurrentRank)
	})
	return teams
}

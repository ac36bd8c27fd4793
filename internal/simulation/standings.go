package simulation

import (
	"cmp"
	"slices"

	"github.com/cstarr7/power-rankings/internal/models"
)

// WildcardSeed is the rank the wildcard team is moved into. Ranks above
// it are fixed seeds.
const WildcardSeed = 6

type Standing struct {
	Index  int
	TeamID string
	Wins   int
	Losses int
	Points float64
}

func (s Standing) WinPercentage() (float64, error) {
	played := s.Wins + s.Losses
	if played == 0 {
		return 0, models.ErrNoGamesPlayed
	}
	return float64(s.Wins) / float64(played), nil
}

// winPct treats a team with no games as 0.0.
func winPct(s Standing) float64 {
	pct, err := s.WinPercentage()
	if err != nil {
		return 0
	}
	return pct
}

// Compare orders by win percentage, then total points, both descending,
// then team ID so equal records still resolve to a fixed order.
func Compare(a, b Standing) int {
	if c := cmp.Compare(winPct(b), winPct(a)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	return cmp.Compare(a.TeamID, b.TeamID)
}

// Resolve sorts standings in place and applies the wildcard rule.
func Resolve(standings []Standing) {
	slices.SortStableFunc(standings, Compare)
	ApplyWildcard(standings)
}

// ApplyWildcard moves the highest scoring team ranked WildcardSeed or
// lower into rank WildcardSeed. The first such team wins a points tie.
func ApplyWildcard(ranked []Standing) {
	cut := WildcardSeed - 1
	if len(ranked) <= cut+1 {
		return
	}
	best := cut
	for i := cut + 1; i < len(ranked); i++ {
		if ranked[i].Points > ranked[best].Points {
			best = i
		}
	}
	if best == cut {
		return
	}
	wildcard := ranked[best]
	copy(ranked[cut+1:best+1], ranked[cut:best])
	ranked[cut] = wildcard
}

// CurrentStandings ranks teams by their real record.
func CurrentStandings(teams []models.Team) []Standing {
	standings := make([]Standing, len(teams))
	for i, t := range teams {
		standings[i] = Standing{Index: i, TeamID: t.ID, Wins: t.Wins, Losses: t.Losses, Points: t.PointsFor}
	}
	Resolve(standings)
	return standings
}

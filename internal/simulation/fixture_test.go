package simulation

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/cstarr7/power-rankings/internal/lineup"
	"github.com/cstarr7/power-rankings/internal/models"
	"github.com/cstarr7/power-rankings/internal/projection"
	"github.com/stretchr/testify/require"
)

// roundRobin returns a reciprocal schedule for an even number of teams,
// cycling through the rounds of the circle method.
func roundRobin(ids []string, weeks int) map[string][]string {
	n := len(ids)
	schedule := make(map[string][]string, n)
	for _, id := range ids {
		schedule[id] = make([]string, weeks)
	}
	order := append([]string(nil), ids...)
	for w := range weeks {
		for i := range n / 2 {
			a, b := order[i], order[n-1-i]
			schedule[a][w] = b
			schedule[b][w] = a
		}
		// Rotate everyone but the first team.
		last := order[n-1]
		copy(order[2:], order[1:n-1])
		order[1] = last
	}
	return schedule
}

var rosterShape = []models.Position{
	models.QB, models.QB,
	models.RB, models.RB, models.RB, models.RB,
	models.WR, models.WR, models.WR, models.WR,
	models.TE, models.TE,
	models.K, models.DST,
}

var positionMeans = map[models.Position]float64{
	models.QB: 18, models.RB: 10, models.WR: 9, models.TE: 6, models.K: 7, models.DST: 6,
}

// testLeague builds a synthetic league. Team i gets a small strength edge
// so standings are not uniform.
func testLeague(teams, seasonLength, weeksCompleted, history int) *models.League {
	rng := rand.New(rand.NewPCG(7, 11))
	ids := make([]string, teams)
	for i := range ids {
		ids[i] = fmt.Sprintf("T%02d", i+1)
	}
	schedule := roundRobin(ids, seasonLength)

	pros := []string{"BUF", "MIA", "NYJ", "NE", "KC", "LV", "DEN", "LAC"}
	proSchedule := make(models.ProSchedule, len(pros))
	for i, pro := range pros {
		weeks := make([]string, seasonLength)
		for w := range weeks {
			weeks[w] = pros[(i+w%(len(pros)-1)+1)%len(pros)]
		}
		weeks[(i+3)%seasonLength] = models.Bye
		proSchedule[pro] = weeks
	}

	league := &models.League{
		Name:           "Test League",
		SeasonLength:   seasonLength,
		WeeksCompleted: weeksCompleted,
		PlayoffSlots:   6,
		ProSchedule:    proSchedule,
		Defense: &models.DefenseStats{Current: models.PointsAllowed{
			"BUF": {models.QB: 15, models.WR: 30},
			"MIA": {models.QB: 21, models.WR: 38},
			"NYJ": {models.QB: 17},
			"KC":  {models.QB: 19, models.WR: 34},
		}},
	}

	for i, id := range ids {
		edge := 1 + float64(i)*0.03
		team := models.Team{ID: id, Name: "Team " + id, Schedule: schedule[id]}
		for j, pos := range rosterShape {
			p := models.Player{
				ID:       fmt.Sprintf("%s-%02d", id, j),
				Name:     fmt.Sprintf("Player %s %d", id, j),
				Position: pos,
				ProTeam:  pros[(i+j)%len(pros)],
			}
			for range history {
				p.Scores = append(p.Scores, max(0, positionMeans[pos]*edge+rng.NormFloat64()*4))
			}
			league.Players = append(league.Players, p)
			team.Roster = append(team.Roster, p.ID)
		}
		team.Wins = rng.IntN(weeksCompleted + 1)
		team.Losses = weeksCompleted - team.Wins
		team.PointsFor = float64(weeksCompleted) * (90 + rng.Float64()*30)
		league.Teams = append(league.Teams, team)
	}
	return league
}

func testPlan(t *testing.T, league *models.League, lookback int) *Plan {
	t.Helper()
	proj, err := projection.Build(league, projection.Options{LookbackWindow: lookback})
	require.NoError(t, err)
	plan, err := NewPlan(league, proj, lineup.DefaultSlots)
	require.NoError(t, err)
	return plan
}

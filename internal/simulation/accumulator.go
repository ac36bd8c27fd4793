package simulation

import "fmt"

// Tally counts, per team and final rank, how many trials ended there. It
// also sums final wins, losses and points for the summary means. Tallies
// from independent workers combine with Merge.
type Tally struct {
	teams  int
	trials int
	counts []int
	wins   []float64
	losses []float64
	points []float64
}

func NewTally(teams int) *Tally {
	return &Tally{
		teams:  teams,
		counts: make([]int, teams*teams),
		wins:   make([]float64, teams),
		losses: make([]float64, teams),
		points: make([]float64, teams),
	}
}

func (t *Tally) Teams() int  { return t.teams }
func (t *Tally) Trials() int { return t.trials }

// Record folds one resolved ranking into the tally.
func (t *Tally) Record(ranked []Standing) {
	for rank, s := range ranked {
		t.counts[s.Index*t.teams+rank]++
		t.wins[s.Index] += float64(s.Wins)
		t.losses[s.Index] += float64(s.Losses)
		t.points[s.Index] += s.Points
	}
	t.trials++
}

func (t *Tally) Merge(other *Tally) error {
	if other.teams != t.teams {
		return fmt.Errorf("merging tally of %d teams into %d", other.teams, t.teams)
	}
	for i, c := range other.counts {
		t.counts[i] += c
	}
	for i := range t.teams {
		t.wins[i] += other.wins[i]
		t.losses[i] += other.losses[i]
		t.points[i] += other.points[i]
	}
	t.trials += other.trials
	return nil
}

// Count returns the occurrences of team at a 1-based rank.
func (t *Tally) Count(team, rank int) int {
	return t.counts[team*t.teams+rank-1]
}

// Percentages returns occurrences / trials * 100 per team, indexed by rank-1.
func (t *Tally) Percentages() [][]float64 {
	table := make([][]float64, t.teams)
	for team := range t.teams {
		row := make([]float64, t.teams)
		if t.trials > 0 {
			for r := range t.teams {
				row[r] = float64(t.counts[team*t.teams+r]) / float64(t.trials) * 100
			}
		}
		table[team] = row
	}
	return table
}

// PlayoffOdds sums each team's percentages over the first slots ranks.
func (t *Tally) PlayoffOdds(slots int) []float64 {
	slots = min(max(slots, 0), t.teams)
	odds := make([]float64, t.teams)
	if t.trials == 0 {
		return odds
	}
	for team := range t.teams {
		var n int
		for r := range slots {
			n += t.counts[team*t.teams+r]
		}
		odds[team] = float64(n) / float64(t.trials) * 100
	}
	return odds
}

func (t *Tally) MeanWins(team int) float64   { return t.mean(t.wins, team) }
func (t *Tally) MeanLosses(team int) float64 { return t.mean(t.losses, team) }
func (t *Tally) MeanPoints(team int) float64 { return t.mean(t.points, team) }

func (t *Tally) mean(sums []float64, team int) float64 {
	if t.trials == 0 {
		return 0
	}
	return sums[team] / float64(t.trials)
}

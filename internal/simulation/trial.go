package simulation

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// trial is the scratch state of one randomized season. It is reset
// before every use and never shared between goroutines.
type trial struct {
	scores    [][]float64 // team x remaining week
	standings []Standing
	src       *rand.PCG
}

type trialPool struct {
	pool sync.Pool
}

func newTrialPool(teams, weeks int) *trialPool {
	return &trialPool{pool: sync.Pool{New: func() any {
		t := &trial{
			scores:    make([][]float64, teams),
			standings: make([]Standing, teams),
			src:       rand.NewPCG(0, 0),
		}
		for i := range teams {
			t.scores[i] = make([]float64, weeks)
		}
		return t
	}}}
}

func (p *trialPool) get() *trial  { return p.pool.Get().(*trial) }
func (p *trialPool) put(t *trial) { p.pool.Put(t) }

// run plays every remaining week of the plan and leaves the resolved
// final ranking in t.standings.
func (t *trial) run(plan *Plan, seed uint64, n int) []Standing {
	// Trial n always draws from stream n of the seed, whichever worker runs it.
	t.src.Seed(seed, uint64(n))
	normal := distuv.Normal{Src: t.src}

	for i := range plan.Teams {
		tp := &plan.Teams[i]
		for w, opp := range tp.Opponents {
			t.scores[i][w] = 0
			if opp < 0 {
				continue
			}
			var total float64
			for _, s := range tp.slots[w] {
				normal.Mu, normal.Sigma = s.mean, s.stdDev
				total += max(normal.Rand(), 0)
			}
			t.scores[i][w] = total
		}
	}

	for i := range plan.Teams {
		tp := &plan.Teams[i]
		st := Standing{
			Index:  i,
			TeamID: tp.Team.ID,
			Wins:   tp.Team.Wins,
			Losses: tp.Team.Losses,
			Points: tp.Team.PointsFor,
		}
		for w, opp := range tp.Opponents {
			if opp < 0 {
				continue
			}
			mine, theirs := t.scores[i][w], t.scores[opp][w]
			st.Points += mine
			switch {
			case mine > theirs:
				st.Wins++
			case mine < theirs:
				st.Losses++
			}
		}
		t.standings[i] = st
	}

	Resolve(t.standings)
	return t.standings
}

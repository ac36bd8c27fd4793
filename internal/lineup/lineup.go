package lineup

import (
	"fmt"
	"slices"

	"github.com/cstarr7/power-rankings/internal/models"
	"github.com/cstarr7/power-rankings/internal/projection"
)

type Assignment struct {
	Slot Slot
	// PlayerID is empty when the slot was backfilled with a baseline.
	PlayerID   string
	Mean       float64
	StdDev     float64
	Backfilled bool
}

type Weekly struct {
	Week  int
	Slots []Assignment
}

// ProjectedTotal is the sum of slot means.
func (w Weekly) ProjectedTotal() float64 {
	var total float64
	for _, a := range w.Slots {
		total += a.Mean
	}
	return total
}

// Select fills the slots for one week. Players are taken in descending
// order of that week's projection (ties keep roster order) and placed in
// the first open slot of their exact position, falling back to an open
// flex slot. Slots still open afterwards get the positional baseline.
// A player without a game that week starts with zero mean and deviation.
func Select(roster []*projection.PlayerProjection, slots []Slot, week int, baselines projection.Baselines) (Weekly, error) {
	ordered := slices.Clone(roster)
	slices.SortStableFunc(ordered, func(a, b *projection.PlayerProjection) int {
		am, _ := a.Week(week)
		bm, _ := b.Week(week)
		switch {
		case am > bm:
			return -1
		case am < bm:
			return 1
		}
		return 0
	})

	weekly := Weekly{Week: week, Slots: make([]Assignment, len(slots))}
	filled := make([]bool, len(slots))
	open := len(slots)

	for _, p := range ordered {
		if open == 0 {
			break
		}
		i := openSlot(slots, filled, p.Player.Position)
		if i < 0 {
			continue
		}
		mean, playing := p.Week(week)
		a := Assignment{Slot: slots[i], PlayerID: p.Player.ID, Mean: mean}
		if playing {
			a.StdDev = p.Distribution.StdDev
		}
		weekly.Slots[i] = a
		filled[i] = true
		open--
	}

	for i, s := range slots {
		if filled[i] {
			continue
		}
		pos := s.BaselinePosition()
		baseline, ok := baselines[pos]
		if !ok {
			return Weekly{}, &projection.BaselineError{Position: pos, Player: fmt.Sprintf("slot %d (%s)", i, s.Name)}
		}
		weekly.Slots[i] = Assignment{Slot: s, Mean: baseline.Mean, StdDev: baseline.StdDev, Backfilled: true}
	}

	return weekly, nil
}

func openSlot(slots []Slot, filled []bool, pos models.Position) int {
	for i, s := range slots {
		if !filled[i] && !s.IsFlex() && s.Accepts(pos) {
			return i
		}
	}
	for i, s := range slots {
		if !filled[i] && s.IsFlex() && s.Accepts(pos) {
			return i
		}
	}
	return -1
}

// Season selects a lineup for every week in [firstWeek, seasonLength).
func Season(roster []*projection.PlayerProjection, slots []Slot, firstWeek, seasonLength int, baselines projection.Baselines) ([]Weekly, error) {
	weeks := make([]Weekly, 0, max(seasonLength-firstWeek, 0))
	for week := firstWeek; week < seasonLength; week++ {
		w, err := Select(roster, slots, week, baselines)
		if err != nil {
			return nil, fmt.Errorf("week %d: %w", week+1, err)
		}
		weeks = append(weeks, w)
	}
	return weeks, nil
}

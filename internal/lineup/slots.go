package lineup

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cstarr7/power-rankings/internal/models"
)

// Slot is one starting position. A slot with more than one eligible
// position is a flex slot.
type Slot struct {
	Name     string            `yaml:"name"`
	Eligible []models.Position `yaml:"eligible"`
}

func (s Slot) Accepts(pos models.Position) bool {
	return slices.Contains(s.Eligible, pos)
}

func (s Slot) IsFlex() bool {
	return len(s.Eligible) > 1
}

// BaselinePosition is the position whose baseline fills the slot when no
// rostered player is left for it.
func (s Slot) BaselinePosition() models.Position {
	return s.Eligible[0]
}

func NewSlot(name string) (Slot, error) {
	if strings.EqualFold(strings.TrimSpace(name), "FLEX") {
		return Slot{Name: name, Eligible: []models.Position{models.RB, models.WR, models.TE}}, nil
	}
	pos, err := models.ParsePosition(name)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Name: string(pos), Eligible: []models.Position{pos}}, nil
}

// DefaultSlots is the standard ESPN starting lineup.
var DefaultSlots = []Slot{
	{Name: "QB", Eligible: []models.Position{models.QB}},
	{Name: "RB", Eligible: []models.Position{models.RB}},
	{Name: "RB", Eligible: []models.Position{models.RB}},
	{Name: "WR", Eligible: []models.Position{models.WR}},
	{Name: "WR", Eligible: []models.Position{models.WR}},
	{Name: "TE", Eligible: []models.Position{models.TE}},
	{Name: "FLEX", Eligible: []models.Position{models.RB, models.WR, models.TE}},
	{Name: "D/ST", Eligible: []models.Position{models.DST}},
	{Name: "K", Eligible: []models.Position{models.K}},
}

// NormalizeSlots returns a copy of slots with every eligible position in
// its canonical form. A slot without eligible positions takes the ones
// NewSlot derives from its name.
func NormalizeSlots(slots []Slot) ([]Slot, error) {
	out := make([]Slot, len(slots))
	for i, s := range slots {
		if len(s.Eligible) == 0 {
			derived, err := NewSlot(s.Name)
			if err != nil {
				return nil, fmt.Errorf("slot %d (%s): %w", i, s.Name, err)
			}
			out[i] = Slot{Name: s.Name, Eligible: derived.Eligible}
			continue
		}
		eligible := make([]models.Position, 0, len(s.Eligible))
		for _, pos := range s.Eligible {
			canonical, err := models.ParsePosition(string(pos))
			if err != nil {
				return nil, fmt.Errorf("slot %d (%s): %w", i, s.Name, err)
			}
			if !slices.Contains(eligible, canonical) {
				eligible = append(eligible, canonical)
			}
		}
		out[i] = Slot{Name: s.Name, Eligible: eligible}
	}
	return out, ValidateSlots(out)
}

// ValidateSlots requires canonical positions; aliases must go through
// NormalizeSlots first.
func ValidateSlots(slots []Slot) error {
	if len(slots) == 0 {
		return fmt.Errorf("lineup has no slots")
	}
	for i, s := range slots {
		if len(s.Eligible) == 0 {
			return fmt.Errorf("slot %d (%s) has no eligible positions", i, s.Name)
		}
		for _, pos := range s.Eligible {
			canonical, err := models.ParsePosition(string(pos))
			if err != nil {
				return fmt.Errorf("slot %d (%s): %w", i, s.Name, err)
			}
			if canonical != pos {
				return fmt.Errorf("slot %d (%s): position %q is not canonical, use %q", i, s.Name, pos, canonical)
			}
		}
	}
	return nil
}

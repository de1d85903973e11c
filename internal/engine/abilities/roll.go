package abilities

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

const (
	rollDiceCount = 4
	rollDieSize   = 6

	// MinRolledScore and MaxRolledScore bound a 4d6-drop-lowest result.
	MinRolledScore = 3
	MaxRolledScore = 18
)

// Roll is one 4d6-drop-lowest result.
type Roll struct {
	Dice    []int
	Dropped int
	Total   int
}

// Roller rolls ability scores with an rpg-toolkit dice roller.
type Roller struct {
	dice dice.Roller
}

// NewRoller wraps r. A nil roller uses the toolkit's default crypto roller.
func NewRoller(r dice.Roller) *Roller {
	if r == nil {
		r = dice.DefaultRoller
	}
	return &Roller{dice: r}
}

// RollAbility rolls four d6, drops the lowest and sums the other three.
func (r *Roller) RollAbility() (Roll, error) {
	rolled, err := r.dice.RollN(rollDiceCount, rollDieSize)
	if err != nil {
		return Roll{}, errors.Wrap(err, "failed to roll ability dice")
	}
	if len(rolled) != rollDiceCount {
		return Roll{}, errors.Internalf("dice roller returned %d dice, want %d", len(rolled), rollDiceCount)
	}

	lowest := 0
	total := 0
	for i, v := range rolled {
		if v < 1 || v > rollDieSize {
			return Roll{}, errors.Internalf("dice roller returned %d on a d%d", v, rollDieSize)
		}
		total += v
		if v < rolled[lowest] {
			lowest = i
		}
	}

	kept := make([]int, len(rolled))
	copy(kept, rolled)
	return Roll{
		Dice:    kept,
		Dropped: rolled[lowest],
		Total:   total - rolled[lowest],
	}, nil
}

// RollAll rolls each ability independently, in sheet order.
func (r *Roller) RollAll() (dnd5e.AbilityScores, []Roll, error) {
	var scores dnd5e.AbilityScores
	rolls := make([]Roll, 0, 6)
	for _, a := range dnd5e.AllAbilities() {
		roll, err := r.RollAbility()
		if err != nil {
			return dnd5e.AbilityScores{}, nil, errors.Wrapf(err, "failed to roll %s", a)
		}
		scores = scores.With(a, roll.Total)
		rolls = append(rolls, roll)
	}
	return scores, rolls, nil
}

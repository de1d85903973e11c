// Package abilities generates ability scores, either by point-buy against a
// fixed budget or by rolling 4d6 and dropping the lowest die.
package abilities

import (
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
)

// Point-buy limits
const (
	PointBuyBudget = 27
	PointBuyMin    = 8
	PointBuyMax    = 15
)

var pointCost = map[int]int{
	8:  0,
	9:  1,
	10: 2,
	11: 3,
	12: 4,
	13: 5,
	14: 7,
	15: 9,
}

// Mode selects how scores are generated.
type Mode string

// Modes
const (
	ModePointBuy Mode = "point-buy"
	ModeRoll     Mode = "roll"
)

// PointCost returns the cost of a score, false outside [8,15].
func PointCost(score int) (int, bool) {
	cost, ok := pointCost[score]
	return cost, ok
}

// Spent returns the total point cost of scores and whether every score is
// purchasable at all.
func Spent(scores dnd5e.AbilityScores) (int, bool) {
	total := 0
	for _, a := range dnd5e.AllAbilities() {
		cost, ok := PointCost(scores.Get(a))
		if !ok {
			return 0, false
		}
		total += cost
	}
	return total, true
}

// PointBuy is a point-buy allocation. It is a value: SetScore returns a new
// allocation and leaves the receiver alone.
type PointBuy struct {
	scores dnd5e.AbilityScores
	spent  int
}

// NewPointBuy starts every ability at 8 with the whole budget left.
func NewPointBuy() PointBuy {
	return PointBuy{scores: dnd5e.DefaultAbilityScores()}
}

// PointBuyFrom adopts existing scores when they are a legal allocation.
func PointBuyFrom(scores dnd5e.AbilityScores) (PointBuy, bool) {
	spent, ok := Spent(scores)
	if !ok || spent > PointBuyBudget {
		return PointBuy{}, false
	}
	return PointBuy{scores: scores, spent: spent}, true
}

// SetScore sets a to v. The allocation is returned unchanged when v is out
// of range or the new total would exceed the budget.
func (p PointBuy) SetScore(a dnd5e.Ability, v int) PointBuy {
	p = p.normalized()
	if !a.Valid() {
		return p
	}
	newCost, ok := PointCost(v)
	if !ok {
		return p
	}
	oldCost, _ := PointCost(p.scores.Get(a))

	total := p.spent - oldCost + newCost
	if total > PointBuyBudget {
		return p
	}
	return PointBuy{scores: p.scores.With(a, v), spent: total}
}

// normalized turns the zero value into a fresh allocation.
func (p PointBuy) normalized() PointBuy {
	if p.scores == (dnd5e.AbilityScores{}) {
		return NewPointBuy()
	}
	return p
}

// Scores returns the allocated scores.
func (p PointBuy) Scores() dnd5e.AbilityScores {
	return p.normalized().scores
}

// Spent returns the points used.
func (p PointBuy) Spent() int {
	return p.spent
}

// Remaining returns the points left.
func (p PointBuy) Remaining() int {
	return PointBuyBudget - p.spent
}

// Ready reports whether the whole budget has been spent.
func (p PointBuy) Ready() bool {
	return p.spent == PointBuyBudget
}

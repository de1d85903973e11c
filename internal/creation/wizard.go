// Package creation sequences the character creation flow. A Wizard is an
// immutable draft: every method returns a new Wizard and leaves its receiver
// untouched, so callers can keep old values around for undo or comparison.
package creation

import (
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-charforge/internal/catalog"
	"github.com/KirkDiggler/rpg-charforge/internal/engine/abilities"
	"github.com/KirkDiggler/rpg-charforge/internal/engine/selection"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
)

// Wizard is an in-progress character plus its position in the flow.
//
// Race, class and background point at catalog copies owned by the Wizard
// chain. They are never written after selection, so sharing them between
// successive values is safe.
type Wizard struct {
	cat    *catalog.Catalog
	roller *abilities.Roller

	id    string
	image string

	name       string
	race       *dnd5e.Race
	class      *dnd5e.Class
	background *dnd5e.Background

	mode     abilities.Mode
	pointBuy abilities.PointBuy
	rolled   *dnd5e.AbilityScores
	rolls    []abilities.Roll

	cantrips selection.Toggle
	spells   selection.Toggle
	skills   selection.Toggle

	steps  []Step
	pos    int
	result *dnd5e.Character
}

// New starts a fresh draft at the race step with point-buy scores. A nil
// roller uses the toolkit's default dice.
func New(cat *catalog.Catalog, roller *abilities.Roller) Wizard {
	if roller == nil {
		roller = abilities.NewRoller(nil)
	}
	return Wizard{
		cat:      cat,
		roller:   roller,
		mode:     abilities.ModePointBuy,
		pointBuy: abilities.NewPointBuy(),
		steps:    StepsFor(nil),
	}
}

// Edit re-enters the flow at the race step with every choice of c already
// made. The id and portrait are kept so that finishing the flow updates the
// stored character instead of creating another.
func Edit(cat *catalog.Catalog, roller *abilities.Roller, c *dnd5e.Character) Wizard {
	w := New(cat, roller)
	if c == nil {
		return w
	}
	c = c.Clone()

	w.id = c.ID
	w.image = c.GeneratedImageURL
	w.name = c.Name
	w.race = c.Race
	w.class = c.Class
	w.background = c.Background
	w.steps = StepsFor(w.class)

	// Rolled scores that happen to be purchasable stay rolled unless they
	// spend the exact budget.
	if pb, ok := abilities.PointBuyFrom(c.AbilityScores); ok && pb.Ready() {
		w.pointBuy = pb
	} else {
		w.mode = abilities.ModeRoll
		scores := c.AbilityScores
		w.rolled = &scores
	}

	w.cantrips, w.spells = w.spellPools()
	for _, sp := range c.Spells {
		if sp.IsCantrip() {
			w.cantrips = w.cantrips.Toggle(sp.Name)
		} else {
			w.spells = w.spells.Toggle(sp.Name)
		}
	}

	w.skills = selection.SkillPicks(w.class, w.background)
	for _, sk := range c.ProficientSkills {
		w.skills = w.skills.Toggle(sk)
	}
	return w
}

// ID is the stored character's id, empty for a new draft.
func (w Wizard) ID() string {
	return w.id
}

// Steps returns the current flow.
func (w Wizard) Steps() []Step {
	return slices.Clone(w.steps)
}

// Current returns the step the draft is on.
func (w Wizard) Current() Step {
	return w.steps[w.pos]
}

// Mode is the active ability score mode.
func (w Wizard) Mode() abilities.Mode {
	return w.mode
}

// PointBuy is the point-buy allocation, meaningful in point-buy mode.
func (w Wizard) PointBuy() abilities.PointBuy {
	return w.pointBuy
}

// Rolls returns the dice behind rolled scores, nil until rolled.
func (w Wizard) Rolls() []abilities.Roll {
	return slices.Clone(w.rolls)
}

// CantripPicks is the cantrip selection.
func (w Wizard) CantripPicks() selection.Toggle {
	return w.cantrips
}

// SpellPicks is the known spell selection.
func (w Wizard) SpellPicks() selection.Toggle {
	return w.spells
}

// SkillPicks is the class skill selection.
func (w Wizard) SkillPicks() selection.Toggle {
	return w.skills
}

// SelectRace picks a race by name. Unknown names are ignored.
func (w Wizard) SelectRace(name string) Wizard {
	r, ok := w.cat.Race(name)
	if !ok || w.done() {
		return w
	}
	w.race = r
	return w
}

// SelectClass picks a class by name and rebuilds everything that depends on
// it: the step list, the spell pools and the skill picks. Reselecting the
// current class changes nothing.
func (w Wizard) SelectClass(name string) Wizard {
	c, ok := w.cat.Class(name)
	if !ok || w.done() {
		return w
	}
	if w.class != nil && w.class.Name == c.Name {
		return w
	}

	current := w.Current()
	w.class = c
	w.steps = StepsFor(c)
	if i := indexOf(w.steps, current); i >= 0 {
		w.pos = i
	} else if w.pos >= len(w.steps) {
		w.pos = len(w.steps) - 1
	}

	w.cantrips, w.spells = w.spellPools()
	w.skills = selection.SkillPicks(w.class, w.background)
	return w.rewind()
}

// ToggleCantrip toggles a cantrip pick.
func (w Wizard) ToggleCantrip(name string) Wizard {
	if w.done() {
		return w
	}
	w.cantrips = w.cantrips.Toggle(name)
	return w.rewind()
}

// ToggleSpell toggles a known spell pick.
func (w Wizard) ToggleSpell(name string) Wizard {
	if w.done() {
		return w
	}
	w.spells = w.spells.Toggle(name)
	return w.rewind()
}

// SetAbilityMode switches between point-buy and rolling. The state of the
// mode left behind is discarded.
func (w Wizard) SetAbilityMode(m abilities.Mode) Wizard {
	if w.done() || m == w.mode {
		return w
	}
	if m != abilities.ModePointBuy && m != abilities.ModeRoll {
		return w
	}
	w.mode = m
	w.pointBuy = abilities.NewPointBuy()
	w.rolled = nil
	w.rolls = nil
	return w.rewind()
}

// SetScore changes a point-buy score. It is ignored in roll mode and
// whenever point-buy itself rejects the change.
func (w Wizard) SetScore(a dnd5e.Ability, v int) Wizard {
	if w.done() || w.mode != abilities.ModePointBuy {
		return w
	}
	w.pointBuy = w.pointBuy.SetScore(a, v)
	return w.rewind()
}

// RollAbilities rolls a fresh set of scores, switching to roll mode. The
// receiver is returned with the error when the dice fail.
func (w Wizard) RollAbilities() (Wizard, error) {
	if w.done() {
		return w, nil
	}
	scores, rolls, err := w.roller.RollAll()
	if err != nil {
		return w, err
	}
	w.mode = abilities.ModeRoll
	w.pointBuy = abilities.NewPointBuy()
	w.rolled = &scores
	w.rolls = rolls
	return w, nil
}

// SetName sets the character name.
func (w Wizard) SetName(name string) Wizard {
	if w.done() {
		return w
	}
	w.name = name
	return w.rewind()
}

// SelectBackground picks a background by name. Skill picks that the new
// background already grants are dropped.
func (w Wizard) SelectBackground(name string) Wizard {
	b, ok := w.cat.Background(name)
	if !ok || w.done() {
		return w
	}
	w.background = b

	picks := selection.SkillPicks(w.class, w.background)
	for _, sk := range w.skills.Selected() {
		picks = picks.Toggle(sk)
	}
	w.skills = picks
	return w.rewind()
}

// ToggleSkill toggles a class skill pick.
func (w Wizard) ToggleSkill(name string) Wizard {
	if w.done() {
		return w
	}
	w.skills = w.skills.Toggle(name)
	return w.rewind()
}

// CanAdvance reports whether the current step and every step before it are
// satisfied.
func (w Wizard) CanAdvance() bool {
	for _, st := range w.steps[:w.pos+1] {
		if !w.stepReady(st) {
			return false
		}
	}
	return true
}

func (w Wizard) stepReady(st Step) bool {
	switch st {
	case StepRace:
		return w.race != nil
	case StepClass:
		return w.class != nil
	case StepSpells:
		return w.cantrips.Ready() && w.spells.Ready()
	case StepAbilities:
		if w.mode == abilities.ModeRoll {
			return w.rolled != nil
		}
		return w.pointBuy.Ready()
	case StepFinalize:
		return strings.TrimSpace(w.name) != "" && w.background != nil && w.skills.Ready()
	case StepEquipment:
		return true
	}
	return false
}

// Next moves forward when CanAdvance holds. Arriving at the
// complete step builds the final character.
func (w Wizard) Next() Wizard {
	if !w.CanAdvance() {
		return w
	}
	w.pos++
	if w.Current() == StepComplete {
		w.result = w.build()
	}
	return w
}

// Back moves to the previous step. There is nothing before race and no way
// out of complete.
func (w Wizard) Back() Wizard {
	if w.pos == 0 || w.done() {
		return w
	}
	w.pos--
	return w
}

// Result returns the finished character once the flow is complete.
func (w Wizard) Result() (*dnd5e.Character, bool) {
	if w.result == nil {
		return nil, false
	}
	return w.result.Clone(), true
}

// Draft returns the character as chosen so far.
func (w Wizard) Draft() *dnd5e.Character {
	return w.build()
}

// rewind moves the cursor back to the first earlier step a change left
// unsatisfied, so no step is skipped on the way to complete.
func (w Wizard) rewind() Wizard {
	for i, st := range w.steps[:w.pos] {
		if !w.stepReady(st) {
			w.pos = i
			break
		}
	}
	return w
}

func (w Wizard) done() bool {
	return w.result != nil
}

func (w Wizard) scores() dnd5e.AbilityScores {
	if w.mode == abilities.ModeRoll {
		if w.rolled == nil {
			return dnd5e.DefaultAbilityScores()
		}
		return *w.rolled
	}
	return w.pointBuy.Scores()
}

func (w Wizard) spellPools() (selection.Toggle, selection.Toggle) {
	if w.class == nil {
		return selection.Toggle{}, selection.Toggle{}
	}
	cantrips, leveled := w.cat.SpellsFor(w.class)
	c, l, _ := selection.SpellPicks(w.class, cantrips, leveled)
	return c, l
}

// build assembles a character from the current choices. Equipment is class
// first, then background.
func (w Wizard) build() *dnd5e.Character {
	c := dnd5e.NewCharacter()
	c.ID = w.id
	c.Name = strings.TrimSpace(w.name)
	c.Race = dnd5e.CloneRace(w.race)
	c.Class = dnd5e.CloneClass(w.class)
	c.Background = dnd5e.CloneBackground(w.background)
	c.AbilityScores = w.scores()
	c.GeneratedImageURL = w.image

	var classGear, backgroundGear []string
	if w.class != nil {
		classGear = w.class.StartingEquipment
	}
	if w.background != nil {
		backgroundGear = w.background.StartingEquipment
	}
	c.Equipment = selection.MergeEquipment(classGear, backgroundGear)
	c.ProficientSkills = selection.ResolveSkills(w.background, w.skills.Selected())

	for _, name := range append(w.cantrips.Selected(), w.spells.Selected()...) {
		if sp, ok := w.cat.Spell(name); ok {
			c.Spells = append(c.Spells, sp)
		}
	}
	return c
}

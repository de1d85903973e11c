// Package dnd5e holds the D&D 5e domain types shared by the catalog, the
// rules engines and persistence.
package dnd5e

import (
	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

// EntityTypeCharacter is the entity type of persisted characters.
const EntityTypeCharacter = "character"

// Character is the persisted aggregate. Race, class, background and spells
// are copies of catalog values taken at selection time.
type Character struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Race              *Race         `json:"race"`
	Class             *Class        `json:"dndClass"`
	AbilityScores     AbilityScores `json:"abilityScores"`
	Background        *Background   `json:"background"`
	ProficientSkills  []string      `json:"proficientSkills"`
	Equipment         []string      `json:"equipment"`
	Spells            []Spell       `json:"spells"`
	GeneratedImageURL string        `json:"generatedImageUrl,omitempty"`
	CreatedAt         int64         `json:"createdAt,omitempty"`
	UpdatedAt         int64         `json:"updatedAt,omitempty"`
}

var _ core.Entity = (*Character)(nil)

// NewCharacter returns an empty draft with point-buy starting scores.
func NewCharacter() *Character {
	return &Character{
		AbilityScores:    DefaultAbilityScores(),
		ProficientSkills: []string{},
		Equipment:        []string{},
		Spells:           []Spell{},
	}
}

// GetID implements core.Entity
func (c *Character) GetID() string {
	return c.ID
}

// GetType implements core.Entity
func (c *Character) GetType() string {
	return EntityTypeCharacter
}

// WithID returns a copy of c carrying id.
func (c *Character) WithID(id string) *Character {
	out := c.Clone()
	out.ID = id
	return out
}

// Clone returns a deep copy of c.
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	out := *c
	out.Race = c.Race.clone()
	out.Class = c.Class.clone()
	out.Background = c.Background.clone()
	out.ProficientSkills = cloneSlice(c.ProficientSkills)
	out.Equipment = cloneSlice(c.Equipment)
	out.Spells = cloneSlice(c.Spells)
	return &out
}

// Cantrips returns the level 0 spells in selection order.
func (c *Character) Cantrips() []Spell {
	return c.spellsAt(func(s Spell) bool { return s.IsCantrip() })
}

// LeveledSpells returns the spells above level 0 in selection order.
func (c *Character) LeveledSpells() []Spell {
	return c.spellsAt(func(s Spell) bool { return !s.IsCantrip() })
}

func (c *Character) spellsAt(keep func(Spell) bool) []Spell {
	var out []Spell
	for _, s := range c.Spells {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports every way in which c is not a complete character. A
// complete character has a name, a race, a class and a background, exactly
// as many proficient skills as the background grants plus the class picks,
// and, for a spellcasting class, exactly the known number of cantrips and
// spells.
func (c *Character) Validate() error {
	if c == nil {
		return errors.InvalidArgument("character is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", c.Name, vb)
	if c.Race == nil {
		vb.RequiredField("race")
	}
	if c.Class == nil {
		vb.RequiredField("dndClass")
	}
	if c.Background == nil {
		vb.RequiredField("background")
	}
	for _, a := range allAbilities {
		if c.AbilityScores.Get(a) < 1 {
			vb.Fieldf("abilityScores", "%s must be positive", a)
		}
	}
	if vb.HasErrors() {
		return vb.Build()
	}

	want := len(c.Background.SkillProficiencies) + c.Class.SkillProficiency.Count
	errors.ValidateCount("proficientSkills", len(c.ProficientSkills), want, vb)

	if sc := c.Class.Spellcasting; sc != nil {
		errors.ValidateCount("spells.cantrips", len(c.Cantrips()), sc.CantripsKnown, vb)
		errors.ValidateCount("spells.leveled", len(c.LeveledSpells()), sc.SpellsKnown, vb)
	} else if len(c.Spells) > 0 {
		vb.Fieldf("spells", "%s does not cast spells", c.Class.Name)
	}

	return vb.Build()
}

// CharacterPatch is a partial character. Nil fields are left untouched when
// applied.
type CharacterPatch struct {
	Name              *string        `json:"name,omitempty"`
	Race              *Race          `json:"race,omitempty"`
	Class             *Class         `json:"dndClass,omitempty"`
	AbilityScores     *AbilityScores `json:"abilityScores,omitempty"`
	Background        *Background    `json:"background,omitempty"`
	ProficientSkills  *[]string      `json:"proficientSkills,omitempty"`
	Equipment         *[]string      `json:"equipment,omitempty"`
	Spells            *[]Spell       `json:"spells,omitempty"`
	GeneratedImageURL *string        `json:"generatedImageUrl,omitempty"`
}

// Apply returns a copy of current with every present field of p merged over
// it. The id is never taken from the patch.
func (p *CharacterPatch) Apply(current *Character) *Character {
	out := current.Clone()
	if p == nil {
		return out
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Race != nil {
		out.Race = p.Race.clone()
	}
	if p.Class != nil {
		out.Class = p.Class.clone()
	}
	if p.AbilityScores != nil {
		out.AbilityScores = *p.AbilityScores
	}
	if p.Background != nil {
		out.Background = p.Background.clone()
	}
	if p.ProficientSkills != nil {
		out.ProficientSkills = cloneSlice(*p.ProficientSkills)
	}
	if p.Equipment != nil {
		out.Equipment = cloneSlice(*p.Equipment)
	}
	if p.Spells != nil {
		out.Spells = cloneSlice(*p.Spells)
	}
	if p.GeneratedImageURL != nil {
		out.GeneratedImageURL = *p.GeneratedImageURL
	}
	return out
}

// Empty reports whether the patch changes nothing.
func (p *CharacterPatch) Empty() bool {
	return p == nil || (p.Name == nil && p.Race == nil && p.Class == nil &&
		p.AbilityScores == nil && p.Background == nil && p.ProficientSkills == nil &&
		p.Equipment == nil && p.Spells == nil && p.GeneratedImageURL == nil)
}

// ReplaceWith builds a patch that overwrites every mutable field with c's.
func ReplaceWith(c *Character) *CharacterPatch {
	c = c.Clone()
	return &CharacterPatch{
		Name:              &c.Name,
		Race:              c.Race,
		Class:             c.Class,
		AbilityScores:     &c.AbilityScores,
		Background:        c.Background,
		ProficientSkills:  &c.ProficientSkills,
		Equipment:         &c.Equipment,
		Spells:            &c.Spells,
		GeneratedImageURL: &c.GeneratedImageURL,
	}
}

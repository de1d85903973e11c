package dnd5e

// Race is a playable race as listed in the catalog.
type Race struct {
	Name                 string          `json:"name" yaml:"name"`
	Description          string          `json:"description" yaml:"description"`
	ImageURL             string          `json:"imageUrl" yaml:"imageUrl"`
	AbilityScoreIncrease map[Ability]int `json:"abilityScoreIncrease" yaml:"abilityScoreIncrease"`
}

// Bonus returns the race's increase for a, 0 when the race has none.
func (r *Race) Bonus(a Ability) int {
	if r == nil {
		return 0
	}
	return r.AbilityScoreIncrease[a]
}

// SkillChoice is a class's "pick Count of Choices" skill rule.
type SkillChoice struct {
	Choices []string `json:"choices" yaml:"choices"`
	Count   int      `json:"count" yaml:"count"`
}

// Spellcasting is the level 1 spellcasting profile of a class.
type Spellcasting struct {
	Ability       Ability  `json:"ability" yaml:"ability"`
	CantripsKnown int      `json:"cantripsKnown" yaml:"cantripsKnown"`
	SpellsKnown   int      `json:"spellsKnown" yaml:"spellsKnown"`
	SpellList     []string `json:"spellList" yaml:"spellList"`
}

// Class is a playable class as listed in the catalog.
type Class struct {
	Name                     string        `json:"name" yaml:"name"`
	Description              string        `json:"description" yaml:"description"`
	ImageURL                 string        `json:"imageUrl" yaml:"imageUrl"`
	HitDie                   int           `json:"hitDie" yaml:"hitDie"`
	SavingThrowProficiencies []Ability     `json:"savingThrowProficiencies" yaml:"savingThrowProficiencies"`
	SkillProficiency         SkillChoice   `json:"skillProficiency" yaml:"skillProficiency"`
	StartingEquipment        []string      `json:"startingEquipment" yaml:"startingEquipment"`
	Spellcasting             *Spellcasting `json:"spellcasting,omitempty" yaml:"spellcasting,omitempty"`
}

// HasSpellcasting reports whether the class casts spells at level 1.
func (c *Class) HasSpellcasting() bool {
	return c != nil && c.Spellcasting != nil
}

// ProficientSave reports whether the class is proficient in a's saving throw.
func (c *Class) ProficientSave(a Ability) bool {
	if c == nil {
		return false
	}
	for _, p := range c.SavingThrowProficiencies {
		if p == a {
			return true
		}
	}
	return false
}

// Background is a character background as listed in the catalog.
type Background struct {
	Name               string   `json:"name" yaml:"name"`
	Description        string   `json:"description" yaml:"description"`
	SkillProficiencies []string `json:"skillProficiencies" yaml:"skillProficiencies"`
	StartingEquipment  []string `json:"startingEquipment" yaml:"startingEquipment"`
}

// Grants reports whether the background already gives proficiency in skill.
func (b *Background) Grants(skill string) bool {
	if b == nil {
		return false
	}
	for _, s := range b.SkillProficiencies {
		if s == skill {
			return true
		}
	}
	return false
}

// Spell is a cantrip (level 0) or a first level spell.
type Spell struct {
	Name        string `json:"name" yaml:"name"`
	Level       int    `json:"level" yaml:"level"`
	Description string `json:"description" yaml:"description"`
}

// IsCantrip reports whether the spell is level 0.
func (s Spell) IsCantrip() bool {
	return s.Level == 0
}

// Skill is a skill and the ability that governs it.
type Skill struct {
	Name    string  `json:"name" yaml:"name"`
	Ability Ability `json:"ability" yaml:"ability"`
}

func (r *Race) clone() *Race {
	if r == nil {
		return nil
	}
	out := *r
	if r.AbilityScoreIncrease != nil {
		out.AbilityScoreIncrease = make(map[Ability]int, len(r.AbilityScoreIncrease))
		for k, v := range r.AbilityScoreIncrease {
			out.AbilityScoreIncrease[k] = v
		}
	}
	return &out
}

func (c *Class) clone() *Class {
	if c == nil {
		return nil
	}
	out := *c
	out.SavingThrowProficiencies = cloneSlice(c.SavingThrowProficiencies)
	out.SkillProficiency.Choices = cloneSlice(c.SkillProficiency.Choices)
	out.StartingEquipment = cloneSlice(c.StartingEquipment)
	if c.Spellcasting != nil {
		sc := *c.Spellcasting
		sc.SpellList = cloneSlice(c.Spellcasting.SpellList)
		out.Spellcasting = &sc
	}
	return &out
}

func (b *Background) clone() *Background {
	if b == nil {
		return nil
	}
	out := *b
	out.SkillProficiencies = cloneSlice(b.SkillProficiencies)
	out.StartingEquipment = cloneSlice(b.StartingEquipment)
	return &out
}

// CloneRace returns a deep copy of r.
func CloneRace(r *Race) *Race { return r.clone() }

// CloneClass returns a deep copy of c.
func CloneClass(c *Class) *Class { return c.clone() }

// CloneBackground returns a deep copy of b.
func CloneBackground(b *Background) *Background { return b.clone() }

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

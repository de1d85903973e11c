// Package stats derives the level 1 numbers shown on a character sheet.
// Nothing here is persisted; stats are recomputed from the character on
// demand.
package stats

import (
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

// ProficiencyBonus at level 1.
const ProficiencyBonus = 2

// SkillStat is one skill line on the sheet.
type SkillStat struct {
	Name       string
	Ability    dnd5e.Ability
	Modifier   int
	Proficient bool
}

// SpellStats is present for spellcasting classes.
type SpellStats struct {
	Ability        dnd5e.Ability
	SaveDC         int
	AttackModifier int
}

// Stats are the derived values for a character.
type Stats struct {
	FinalScores      dnd5e.AbilityScores
	Modifiers        map[dnd5e.Ability]int
	ProficiencyBonus int
	ArmorClass       int
	HitPoints        int
	SavingThrows     map[dnd5e.Ability]int
	Skills           []SkillStat
	Spellcasting     *SpellStats
}

// Modifier is floor((score-10)/2).
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		return -((-d + 1) / 2)
	}
	return d / 2
}

// Derive computes the sheet numbers for c. skills lists every skill in the
// order the sheet shows them, usually the catalog's Skills().
func Derive(c *dnd5e.Character, skills []dnd5e.Skill) (*Stats, error) {
	if c == nil {
		return nil, errors.InvalidArgument("character is required")
	}
	vb := errors.NewValidationBuilder()
	if c.Race == nil {
		vb.RequiredField("race")
	}
	if c.Class == nil {
		vb.RequiredField("dndClass")
	}
	if c.Background == nil {
		vb.RequiredField("background")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	final := c.AbilityScores.Add(c.Race.AbilityScoreIncrease)
	mods := make(map[dnd5e.Ability]int, 6)
	saves := make(map[dnd5e.Ability]int, 6)
	for _, a := range dnd5e.AllAbilities() {
		m := Modifier(final.Get(a))
		mods[a] = m
		if c.Class.ProficientSave(a) {
			m += ProficiencyBonus
		}
		saves[a] = m
	}

	proficient := make(map[string]bool, len(c.ProficientSkills))
	for _, sk := range c.ProficientSkills {
		proficient[sk] = true
	}
	skillStats := make([]SkillStat, 0, len(skills))
	for _, sk := range skills {
		st := SkillStat{
			Name:       sk.Name,
			Ability:    sk.Ability,
			Modifier:   mods[sk.Ability],
			Proficient: proficient[sk.Name],
		}
		if st.Proficient {
			st.Modifier += ProficiencyBonus
		}
		skillStats = append(skillStats, st)
	}

	out := &Stats{
		FinalScores:      final,
		Modifiers:        mods,
		ProficiencyBonus: ProficiencyBonus,
		ArmorClass:       10 + mods[dnd5e.Dexterity],
		HitPoints:        c.Class.HitDie + mods[dnd5e.Constitution],
		SavingThrows:     saves,
		Skills:           skillStats,
	}

	if sc := c.Class.Spellcasting; sc != nil {
		m := mods[sc.Ability]
		out.Spellcasting = &SpellStats{
			Ability:        sc.Ability,
			SaveDC:         8 + ProficiencyBonus + m,
			AttackModifier: ProficiencyBonus + m,
		}
	}

	return out, nil
}

package testutils

import (
	"fmt"

	"github.com/KirkDiggler/rpg-charforge/internal/catalog"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
)

const (
	// TestCharacterName is the default character name for test fixtures
	TestCharacterName = "Thorin Oakenshield"

	// TestWizardName names the spellcasting fixture
	TestWizardName = "Elminster Aumar"
)

// Catalog loads the embedded catalog and panics if it is broken.
func Catalog() *catalog.Catalog {
	cat, err := catalog.Default()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return cat
}

// CreateTestFighter returns a complete, unsaved Human Fighter with the
// Soldier background.
func CreateTestFighter() *dnd5e.Character {
	return build(TestCharacterName, "Human", "Fighter", "Soldier",
		dnd5e.AbilityScores{
			Strength:     15,
			Dexterity:    13,
			Constitution: 14,
			Intelligence: 8,
			Wisdom:       12,
			Charisma:     10,
		},
		[]string{"Perception", "Survival"},
		nil,
	)
}

// CreateTestWizard returns a complete, unsaved Gnome Wizard with the Sage
// background, three cantrips and two first level spells.
func CreateTestWizard() *dnd5e.Character {
	return build(TestWizardName, "Gnome", "Wizard", "Sage",
		dnd5e.AbilityScores{
			Strength:     8,
			Dexterity:    14,
			Constitution: 13,
			Intelligence: 17,
			Wisdom:       12,
			Charisma:     10,
		},
		[]string{"Insight", "Investigation"},
		[]string{"Fire Bolt", "Mage Hand", "Light", "Magic Missile", "Shield"},
	)
}

// CreateStoredCharacter returns c as the store would hold it under id.
func CreateStoredCharacter(c *dnd5e.Character, id string, createdAt int64) *dnd5e.Character {
	out := c.WithID(id)
	out.CreatedAt = createdAt
	out.UpdatedAt = createdAt
	return out
}

func build(name, race, class, background string, scores dnd5e.AbilityScores, picks, spells []string) *dnd5e.Character {
	cat := Catalog()
	c := dnd5e.NewCharacter()
	c.Name = name
	c.Race = mustFind(cat.Race(race))
	c.Class = mustFind(cat.Class(class))
	c.Background = mustFind(cat.Background(background))
	c.AbilityScores = scores
	c.ProficientSkills = append(append([]string{}, c.Background.SkillProficiencies...), picks...)
	c.Equipment = append(append([]string{}, c.Class.StartingEquipment...), c.Background.StartingEquipment...)
	for _, s := range spells {
		spell, ok := cat.Spell(s)
		if !ok {
			panic("unknown spell " + s)
		}
		c.Spells = append(c.Spells, spell)
	}
	return c
}

func mustFind[T any](v *T, ok bool) *T {
	if !ok {
		panic(fmt.Sprintf("catalog is missing a %T", v))
	}
	return v
}

package dnd5e_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

type CharacterTestSuite struct {
	suite.Suite
	fighter *dnd5e.Class
	wizard  *dnd5e.Class
	soldier *dnd5e.Background
	human   *dnd5e.Race
}

func TestCharacterSuite(t *testing.T) {
	suite.Run(t, new(CharacterTestSuite))
}

func (s *CharacterTestSuite) SetupTest() {
	s.human = &dnd5e.Race{Name: "Human"}
	s.fighter = &dnd5e.Class{
		Name:   "Fighter",
		HitDie: 10,
		SkillProficiency: dnd5e.SkillChoice{
			Choices: []string{"Acrobatics", "Perception", "Survival"},
			Count:   2,
		},
	}
	s.wizard = &dnd5e.Class{
		Name:   "Wizard",
		HitDie: 6,
		SkillProficiency: dnd5e.SkillChoice{
			Choices: []string{"Arcana", "History"},
			Count:   1,
		},
		Spellcasting: &dnd5e.Spellcasting{
			Ability:       dnd5e.Intelligence,
			CantripsKnown: 1,
			SpellsKnown:   1,
			SpellList:     []string{"Fire Bolt", "Magic Missile"},
		},
	}
	s.soldier = &dnd5e.Background{
		Name:               "Soldier",
		SkillProficiencies: []string{"Athletics", "Intimidation"},
	}
}

func (s *CharacterTestSuite) completeFighter() *dnd5e.Character {
	c := dnd5e.NewCharacter()
	c.Name = "Brann"
	c.Race = s.human
	c.Class = s.fighter
	c.Background = s.soldier
	c.ProficientSkills = []string{"Athletics", "Intimidation", "Acrobatics", "Perception"}
	return c
}

func (s *CharacterTestSuite) TestValidateComplete() {
	s.NoError(s.completeFighter().Validate())
}

func (s *CharacterTestSuite) TestValidateMissingSelections() {
	c := dnd5e.NewCharacter()

	err := c.Validate()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	fields := errors.ValidationFields(err)
	s.Contains(fields, "name")
	s.Contains(fields, "race")
	s.Contains(fields, "dndClass")
	s.Contains(fields, "background")
}

func (s *CharacterTestSuite) TestValidateSkillCount() {
	c := s.completeFighter()
	c.ProficientSkills = c.ProficientSkills[:3]

	fields := errors.ValidationFields(c.Validate())
	s.Equal([]string{"must have exactly 4 selections, got 3"}, fields["proficientSkills"])
}

func (s *CharacterTestSuite) TestValidateSpellCounts() {
	c := s.completeFighter()
	c.Class = s.wizard
	c.ProficientSkills = []string{"Athletics", "Intimidation", "Arcana"}

	fields := errors.ValidationFields(c.Validate())
	s.Contains(fields, "spells.cantrips")
	s.Contains(fields, "spells.leveled")

	c.Spells = []dnd5e.Spell{{Name: "Fire Bolt", Level: 0}, {Name: "Magic Missile", Level: 1}}
	s.NoError(c.Validate())
}

func (s *CharacterTestSuite) TestValidateRejectsSpellsOnNonCaster() {
	c := s.completeFighter()
	c.Spells = []dnd5e.Spell{{Name: "Fire Bolt"}}

	fields := errors.ValidationFields(c.Validate())
	s.Contains(fields, "spells")
}

func (s *CharacterTestSuite) TestCloneIsDeep() {
	c := s.completeFighter()
	clone := c.Clone()

	clone.ProficientSkills[0] = "Stealth"
	clone.Class.SkillProficiency.Choices[0] = "Stealth"
	clone.AbilityScores.Strength = 15

	s.Equal("Athletics", c.ProficientSkills[0])
	s.Equal("Acrobatics", c.Class.SkillProficiency.Choices[0])
	s.Equal(8, c.AbilityScores.Strength)
}

func (s *CharacterTestSuite) TestWithID() {
	c := s.completeFighter()
	withID := c.WithID("abc")

	s.Equal("abc", withID.GetID())
	s.Empty(c.ID)
	s.Equal(dnd5e.EntityTypeCharacter, withID.GetType())
}

func (s *CharacterTestSuite) TestPatchApply() {
	c := s.completeFighter()
	c.ID = "abc"
	name := "Brann the Bold"
	url := "data:image/png;base64,AAAA"

	patched := (&dnd5e.CharacterPatch{Name: &name, GeneratedImageURL: &url}).Apply(c)

	s.Equal("abc", patched.ID)
	s.Equal(name, patched.Name)
	s.Equal(url, patched.GeneratedImageURL)
	s.Equal(c.ProficientSkills, patched.ProficientSkills)
	s.Equal("Brann", c.Name, "current is not modified")
}

func (s *CharacterTestSuite) TestPatchEmpty() {
	var nilPatch *dnd5e.CharacterPatch
	s.True(nilPatch.Empty())
	s.True((&dnd5e.CharacterPatch{}).Empty())
	s.False(dnd5e.ReplaceWith(s.completeFighter()).Empty())
}

func (s *CharacterTestSuite) TestJSONShape() {
	c := s.completeFighter()
	c.ID = "abc"

	data, err := json.Marshal(c)
	s.Require().NoError(err)

	var raw map[string]any
	s.Require().NoError(json.Unmarshal(data, &raw))
	s.Contains(raw, "dndClass")
	s.Contains(raw, "abilityScores")
	s.Contains(raw, "proficientSkills")
	s.NotContains(raw, "generatedImageUrl")

	scores := raw["abilityScores"].(map[string]any)
	s.Equal(float64(8), scores["Strength"])
}

func (s *CharacterTestSuite) TestParseAbility() {
	for _, in := range []string{"dex", "DEX", "Dexterity", " dexterity "} {
		a, err := dnd5e.ParseAbility(in)
		s.NoError(err, in)
		s.Equal(dnd5e.Dexterity, a)
	}

	_, err := dnd5e.ParseAbility("luck")
	s.True(errors.IsInvalidArgument(err))
	s.Equal("cha", dnd5e.Charisma.SRDKey())
}

func (s *CharacterTestSuite) TestAbilityScoresAdd() {
	base := dnd5e.UniformAbilityScores(10)
	final := base.Add(map[dnd5e.Ability]int{dnd5e.Dexterity: 2, dnd5e.Charisma: 1})

	s.Equal(12, final.Dexterity)
	s.Equal(11, final.Charisma)
	s.Equal(10, final.Strength)
	s.Equal(10, base.Dexterity)
	s.Len(final.Map(), 6)
}

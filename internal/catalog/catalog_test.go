package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-charforge/internal/catalog"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

type CatalogTestSuite struct {
	suite.Suite
	cat *catalog.Catalog
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func (s *CatalogTestSuite) SetupTest() {
	cat, err := catalog.Default()
	s.Require().NoError(err)
	s.cat = cat
}

func (s *CatalogTestSuite) TestEmbeddedCatalogLoads() {
	s.Len(s.cat.Skills(), 18)
	s.NotEmpty(s.cat.Races())
	s.NotEmpty(s.cat.Classes())
	s.NotEmpty(s.cat.Backgrounds())
	s.NotEmpty(s.cat.Spells())
}

func (s *CatalogTestSuite) TestDefaultIsShared() {
	again, err := catalog.Default()
	s.Require().NoError(err)
	s.Same(s.cat, again)
}

func (s *CatalogTestSuite) TestLookupsIgnoreCase() {
	race, ok := s.cat.Race("half-orc")
	s.Require().True(ok)
	s.Equal("Half-Orc", race.Name)
	s.Equal(2, race.Bonus(dnd5e.Strength))
	s.Equal(0, race.Bonus(dnd5e.Wisdom))

	class, ok := s.cat.Class("WIZARD")
	s.Require().True(ok)
	s.True(class.HasSpellcasting())
	s.Equal(dnd5e.Intelligence, class.Spellcasting.Ability)

	_, ok = s.cat.Background("Pirate")
	s.False(ok)

	skill, ok := s.cat.Skill("sleight of hand")
	s.Require().True(ok)
	s.Equal(dnd5e.Dexterity, skill.Ability)
}

func (s *CatalogTestSuite) TestHumanHasNoBonuses() {
	human, ok := s.cat.Race("Human")
	s.Require().True(ok)
	s.Empty(human.AbilityScoreIncrease)
}

func (s *CatalogTestSuite) TestLookupsReturnCopies() {
	fighter, _ := s.cat.Class("Fighter")
	fighter.StartingEquipment[0] = "Banana"
	fighter.HitDie = 4

	again, _ := s.cat.Class("Fighter")
	s.Equal(10, again.HitDie)
	s.NotEqual("Banana", again.StartingEquipment[0])
}

func (s *CatalogTestSuite) TestSpellsFor() {
	wizard, _ := s.cat.Class("Wizard")
	cantrips, leveled := s.cat.SpellsFor(wizard)

	s.GreaterOrEqual(len(cantrips), wizard.Spellcasting.CantripsKnown)
	s.GreaterOrEqual(len(leveled), wizard.Spellcasting.SpellsKnown)
	for _, sp := range cantrips {
		s.True(sp.IsCantrip(), sp.Name)
	}
	for _, sp := range leveled {
		s.Equal(1, sp.Level, sp.Name)
	}

	fighter, _ := s.cat.Class("Fighter")
	cantrips, leveled = s.cat.SpellsFor(fighter)
	s.Empty(cantrips)
	s.Empty(leveled)
}

func (s *CatalogTestSuite) TestLoadRejectsBrokenReferences() {
	doc := `
skills:
  - { name: Arcana, ability: Intelligence }
spells:
  - { name: Fire Bolt, level: 0, description: fire }
races: []
backgrounds:
  - { name: Sage, description: x, skillProficiencies: [Arcana, Juggling], startingEquipment: [] }
classes:
  - name: Wizard
    description: x
    imageUrl: x
    hitDie: 7
    savingThrowProficiencies: [Intelligence]
    skillProficiency: { choices: [Arcana], count: 1 }
    startingEquipment: []
    spellcasting: { ability: Intelligence, cantripsKnown: 2, spellsKnown: 1, spellList: [Fire Bolt, Wish] }
`
	_, err := catalog.Load(strings.NewReader(doc))
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	fields := errors.ValidationFields(err)
	s.Contains(fields, "backgrounds")
	s.Len(fields["classes"], 4, "hit die, unknown spell, cantrips and spells counts")
}

func (s *CatalogTestSuite) TestLoadRejectsDuplicates() {
	doc := `
skills:
  - { name: Arcana, ability: Intelligence }
  - { name: arcana, ability: Intelligence }
`
	_, err := catalog.Load(strings.NewReader(doc))
	s.Require().Error(err)
	s.Contains(err.Error(), "twice")
}

func (s *CatalogTestSuite) TestLoadRejectsUnknownFields() {
	_, err := catalog.Load(strings.NewReader("monsters: []\n"))
	s.True(errors.IsInvalidArgument(err))
}

func (s *CatalogTestSuite) TestLoadFileEmptyPathUsesEmbedded() {
	cat, err := catalog.LoadFile("")
	s.Require().NoError(err)
	s.Same(s.cat, cat)
}

package selection_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/KirkDiggler/rpg-charforge/internal/catalog"
	"github.com/KirkDiggler/rpg-charforge/internal/engine/selection"
)

type SelectionTestSuite struct {
	suite.Suite
	cat *catalog.Catalog
}

func TestSelectionSuite(t *testing.T) {
	suite.Run(t, new(SelectionTestSuite))
}

func (s *SelectionTestSuite) SetupTest() {
	cat, err := catalog.Default()
	s.Require().NoError(err)
	s.cat = cat
}

func (s *SelectionTestSuite) TestToggleAddsAndRemoves() {
	t := selection.NewToggle([]string{"a", "b", "c"}, 2)

	t = t.Toggle("a").Toggle("b")
	s.Equal([]string{"a", "b"}, t.Selected())
	s.True(t.Ready())

	t = t.Toggle("a")
	s.Equal([]string{"b"}, t.Selected())
	s.False(t.Ready())
	s.False(t.Contains("a"))
}

func (s *SelectionTestSuite) TestToggleIgnoresPicksPastLimit() {
	t := selection.NewToggle([]string{"a", "b", "c"}, 2).Toggle("a").Toggle("b")

	full := t.Toggle("c")
	s.Equal([]string{"a", "b"}, full.Selected())
}

func (s *SelectionTestSuite) TestToggleIgnoresUnknownOption() {
	t := selection.NewToggle([]string{"a"}, 1)

	s.Empty(t.Toggle("z").Selected())
}

func (s *SelectionTestSuite) TestToggleDoesNotShareState() {
	base := selection.NewToggle([]string{"a", "b", "c"}, 3).Toggle("a")
	left := base.Toggle("b")
	right := base.Toggle("c")

	s.Equal([]string{"a"}, base.Selected())
	s.Equal([]string{"a", "b"}, left.Selected())
	s.Equal([]string{"a", "c"}, right.Selected())

	sel := left.Selected()
	sel[0] = "mutated"
	s.Equal([]string{"a", "b"}, left.Selected())
}

func (s *SelectionTestSuite) TestZeroLimitIsReady() {
	t := selection.NewToggle([]string{"a"}, 0)

	s.True(t.Ready())
	s.Empty(t.Toggle("a").Selected())
}

func (s *SelectionTestSuite) TestSkillPicksExcludeBackgroundSkills() {
	fighter, _ := s.cat.Class("Fighter")
	soldier, _ := s.cat.Background("Soldier")

	picks := selection.SkillPicks(fighter, soldier)
	s.Equal(2, picks.Limit())
	s.NotContains(picks.Options(), "Athletics")
	s.NotContains(picks.Options(), "Intimidation")
	s.Contains(picks.Options(), "Perception")
	s.Len(picks.Options(), len(fighter.SkillProficiency.Choices)-2)

	// background skill cannot be picked again
	s.Empty(picks.Toggle("Athletics").Selected())
}

func (s *SelectionTestSuite) TestSkillPicksWithoutBackground() {
	rogue, _ := s.cat.Class("Rogue")

	picks := selection.SkillPicks(rogue, nil)
	s.Equal(rogue.SkillProficiency.Choices, picks.Options())
	s.Equal(4, picks.Limit())
}

func (s *SelectionTestSuite) TestSpellPicksForCaster() {
	wizard, _ := s.cat.Class("Wizard")
	cantrips, leveled := s.cat.SpellsFor(wizard)

	c, l, ok := selection.SpellPicks(wizard, cantrips, leveled)
	s.Require().True(ok)
	s.Equal(3, c.Limit())
	s.Equal(2, l.Limit())
	s.Contains(c.Options(), "Fire Bolt")
	s.Contains(l.Options(), "Magic Missile")
	s.NotContains(c.Options(), "Magic Missile")

	// pools are independent
	s.True(c.Toggle("Fire Bolt").Contains("Fire Bolt"))
	s.Empty(l.Selected())
	s.Empty(l.Toggle("Fire Bolt").Selected())
}

func (s *SelectionTestSuite) TestSpellPicksForNonCaster() {
	fighter, _ := s.cat.Class("Fighter")

	c, l, ok := selection.SpellPicks(fighter, nil, nil)
	s.False(ok)
	s.Equal(0, c.Limit())
	s.Equal(0, l.Limit())
}

func (s *SelectionTestSuite) TestMergeEquipment() {
	merged := selection.MergeEquipment(
		[]string{"Rapier", "Dagger", "Leather armor"},
		[]string{"Dagger", "Common clothes"},
		nil,
		[]string{"Rapier", "Pouch with 15 gp"},
	)
	s.Equal([]string{"Rapier", "Dagger", "Leather armor", "Common clothes", "Pouch with 15 gp"}, merged)

	s.NotNil(selection.MergeEquipment())
	s.Empty(selection.MergeEquipment())
}

func (s *SelectionTestSuite) TestResolveSkills() {
	sage, _ := s.cat.Background("Sage")

	skills := selection.ResolveSkills(sage, []string{"Investigation", "Arcana", "Religion"})
	s.Equal([]string{"Arcana", "History", "Investigation", "Religion"}, skills)

	s.Equal([]string{"Stealth"}, selection.ResolveSkills(nil, []string{"Stealth"}))
}

func TestToggleNeverExceedsLimit(t *testing.T) {
	options := []string{"a", "b", "c", "d", "e", "f"}
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(0, len(options)).Draw(rt, "limit")
		tg := selection.NewToggle(options, limit)

		names := append([]string{"x"}, options...)
		ops := rapid.SliceOf(rapid.SampledFrom(names)).Draw(rt, "ops")
		for _, name := range ops {
			tg = tg.Toggle(name)
		}

		sel := tg.Selected()
		if len(sel) > limit {
			rt.Fatalf("%d selected with limit %d", len(sel), limit)
		}
		seen := map[string]bool{}
		for _, n := range sel {
			if seen[n] {
				rt.Fatalf("%q selected twice", n)
			}
			if n == "x" {
				rt.Fatalf("selected a non-option")
			}
			seen[n] = true
		}
	})
}

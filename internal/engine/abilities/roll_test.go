package abilities_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/KirkDiggler/rpg-charforge/internal/engine/abilities"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	apperrors "github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/testutils"
)

type RollTestSuite struct {
	suite.Suite
}

func TestRollSuite(t *testing.T) {
	suite.Run(t, new(RollTestSuite))
}

func (s *RollTestSuite) TestRollAbilityDropsLowest() {
	r := abilities.NewRoller(testutils.NewScriptedRoller(3, 6, 1, 5))

	roll, err := r.RollAbility()
	s.Require().NoError(err)
	s.Equal([]int{3, 6, 1, 5}, roll.Dice)
	s.Equal(1, roll.Dropped)
	s.Equal(14, roll.Total)
}

func (s *RollTestSuite) TestRollAbilityDropsOnlyOneOfEqualDice() {
	r := abilities.NewRoller(testutils.NewScriptedRoller(2, 2, 2, 2))

	roll, err := r.RollAbility()
	s.Require().NoError(err)
	s.Equal(2, roll.Dropped)
	s.Equal(6, roll.Total)
}

func (s *RollTestSuite) TestRollAbilityRejectsImpossibleDice() {
	r := abilities.NewRoller(testutils.NewScriptedRoller(3, 7, 1, 5))

	_, err := r.RollAbility()
	s.Require().Error(err)
	s.True(apperrors.IsInternal(err))
}

func (s *RollTestSuite) TestRollAbilityWrapsRollerFailure() {
	stub := testutils.NewScriptedRoller()
	stub.Err = errors.New("entropy pool empty")
	r := abilities.NewRoller(stub)

	_, err := r.RollAbility()
	s.Require().Error(err)
	s.Contains(err.Error(), "entropy pool empty")
}

func (s *RollTestSuite) TestRollAllInSheetOrder() {
	r := abilities.NewRoller(testutils.NewScriptedRoller(
		6, 6, 6, 1, // Strength 18
		1, 1, 1, 1, // Dexterity 3
		4, 4, 4, 4, // Constitution 12
		5, 3, 2, 1, // Intelligence 10
		6, 5, 4, 3, // Wisdom 15
		2, 3, 4, 5, // Charisma 12
	))

	scores, rolls, err := r.RollAll()
	s.Require().NoError(err)
	s.Len(rolls, 6)
	s.Equal(dnd5e.AbilityScores{
		Strength:     18,
		Dexterity:    3,
		Constitution: 12,
		Intelligence: 10,
		Wisdom:       15,
		Charisma:     12,
	}, scores)
}

func (s *RollTestSuite) TestRollAllStopsOnFailure() {
	// only enough dice for two abilities
	r := abilities.NewRoller(testutils.NewScriptedRoller(6, 6, 6, 6, 5, 5, 5, 5))

	scores, rolls, err := r.RollAll()
	s.Require().Error(err)
	s.Nil(rolls)
	s.Equal(dnd5e.AbilityScores{}, scores)
	s.Contains(err.Error(), string(dnd5e.Constitution))
}

func (s *RollTestSuite) TestNilRollerUsesDefault() {
	r := abilities.NewRoller(nil)

	_, rolls, err := r.RollAll()
	s.Require().NoError(err)
	for _, roll := range rolls {
		s.GreaterOrEqual(roll.Total, abilities.MinRolledScore)
		s.LessOrEqual(roll.Total, abilities.MaxRolledScore)
	}
}

func TestRollAbilityStaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := rapid.SliceOfN(rapid.IntRange(1, 6), 4, 4).Draw(rt, "dice")
		roll, err := abilities.NewRoller(testutils.NewScriptedRoller(d...)).RollAbility()
		if err != nil {
			rt.Fatalf("roll failed: %v", err)
		}

		lowest, sum := d[0], 0
		for _, v := range d {
			sum += v
			if v < lowest {
				lowest = v
			}
		}
		if roll.Dropped != lowest {
			rt.Fatalf("dropped %d, lowest was %d", roll.Dropped, lowest)
		}
		if roll.Total != sum-lowest {
			rt.Fatalf("total %d, want %d", roll.Total, sum-lowest)
		}
		if roll.Total < abilities.MinRolledScore || roll.Total > abilities.MaxRolledScore {
			rt.Fatalf("total %d out of range", roll.Total)
		}
	})
}

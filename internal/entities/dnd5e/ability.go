package dnd5e

import (
	"strings"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

// Ability is one of the six D&D ability scores.
type Ability string

// Abilities
const (
	Strength     Ability = "Strength"
	Dexterity    Ability = "Dexterity"
	Constitution Ability = "Constitution"
	Intelligence Ability = "Intelligence"
	Wisdom       Ability = "Wisdom"
	Charisma     Ability = "Charisma"
)

var allAbilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// srdKeys are the three letter keys the SRD API uses.
var srdKeys = map[string]Ability{
	"str": Strength,
	"dex": Dexterity,
	"con": Constitution,
	"int": Intelligence,
	"wis": Wisdom,
	"cha": Charisma,
}

// AllAbilities returns the six abilities in sheet order.
func AllAbilities() []Ability {
	out := make([]Ability, len(allAbilities))
	copy(out, allAbilities)
	return out
}

// ParseAbility accepts a full ability name or its SRD key, in any case.
func ParseAbility(s string) (Ability, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if a, ok := srdKeys[key]; ok {
		return a, nil
	}
	for _, a := range allAbilities {
		if strings.ToLower(string(a)) == key {
			return a, nil
		}
	}
	return "", errors.InvalidArgumentf("unknown ability %q", s)
}

// Valid reports whether a is one of the six abilities.
func (a Ability) Valid() bool {
	switch a {
	case Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma:
		return true
	}
	return false
}

// SRDKey returns the three letter lowercase key, e.g. "dex".
func (a Ability) SRDKey() string {
	for k, v := range srdKeys {
		if v == a {
			return k
		}
	}
	return ""
}

// AbilityScores holds a score for every ability. The zero value is all
// zeros; use DefaultAbilityScores for a fresh character.
type AbilityScores struct {
	Strength     int `json:"Strength" yaml:"Strength"`
	Dexterity    int `json:"Dexterity" yaml:"Dexterity"`
	Constitution int `json:"Constitution" yaml:"Constitution"`
	Intelligence int `json:"Intelligence" yaml:"Intelligence"`
	Wisdom       int `json:"Wisdom" yaml:"Wisdom"`
	Charisma     int `json:"Charisma" yaml:"Charisma"`
}

// DefaultAbilityScores is every ability at 8, the point-buy floor.
func DefaultAbilityScores() AbilityScores {
	return UniformAbilityScores(8)
}

// UniformAbilityScores sets every ability to v.
func UniformAbilityScores(v int) AbilityScores {
	return AbilityScores{
		Strength:     v,
		Dexterity:    v,
		Constitution: v,
		Intelligence: v,
		Wisdom:       v,
		Charisma:     v,
	}
}

// Get returns the score for a. Unknown abilities read as 0.
func (s AbilityScores) Get(a Ability) int {
	switch a {
	case Strength:
		return s.Strength
	case Dexterity:
		return s.Dexterity
	case Constitution:
		return s.Constitution
	case Intelligence:
		return s.Intelligence
	case Wisdom:
		return s.Wisdom
	case Charisma:
		return s.Charisma
	}
	return 0
}

// With returns a copy of s with a set to v.
func (s AbilityScores) With(a Ability, v int) AbilityScores {
	switch a {
	case Strength:
		s.Strength = v
	case Dexterity:
		s.Dexterity = v
	case Constitution:
		s.Constitution = v
	case Intelligence:
		s.Intelligence = v
	case Wisdom:
		s.Wisdom = v
	case Charisma:
		s.Charisma = v
	}
	return s
}

// Add returns s with each bonus added; abilities without a bonus are
// unchanged.
func (s AbilityScores) Add(bonus map[Ability]int) AbilityScores {
	for a, b := range bonus {
		s = s.With(a, s.Get(a)+b)
	}
	return s
}

// Map returns the scores keyed by ability.
func (s AbilityScores) Map() map[Ability]int {
	out := make(map[Ability]int, len(allAbilities))
	for _, a := range allAbilities {
		out[a] = s.Get(a)
	}
	return out
}

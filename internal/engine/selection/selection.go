// Package selection validates bounded picks: class skills, cantrips and
// known spells. Every value here is immutable; operations return a new
// value instead of changing the receiver.
package selection

import (
	"slices"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
)

// Toggle is a pick-up-to-limit selection over a fixed option list.
type Toggle struct {
	options  []string
	limit    int
	selected []string
}

// NewToggle builds a toggle. A negative limit is treated as zero.
func NewToggle(options []string, limit int) Toggle {
	if limit < 0 {
		limit = 0
	}
	return Toggle{options: slices.Clone(options), limit: limit}
}

// Toggle removes name when it is selected. Otherwise it adds name when name
// is an option and the limit has not been reached. Anything else is a no-op.
func (t Toggle) Toggle(name string) Toggle {
	if i := slices.Index(t.selected, name); i >= 0 {
		return Toggle{
			options:  t.options,
			limit:    t.limit,
			selected: slices.Delete(slices.Clone(t.selected), i, i+1),
		}
	}
	if len(t.selected) >= t.limit || !slices.Contains(t.options, name) {
		return t
	}

	selected := make([]string, len(t.selected), len(t.selected)+1)
	copy(selected, t.selected)
	return Toggle{
		options:  t.options,
		limit:    t.limit,
		selected: append(selected, name),
	}
}

// Selected returns the picks in selection order.
func (t Toggle) Selected() []string {
	return slices.Clone(t.selected)
}

// Options returns the candidates.
func (t Toggle) Options() []string {
	return slices.Clone(t.options)
}

// Limit is the number of picks required.
func (t Toggle) Limit() int {
	return t.limit
}

// Ready reports whether exactly limit options are picked.
func (t Toggle) Ready() bool {
	return len(t.selected) == t.limit
}

// Contains reports whether name is picked.
func (t Toggle) Contains(name string) bool {
	return slices.Contains(t.selected, name)
}

// SkillPicks offers the class's skill choices minus anything the background
// already grants. The pick count comes from the class.
func SkillPicks(class *dnd5e.Class, background *dnd5e.Background) Toggle {
	if class == nil {
		return Toggle{}
	}
	options := make([]string, 0, len(class.SkillProficiency.Choices))
	for _, sk := range class.SkillProficiency.Choices {
		if !background.Grants(sk) {
			options = append(options, sk)
		}
	}
	return NewToggle(options, class.SkillProficiency.Count)
}

// SpellPicks builds the cantrip and known spell pools for class. The pools
// are independent. ok is false for classes that do not cast, in which case
// both toggles have a zero limit.
func SpellPicks(class *dnd5e.Class, cantrips, leveled []dnd5e.Spell) (cantripPicks, spellPicks Toggle, ok bool) {
	if !class.HasSpellcasting() {
		return Toggle{}, Toggle{}, false
	}
	sc := class.Spellcasting
	return NewToggle(spellNames(cantrips), sc.CantripsKnown),
		NewToggle(spellNames(leveled), sc.SpellsKnown),
		true
}

func spellNames(spells []dnd5e.Spell) []string {
	out := make([]string, len(spells))
	for i, sp := range spells {
		out[i] = sp.Name
	}
	return out
}

// MergeEquipment is the ordered union of lists: first-seen order, duplicates
// removed.
func MergeEquipment(lists ...[]string) []string {
	return union(lists...)
}

func union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, item := range list {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// ResolveSkills lists the background's skills followed by the picked class
// skills, without duplicates.
func ResolveSkills(background *dnd5e.Background, picks []string) []string {
	var granted []string
	if background != nil {
		granted = background.SkillProficiencies
	}
	return union(granted, picks)
}

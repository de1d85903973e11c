package creation

import (
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
)

// Step is one page of the creation flow.
type Step string

// Steps
const (
	StepRace      Step = "race"
	StepClass     Step = "class"
	StepSpells    Step = "spells"
	StepAbilities Step = "abilities"
	StepFinalize  Step = "finalize"
	StepEquipment Step = "equipment"
	StepComplete  Step = "complete"
)

// StepsFor returns the flow for class. The spells step is only present for
// classes that cast at level 1.
func StepsFor(class *dnd5e.Class) []Step {
	steps := []Step{StepRace, StepClass}
	if class.HasSpellcasting() {
		steps = append(steps, StepSpells)
	}
	return append(steps, StepAbilities, StepFinalize, StepEquipment, StepComplete)
}

func indexOf(steps []Step, s Step) int {
	for i, st := range steps {
		if st == s {
			return i
		}
	}
	return -1
}

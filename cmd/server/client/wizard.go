package client

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-charforge/internal/creation"
	"github.com/KirkDiggler/rpg-charforge/internal/engine/abilities"
	"github.com/KirkDiggler/rpg-charforge/internal/engine/selection"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

// wizardChoices are the answers given on the command line. Empty fields
// keep whatever the wizard already holds, which matters when editing.
type wizardChoices struct {
	Race       string
	Class      string
	Cantrips   []string
	Spells     []string
	Mode       string
	Scores     []string
	Name       string
	Background string
	Skills     []string
}

func (c *wizardChoices) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.Race, "race", "", "Race name")
	cmd.Flags().StringVar(&c.Class, "class", "", "Class name")
	cmd.Flags().StringSliceVar(&c.Cantrips, "cantrip", nil, "Cantrip to learn (repeatable)")
	cmd.Flags().StringSliceVar(&c.Spells, "spell", nil, "First level spell to learn (repeatable)")
	cmd.Flags().StringVar(&c.Mode, "abilities", "", "Ability mode: point-buy or roll")
	cmd.Flags().StringSliceVar(&c.Scores, "score", nil, "Point-buy score as ABILITY=VALUE, e.g. str=15 (repeatable)")
	cmd.Flags().StringVar(&c.Name, "name", "", "Character name")
	cmd.Flags().StringVar(&c.Background, "background", "", "Background name")
	cmd.Flags().StringSliceVar(&c.Skills, "skill", nil, "Class skill to pick (repeatable)")
}

// parseScores turns ABILITY=VALUE pairs into point-buy scores in the order
// given.
func parseScores(pairs []string) ([]dnd5e.Ability, []int, error) {
	names := make([]dnd5e.Ability, 0, len(pairs))
	values := make([]int, 0, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, nil, errors.InvalidArgumentf("score %q is not ABILITY=VALUE", pair)
		}
		a, err := dnd5e.ParseAbility(key)
		if err != nil {
			return nil, nil, err
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, nil, errors.InvalidArgumentf("score %q has no number", pair)
		}
		names = append(names, a)
		values = append(values, v)
	}
	return names, values, nil
}

// runWizard walks w from its current step to complete, answering each step
// from choices. It stops at the first step the answers do not satisfy.
func runWizard(w creation.Wizard, choices *wizardChoices) (creation.Wizard, error) {
	abilityNames, abilityValues, err := parseScores(choices.Scores)
	if err != nil {
		return w, err
	}

	for w.Current() != creation.StepComplete {
		step := w.Current()
		switch step {
		case creation.StepRace:
			if choices.Race != "" {
				w = w.SelectRace(choices.Race)
			}
		case creation.StepClass:
			if choices.Class != "" {
				w = w.SelectClass(choices.Class)
			}
		case creation.StepSpells:
			if choices.Cantrips != nil {
				w = choose(w, w.CantripPicks(), choices.Cantrips, creation.Wizard.ToggleCantrip)
			}
			if choices.Spells != nil {
				w = choose(w, w.SpellPicks(), choices.Spells, creation.Wizard.ToggleSpell)
			}
		case creation.StepAbilities:
			switch abilities.Mode(choices.Mode) {
			case abilities.ModeRoll:
				if w, err = w.RollAbilities(); err != nil {
					return w, errors.Wrap(err, "failed to roll ability scores")
				}
			case abilities.ModePointBuy, "":
				if len(abilityNames) > 0 {
					w = w.SetAbilityMode(abilities.ModePointBuy)
				}
				// lower first so raises never run over the budget midway
				current := w.PointBuy().Scores()
				for i, a := range abilityNames {
					if abilityValues[i] < current.Get(a) {
						w = w.SetScore(a, abilityValues[i])
					}
				}
				for i, a := range abilityNames {
					if abilityValues[i] >= current.Get(a) {
						w = w.SetScore(a, abilityValues[i])
					}
				}
			default:
				return w, errors.InvalidArgumentf("unknown ability mode %q", choices.Mode)
			}
		case creation.StepFinalize:
			if choices.Name != "" {
				w = w.SetName(choices.Name)
			}
			if choices.Background != "" {
				w = w.SelectBackground(choices.Background)
			}
			if choices.Skills != nil {
				w = choose(w, w.SkillPicks(), choices.Skills, creation.Wizard.ToggleSkill)
			}
		}

		if !w.CanAdvance() {
			return w, errors.InvalidArgumentf("%s step is incomplete: %s", step, missing(w, step))
		}
		w = w.Next()
	}
	return w, nil
}

// choose makes the toggle's selection equal want.
func choose(w creation.Wizard, current selection.Toggle, want []string, toggle func(creation.Wizard, string) creation.Wizard) creation.Wizard {
	for _, name := range current.Selected() {
		if !slices.Contains(want, name) {
			w = toggle(w, name)
		}
	}
	for _, name := range want {
		if !current.Contains(name) {
			w = toggle(w, name)
		}
	}
	return w
}

// missing describes what the step still needs.
func missing(w creation.Wizard, step creation.Step) string {
	switch step {
	case creation.StepRace:
		return "pick a race with --race"
	case creation.StepClass:
		return "pick a class with --class"
	case creation.StepSpells:
		return fmt.Sprintf("pick %d cantrips from %s and %d spells from %s",
			w.CantripPicks().Limit(), strings.Join(w.CantripPicks().Options(), ", "),
			w.SpellPicks().Limit(), strings.Join(w.SpellPicks().Options(), ", "))
	case creation.StepAbilities:
		return fmt.Sprintf("spend exactly %d point-buy points (%d left) or use --abilities roll",
			abilities.PointBuyBudget, w.PointBuy().Remaining())
	case creation.StepFinalize:
		return fmt.Sprintf("set --name and --background and pick %d skills from %s",
			w.SkillPicks().Limit(), strings.Join(w.SkillPicks().Options(), ", "))
	}
	return "not ready"
}

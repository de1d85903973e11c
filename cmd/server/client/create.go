package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-charforge/internal/creation"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/handlers/characters/v1alpha1"
)

var (
	createChoices wizardChoices
	createDryRun  bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a character through the creation wizard",
	Long: `Walk the creation wizard with the answers given as flags and store the
finished character. The spells step only applies to classes that cast.`,
	Example: `  charforge client create --race Gnome --class Wizard \
    --cantrip "Fire Bolt" --cantrip "Mage Hand" --cantrip Light \
    --spell "Magic Missile" --spell Shield --abilities roll \
    --name "Elminster Aumar" --background Sage --skill Insight --skill Investigation`,
	RunE: runCreate,
}

func init() {
	createChoices.addFlags(createCmd)
	createCmd.Flags().BoolVar(&createDryRun, "dry-run", false, "Print the character sheet without storing it")
}

func runCreate(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	char, err := finishWizard(creation.New(cat, newRoller()), &createChoices)
	if err != nil {
		return err
	}

	if createDryRun {
		md, err := renderMarkdown(cat, char)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}

	client, cleanup, err := createCharacterClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	body, err := v1alpha1.CharacterToStruct(char)
	if err != nil {
		return err
	}
	resp, err := client.CreateCharacter(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to create character: %w", err)
	}
	created, err := v1alpha1.CharacterFromStruct(resp)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Character created\n\n")
	printCharacter(cmd.OutOrStdout(), created)
	return nil
}

// finishWizard runs w to completion and returns the built character
func finishWizard(w creation.Wizard, choices *wizardChoices) (*dnd5e.Character, error) {
	w, err := runWizard(w, choices)
	if err != nil {
		return nil, err
	}
	char, ok := w.Result()
	if !ok {
		return nil, fmt.Errorf("wizard stopped at %s", w.Current())
	}
	return char, nil
}

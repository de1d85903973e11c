package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-charforge/internal/creation"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/handlers/characters/v1alpha1"
)

var (
	editID      string
	editChoices wizardChoices
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a stored character through the creation wizard",
	Long: `Re-enter the creation wizard with every choice of a stored character already
made, apply the flags given and replace the stored record. Changing the class
clears spell and skill picks, so pass them again.`,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editID, "id", "", "Character ID (required)")
	editChoices.addFlags(editCmd)
	_ = editCmd.MarkFlagRequired("id") // nolint:errcheck // safe to ignore in init
}

func runEdit(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	client, cleanup, err := createCharacterClient()
	if err != nil {
		return err
	}
	defer cleanup()

	stored, err := fetchCharacter(cmd, client, editID)
	if err != nil {
		return err
	}

	char, err := finishWizard(creation.Edit(cat, newRoller(), stored), &editChoices)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()

	body, err := v1alpha1.RequestToStruct(&v1alpha1.UpdateRequest{
		ID:    stored.ID,
		Patch: dnd5e.ReplaceWith(char),
	})
	if err != nil {
		return err
	}
	resp, err := client.UpdateCharacter(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}
	updated, err := v1alpha1.CharacterFromStruct(resp)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✏️  Character updated\n\n")
	printCharacter(cmd.OutOrStdout(), updated)
	return nil
}

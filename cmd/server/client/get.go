package client

import (
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/handlers/characters/v1alpha1"
)

var (
	characterID string
	getJSON     bool
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a character by ID",
	RunE:  runGet,
}

func init() {
	getCmd.Flags().StringVar(&characterID, "id", "", "Character ID (required)")
	getCmd.Flags().BoolVar(&getJSON, "json", false, "Print the character as JSON")
	_ = getCmd.MarkFlagRequired("id") // nolint:errcheck // safe to ignore in init
}

func runGet(cmd *cobra.Command, _ []string) error {
	client, cleanup, err := createCharacterClient()
	if err != nil {
		return err
	}
	defer cleanup()

	char, err := fetchCharacter(cmd, client, characterID)
	if err != nil {
		return err
	}
	if getJSON {
		return printJSON(cmd.OutOrStdout(), char)
	}
	printCharacter(cmd.OutOrStdout(), char)
	return nil
}

func fetchCharacter(cmd *cobra.Command, client v1alpha1.CharacterServiceClient, id string) (*dnd5e.Character, error) {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	resp, err := client.GetCharacter(ctx, wrapperspb.String(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return v1alpha1.CharacterFromStruct(resp)
}

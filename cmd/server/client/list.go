package client

import (
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/KirkDiggler/rpg-charforge/internal/handlers/characters/v1alpha1"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the character gallery",
	Long:  `List every stored character in creation order.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the characters as JSON")
}

func runList(cmd *cobra.Command, _ []string) error {
	client, cleanup, err := createCharacterClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	resp, err := client.ListCharacters(ctx, &emptypb.Empty{})
	if err != nil {
		return fmt.Errorf("failed to list characters: %w", err)
	}

	chars, err := v1alpha1.CharactersFromStruct(resp)
	if err != nil {
		return err
	}
	if listJSON {
		return printJSON(cmd.OutOrStdout(), chars)
	}
	return printGallery(cmd.OutOrStdout(), chars)
}

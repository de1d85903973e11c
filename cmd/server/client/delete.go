package client

import (
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var deleteID string

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a character",
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteID, "id", "", "Character ID (required)")
	_ = deleteCmd.MarkFlagRequired("id") // nolint:errcheck // safe to ignore in init
}

func runDelete(cmd *cobra.Command, _ []string) error {
	client, cleanup, err := createCharacterClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	resp, err := client.DeleteCharacter(ctx, wrapperspb.String(deleteID))
	if err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s\n", resp.GetValue())
	return nil
}

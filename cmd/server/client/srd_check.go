package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-charforge/internal/clients/srd"
)

var srdCheckCmd = &cobra.Command{
	Use:   "srd-check",
	Short: "Compare the catalog with the public D&D 5e SRD API",
	Long: `Look up every catalog race and spell in the SRD API and report ability bonuses
and spell levels that differ. Homebrew entries the SRD does not know are listed
as missing.`,
	RunE: runSRDCheck,
}

func init() {
	srdCheckCmd.Flags().String("srd-url", "", "SRD API base URL")
}

func runSRDCheck(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	checker, err := srd.New(&srd.Config{BaseURL: settings.SRD.BaseURL})
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()

	found, err := checker.Check(ctx, cat)
	if err != nil {
		return fmt.Errorf("failed to check catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(found) == 0 {
		fmt.Fprintf(out, "✅ %s matches the SRD\n", cat)
		return nil
	}

	fmt.Fprintf(out, "⚠️  %d discrepancies in %s\n\n", len(found), cat)
	for _, d := range found {
		fmt.Fprintf(out, "  - %s\n", d)
	}
	return fmt.Errorf("catalog differs from the SRD in %d places", len(found))
}

package client

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-charforge/internal/catalog"
	"github.com/KirkDiggler/rpg-charforge/internal/engine/stats"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/sheet"
)

// Sheet formats
const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

var (
	sheetID     string
	sheetFormat string
	sheetOut    string
)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Render a printable character sheet",
	Long:  `Render a stored character as a Markdown or HTML sheet with its derived stats.`,
	RunE:  runSheet,
}

func init() {
	sheetCmd.Flags().StringVar(&sheetID, "id", "", "Character ID (required)")
	sheetCmd.Flags().StringVar(&sheetFormat, "format", FormatMarkdown, "Output format: md or html")
	sheetCmd.Flags().StringVarP(&sheetOut, "out", "o", "", "Write to a file instead of stdout")
	_ = sheetCmd.MarkFlagRequired("id") // nolint:errcheck // safe to ignore in init
}

func runSheet(cmd *cobra.Command, _ []string) error {
	if sheetFormat != FormatMarkdown && sheetFormat != FormatHTML {
		return errors.InvalidArgumentf("unknown format %q, use md or html", sheetFormat)
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	client, cleanup, err := createCharacterClient()
	if err != nil {
		return err
	}
	defer cleanup()

	char, err := fetchCharacter(cmd, client, sheetID)
	if err != nil {
		return err
	}

	out, err := renderSheet(cat, char, sheetFormat)
	if err != nil {
		return err
	}

	if sheetOut == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(sheetOut, out, 0o644); err != nil {
		return fmt.Errorf("failed to write sheet: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "📄 Sheet written to %s\n", sheetOut)
	return nil
}

func renderSheet(cat *catalog.Catalog, c *dnd5e.Character, format string) ([]byte, error) {
	st, err := stats.Derive(c, cat.Skills())
	if err != nil {
		return nil, err
	}
	if format == FormatHTML {
		return sheet.HTML(c, st)
	}
	md, err := sheet.Markdown(c, st)
	if err != nil {
		return nil, err
	}
	return []byte(md), nil
}

func renderMarkdown(cat *catalog.Catalog, c *dnd5e.Character) (string, error) {
	out, err := renderSheet(cat, c, FormatMarkdown)
	return string(out), err
}

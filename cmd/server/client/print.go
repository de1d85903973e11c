package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
)

const maxURLShown = 48

func printCharacter(w io.Writer, c *dnd5e.Character) {
	fmt.Fprintf(w, "🧙 %s\n\n", c.Name)
	fmt.Fprintf(w, "ID: %s\n", c.ID)
	if c.Race != nil {
		fmt.Fprintf(w, "Race: %s\n", c.Race.Name)
	}
	if c.Class != nil {
		fmt.Fprintf(w, "Class: %s\n", c.Class.Name)
	}
	if c.Background != nil {
		fmt.Fprintf(w, "Background: %s\n", c.Background.Name)
	}

	fmt.Fprintf(w, "\nAbility Scores:\n")
	for _, a := range dnd5e.AllAbilities() {
		fmt.Fprintf(w, "  - %s: %d\n", a, c.AbilityScores.Get(a))
	}

	if len(c.ProficientSkills) > 0 {
		fmt.Fprintf(w, "\nSkills: %s\n", strings.Join(c.ProficientSkills, ", "))
	}
	if len(c.Spells) > 0 {
		names := make([]string, len(c.Spells))
		for i, sp := range c.Spells {
			names[i] = sp.Name
		}
		fmt.Fprintf(w, "Spells: %s\n", strings.Join(names, ", "))
	}
	if len(c.Equipment) > 0 {
		fmt.Fprintf(w, "Equipment: %s\n", strings.Join(c.Equipment, ", "))
	}
	if c.GeneratedImageURL != "" {
		fmt.Fprintf(w, "Portrait: %s\n", shorten(c.GeneratedImageURL))
	}
	if c.CreatedAt > 0 {
		fmt.Fprintf(w, "\nCreated: %s\n", time.UnixMilli(c.CreatedAt).UTC().Format(time.RFC3339))
		fmt.Fprintf(w, "Updated: %s\n", time.UnixMilli(c.UpdatedAt).UTC().Format(time.RFC3339))
	}
}

func printGallery(w io.Writer, chars []*dnd5e.Character) error {
	if len(chars) == 0 {
		fmt.Fprintln(w, "No characters yet")
		return nil
	}

	fmt.Fprintf(w, "📚 %d characters\n\n", len(chars))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRACE\tCLASS\tPORTRAIT")
	for _, c := range chars {
		race, class := "-", "-"
		if c.Race != nil {
			race = c.Race.Name
		}
		if c.Class != nil {
			class = c.Class.Name
		}
		portrait := "no"
		if c.GeneratedImageURL != "" {
			portrait = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, race, class, portrait)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// shorten keeps data URLs readable in a terminal
func shorten(url string) string {
	if len(url) <= maxURLShown {
		return url
	}
	return fmt.Sprintf("%s... (%d chars)", url[:maxURLShown], len(url))
}

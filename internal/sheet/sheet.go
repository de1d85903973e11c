// Package sheet renders a printable character sheet as Markdown or HTML.
package sheet

import (
	"bytes"
	_ "embed"
	"strconv"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/KirkDiggler/rpg-charforge/internal/engine/stats"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

//go:embed sheet.md.tmpl
var sheetTemplate string

var (
	tmpl = template.Must(template.New("sheet").Funcs(template.FuncMap{
		"signed": signed,
		"cell":   cell,
	}).Parse(sheetTemplate))

	md = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

type abilityRow struct {
	Name           dnd5e.Ability
	Score          int
	Modifier       int
	Save           int
	SaveProficient bool
}

type view struct {
	Name       string
	ImageURL   string
	Race       string
	Class      string
	Background string
	Abilities  []abilityRow
	Stats      *stats.Stats
	Equipment  []string
	Cantrips   []dnd5e.Spell
	Spells     []dnd5e.Spell
}

// Markdown renders the sheet for c. st must come from stats.Derive for the
// same character.
func Markdown(c *dnd5e.Character, st *stats.Stats) (string, error) {
	if c == nil || st == nil {
		return "", errors.InvalidArgument("character and stats are required")
	}
	if c.Race == nil || c.Class == nil || c.Background == nil {
		return "", errors.InvalidArgument("race, class and background are required for a sheet")
	}

	v := view{
		Name:       c.Name,
		ImageURL:   c.GeneratedImageURL,
		Race:       c.Race.Name,
		Class:      c.Class.Name,
		Background: c.Background.Name,
		Stats:      st,
		Equipment:  c.Equipment,
		Cantrips:   c.Cantrips(),
		Spells:     c.LeveledSpells(),
	}
	for _, a := range dnd5e.AllAbilities() {
		v.Abilities = append(v.Abilities, abilityRow{
			Name:           a,
			Score:          st.FinalScores.Get(a),
			Modifier:       st.Modifiers[a],
			Save:           st.SavingThrows[a],
			SaveProficient: c.Class.ProficientSave(a),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return "", errors.Wrap(err, "failed to render sheet")
	}
	return buf.String(), nil
}

// HTML renders the Markdown sheet to an HTML fragment. Raw HTML in names is
// dropped by the converter.
func HTML(c *dnd5e.Character, st *stats.Stats) ([]byte, error) {
	src, err := Markdown(c, st)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return nil, errors.Wrap(err, "failed to convert sheet to html")
	}
	return buf.Bytes(), nil
}

func signed(n int) string {
	if n >= 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// cell keeps a value inside one table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

package sheet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-charforge/internal/engine/stats"
	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/sheet"
	"github.com/KirkDiggler/rpg-charforge/internal/testutils"
)

type SheetTestSuite struct {
	suite.Suite
	skills []dnd5e.Skill
}

func (s *SheetTestSuite) SetupSuite() {
	s.skills = testutils.Catalog().Skills()
}

func (s *SheetTestSuite) derive(c *dnd5e.Character) *stats.Stats {
	st, err := stats.Derive(c, s.skills)
	s.Require().NoError(err)
	return st
}

func (s *SheetTestSuite) TestFighterMarkdown() {
	c := testutils.CreateTestFighter()

	out, err := sheet.Markdown(c, s.derive(c))
	s.Require().NoError(err)

	s.True(strings.HasPrefix(out, "# Thorin Oakenshield\n"))
	s.Contains(out, "**Human Fighter**, Soldier background")
	s.Contains(out, "| 11 | 12 | +2 |")
	s.Contains(out, "| Strength | 15 | +2 | +4 (proficient) |")
	s.Contains(out, "| Intelligence | 8 | -1 | -1 |")
	s.Contains(out, "| **Athletics** | Strength | +4 |")
	s.Contains(out, "| Arcana | Intelligence | -1 |")
	s.Contains(out, "- Longsword\n")
	s.NotContains(out, "## Spellcasting")
	s.NotContains(out, "![")
}

func (s *SheetTestSuite) TestWizardMarkdown() {
	c := testutils.CreateTestWizard()

	out, err := sheet.Markdown(c, s.derive(c))
	s.Require().NoError(err)

	s.Contains(out, "| Intelligence | 19 | +4 | +6 (proficient) |")
	s.Contains(out, "## Spellcasting")
	s.Contains(out, "Ability: Intelligence, save DC 14, spell attack +6")
	s.Contains(out, "**Cantrips:** Fire Bolt, Mage Hand, Light")
	s.Contains(out, "**Level 1:** Magic Missile, Shield")
}

func (s *SheetTestSuite) TestHTML() {
	c := testutils.CreateTestWizard()
	c.GeneratedImageURL = dnd5e.ImageDataURL("image/png", []byte{0x89, 'P', 'N', 'G'})

	out, err := sheet.HTML(c, s.derive(c))
	s.Require().NoError(err)

	html := string(out)
	s.Contains(html, "<h1>Elminster Aumar</h1>")
	s.Contains(html, "<table>")
	s.Contains(html, `src="data:image/png;base64,iVBORw=="`)
	s.Contains(html, "<strong>Cantrips:</strong>")
}

func (s *SheetTestSuite) TestHTMLDropsRawMarkup() {
	c := testutils.CreateTestFighter()
	c.Name = "<script>alert(1)</script>"

	out, err := sheet.HTML(c, s.derive(c))
	s.Require().NoError(err)
	s.NotContains(string(out), "<script>")
}

func (s *SheetTestSuite) TestPipesStayInOneCell() {
	c := testutils.CreateTestFighter()
	c.Name = "Left | Right"
	c.GeneratedImageURL = "data:image/png;base64,AAAA"

	out, err := sheet.Markdown(c, s.derive(c))
	s.Require().NoError(err)
	s.Contains(out, `![Portrait of Left \| Right](data:image/png;base64,AAAA)`)
}

func (s *SheetTestSuite) TestRequiresCompleteInput() {
	c := testutils.CreateTestFighter()
	st := s.derive(c)

	_, err := sheet.Markdown(nil, st)
	s.True(errors.IsInvalidArgument(err))

	_, err = sheet.Markdown(c, nil)
	s.True(errors.IsInvalidArgument(err))

	c.Background = nil
	_, err = sheet.HTML(c, st)
	s.True(errors.IsInvalidArgument(err))
}

func TestSheetTestSuite(t *testing.T) {
	suite.Run(t, new(SheetTestSuite))
}

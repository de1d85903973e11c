// Package catalog is the read-only reference data: races, classes,
// backgrounds, spells and skills. A catalog is loaded once and never
// mutated; every accessor hands out copies.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

//go:embed catalog.yaml
var embedded []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

var validHitDice = map[int]bool{6: true, 8: true, 10: true, 12: true}

type document struct {
	Skills      []dnd5e.Skill      `yaml:"skills"`
	Spells      []dnd5e.Spell      `yaml:"spells"`
	Races       []dnd5e.Race       `yaml:"races"`
	Classes     []dnd5e.Class      `yaml:"classes"`
	Backgrounds []dnd5e.Background `yaml:"backgrounds"`
}

// Catalog is an immutable set of reference data.
type Catalog struct {
	doc document

	races       map[string]int
	classes     map[string]int
	backgrounds map[string]int
	spells      map[string]int
	skills      map[string]int
}

// Default returns the embedded catalog, parsed on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(bytes.NewReader(embedded))
	})
	return defaultCatalog, defaultErr
}

// LoadFile parses a catalog document from path. An empty path returns the
// embedded catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path) // #nosec G304 -- operator supplied path
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open catalog %s", path)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Load parses and checks a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse catalog")
	}

	c := &Catalog{doc: doc}

	var err error
	if c.skills, err = c.index("skills", len(doc.Skills), func(i int) string { return doc.Skills[i].Name }); err != nil {
		return nil, err
	}
	if c.spells, err = c.index("spells", len(doc.Spells), func(i int) string { return doc.Spells[i].Name }); err != nil {
		return nil, err
	}
	if c.races, err = c.index("races", len(doc.Races), func(i int) string { return doc.Races[i].Name }); err != nil {
		return nil, err
	}
	if c.classes, err = c.index("classes", len(doc.Classes), func(i int) string { return doc.Classes[i].Name }); err != nil {
		return nil, err
	}
	if c.backgrounds, err = c.index("backgrounds", len(doc.Backgrounds), func(i int) string { return doc.Backgrounds[i].Name }); err != nil {
		return nil, err
	}

	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

// key folds case for lookups. Casers carry state, so each call gets its own.
func (c *Catalog) key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func (c *Catalog) index(kind string, n int, name func(int) string) (map[string]int, error) {
	out := make(map[string]int, n)
	for i := 0; i < n; i++ {
		k := c.key(name(i))
		if k == "" {
			return nil, errors.InvalidArgumentf("catalog %s[%d] has no name", kind, i)
		}
		if _, dup := out[k]; dup {
			return nil, errors.InvalidArgumentf("catalog %s lists %q twice", kind, name(i))
		}
		out[k] = i
	}
	return out, nil
}

// check verifies cross references so that every lookup done by the engines
// resolves.
func (c *Catalog) check() error {
	vb := errors.NewValidationBuilder()

	for _, sk := range c.doc.Skills {
		if !sk.Ability.Valid() {
			vb.Fieldf("skills", "%s has unknown ability %q", sk.Name, sk.Ability)
		}
	}
	for _, sp := range c.doc.Spells {
		if sp.Level < 0 || sp.Level > 1 {
			vb.Fieldf("spells", "%s has level %d, only 0 and 1 are supported", sp.Name, sp.Level)
		}
	}
	for _, r := range c.doc.Races {
		for a := range r.AbilityScoreIncrease {
			if !a.Valid() {
				vb.Fieldf("races", "%s raises unknown ability %q", r.Name, a)
			}
		}
	}
	for i := range c.doc.Classes {
		c.checkClass(&c.doc.Classes[i], vb)
	}
	for _, b := range c.doc.Backgrounds {
		for _, sk := range b.SkillProficiencies {
			if _, ok := c.skills[c.key(sk)]; !ok {
				vb.Fieldf("backgrounds", "%s grants unknown skill %q", b.Name, sk)
			}
		}
	}

	if err := vb.Build(); err != nil {
		return errors.Wrap(err, "catalog is inconsistent")
	}
	return nil
}

func (c *Catalog) checkClass(cl *dnd5e.Class, vb *errors.ValidationBuilder) {
	if !validHitDice[cl.HitDie] {
		vb.Fieldf("classes", "%s has hit die d%d", cl.Name, cl.HitDie)
	}
	for _, a := range cl.SavingThrowProficiencies {
		if !a.Valid() {
			vb.Fieldf("classes", "%s saves with unknown ability %q", cl.Name, a)
		}
	}
	for _, sk := range cl.SkillProficiency.Choices {
		if _, ok := c.skills[c.key(sk)]; !ok {
			vb.Fieldf("classes", "%s offers unknown skill %q", cl.Name, sk)
		}
	}
	if cl.SkillProficiency.Count < 0 || cl.SkillProficiency.Count > len(cl.SkillProficiency.Choices) {
		vb.Fieldf("classes", "%s picks %d of %d skills", cl.Name, cl.SkillProficiency.Count, len(cl.SkillProficiency.Choices))
	}

	sc := cl.Spellcasting
	if sc == nil {
		return
	}
	if !sc.Ability.Valid() {
		vb.Fieldf("classes", "%s casts with unknown ability %q", cl.Name, sc.Ability)
	}
	var cantrips, leveled int
	for _, name := range sc.SpellList {
		i, ok := c.spells[c.key(name)]
		if !ok {
			vb.Fieldf("classes", "%s lists unknown spell %q", cl.Name, name)
			continue
		}
		if c.doc.Spells[i].IsCantrip() {
			cantrips++
		} else {
			leveled++
		}
	}
	if sc.CantripsKnown < 0 || sc.CantripsKnown > cantrips {
		vb.Fieldf("classes", "%s knows %d cantrips but lists %d", cl.Name, sc.CantripsKnown, cantrips)
	}
	if sc.SpellsKnown < 0 || sc.SpellsKnown > leveled {
		vb.Fieldf("classes", "%s knows %d spells but lists %d", cl.Name, sc.SpellsKnown, leveled)
	}
}

// Races returns every race in catalog order.
func (c *Catalog) Races() []dnd5e.Race {
	out := make([]dnd5e.Race, len(c.doc.Races))
	for i := range c.doc.Races {
		out[i] = *dnd5e.CloneRace(&c.doc.Races[i])
	}
	return out
}

// Classes returns every class in catalog order.
func (c *Catalog) Classes() []dnd5e.Class {
	out := make([]dnd5e.Class, len(c.doc.Classes))
	for i := range c.doc.Classes {
		out[i] = *dnd5e.CloneClass(&c.doc.Classes[i])
	}
	return out
}

// Backgrounds returns every background in catalog order.
func (c *Catalog) Backgrounds() []dnd5e.Background {
	out := make([]dnd5e.Background, len(c.doc.Backgrounds))
	for i := range c.doc.Backgrounds {
		out[i] = *dnd5e.CloneBackground(&c.doc.Backgrounds[i])
	}
	return out
}

// Spells returns every spell in catalog order.
func (c *Catalog) Spells() []dnd5e.Spell {
	out := make([]dnd5e.Spell, len(c.doc.Spells))
	copy(out, c.doc.Spells)
	return out
}

// Skills returns every skill in catalog order.
func (c *Catalog) Skills() []dnd5e.Skill {
	out := make([]dnd5e.Skill, len(c.doc.Skills))
	copy(out, c.doc.Skills)
	return out
}

// Race looks a race up by name, ignoring case.
func (c *Catalog) Race(name string) (*dnd5e.Race, bool) {
	i, ok := c.races[c.key(name)]
	if !ok {
		return nil, false
	}
	return dnd5e.CloneRace(&c.doc.Races[i]), true
}

// Class looks a class up by name, ignoring case.
func (c *Catalog) Class(name string) (*dnd5e.Class, bool) {
	i, ok := c.classes[c.key(name)]
	if !ok {
		return nil, false
	}
	return dnd5e.CloneClass(&c.doc.Classes[i]), true
}

// Background looks a background up by name, ignoring case.
func (c *Catalog) Background(name string) (*dnd5e.Background, bool) {
	i, ok := c.backgrounds[c.key(name)]
	if !ok {
		return nil, false
	}
	return dnd5e.CloneBackground(&c.doc.Backgrounds[i]), true
}

// Spell looks a spell up by name, ignoring case.
func (c *Catalog) Spell(name string) (dnd5e.Spell, bool) {
	i, ok := c.spells[c.key(name)]
	if !ok {
		return dnd5e.Spell{}, false
	}
	return c.doc.Spells[i], true
}

// Skill looks a skill up by name, ignoring case.
func (c *Catalog) Skill(name string) (dnd5e.Skill, bool) {
	i, ok := c.skills[c.key(name)]
	if !ok {
		return dnd5e.Skill{}, false
	}
	return c.doc.Skills[i], true
}

// SpellsFor resolves a class's spell list and splits it into cantrips and
// first level spells, keeping list order. Non-casters get two empty lists.
func (c *Catalog) SpellsFor(class *dnd5e.Class) (cantrips, leveled []dnd5e.Spell) {
	if !class.HasSpellcasting() {
		return nil, nil
	}
	for _, name := range class.Spellcasting.SpellList {
		sp, ok := c.Spell(name)
		if !ok {
			continue
		}
		if sp.IsCantrip() {
			cantrips = append(cantrips, sp)
		} else {
			leveled = append(leveled, sp)
		}
	}
	return cantrips, leveled
}

// String summarises the catalog for logs.
func (c *Catalog) String() string {
	return fmt.Sprintf("catalog(races=%d classes=%d backgrounds=%d spells=%d skills=%d)",
		len(c.doc.Races), len(c.doc.Classes), len(c.doc.Backgrounds), len(c.doc.Spells), len(c.doc.Skills))
}

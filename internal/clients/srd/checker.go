// Package srd compares the bundled catalog against the public D&D 5e SRD
// API and reports where they drift apart.
package srd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"github.com/fadedpez/dnd5e-api/entities"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-charforge/internal/catalog"
	charforge "github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

// Discrepancy kinds
const (
	KindRace  = "race"
	KindSpell = "spell"
)

// FieldMissing marks a catalog entry the SRD does not know, usually
// homebrew.
const FieldMissing = "missing"

const defaultConcurrency = 8

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Source is the part of the SRD API client the checker reads.
type Source interface {
	GetRace(key string) (*entities.Race, error)
	GetSpell(key string) (*entities.Spell, error)
}

// Discrepancy is one value that differs between catalog and SRD.
type Discrepancy struct {
	Kind    string
	Name    string
	Field   string
	Catalog string
	SRD     string
}

func (d Discrepancy) String() string {
	if d.Field == FieldMissing {
		return fmt.Sprintf("%s %q: not in SRD (%s)", d.Kind, d.Name, d.SRD)
	}
	return fmt.Sprintf("%s %q: %s catalog=%s srd=%s", d.Kind, d.Name, d.Field, d.Catalog, d.SRD)
}

// Config configures the checker.
type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration
	CacheTTL    time.Duration
	// Concurrency bounds in-flight lookups.
	Concurrency int
	// Source overrides the SRD client, mostly for tests.
	Source Source
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.dnd5eapi.co/api/2014/"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return nil
}

// Checker runs drift checks.
type Checker struct {
	source      Source
	concurrency int
}

// New creates a checker backed by the cached SRD API client unless
// cfg.Source is set.
func New(cfg *Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	source := cfg.Source
	if source == nil {
		base, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
			Client:  &http.Client{Timeout: cfg.HTTPTimeout},
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create D&D 5e API client")
		}
		source = dnd5e.NewCachedClient(base, cfg.CacheTTL)
	}

	return &Checker{source: source, concurrency: cfg.Concurrency}, nil
}

// Slug converts a catalog name to an SRD index key, "Half-Elf" becomes
// "half-elf" and "Fire Bolt" becomes "fire-bolt".
func Slug(name string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Check looks up every catalog race and spell. Lookup failures are reported
// as missing entries; only cancellation ends the check with an error. The
// result is sorted by kind, name and field.
func (c *Checker) Check(ctx context.Context, cat *catalog.Catalog) ([]Discrepancy, error) {
	if cat == nil {
		return nil, errors.InvalidArgument("catalog is required")
	}

	races := cat.Races()
	spells := cat.Spells()
	results := make([][]Discrepancy, len(races)+len(spells))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i := range races {
		race := races[i]
		g.Go(func() error {
			if err := errors.FromContext(gctx); err != nil {
				return err
			}
			results[i] = c.checkRace(gctx, &race)
			return nil
		})
	}
	for i := range spells {
		spell := spells[i]
		slot := len(races) + i
		g.Go(func() error {
			if err := errors.FromContext(gctx); err != nil {
				return err
			}
			results[slot] = c.checkSpell(gctx, spell)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Discrepancy
	for _, r := range results {
		out = append(out, r...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Field < out[j].Field
	})

	slog.InfoContext(ctx, "srd drift check finished",
		"races", len(races),
		"spells", len(spells),
		"discrepancies", len(out))
	return out, nil
}

func (c *Checker) checkRace(ctx context.Context, race *charforge.Race) []Discrepancy {
	key := Slug(race.Name)
	remote, err := c.source.GetRace(key)
	if err != nil || remote == nil {
		slog.DebugContext(ctx, "race lookup failed", "race", race.Name, "key", key)
		return []Discrepancy{missing(KindRace, race.Name, key, err)}
	}

	srdBonus := make(map[charforge.Ability]int)
	for _, bonus := range remote.AbilityBonuses {
		if bonus == nil || bonus.AbilityScore == nil {
			continue
		}
		a, err := charforge.ParseAbility(bonus.AbilityScore.Key)
		if err != nil {
			continue
		}
		srdBonus[a] += bonus.Bonus
	}

	var out []Discrepancy
	for _, a := range charforge.AllAbilities() {
		want, got := race.Bonus(a), srdBonus[a]
		if want == got {
			continue
		}
		out = append(out, Discrepancy{
			Kind:    KindRace,
			Name:    race.Name,
			Field:   "abilityScoreIncrease." + string(a),
			Catalog: strconv.Itoa(want),
			SRD:     strconv.Itoa(got),
		})
	}
	return out
}

func (c *Checker) checkSpell(ctx context.Context, spell charforge.Spell) []Discrepancy {
	key := Slug(spell.Name)
	remote, err := c.source.GetSpell(key)
	if err != nil || remote == nil {
		slog.DebugContext(ctx, "spell lookup failed", "spell", spell.Name, "key", key)
		return []Discrepancy{missing(KindSpell, spell.Name, key, err)}
	}
	if remote.SpellLevel == spell.Level {
		return nil
	}
	return []Discrepancy{{
		Kind:    KindSpell,
		Name:    spell.Name,
		Field:   "level",
		Catalog: strconv.Itoa(spell.Level),
		SRD:     strconv.Itoa(remote.SpellLevel),
	}}
}

func missing(kind, name, key string, err error) Discrepancy {
	reason := "no entry for " + key
	if err != nil {
		reason = err.Error()
	}
	return Discrepancy{Kind: kind, Name: name, Field: FieldMissing, SRD: reason}
}

// Package model defines the canonical data types used throughout dex.
// These types are the single source of truth for all catalog entities and
// the result envelope that every command returns.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ─── Catalog Entity Types ─────────────────────────────────────────────────────

// Stat is one (name, base value, effort value) triple of an Entry.
type Stat struct {
	Name   string `json:"name" yaml:"name"`
	Base   int    `json:"base" yaml:"base"`
	Effort int    `json:"effort" yaml:"effort"`
}

// AbilityRef is an ability slot on an Entry.
type AbilityRef struct {
	Name   string `json:"name" yaml:"name"`
	URL    string `json:"url" yaml:"url"`
	Hidden bool   `json:"hidden" yaml:"hidden"`
	Slot   int    `json:"slot" yaml:"slot"`
}

// MoveLearn is one (level-learned, learn-method) fact for a move.
type MoveLearn struct {
	Level        int    `json:"level" yaml:"level"`
	Method       string `json:"method" yaml:"method"`
	VersionGroup string `json:"version_group,omitempty" yaml:"version_group,omitempty"`
}

// MoveRef is a move an Entry can learn.
type MoveRef struct {
	Name    string      `json:"name" yaml:"name"`
	URL     string      `json:"url" yaml:"url"`
	Learned []MoveLearn `json:"learned" yaml:"learned"`
}

// FirstLearn returns the first learn fact, or a zero value with method
// "unknown" when the move carries none.
func (m MoveRef) FirstLearn() MoveLearn {
	if len(m.Learned) == 0 {
		return MoveLearn{Method: "unknown"}
	}
	return m.Learned[0]
}

// Images holds the image references of an Entry. The artwork set is the
// high-resolution one; Front/Back are the low-resolution sprites.
type Images struct {
	Front        string `json:"front,omitempty" yaml:"front,omitempty"`
	FrontShiny   string `json:"front_shiny,omitempty" yaml:"front_shiny,omitempty"`
	Back         string `json:"back,omitempty" yaml:"back,omitempty"`
	BackShiny    string `json:"back_shiny,omitempty" yaml:"back_shiny,omitempty"`
	Artwork      string `json:"artwork,omitempty" yaml:"artwork,omitempty"`
	ArtworkShiny string `json:"artwork_shiny,omitempty" yaml:"artwork_shiny,omitempty"`
}

// Primary returns the preferred image: artwork first, sprite as fallback.
func (i Images) Primary(shiny bool) string {
	if shiny {
		if i.ArtworkShiny != "" {
			return i.ArtworkShiny
		}
		return i.FrontShiny
	}
	if i.Artwork != "" {
		return i.Artwork
	}
	return i.Front
}

// Entry is one catalog item. Entries are immutable once decoded.
// Categories holds 1–2 values; Stats always holds six values in StatOrder.
type Entry struct {
	ID             int          `json:"id" yaml:"id"`
	Name           string       `json:"name" yaml:"name"`
	Categories     []Category   `json:"categories" yaml:"categories"`
	Stats          []Stat       `json:"stats" yaml:"stats"`
	Height         int          `json:"height" yaml:"height"` // decimetres
	Weight         int          `json:"weight" yaml:"weight"` // hectograms
	Abilities      []AbilityRef `json:"abilities" yaml:"abilities"`
	Moves          []MoveRef    `json:"moves,omitempty" yaml:"moves,omitempty"`
	BaseExperience *int         `json:"base_experience,omitempty" yaml:"base_experience,omitempty"`
	Images         Images       `json:"images" yaml:"images"`
	FetchedAt      time.Time    `json:"fetched_at,omitempty" yaml:"-"`
}

// HasCategory reports whether c is one of the entry's categories.
func (e Entry) HasCategory(c Category) bool {
	for _, ec := range e.Categories {
		if ec == c {
			return true
		}
	}
	return false
}

// TotalStats is the arithmetic sum of the entry's base stat values.
func (e Entry) TotalStats() int {
	total := 0
	for _, s := range e.Stats {
		total += s.Base
	}
	return total
}

// CategoryNames joins the entry's categories with "/".
func (e Entry) CategoryNames() string {
	names := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, "/")
}

// HeightMeters converts the tenths-of-a-metre height to metres.
func (e Entry) HeightMeters() float64 { return float64(e.Height) / 10 }

// WeightKg converts the tenths-of-a-kilogram weight to kilograms.
func (e Entry) WeightKg() float64 { return float64(e.Weight) / 10 }

// Validate checks the structural invariants of a decoded entry.
func (e Entry) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("entry %q: id must be positive, got %d", e.Name, e.ID)
	}
	if n := len(e.Categories); n < 1 || n > 2 {
		return fmt.Errorf("entry %s: expected 1-2 categories, got %d", e.Name, n)
	}
	if len(e.Stats) != len(StatOrder) {
		return fmt.Errorf("entry %s: expected %d stats, got %d", e.Name, len(StatOrder), len(e.Stats))
	}
	for i, s := range e.Stats {
		if s.Name != StatOrder[i] {
			return fmt.Errorf("entry %s: stat %d is %q, expected %q", e.Name, i, s.Name, StatOrder[i])
		}
	}
	return nil
}

// ListItem is one row of a list page: a name plus its detail reference.
type ListItem struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// ListPage is one page of the catalog listing.
type ListPage struct {
	Count   int        `json:"count" yaml:"count"`
	HasNext bool       `json:"has_next" yaml:"has_next"`
	Results []ListItem `json:"results" yaml:"results"`
}

// ─── Species / Evolution ──────────────────────────────────────────────────────

// LocalizedText is a string tagged with its language code.
type LocalizedText struct {
	Language string `json:"language" yaml:"language"`
	Text     string `json:"text" yaml:"text"`
	Version  string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Species holds species metadata, keyed by the same id as its Entry.
type Species struct {
	ID                int             `json:"id" yaml:"id"`
	Name              string          `json:"name" yaml:"name"`
	Order             int             `json:"order" yaml:"order"`
	GenderRate        int             `json:"gender_rate" yaml:"gender_rate"`
	CaptureRate       int             `json:"capture_rate" yaml:"capture_rate"`
	BaseHappiness     int             `json:"base_happiness" yaml:"base_happiness"`
	HatchCounter      int             `json:"hatch_counter" yaml:"hatch_counter"`
	IsBaby            bool            `json:"is_baby" yaml:"is_baby"`
	IsLegendary       bool            `json:"is_legendary" yaml:"is_legendary"`
	IsMythical        bool            `json:"is_mythical" yaml:"is_mythical"`
	Descriptions      []LocalizedText `json:"descriptions" yaml:"descriptions"`
	Genera            []LocalizedText `json:"genera" yaml:"genera"`
	EvolutionChainURL string          `json:"evolution_chain_url,omitempty" yaml:"evolution_chain_url,omitempty"`
}

// Status labels for Species.Status.
const (
	StatusLegendary = "legendary"
	StatusMythical  = "mythical"
	StatusBaby      = "baby"
	StatusNormal    = "normal"
)

// Status returns the display label: legendary, then mythical, then baby.
func (s Species) Status() string {
	switch {
	case s.IsLegendary:
		return StatusLegendary
	case s.IsMythical:
		return StatusMythical
	case s.IsBaby:
		return StatusBaby
	default:
		return StatusNormal
	}
}

// Genus returns the genus in lang, falling back to English, then "N/A".
func (s Species) Genus(lang string) string {
	if t, ok := pickLanguage(s.Genera, lang); ok {
		return t
	}
	return "N/A"
}

// Description returns the first description in lang, falling back to
// English. Form feeds and newlines embedded by the API are flattened.
func (s Species) Description(lang string) string {
	t, _ := pickLanguage(s.Descriptions, lang)
	return flatten(t)
}

func pickLanguage(texts []LocalizedText, lang string) (string, bool) {
	for _, want := range []string{lang, "en"} {
		for _, t := range texts {
			if t.Language == want {
				return t.Text, true
			}
		}
	}
	return "", false
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// EvolutionTrigger is one unlock condition on an evolution edge.
type EvolutionTrigger struct {
	Kind     string `json:"kind" yaml:"kind"`
	MinLevel *int   `json:"min_level,omitempty" yaml:"min_level,omitempty"`
	Item     string `json:"item,omitempty" yaml:"item,omitempty"`
}

// Describe renders the trigger as "Level N", "Item: X", or its kind.
func (t EvolutionTrigger) Describe() string {
	var parts []string
	if t.MinLevel != nil && *t.MinLevel > 0 {
		parts = append(parts, fmt.Sprintf("Level %d", *t.MinLevel))
	}
	if t.Item != "" {
		parts = append(parts, "Item: "+t.Item)
	}
	if len(parts) == 0 {
		return t.Kind
	}
	return strings.Join(parts, ", ")
}

// EvolutionNode is one species in an evolution tree. Triggers describe how
// this node is reached from its parent; the root has none.
type EvolutionNode struct {
	Species    string             `json:"species" yaml:"species"`
	SpeciesURL string             `json:"species_url,omitempty" yaml:"species_url,omitempty"`
	IsBaby     bool               `json:"is_baby,omitempty" yaml:"is_baby,omitempty"`
	Triggers   []EvolutionTrigger `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	EvolvesTo  []EvolutionNode    `json:"evolves_to,omitempty" yaml:"evolves_to,omitempty"`
}

// Condition describes the first trigger, or "" for the root.
func (n EvolutionNode) Condition() string {
	if len(n.Triggers) == 0 {
		return ""
	}
	return n.Triggers[0].Describe()
}

// EvolutionChain is a rooted tree of species transitions.
type EvolutionChain struct {
	ID   int           `json:"id" yaml:"id"`
	Root EvolutionNode `json:"root" yaml:"root"`
}

// ─── Ability / Move Details ───────────────────────────────────────────────────

// Effect is a localized effect description.
type Effect struct {
	Language    string `json:"language" yaml:"language"`
	Effect      string `json:"effect" yaml:"effect"`
	ShortEffect string `json:"short_effect" yaml:"short_effect"`
}

// Ability is the detail record behind an AbilityRef.
type Ability struct {
	ID           int             `json:"id" yaml:"id"`
	Name         string          `json:"name" yaml:"name"`
	IsMainSeries bool            `json:"is_main_series" yaml:"is_main_series"`
	Effects      []Effect        `json:"effects" yaml:"effects"`
	FlavorText   []LocalizedText `json:"flavor_text" yaml:"flavor_text"`
}

// ShortEffect returns the short effect in lang, falling back to English.
func (a Ability) ShortEffect(lang string) string {
	return shortEffect(a.Effects, lang)
}

// Move is the detail record behind a MoveRef.
type Move struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Accuracy    *int     `json:"accuracy" yaml:"accuracy"`
	Power       *int     `json:"power" yaml:"power"`
	PP          int      `json:"pp" yaml:"pp"`
	Priority    int      `json:"priority" yaml:"priority"`
	DamageClass string   `json:"damage_class" yaml:"damage_class"`
	Category    Category `json:"category" yaml:"category"`
	Effects     []Effect `json:"effects" yaml:"effects"`

	// Populated by FetchWithMoves from the owning entry's move list.
	LearnedAt   int    `json:"learned_at,omitempty" yaml:"learned_at,omitempty"`
	LearnMethod string `json:"learn_method,omitempty" yaml:"learn_method,omitempty"`
}

// ShortEffect returns the short effect in lang, falling back to English.
func (m Move) ShortEffect(lang string) string {
	return shortEffect(m.Effects, lang)
}

func shortEffect(effects []Effect, lang string) string {
	for _, want := range []string{lang, "en"} {
		for _, e := range effects {
			if e.Language == want {
				return flatten(e.ShortEffect)
			}
		}
	}
	return ""
}

// Complete bundles an entry with everything its detail view shows.
type Complete struct {
	Entry     Entry           `json:"entry" yaml:"entry"`
	Species   *Species        `json:"species,omitempty" yaml:"species,omitempty"`
	Evolution *EvolutionChain `json:"evolution,omitempty" yaml:"evolution,omitempty"`
	Abilities []Ability       `json:"abilities,omitempty" yaml:"abilities,omitempty"`
	Moves     []Move          `json:"moves,omitempty" yaml:"moves,omitempty"`
}

// Table is a generic headed table for results with no richer shape.
type Table struct {
	Headers []string   `json:"headers" yaml:"headers"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries timing metadata for a command result.
type ResultStats struct {
	DurationMs int64 `json:"duration_ms" yaml:"duration_ms"`
	Items      int   `json:"items" yaml:"items"`
	Total      int   `json:"total,omitempty" yaml:"total,omitempty"`
	HasMore    bool  `json:"has_more,omitempty" yaml:"has_more,omitempty"`
	Archived   bool  `json:"archived,omitempty" yaml:"archived,omitempty"`
}

// Result is the uniform envelope returned by every command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind" yaml:"kind"`
	GeneratedAt time.Time   `json:"generated_at" yaml:"generated_at"`
	Command     string      `json:"command" yaml:"command"`
	Data        interface{} `json:"data" yaml:"data"`
	Message     string      `json:"message,omitempty" yaml:"message,omitempty"`
	Warnings    []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Stats       ResultStats `json:"stats" yaml:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindEntries   = "entries"
	KindEntry     = "entry"
	KindComplete  = "complete"
	KindSpecies   = "species"
	KindEvolution = "evolution"
	KindAbility   = "ability"
	KindMove      = "move"
	KindSummary   = "summary"
	KindTable     = "table"
)

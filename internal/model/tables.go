package model

import (
	"fmt"
	"strings"
)

// Category is one of the 18 fixed classification tags of an Entry.
type Category string

// The 18 categories, in the API's canonical order.
const (
	Normal   Category = "normal"
	Fire     Category = "fire"
	Water    Category = "water"
	Electric Category = "electric"
	Grass    Category = "grass"
	Ice      Category = "ice"
	Fighting Category = "fighting"
	Poison   Category = "poison"
	Ground   Category = "ground"
	Flying   Category = "flying"
	Psychic  Category = "psychic"
	Bug      Category = "bug"
	Rock     Category = "rock"
	Ghost    Category = "ghost"
	Dragon   Category = "dragon"
	Dark     Category = "dark"
	Steel    Category = "steel"
	Fairy    Category = "fairy"
)

// Categories lists every valid category.
var Categories = []Category{
	Normal, Fire, Water, Electric, Grass, Ice, Fighting, Poison, Ground,
	Flying, Psychic, Bug, Rock, Ghost, Dragon, Dark, Steel, Fairy,
}

// CategoryColors maps each category to its display colour.
var CategoryColors = map[Category]string{
	Normal:   "#A8A878",
	Fire:     "#F08030",
	Water:    "#6890F0",
	Electric: "#F8D030",
	Grass:    "#78C850",
	Ice:      "#98D8D8",
	Fighting: "#C03028",
	Poison:   "#A040A0",
	Ground:   "#E0C068",
	Flying:   "#A890F0",
	Psychic:  "#F85888",
	Bug:      "#A8B820",
	Rock:     "#B8A038",
	Ghost:    "#705898",
	Dragon:   "#7038F8",
	Dark:     "#705848",
	Steel:    "#B8B8D0",
	Fairy:    "#EE99AC",
}

// DefaultColor is used for an unknown category.
const DefaultColor = "#2a2a2a"

// Color returns the display colour of c.
func (c Category) Color() string {
	if v, ok := CategoryColors[c]; ok {
		return v
	}
	return DefaultColor
}

// Valid reports whether c is one of the 18 categories.
func (c Category) Valid() bool {
	_, ok := CategoryColors[c]
	return ok
}

// ParseCategory normalises s and validates it against the fixed set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		names := make([]string, len(Categories))
		for i, v := range Categories {
			names[i] = string(v)
		}
		return "", fmt.Errorf("unknown category %q: choose one of %s", s, strings.Join(names, ", "))
	}
	return c, nil
}

// StatOrder is the canonical order of the six stats.
var StatOrder = []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"}

// StatShortLabels are the compact labels used in list views.
var StatShortLabels = map[string]string{
	"hp":              "PS",
	"attack":          "ATK",
	"defense":         "DEF",
	"special-attack":  "SP.ATK",
	"special-defense": "SP.DEF",
	"speed":           "VEL",
}

// StatLabels are the long labels used in detail views.
var StatLabels = map[string]string{
	"hp":              "PS",
	"attack":          "Ataque",
	"defense":         "Defensa",
	"special-attack":  "Ataque Esp.",
	"special-defense": "Defensa Esp.",
	"speed":           "Velocidad",
}

// StatLabel returns the long label for name, or name itself.
func StatLabel(name string) string {
	if v, ok := StatLabels[name]; ok {
		return v
	}
	return name
}

// StatShortLabel returns the short label for name, or name itself.
func StatShortLabel(name string) string {
	if v, ok := StatShortLabels[name]; ok {
		return v
	}
	return name
}

// MaxStat is the largest base value a stat can take; stat bars scale to it.
const MaxStat = 255

// StatTier classifies a base value for colouring: low (<50), mid (<90), high.
func StatTier(v int) string {
	switch {
	case v < 50:
		return "low"
	case v < 90:
		return "mid"
	default:
		return "high"
	}
}

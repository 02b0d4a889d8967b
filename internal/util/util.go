// Package util provides shared helpers: identifier normalisation, reference
// parsing, display formatting, and error aggregation.
package util

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// ─── Identifiers ──────────────────────────────────────────────────────────────

// NormalizeIdentifier trims and lower-cases an id-or-name for transmission.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeIdentifiers normalises ids and removes blanks and duplicates
// while preserving order.
func NormalizeIdentifiers(ids []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = NormalizeIdentifier(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// IDFromURL extracts the trailing numeric id from an API reference such as
// https://pokeapi.co/api/v2/pokemon/25/.
func IDFromURL(ref string) (int, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	last := path.Base(strings.TrimSuffix(u.Path, "/"))
	id, err := strconv.Atoi(last)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("reference %q has no numeric id", ref)
	}
	return id, nil
}

// ─── Display ──────────────────────────────────────────────────────────────────

// Humanize turns an API slug such as "special-attack" into "Special Attack".
func Humanize(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// FormatTenths renders a tenths-of-a-unit integer with one decimal place.
func FormatTenths(v int, unit string) string {
	return fmt.Sprintf("%.1f %s", float64(v)/10, unit)
}

// Truncate shortens s to max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 4 {
		return s
	}
	return string(r[:max-3]) + "..."
}

// ─── Error Helpers ────────────────────────────────────────────────────────────

// MultiError collects multiple errors and presents them as one.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

func (m *MultiError) Error() string {
	msgs := make([]string, len(m.Errors))
	for i, e := range m.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

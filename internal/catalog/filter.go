package catalog

import (
	"strconv"
	"strings"

	"github.com/derickschaefer/dex/internal/model"
)

// Filter returns the entries whose name or decimal id contains term,
// case-insensitively, in their original order. An empty term selects every
// entry. The input slice is never modified; the result is always a fresh
// slice.
func Filter(entries []model.Entry, term string) []model.Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if term == "" ||
			strings.Contains(strings.ToLower(e.Name), term) ||
			strings.Contains(strconv.Itoa(e.ID), term) {
			out = append(out, e)
		}
	}
	return out
}

// MatchNames returns the list items whose name contains term,
// case-insensitively.
func MatchNames(items []model.ListItem, term string) []model.ListItem {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []model.ListItem
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), term) {
			out = append(out, it)
		}
	}
	return out
}

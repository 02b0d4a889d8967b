package catalog

import (
	"fmt"

	"github.com/derickschaefer/dex/internal/model"
)

// ModeKind identifies which loading mode the catalog is in.
type ModeKind int

const (
	ModeNone ModeKind = iota
	ModeBrowse
	ModeTypeFilter
	ModeGlobalSearch
)

func (k ModeKind) String() string {
	switch k {
	case ModeBrowse:
		return "browse"
	case ModeTypeFilter:
		return "type-filter"
	case ModeGlobalSearch:
		return "global-search"
	default:
		return "none"
	}
}

// Mode is the catalog's active mode together with its associated data.
// Construct one with Browse, TypeFilter or GlobalSearch; the zero value is
// ModeNone.
//
// A GlobalSearch mode remembers the category filter that was active when the
// search began so that clearing the search can restore it.
type Mode struct {
	kind     ModeKind
	category model.Category
	term     string
}

// Browse is the default paginated traversal.
func Browse() Mode { return Mode{kind: ModeBrowse} }

// TypeFilter restricts the collection to one category.
func TypeFilter(c model.Category) Mode { return Mode{kind: ModeTypeFilter, category: c} }

// GlobalSearch searches the whole catalog for term. restore is the category
// filter to fall back to when the search is cleared ("" for Browse).
func GlobalSearch(term string, restore model.Category) Mode {
	return Mode{kind: ModeGlobalSearch, term: term, category: restore}
}

// Kind returns the mode's tag.
func (m Mode) Kind() ModeKind { return m.kind }

// Category returns the filter category of a TypeFilter mode, or the category
// a GlobalSearch mode restores. ok is false when there is none.
func (m Mode) Category() (c model.Category, ok bool) {
	return m.category, m.category != ""
}

// Term returns the search term of a GlobalSearch mode.
func (m Mode) Term() (string, bool) {
	return m.term, m.kind == ModeGlobalSearch
}

func (m Mode) String() string {
	switch m.kind {
	case ModeTypeFilter:
		return fmt.Sprintf("type-filter(%s)", m.category)
	case ModeGlobalSearch:
		return fmt.Sprintf("global-search(%q)", m.term)
	default:
		return m.kind.String()
	}
}

package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/derickschaefer/dex/internal/model"
)

// EntryFetcher fetches a single entry by id or name.
type EntryFetcher interface {
	FetchByIdentifier(ctx context.Context, idOrName string) (*model.Entry, error)
}

// LookupView is a snapshot of a Lookup.
type LookupView struct {
	Entry   *model.Entry
	Loading bool
	Err     string
}

// Lookup resolves one entry at a time by exact id or name, independently of
// any Catalog. Like the catalog it guards commits with a generation token so
// an older lookup cannot overwrite a newer one.
type Lookup struct {
	f EntryFetcher

	mu      sync.Mutex
	gen     uint64
	entry   *model.Entry
	loading bool
	errMsg  string
}

// NewLookup creates an empty Lookup.
func NewLookup(f EntryFetcher) *Lookup {
	return &Lookup{f: f}
}

// Find looks idOrName up. A blank identifier clears the current entry
// without a request.
func (l *Lookup) Find(ctx context.Context, idOrName string) (*model.Entry, error) {
	ident := strings.ToLower(strings.TrimSpace(idOrName))

	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.errMsg = ""
	if ident == "" {
		l.entry = nil
		l.loading = false
		l.mu.Unlock()
		return nil, nil
	}
	l.loading = true
	l.mu.Unlock()

	entry, err := l.f.FetchByIdentifier(ctx, ident)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return nil, ErrSuperseded
	}
	l.loading = false
	if err != nil {
		l.entry = nil
		l.errMsg = err.Error()
		return nil, err
	}
	l.entry = entry
	return entry, nil
}

// State returns the current lookup view.
func (l *Lookup) State() LookupView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LookupView{Entry: l.entry, Loading: l.loading, Err: l.errMsg}
}

// Package catalog owns the displayed collection of entries and the state
// machine that fills it: paginated browsing, category filtering, and global
// search, each reduced into a single de-duplicated list.
//
// Every command captures a generation token on entry and re-checks it before
// committing. A command whose token is no longer current when its requests
// settle discards its results, so a slow superseded request can never
// overwrite newer state. Nothing is cancelled: superseded requests run to
// completion and are simply ignored.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/derickschaefer/dex/internal/model"
)

const (
	// DefaultPageSize is the Browse page size.
	DefaultPageSize = 50
	// DefaultBulkLimit is the oversized page used to cover the whole catalog
	// for category filtering and the search fallback.
	DefaultBulkLimit = 1500
)

var (
	// ErrSuperseded is returned by a command whose results were discarded
	// because a newer command started before it finished.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrNotBrowsing is returned by LoadNextPage outside Browse mode.
	ErrNotBrowsing = errors.New("pagination is only available while browsing")
	// ErrNoMatch is matched by errors.Is for a NoMatchError.
	ErrNoMatch = errors.New("no match")
)

// NoMatchError describes a search that found nothing. It is reported
// through View.Message, never as a failure.
type NoMatchError struct {
	Term string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no results for %q", e.Term)
}

func (e *NoMatchError) Is(target error) bool { return target == ErrNoMatch }

// Gateway is the subset of the remote API the catalog needs.
// *pokeapi.Client satisfies it.
type Gateway interface {
	ListPage(ctx context.Context, limit, offset int) (*model.ListPage, error)
	FetchByIdentifier(ctx context.Context, idOrName string) (*model.Entry, error)
	FetchDetails(ctx context.Context, refs []string) ([]model.Entry, error)
}

// Options configures a Catalog.
type Options struct {
	PageSize  int
	BulkLimit int
	// SearchLimit caps how many substring matches the search fallback
	// resolves. 0 resolves every match.
	SearchLimit int
	// OnChange, when set, receives a View after every state change.
	OnChange func(View)
	Logger   *slog.Logger
}

// View is an immutable snapshot of the catalog state.
type View struct {
	Entries    []model.Entry // after the local filter stage
	Loading    bool
	Err        string // human-readable failure of the last command, or ""
	Message    string // informational notice such as "no results for ..."
	HasMore    bool
	TotalCount int
	Mode       Mode
	Offset     int // offset of the most recently committed Browse page
	LocalTerm  string
	Generation uint64
}

// Catalog is the catalog state machine. All methods are safe for concurrent
// use; commands block until their requests settle.
type Catalog struct {
	gw   Gateway
	opts Options
	log  *slog.Logger

	mu        sync.Mutex
	gen       uint64
	entries   []model.Entry
	ids       map[int]struct{}
	mode      Mode
	offset    int
	loaded    bool // a Browse page has been committed since the last reset
	hasNext   bool
	total     int
	loading   bool
	errMsg    string
	message   string
	localTerm string
}

// New creates a Catalog in Browse mode with an empty collection.
func New(gw Gateway, opts Options) *Catalog {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.BulkLimit <= 0 {
		opts.BulkLimit = DefaultBulkLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		gw:      gw,
		opts:    opts,
		log:     logger,
		mode:    Browse(),
		hasNext: true,
		ids:     make(map[int]struct{}),
	}
}

// State returns the current view. The local filter stage is applied unless
// the catalog is in GlobalSearch mode.
func (c *Catalog) State() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Catalog) viewLocked() View {
	entries := c.entries
	if c.mode.Kind() == ModeGlobalSearch {
		entries = append([]model.Entry(nil), entries...)
	} else {
		entries = Filter(entries, c.localTerm)
	}
	v := View{
		Entries:    entries,
		Loading:    c.loading,
		Err:        c.errMsg,
		Message:    c.message,
		Mode:       c.mode,
		Offset:     c.offset,
		LocalTerm:  c.localTerm,
		Generation: c.gen,
	}
	if c.mode.Kind() == ModeBrowse {
		v.HasMore = c.hasNext
		v.TotalCount = c.total
	} else {
		v.TotalCount = len(entries)
	}
	return v
}

// notify hands a fresh view to OnChange. Must be called without c.mu held.
func (c *Catalog) notify() {
	if c.opts.OnChange != nil {
		c.opts.OnChange(c.State())
	}
}

// begin starts a command: it bumps the generation, clears per-command
// error state and marks the catalog loading. When clear is set the
// collection is emptied (a mode transition).
func (c *Catalog) begin(mode Mode, clear bool) uint64 {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mode = mode
	c.errMsg = ""
	c.message = ""
	c.loading = true
	if clear {
		c.resetCollectionLocked()
	}
	c.mu.Unlock()
	c.notify()
	return gen
}

func (c *Catalog) resetCollectionLocked() {
	c.entries = nil
	c.ids = make(map[int]struct{})
	c.offset = 0
	c.loaded = false
	c.hasNext = true
	c.total = 0
}

// commit runs apply under the lock if gen is still current. It reports
// ErrSuperseded otherwise.
func (c *Catalog) commit(gen uint64, op string, apply func()) error {
	c.mu.Lock()
	if gen != c.gen {
		current := c.gen
		c.mu.Unlock()
		c.log.Debug("discarding stale result", "op", op, "generation", gen, "current", current)
		return ErrSuperseded
	}
	apply()
	c.loading = false
	c.mu.Unlock()
	c.notify()
	return nil
}

// fail records err as the outcome of command gen, leaving the collection
// empty. Stale failures are discarded like stale successes.
func (c *Catalog) fail(gen uint64, op string, err error) error {
	if cerr := c.commit(gen, op, func() {
		c.resetCollectionLocked()
		c.errMsg = err.Error()
	}); cerr != nil {
		return cerr
	}
	return err
}

func (c *Catalog) replaceLocked(entries []model.Entry) {
	c.entries = nil
	c.ids = make(map[int]struct{}, len(entries))
	c.appendLocked(entries)
}

// appendLocked adds entries whose id is not yet present.
func (c *Catalog) appendLocked(entries []model.Entry) int {
	added := 0
	for _, e := range entries {
		if _, dup := c.ids[e.ID]; dup {
			continue
		}
		c.ids[e.ID] = struct{}{}
		c.entries = append(c.entries, e)
		added++
	}
	return added
}

// ─── Commands ─────────────────────────────────────────────────────────────────

// LoadNextPage loads the next Browse page: offset 0 after a reset, then one
// page further each call. Every item on the page is resolved concurrently;
// the page is committed only if all of them succeed. The first page replaces
// the collection, later pages append entries whose id is not already
// present. It returns ErrNotBrowsing outside Browse mode and does nothing
// once the listing is exhausted.
func (c *Catalog) LoadNextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.mode.Kind() != ModeBrowse {
		c.mu.Unlock()
		return ErrNotBrowsing
	}
	if c.loaded && !c.hasNext {
		c.mu.Unlock()
		return nil
	}
	target := 0
	if c.loaded {
		target = c.offset + c.opts.PageSize
	}
	c.mu.Unlock()

	return c.loadPage(ctx, c.begin(Browse(), false), target)
}

// restartBrowse clears the collection and loads the first Browse page under
// a single generation.
func (c *Catalog) restartBrowse(ctx context.Context) error {
	return c.loadPage(ctx, c.begin(Browse(), true), 0)
}

func (c *Catalog) loadPage(ctx context.Context, gen uint64, target int) error {
	page, err := c.gw.ListPage(ctx, c.opts.PageSize, target)
	if err != nil {
		return c.fail(gen, "load page", err)
	}
	entries, err := c.gw.FetchDetails(ctx, refs(page.Results))
	if err != nil {
		return c.fail(gen, "load page", err)
	}

	return c.commit(gen, "load page", func() {
		if target == 0 {
			c.replaceLocked(entries)
		} else {
			c.appendLocked(entries)
		}
		c.offset = target
		c.loaded = true
		c.hasNext = page.HasNext
		c.total = page.Count
	})
}

// SetCategoryFilter switches to TypeFilter(category), or back to Browse when
// category is "". The collection is cleared and the offset reset first. With
// a category, the whole catalog is listed in one oversized page, every item
// is resolved, and only entries carrying the category are kept; pagination
// is disabled. Without one, the first Browse page is loaded.
func (c *Catalog) SetCategoryFilter(ctx context.Context, category model.Category) error {
	c.mu.Lock()
	c.localTerm = ""
	c.mu.Unlock()

	if category == "" {
		return c.restartBrowse(ctx)
	}
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	return c.loadCategory(ctx, TypeFilter(category))
}

func (c *Catalog) loadCategory(ctx context.Context, mode Mode) error {
	category, _ := mode.Category()
	gen := c.begin(mode, true)

	page, err := c.gw.ListPage(ctx, c.opts.BulkLimit, 0)
	if err != nil {
		return c.fail(gen, "category filter", err)
	}
	all, err := c.gw.FetchDetails(ctx, refs(page.Results))
	if err != nil {
		return c.fail(gen, "category filter", err)
	}

	kept := make([]model.Entry, 0, len(all))
	for _, e := range all {
		if e.HasCategory(category) {
			kept = append(kept, e)
		}
	}

	return c.commit(gen, "category filter", func() {
		c.replaceLocked(kept)
		c.hasNext = false
		c.total = len(c.entries)
		if len(kept) == 0 {
			c.message = (&NoMatchError{Term: string(category)}).Error()
		}
	})
}

// Search looks term up across the whole catalog.
//
// A blank term leaves search mode and reloads whatever the active category
// filter (or Browse) produces. Otherwise an exact id-or-name lookup is tried
// first; if it fails, every listed name containing term is resolved instead.
// Finding nothing is not an error: the collection is left empty and
// View.Message explains why.
func (c *Catalog) Search(ctx context.Context, term string) error {
	trimmed := strings.TrimSpace(term)

	c.mu.Lock()
	restore, _ := c.mode.Category()
	c.localTerm = ""
	c.mu.Unlock()

	if trimmed == "" {
		if restore != "" {
			return c.loadCategory(ctx, TypeFilter(restore))
		}
		return c.restartBrowse(ctx)
	}

	gen := c.begin(GlobalSearch(trimmed, restore), true)

	entry, err := c.gw.FetchByIdentifier(ctx, trimmed)
	if err == nil {
		return c.commit(gen, "search exact", func() {
			c.replaceLocked([]model.Entry{*entry})
			c.hasNext = false
		})
	}
	c.log.Debug("exact lookup failed, scanning names", "term", trimmed, "err", err)

	page, err := c.gw.ListPage(ctx, c.opts.BulkLimit, 0)
	if err != nil {
		return c.fail(gen, "search", err)
	}
	matches := MatchNames(page.Results, trimmed)
	if c.opts.SearchLimit > 0 && len(matches) > c.opts.SearchLimit {
		matches = matches[:c.opts.SearchLimit]
	}
	if len(matches) == 0 {
		return c.commit(gen, "search", func() {
			c.replaceLocked(nil)
			c.hasNext = false
			c.message = (&NoMatchError{Term: trimmed}).Error()
		})
	}

	entries, err := c.gw.FetchDetails(ctx, refs(matches))
	if err != nil {
		return c.fail(gen, "search", err)
	}
	return c.commit(gen, "search", func() {
		c.replaceLocked(entries)
		c.hasNext = false
	})
}

// SetLocalFilter sets the retained text term of the local filter stage.
// It never fetches; the term applies to the next State call.
func (c *Catalog) SetLocalFilter(term string) {
	c.mu.Lock()
	c.localTerm = strings.TrimSpace(term)
	c.mu.Unlock()
	c.notify()
}

// Reset clears every mode, filter and search setting, returns to Browse at
// offset 0, and loads the first page.
func (c *Catalog) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.localTerm = ""
	c.mu.Unlock()
	return c.restartBrowse(ctx)
}

func refs(items []model.ListItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.URL
	}
	return out
}

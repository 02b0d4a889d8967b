package pokeapi

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/util"
)

// ─── List ─────────────────────────────────────────────────────────────────────

// ListPage fetches one page of the catalog listing.
func (c *Client) ListPage(ctx context.Context, limit, offset int) (*model.ListPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var raw struct {
		Count    int        `json:"count"`
		Next     *string    `json:"next"`
		Previous *string    `json:"previous"`
		Results  []namedRef `json:"results"`
	}
	if err := c.get(ctx, "pokemon", params, &raw); err != nil {
		return nil, fmt.Errorf("list page limit=%d offset=%d: %w", limit, offset, err)
	}

	items := make([]model.ListItem, len(raw.Results))
	for i, r := range raw.Results {
		items[i] = model.ListItem{Name: r.Name, URL: r.URL}
	}
	return &model.ListPage{
		Count:   raw.Count,
		HasNext: raw.Next != nil && *raw.Next != "",
		Results: items,
	}, nil
}

// ─── Entries ──────────────────────────────────────────────────────────────────

// FetchByIdentifier fetches one entry by numeric id or name. The identifier
// is lower-cased before transmission. An unknown identifier yields an error
// wrapping ErrNotFound.
func (c *Client) FetchByIdentifier(ctx context.Context, idOrName string) (*model.Entry, error) {
	ident := util.NormalizeIdentifier(idOrName)
	if ident == "" {
		return nil, fmt.Errorf("entry: empty identifier")
	}
	var raw rawEntry
	if err := c.get(ctx, "pokemon/"+url.PathEscape(ident), nil, &raw); err != nil {
		return nil, fmt.Errorf("entry %s: %w", ident, err)
	}
	return normalizeEntry(raw)
}

// FetchDetail resolves an absolute entry reference from a list or search
// result.
func (c *Client) FetchDetail(ctx context.Context, ref string) (*model.Entry, error) {
	var raw rawEntry
	if err := c.getURL(ctx, ref, &raw); err != nil {
		return nil, fmt.Errorf("entry detail: %w", err)
	}
	return normalizeEntry(raw)
}

// FetchDetails resolves refs concurrently, at most Concurrency at a time,
// and returns the entries in ref order. The first failure cancels the rest
// of the group and is returned; no partial result is produced.
func (c *Client) FetchDetails(ctx context.Context, refs []string) ([]model.Entry, error) {
	out := make([]model.Entry, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			e, err := c.FetchDetail(gctx, ref)
			if err != nil {
				return err
			}
			out[i] = *e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchByCategory fetches the entries of one category: a single listing
// request followed by concurrent detail fetches for at most the first
// CategoryDetailLimit results.
func (c *Client) FetchByCategory(ctx context.Context, category model.Category) ([]model.Entry, error) {
	var raw struct {
		Pokemon []struct {
			Slot    int      `json:"slot"`
			Pokemon namedRef `json:"pokemon"`
		} `json:"pokemon"`
	}
	if err := c.get(ctx, "type/"+url.PathEscape(string(category)), nil, &raw); err != nil {
		return nil, fmt.Errorf("category %s: %w", category, err)
	}

	n := len(raw.Pokemon)
	if n > CategoryDetailLimit {
		n = CategoryDetailLimit
	}
	refs := make([]string, n)
	for i := 0; i < n; i++ {
		refs[i] = raw.Pokemon[i].Pokemon.URL
	}
	entries, err := c.FetchDetails(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", category, err)
	}
	return entries, nil
}

// ─── Internal helpers ─────────────────────────────────────────────────────────

type namedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type rawEntry struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Height         int    `json:"height"`
	Weight         int    `json:"weight"`
	BaseExperience *int   `json:"base_experience"`
	Types          []struct {
		Slot int      `json:"slot"`
		Type namedRef `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int      `json:"base_stat"`
		Effort   int      `json:"effort"`
		Stat     namedRef `json:"stat"`
	} `json:"stats"`
	Abilities []struct {
		IsHidden bool     `json:"is_hidden"`
		Slot     int      `json:"slot"`
		Ability  namedRef `json:"ability"`
	} `json:"abilities"`
	Moves []struct {
		Move                namedRef `json:"move"`
		VersionGroupDetails []struct {
			LevelLearnedAt  int      `json:"level_learned_at"`
			MoveLearnMethod namedRef `json:"move_learn_method"`
			VersionGroup    namedRef `json:"version_group"`
		} `json:"version_group_details"`
	} `json:"moves"`
	Sprites struct {
		FrontDefault *string `json:"front_default"`
		FrontShiny   *string `json:"front_shiny"`
		BackDefault  *string `json:"back_default"`
		BackShiny    *string `json:"back_shiny"`
		Other        struct {
			OfficialArtwork struct {
				FrontDefault *string `json:"front_default"`
				FrontShiny   *string `json:"front_shiny"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// normalizeEntry converts the wire shape into a model.Entry, reordering
// stats into model.StatOrder and enforcing the entry invariants.
func normalizeEntry(r rawEntry) (*model.Entry, error) {
	types := r.Types
	sort.SliceStable(types, func(i, j int) bool { return types[i].Slot < types[j].Slot })
	cats := make([]model.Category, len(types))
	for i, t := range types {
		cats[i] = model.Category(t.Type.Name)
	}

	byName := make(map[string]model.Stat, len(r.Stats))
	for _, s := range r.Stats {
		byName[s.Stat.Name] = model.Stat{Name: s.Stat.Name, Base: s.BaseStat, Effort: s.Effort}
	}
	stats := make([]model.Stat, 0, len(model.StatOrder))
	for _, name := range model.StatOrder {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("entry %s: missing stat %q", r.Name, name)
		}
		stats = append(stats, s)
	}

	abilities := make([]model.AbilityRef, len(r.Abilities))
	for i, a := range r.Abilities {
		abilities[i] = model.AbilityRef{Name: a.Ability.Name, URL: a.Ability.URL, Hidden: a.IsHidden, Slot: a.Slot}
	}

	moves := make([]model.MoveRef, len(r.Moves))
	for i, m := range r.Moves {
		learned := make([]model.MoveLearn, len(m.VersionGroupDetails))
		for j, d := range m.VersionGroupDetails {
			learned[j] = model.MoveLearn{
				Level:        d.LevelLearnedAt,
				Method:       d.MoveLearnMethod.Name,
				VersionGroup: d.VersionGroup.Name,
			}
		}
		moves[i] = model.MoveRef{Name: m.Move.Name, URL: m.Move.URL, Learned: learned}
	}

	e := &model.Entry{
		ID:             r.ID,
		Name:           r.Name,
		Categories:     cats,
		Stats:          stats,
		Height:         r.Height,
		Weight:         r.Weight,
		Abilities:      abilities,
		Moves:          moves,
		BaseExperience: r.BaseExperience,
		Images: model.Images{
			Front:        deref(r.Sprites.FrontDefault),
			FrontShiny:   deref(r.Sprites.FrontShiny),
			Back:         deref(r.Sprites.BackDefault),
			BackShiny:    deref(r.Sprites.BackShiny),
			Artwork:      deref(r.Sprites.Other.OfficialArtwork.FrontDefault),
			ArtworkShiny: deref(r.Sprites.Other.OfficialArtwork.FrontShiny),
		},
		FetchedAt: time.Now(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

package pokeapi

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/derickschaefer/dex/internal/model"
)

const (
	// CompleteMoveLimit caps move detail fetches in FetchComplete.
	CompleteMoveLimit = 20
	// MovesWithDetailLimit caps move detail fetches in FetchWithMoves.
	MovesWithDetailLimit = 10
)

// ─── Species ──────────────────────────────────────────────────────────────────

// FetchSpecies fetches species metadata for an entry id.
func (c *Client) FetchSpecies(ctx context.Context, id int) (*model.Species, error) {
	var raw struct {
		ID             int    `json:"id"`
		Name           string `json:"name"`
		Order          int    `json:"order"`
		GenderRate     int    `json:"gender_rate"`
		CaptureRate    int    `json:"capture_rate"`
		BaseHappiness  *int   `json:"base_happiness"`
		HatchCounter   *int   `json:"hatch_counter"`
		IsBaby         bool   `json:"is_baby"`
		IsLegendary    bool   `json:"is_legendary"`
		IsMythical     bool   `json:"is_mythical"`
		EvolutionChain *struct {
			URL string `json:"url"`
		} `json:"evolution_chain"`
		FlavorTextEntries []struct {
			FlavorText string   `json:"flavor_text"`
			Language   namedRef `json:"language"`
			Version    namedRef `json:"version"`
		} `json:"flavor_text_entries"`
		Genera []struct {
			Genus    string   `json:"genus"`
			Language namedRef `json:"language"`
		} `json:"genera"`
	}
	if err := c.get(ctx, "pokemon-species/"+strconv.Itoa(id), nil, &raw); err != nil {
		return nil, fmt.Errorf("species %d: %w", id, err)
	}

	sp := &model.Species{
		ID:          raw.ID,
		Name:        raw.Name,
		Order:       raw.Order,
		GenderRate:  raw.GenderRate,
		CaptureRate: raw.CaptureRate,
		IsBaby:      raw.IsBaby,
		IsLegendary: raw.IsLegendary,
		IsMythical:  raw.IsMythical,
	}
	if raw.BaseHappiness != nil {
		sp.BaseHappiness = *raw.BaseHappiness
	}
	if raw.HatchCounter != nil {
		sp.HatchCounter = *raw.HatchCounter
	}
	if raw.EvolutionChain != nil {
		sp.EvolutionChainURL = raw.EvolutionChain.URL
	}
	for _, f := range raw.FlavorTextEntries {
		sp.Descriptions = append(sp.Descriptions, model.LocalizedText{
			Language: f.Language.Name,
			Text:     f.FlavorText,
			Version:  f.Version.Name,
		})
	}
	for _, g := range raw.Genera {
		sp.Genera = append(sp.Genera, model.LocalizedText{Language: g.Language.Name, Text: g.Genus})
	}
	return sp, nil
}

// ─── Evolution ────────────────────────────────────────────────────────────────

type rawEvolutionDetail struct {
	MinLevel *int      `json:"min_level"`
	Trigger  namedRef  `json:"trigger"`
	Item     *namedRef `json:"item"`
}

type rawChainLink struct {
	IsBaby           bool                 `json:"is_baby"`
	Species          namedRef             `json:"species"`
	EvolutionDetails []rawEvolutionDetail `json:"evolution_details"`
	EvolvesTo        []rawChainLink       `json:"evolves_to"`
}

// FetchEvolutionChain resolves the absolute evolution chain reference found
// on a species record.
func (c *Client) FetchEvolutionChain(ctx context.Context, ref string) (*model.EvolutionChain, error) {
	var raw struct {
		ID    int          `json:"id"`
		Chain rawChainLink `json:"chain"`
	}
	if err := c.getURL(ctx, ref, &raw); err != nil {
		return nil, fmt.Errorf("evolution chain: %w", err)
	}
	return &model.EvolutionChain{ID: raw.ID, Root: normalizeLink(raw.Chain)}, nil
}

func normalizeLink(l rawChainLink) model.EvolutionNode {
	n := model.EvolutionNode{
		Species:    l.Species.Name,
		SpeciesURL: l.Species.URL,
		IsBaby:     l.IsBaby,
	}
	for _, d := range l.EvolutionDetails {
		t := model.EvolutionTrigger{Kind: d.Trigger.Name, MinLevel: d.MinLevel}
		if d.Item != nil {
			t.Item = d.Item.Name
		}
		n.Triggers = append(n.Triggers, t)
	}
	for _, child := range l.EvolvesTo {
		n.EvolvesTo = append(n.EvolvesTo, normalizeLink(child))
	}
	return n
}

// ─── Abilities / Moves ────────────────────────────────────────────────────────

type rawEffect struct {
	Effect      string   `json:"effect"`
	ShortEffect string   `json:"short_effect"`
	Language    namedRef `json:"language"`
}

func normalizeEffects(raw []rawEffect) []model.Effect {
	out := make([]model.Effect, len(raw))
	for i, e := range raw {
		out[i] = model.Effect{Language: e.Language.Name, Effect: e.Effect, ShortEffect: e.ShortEffect}
	}
	return out
}

// FetchAbility resolves an ability reference from an entry's ability list.
func (c *Client) FetchAbility(ctx context.Context, ref string) (*model.Ability, error) {
	var raw struct {
		ID                int         `json:"id"`
		Name              string      `json:"name"`
		IsMainSeries      bool        `json:"is_main_series"`
		EffectEntries     []rawEffect `json:"effect_entries"`
		FlavorTextEntries []struct {
			FlavorText   string   `json:"flavor_text"`
			Language     namedRef `json:"language"`
			VersionGroup namedRef `json:"version_group"`
		} `json:"flavor_text_entries"`
	}
	if err := c.getURL(ctx, ref, &raw); err != nil {
		return nil, fmt.Errorf("ability: %w", err)
	}
	a := &model.Ability{
		ID:           raw.ID,
		Name:         raw.Name,
		IsMainSeries: raw.IsMainSeries,
		Effects:      normalizeEffects(raw.EffectEntries),
	}
	for _, f := range raw.FlavorTextEntries {
		a.FlavorText = append(a.FlavorText, model.LocalizedText{
			Language: f.Language.Name,
			Text:     f.FlavorText,
			Version:  f.VersionGroup.Name,
		})
	}
	return a, nil
}

// FetchMove resolves a move reference from an entry's move list.
func (c *Client) FetchMove(ctx context.Context, ref string) (*model.Move, error) {
	var raw struct {
		ID            int         `json:"id"`
		Name          string      `json:"name"`
		Accuracy      *int        `json:"accuracy"`
		Power         *int        `json:"power"`
		PP            int         `json:"pp"`
		Priority      int         `json:"priority"`
		DamageClass   namedRef    `json:"damage_class"`
		EffectEntries []rawEffect `json:"effect_entries"`
		Type          namedRef    `json:"type"`
	}
	if err := c.getURL(ctx, ref, &raw); err != nil {
		return nil, fmt.Errorf("move: %w", err)
	}
	return &model.Move{
		ID:          raw.ID,
		Name:        raw.Name,
		Accuracy:    raw.Accuracy,
		Power:       raw.Power,
		PP:          raw.PP,
		Priority:    raw.Priority,
		DamageClass: raw.DamageClass.Name,
		Category:    model.Category(raw.Type.Name),
		Effects:     normalizeEffects(raw.EffectEntries),
	}, nil
}

// AbilityRef returns the absolute reference for an ability name.
func (c *Client) AbilityRef(name string) string {
	return c.baseURL + "ability/" + name + "/"
}

// MoveRef returns the absolute reference for a move name.
func (c *Client) MoveRef(name string) string {
	return c.baseURL + "move/" + name + "/"
}

// ─── Composite fetches ────────────────────────────────────────────────────────

// FetchComplete fetches an entry together with its species, evolution chain
// (when the species references one), every ability detail, and the details
// of the first CompleteMoveLimit moves.
func (c *Client) FetchComplete(ctx context.Context, idOrName string) (*model.Complete, error) {
	entry, err := c.FetchByIdentifier(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	species, err := c.FetchSpecies(ctx, entry.ID)
	if err != nil {
		return nil, err
	}

	out := &model.Complete{Entry: *entry, Species: species}
	if species.EvolutionChainURL != "" {
		chain, err := c.FetchEvolutionChain(ctx, species.EvolutionChainURL)
		if err != nil {
			return nil, err
		}
		out.Evolution = chain
	}

	moveRefs := entry.Moves
	if len(moveRefs) > CompleteMoveLimit {
		moveRefs = moveRefs[:CompleteMoveLimit]
	}
	out.Abilities = make([]model.Ability, len(entry.Abilities))
	out.Moves = make([]model.Move, len(moveRefs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, a := range entry.Abilities {
		g.Go(func() error {
			ab, err := c.FetchAbility(gctx, a.URL)
			if err != nil {
				return err
			}
			out.Abilities[i] = *ab
			return nil
		})
	}
	for i, m := range moveRefs {
		g.Go(func() error {
			mv, err := c.FetchMove(gctx, m.URL)
			if err != nil {
				return err
			}
			out.Moves[i] = *mv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("complete %s: %w", entry.Name, err)
	}
	return out, nil
}

// FetchWithMoves fetches an entry and the details of its first
// MovesWithDetailLimit moves, each annotated with the level and method from
// its first learn fact.
func (c *Client) FetchWithMoves(ctx context.Context, id int) (*model.Entry, []model.Move, error) {
	entry, err := c.FetchByIdentifier(ctx, strconv.Itoa(id))
	if err != nil {
		return nil, nil, err
	}
	refs := entry.Moves
	if len(refs) > MovesWithDetailLimit {
		refs = refs[:MovesWithDetailLimit]
	}
	moves := make([]model.Move, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			mv, err := c.FetchMove(gctx, ref.URL)
			if err != nil {
				return err
			}
			first := ref.FirstLearn()
			mv.LearnedAt = first.Level
			mv.LearnMethod = first.Method
			moves[i] = *mv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("moves %s: %w", entry.Name, err)
	}
	return entry, moves, nil
}

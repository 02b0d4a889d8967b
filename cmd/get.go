package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/app"
	"github.com/derickschaefer/dex/internal/catalog"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
)

var (
	getTab      string
	getShiny    bool
	getComplete bool
)

var getCmd = &cobra.Command{
	Use:   "get <id|name...>",
	Short: "Show one or more entries in detail",
	Long: `Look entries up by exact id or name.

With one identifier the entry is shown in detail; --tab limits the output to
one of info, stats, moves or evolution. With several identifiers and no
--tab the entries are listed in one table; failed lookups are reported as
warnings.

--complete also resolves species data, the evolution chain, every ability
and the first moves. Pass "-" to read identifiers from stdin.`,
	Example: `  dex get pikachu
  dex get 25 --tab stats
  dex get charizard --tab moves
  dex get eevee --complete --format json
  dex get bulbasaur charmander squirtle
  dex list --format jsonl | dex get - --tab info`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if getTab != "" && !validTab(getTab) {
			return fmt.Errorf("unknown tab %q (valid: %s)", getTab, strings.Join(render.Tabs, "|"))
		}
		ids, err := readIdentifiers(cmd, args)
		if err != nil {
			return err
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		start := time.Now()
		ctx := cmd.Context()
		opts := render.Options{Tab: getTab, Shiny: getShiny}

		if len(ids) == 1 && !getComplete {
			entry, err := catalog.NewLookup(deps.Client).Find(ctx, ids[0])
			if err != nil {
				return err
			}
			view, err := detailView(ctx, deps, entry, getTab)
			if err != nil {
				return err
			}
			return renderResult(cmd, deps, newResult(model.KindComplete, "get "+ids[0], view, 1, start), opts)
		}

		if getComplete {
			completes, warnings, err := batchFetch(ctx, deps, ids, deps.Client.FetchComplete)
			if err != nil {
				return err
			}
			for i, c := range completes {
				result := newResult(model.KindComplete, "get "+c.Entry.Name, c, 1, start)
				if i == len(completes)-1 {
					result.Warnings = warnings
				}
				if err := renderResult(cmd, deps, result, opts); err != nil {
					return err
				}
			}
			return nil
		}

		if getTab == "" {
			entries, warnings, err := batchFetch(ctx, deps, ids, deps.Client.FetchByIdentifier)
			if err != nil {
				return err
			}
			list := make([]model.Entry, len(entries))
			for i, e := range entries {
				list[i] = *e
			}
			result := newResult(model.KindEntries, "get", list, len(list), start)
			result.Warnings = warnings
			return renderResult(cmd, deps, result, opts)
		}

		views, warnings, err := batchFetch(ctx, deps, ids, func(ctx context.Context, ident string) (*model.Complete, error) {
			e, err := deps.Client.FetchByIdentifier(ctx, ident)
			if err != nil {
				return nil, err
			}
			return detailView(ctx, deps, e, getTab)
		})
		if err != nil {
			return err
		}
		for i, v := range views {
			result := newResult(model.KindComplete, "get "+v.Entry.Name, v, 1, start)
			if i == len(views)-1 {
				result.Warnings = warnings
			}
			if err := renderResult(cmd, deps, result, opts); err != nil {
				return err
			}
		}
		return nil
	},
}

// detailView resolves what the selected tab shows on top of the entry:
// species for info, species and the evolution chain for evolution, move
// details for moves. The default view shows every tab with the plain move
// list; "all" also resolves move details.
func detailView(ctx context.Context, deps *app.Deps, entry *model.Entry, tab string) (*model.Complete, error) {
	out := &model.Complete{Entry: *entry}

	if tab == render.TabMoves || tab == render.TabAll {
		full, moves, err := deps.Client.FetchWithMoves(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		out.Entry, out.Moves = *full, moves
	}

	wantChain := tab == "" || tab == render.TabEvolution || tab == render.TabAll
	if !wantChain && tab != render.TabInfo {
		return out, nil
	}
	species, err := deps.Client.FetchSpecies(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	out.Species = species
	if wantChain && species.EvolutionChainURL != "" {
		chain, err := deps.Client.FetchEvolutionChain(ctx, species.EvolutionChainURL)
		if err != nil {
			return nil, err
		}
		out.Evolution = chain
	}
	return out, nil
}

func validTab(tab string) bool {
	for _, t := range render.Tabs {
		if t == tab {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVar(&getTab, "tab", "", "detail tab: info|stats|moves|evolution|all")
	getCmd.Flags().BoolVar(&getShiny, "shiny", false, "show the shiny image URL")
	getCmd.Flags().BoolVar(&getComplete, "complete", false, "also resolve species, evolution, abilities and moves")
}

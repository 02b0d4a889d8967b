package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/catalog"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
)

var (
	listLimit  int
	listOffset int
	listPages  int
	listStore  bool
	listFilter string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Browse the catalog page by page",
	Long: `Load catalog pages in order. Every item on a page is resolved to a full
entry concurrently; the page is shown only if all of them succeed.

--pages loads that many consecutive pages into one de-duplicated list.
--offset starts at an arbitrary position instead (one page only).`,
	Example: `  dex list
  dex list --pages 3 --format csv
  dex list --offset 150 --limit 25
  dex list --filter char
  dex list --pages 2 --store`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listPages < 1 {
			return fmt.Errorf("--pages must be at least 1")
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if listLimit > 0 {
			deps.Config.PageSize = listLimit
		}
		start := time.Now()
		ctx := cmd.Context()

		var (
			entries []model.Entry
			total   int
			hasMore bool
		)

		if listOffset > 0 {
			page, err := deps.Client.ListPage(ctx, deps.Config.PageSize, listOffset)
			if err != nil {
				return err
			}
			refs := make([]string, len(page.Results))
			for i, it := range page.Results {
				refs[i] = it.URL
			}
			entries, err = deps.Client.FetchDetails(ctx, refs)
			if err != nil {
				return err
			}
			entries = catalog.Filter(entries, listFilter)
			total, hasMore = page.Count, page.HasNext
		} else {
			cat := deps.NewCatalog(catalog.Options{})
			for i := 0; i < listPages; i++ {
				if err := cat.LoadNextPage(ctx); err != nil {
					return err
				}
				if !cat.State().HasMore {
					break
				}
			}
			cat.SetLocalFilter(listFilter)
			v := cat.State()
			entries, total, hasMore = v.Entries, v.TotalCount, v.HasMore
		}

		if listStore {
			if err := deps.RequireStore(); err != nil {
				return err
			}
			defer deps.Close()
			if err := deps.Store.PutEntries(entries); err != nil {
				return fmt.Errorf("archiving entries: %w", err)
			}
			deps.Logger.Debug("archived entries", "count", len(entries), "db", deps.Store.Path())
		}

		result := newResult(model.KindEntries, "list", entries, len(entries), start)
		result.Stats.Total = total
		result.Stats.HasMore = hasMore
		if len(entries) == 0 {
			result.Message = "No entries."
		}
		return renderResult(cmd, deps, result, render.Options{})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "page size (default: page_size from config, 50)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "start at this catalog position and load a single page")
	listCmd.Flags().IntVar(&listPages, "pages", 1, "number of consecutive pages to load")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "keep only entries whose name or id contains this text")
	listCmd.Flags().BoolVar(&listStore, "store", false, "also archive the listed entries in the local database")
}

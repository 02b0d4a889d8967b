package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/catalog"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
)

var (
	typeFilter string
	typeDirect bool
)

var typeCmd = &cobra.Command{
	Use:   "type <category>",
	Short: "List every entry of one category",
	Long: `Resolve the whole catalog in one oversized page and keep only the entries
carrying the category. Pagination does not apply to a category listing.

With --direct the API's own category index is used instead: one request
for the index plus detail fetches for at most its first 50 members.

Run 'dex categories' for the 18 valid categories.`,
	Example: `  dex type fire
  dex type dragon --format json
  dex type water --filter 13
  dex type ghost --direct`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: categoryArgs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := model.ParseCategory(args[0])
		if err != nil {
			return err
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		start := time.Now()

		if typeDirect {
			entries, err := deps.Client.FetchByCategory(cmd.Context(), category)
			if err != nil {
				return err
			}
			entries = catalog.Filter(entries, typeFilter)
			result := newResult(model.KindEntries, "type "+string(category)+" --direct", entries, len(entries), start)
			result.Stats.Total = len(entries)
			if len(entries) == 0 {
				result.Message = (&catalog.NoMatchError{Term: string(category)}).Error()
			}
			return renderResult(cmd, deps, result, render.Options{})
		}

		cat := deps.NewCatalog(catalog.Options{})
		if err := cat.SetCategoryFilter(cmd.Context(), category); err != nil {
			return err
		}
		cat.SetLocalFilter(typeFilter)
		v := cat.State()

		result := newResult(model.KindEntries, "type "+string(category), v.Entries, len(v.Entries), start)
		result.Stats.Total = v.TotalCount
		result.Message = v.Message
		return renderResult(cmd, deps, result, render.Options{})
	},
}

func categoryArgs() []string {
	out := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		out[i] = string(c)
	}
	return out
}

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.Flags().StringVar(&typeFilter, "filter", "", "keep only entries whose name or id contains this text")
	typeCmd.Flags().BoolVar(&typeDirect, "direct", false, "use the category index endpoint (first 50 members only)")
}

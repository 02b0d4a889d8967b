package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/catalog"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the whole catalog by id or name",
	Long: `Try an exact lookup by id or name first. If that fails, every catalog
name containing the term is resolved instead. Finding nothing is not an
error.`,
	Example: `  dex search pikachu
  dex search 25
  dex search chu --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := strings.Join(args, " ")
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		start := time.Now()

		cat := deps.NewCatalog(catalog.Options{SearchLimit: searchLimit})
		if err := cat.Search(cmd.Context(), term); err != nil {
			return err
		}
		v := cat.State()

		result := newResult(model.KindEntries, "search "+term, v.Entries, len(v.Entries), start)
		result.Message = v.Message
		return renderResult(cmd, deps, result, render.Options{})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "resolve at most this many substring matches (0: all)")
}

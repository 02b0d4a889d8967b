package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
	"github.com/derickschaefer/dex/internal/util"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"types"},
	Short:   "List the 18 entry categories and their display colours",
	Example: `  dex categories
  dex categories --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		start := time.Now()
		table := model.Table{Headers: []string{"CATEGORY", "LABEL", "COLOUR"}}
		for _, c := range model.Categories {
			table.Rows = append(table.Rows, []string{string(c), util.Humanize(string(c)), c.Color()})
		}
		return renderResult(cmd, deps, newResult(model.KindTable, "categories", table, len(table.Rows), start), render.Options{})
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

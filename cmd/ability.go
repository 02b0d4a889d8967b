package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
	"github.com/derickschaefer/dex/internal/util"
)

var abilityCmd = &cobra.Command{
	Use:   "ability <name|id>",
	Short: "Show what an ability does",
	Example: `  dex ability static
  dex ability overgrow --lang en`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		start := time.Now()
		name := util.NormalizeIdentifier(args[0])

		a, err := deps.Client.FetchAbility(cmd.Context(), deps.Client.AbilityRef(name))
		if err != nil {
			return err
		}
		return renderResult(cmd, deps, newResult(model.KindAbility, "ability "+name, a, 1, start), render.Options{})
	},
}

func init() {
	rootCmd.AddCommand(abilityCmd)
}

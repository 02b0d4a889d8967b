package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/evolution"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
	"github.com/derickschaefer/dex/internal/util"
)

var evolutionStages bool

var evolutionCmd = &cobra.Command{
	Use:     "evolution <id|name>",
	Aliases: []string{"evo"},
	Short:   "Show the evolution chain an entry belongs to",
	Long: `Show every species of the entry's evolution chain with the condition
that triggers each evolution.

--stages groups the chain by stage instead: the base species first, then
everything that evolves from it, and so on.`,
	Example: `  dex evolution charmander
  dex evolution eevee --stages
  dex evo 133 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		start := time.Now()
		ctx := cmd.Context()

		id, err := resolveID(ctx, deps, args[0])
		if err != nil {
			return err
		}
		sp, err := deps.Client.FetchSpecies(ctx, id)
		if err != nil {
			return err
		}
		if sp.EvolutionChainURL == "" {
			return fmt.Errorf("%s has no evolution chain", sp.Name)
		}
		chain, err := deps.Client.FetchEvolutionChain(ctx, sp.EvolutionChainURL)
		if err != nil {
			return err
		}

		command := "evolution " + args[0]
		if !evolutionStages {
			return renderResult(cmd, deps, newResult(model.KindEvolution, command, chain, len(evolution.Flatten(*chain)), start), render.Options{})
		}

		stages, err := evolution.Stages(*chain)
		if err != nil {
			return err
		}
		table := model.Table{Headers: []string{"STAGE", "SPECIES"}}
		for i, names := range stages {
			pretty := make([]string, len(names))
			for j, n := range names {
				pretty[j] = util.Humanize(n)
			}
			table.Rows = append(table.Rows, []string{strconv.Itoa(i + 1), strings.Join(pretty, ", ")})
		}
		return renderResult(cmd, deps, newResult(model.KindTable, command, table, len(stages), start), render.Options{})
	},
}

func init() {
	rootCmd.AddCommand(evolutionCmd)
	evolutionCmd.Flags().BoolVar(&evolutionStages, "stages", false, "group the chain by evolution stage")
}

package cmd

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/app"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
	"github.com/derickschaefer/dex/internal/util"
)

var speciesStore bool

var speciesCmd = &cobra.Command{
	Use:   "species <id|name>",
	Short: "Show species metadata: genus, description, capture and gender rates",
	Example: `  dex species 25
  dex species pikachu --lang en
  dex species mew --store`,
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

		if speciesStore {
			if err := deps.RequireStore(); err != nil {
				return err
			}
			defer deps.Close()
			if err := deps.Store.PutSpecies(*sp); err != nil {
				return err
			}
		}
		return renderResult(cmd, deps, newResult(model.KindSpecies, "species "+args[0], sp, 1, start), render.Options{})
	},
}

// resolveID returns the numeric id for an id or name. Names cost one
// lookup request.
func resolveID(ctx context.Context, deps *app.Deps, ident string) (int, error) {
	ident = util.NormalizeIdentifier(ident)
	if id, err := strconv.Atoi(ident); err == nil && id > 0 {
		return id, nil
	}
	e, err := deps.Client.FetchByIdentifier(ctx, ident)
	if err != nil {
		return 0, err
	}
	return e.ID, nil
}

func init() {
	rootCmd.AddCommand(speciesCmd)
	speciesCmd.Flags().BoolVar(&speciesStore, "store", false, "also archive the species record in the local database")
}

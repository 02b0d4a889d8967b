package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
	"github.com/derickschaefer/dex/internal/util"
)

var moveCmd = &cobra.Command{
	Use:   "move <name|id...>",
	Short: "Show move details: type, class, power, accuracy and effect",
	Example: `  dex move thunderbolt
  dex move tackle ember water-gun --format csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		start := time.Now()
		names := util.NormalizeIdentifiers(args)

		moves, warnings, err := batchFetch(cmd.Context(), deps, names, func(ctx context.Context, name string) (*model.Move, error) {
			return deps.Client.FetchMove(ctx, deps.Client.MoveRef(name))
		})

		if err != nil {
			return err
		}

		var result *model.Result
		if len(names) == 1 && len(moves) == 1 {
			result = newResult(model.KindMove, "move "+names[0], moves[0], 1, start)
		} else {
			list := make([]model.Move, len(moves))
			for i, m := range moves {
				list[i] = *m
			}
			result = newResult(model.KindMove, "move", list, len(list), start)
		}
		result.Warnings = warnings
		return renderResult(cmd, deps, result, render.Options{})
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

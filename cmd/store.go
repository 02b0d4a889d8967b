package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/pipeline"
	"github.com/derickschaefer/dex/internal/render"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Archive entries in the local database and read them back",
	Long: `Commands for the local archive.

The archive only holds what you put there: 'dex store put', 'dex store import'
and 'dex list --store' write to it. Live commands never read from it.
Use 'dex cache stats' for bucket-level storage stats.`,
}

// ─── store put ────────────────────────────────────────────────────────────────

var storePutCmd = &cobra.Command{
	Use:   "put <id|name...>",
	Short: "Fetch entries and archive them",
	Example: `  dex store put pikachu raichu
  dex search chu --format jsonl | dex store put -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := readIdentifiers(cmd, args)
		if err != nil {
			return err
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}

		fetched, warnings, err := batchFetch(cmd.Context(), deps, ids, deps.Client.FetchByIdentifier)
		if err != nil {
			return err
		}
		entries := make([]model.Entry, len(fetched))
		for i, e := range fetched {
			entries[i] = *e
		}

		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()
		if err := deps.Store.PutEntries(entries); err != nil {
			return fmt.Errorf("archiving entries: %w", err)
		}

		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠  %s\n", w)
		}
		if !deps.Config.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Archived %d of %d entries in %s\n", len(entries), len(ids), deps.Store.Path())
		}
		return nil
	},
}

// ─── store import ─────────────────────────────────────────────────────────────

var storeImportCmd = &cobra.Command{
	Use:   "import [file.jsonl]",
	Short: "Archive JSONL entry records from a file or stdin",
	Long: `Read entry records, one JSON object per line, and archive them without
any network request. Every record is validated first; one invalid record
aborts the whole import.`,
	Example: `  dex list --pages 4 --format jsonl > gen1.jsonl
  dex store import gen1.jsonl
  dex type fire --format jsonl | dex store import`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		entries, err := pipeline.ReadEntries(in)
		if err != nil {
			return err
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()
		if err := deps.Store.PutEntries(entries); err != nil {
			return fmt.Errorf("archiving entries: %w", err)
		}
		if !deps.Config.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d entries into %s\n", len(entries), deps.Store.Path())
		}
		return nil
	},
}

// ─── store list ───────────────────────────────────────────────────────────────

var storeListType string

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived entries",
	Example: `  dex store list
  dex store list --type water --format csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var category model.Category
		if storeListType != "" {
			c, err := model.ParseCategory(storeListType)
			if err != nil {
				return err
			}
			category = c
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()
		start := time.Now()

		entries, err := deps.Store.ListEntries(category)
		if err != nil {
			return fmt.Errorf("reading store: %w", err)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No entries in local database.")
			fmt.Fprintln(cmd.OutOrStdout(), "  Use: dex store put <id|name...>")
			return nil
		}

		format := resolveFormat(deps.Config.Format)
		if format == render.FormatTable && globalFlags.Out == "" {
			printSimpleTable(cmd.OutOrStdout(), []string{"ID", "NAME", "TYPES", "TOTAL", "ARCHIVED AT"}, func(add func(...string)) {
				for _, e := range entries {
					fetchedAt := ""
					if !e.FetchedAt.IsZero() {
						fetchedAt = e.FetchedAt.Format("2006-01-02 15:04")
					}
					add(fmt.Sprintf("%d", e.ID), e.Name, e.CategoryNames(), fmt.Sprintf("%d", e.TotalStats()), fetchedAt)
				}
			})
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d entries  •  %s\n", len(entries), deps.Store.Path())
			return nil
		}

		// Non-table formats: use the standard result envelope
		result := newResult(model.KindEntries, "store list", entries, len(entries), start)
		result.Stats.Archived = true
		return renderResult(cmd, deps, result, render.Options{})
	},
}

// ─── store get ────────────────────────────────────────────────────────────────

var storeGetTab string

var storeGetCmd = &cobra.Command{
	Use:   "get <id|name>",
	Short: "Read one archived entry",
	Example: `  dex store get pikachu
  dex store get 25 --tab stats`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()
		start := time.Now()

		e, ok, err := deps.Store.GetEntry(args[0])
		if err != nil {
			return fmt.Errorf("reading store: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s is not archived\n\n  Use: dex store put %s", args[0], args[0])
		}

		var data interface{} = &e
		kind := model.KindEntry
		if sp, ok, _ := deps.Store.GetSpecies(e.ID); ok {
			data = &model.Complete{Entry: e, Species: &sp}
			kind = model.KindComplete
		}
		result := newResult(kind, "store get "+args[0], data, 1, start)
		result.Stats.Archived = true
		return renderResult(cmd, deps, result, render.Options{Tab: storeGetTab})
	},
}

// ─── store delete ─────────────────────────────────────────────────────────────

var storeDeleteCmd = &cobra.Command{
	Use:     "delete <id|name...>",
	Aliases: []string{"rm"},
	Short:   "Remove archived entries",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		for _, ref := range args {
			ok, err := deps.Store.DeleteEntry(ref)
			if err != nil {
				return fmt.Errorf("deleting %s: %w", ref, err)
			}
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠  %s is not archived\n", ref)
				continue
			}
			if !deps.Config.Quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", ref)
			}
		}
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storePutCmd)
	storeCmd.AddCommand(storeImportCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeDeleteCmd)

	storeListCmd.Flags().StringVar(&storeListType, "type", "", "only entries of this category")
	storeGetCmd.Flags().StringVar(&storeGetTab, "tab", "", "detail tab: info|stats|moves|evolution|all")
}

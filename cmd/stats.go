package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/analyze"
	"github.com/derickschaefer/dex/internal/chart"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/pipeline"
	"github.com/derickschaefer/dex/internal/render"
	"github.com/derickschaefer/dex/internal/transform"
)

var (
	statsTrend   string
	statsChart   string
	statsStat    string
	statsArchive bool
	statsType    string
	statsSort    string
	statsAsc     bool
	statsTop     int
	statsMin     float64
	statsMax     float64
	statsNorm    string
)

var statsCmd = &cobra.Command{
	Use:   "stats [id|name...]",
	Short: "Summarise and chart the base stats of a set of entries",
	Long: `Compute per-stat summaries (mean, spread, quartiles, extremes), type
counts and per-entry profiles for a set of entries.

Entries come from the identifiers on the command line, from JSONL entry
records on stdin ("-" or a pipe), or from the local archive (--archive).

--min/--max keep entries whose --stat lies in range, --sort orders them
(highest first unless --asc) and --top keeps the first N.

Charts are drawn in table format only:
  bars   one bar per entry for --stat (a single entry shows its six stats)
  plot   --stat across the set, in input order (--normalize zscore|minmax)
  none   no chart`,
	Example: `  dex stats pikachu
  dex stats bulbasaur ivysaur venusaur --chart plot
  dex list --pages 3 --format jsonl | dex stats - --trend linear
  dex stats --archive --type fire --stat speed
  dex type dragon --format jsonl | dex stats - --sort total --top 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch statsChart {
		case "bars", "plot", "none":
		default:
			return fmt.Errorf("unknown --chart %q (bars|plot|none)", statsChart)
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		start := time.Now()

		var entries []model.Entry
		var warnings []string
		switch {
		case statsArchive:
			var category model.Category
			if statsType != "" {
				if category, err = model.ParseCategory(statsType); err != nil {
					return err
				}
			}
			if err := deps.RequireStore(); err != nil {
				return err
			}
			defer deps.Close()
			if entries, err = deps.Store.ListEntries(category); err != nil {
				return fmt.Errorf("reading archive: %w", err)
			}
			if len(entries) == 0 {
				return fmt.Errorf("no archived entries\n\n  Use: dex store put <id|name...>")
			}
		case (len(args) == 1 && args[0] == "-") || (len(args) == 0 && !pipeline.IsTTY()):
			if entries, err = pipeline.ReadEntries(cmd.InOrStdin()); err != nil {
				return err
			}
		default:
			ids, err := readIdentifiers(cmd, args)
			if err != nil {
				return err
			}
			fetched, warns, err := batchFetch(cmd.Context(), deps, ids, deps.Client.FetchByIdentifier)
			if err != nil {
				return err
			}
			for _, e := range fetched {
				entries = append(entries, *e)
			}
			warnings = warns
		}

		if entries, err = shapeEntries(cmd, entries); err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("no entries left after --min/--max")
		}

		report, err := analyze.NewReport(entries, analyze.TrendMethod(statsTrend))
		if err != nil {
			return err
		}
		result := newResult(model.KindSummary, "stats", report, len(entries), start)
		result.Warnings = warnings
		result.Stats.Archived = statsArchive
		if err := renderResult(cmd, deps, result, render.Options{}); err != nil {
			return err
		}

		if resolveFormat(deps.Config.Format) != render.FormatTable || statsChart == "none" || globalFlags.Out != "" {
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w)
		if len(entries) == 1 && statsChart == "bars" {
			return chart.StatBars(w, entries[0], chart.BarOptions{})
		}
		points, err := chart.EntryPoints(entries, statsStat)
		if err != nil {
			return err
		}
		title := model.StatLabel(statsStat)
		if statsStat == analyze.TotalStat {
			title = "Total"
		}
		if statsChart == "plot" {
			if statsNorm != "" {
				if points, err = normalizePoints(points); err != nil {
					return err
				}
				title += " (" + statsNorm + ")"
			}
			return chart.Plot(w, title, points, chart.PlotOptions{})
		}
		return chart.Bar(w, title, points, chart.BarOptions{MaxBars: 40})
	},
}

// shapeEntries applies the --min/--max, --sort and --top flags in that order.
func shapeEntries(cmd *cobra.Command, entries []model.Entry) ([]model.Entry, error) {
	var err error
	minSet, maxSet := cmd.Flags().Changed("min"), cmd.Flags().Changed("max")
	if minSet || maxSet {
		opts := transform.RangeOptions{Stat: statsStat, Min: transform.NoBound, Max: transform.NoBound, DropMissing: true}
		if minSet {
			opts.Min = statsMin
		}
		if maxSet {
			opts.Max = statsMax
		}
		if entries, err = transform.Range(entries, opts); err != nil {
			return nil, err
		}
	}
	if statsSort != "" {
		if entries, err = transform.Sort(entries, statsSort, statsAsc); err != nil {
			return nil, err
		}
	}
	return transform.Top(entries, statsTop), nil
}

func normalizePoints(points []chart.Point) ([]chart.Point, error) {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.Value
	}
	scaled, err := transform.Normalize(vals, transform.NormalizeMethod(statsNorm))
	if err != nil {
		return nil, err
	}
	out := make([]chart.Point, len(points))
	for i, p := range points {
		out[i] = chart.Point{Label: p.Label, Value: scaled[i]}
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsTrend, "trend", "", "fit total stats against id: linear|theil-sen")
	statsCmd.Flags().StringVar(&statsChart, "chart", "bars", "chart style: bars|plot|none")
	statsCmd.Flags().StringVar(&statsStat, "stat", analyze.TotalStat, "stat to chart across entries (hp, attack, ..., total)")
	statsCmd.Flags().BoolVar(&statsArchive, "archive", false, "read entries from the local archive")
	statsCmd.Flags().StringVar(&statsType, "type", "", "with --archive, only entries of this category")
	statsCmd.Flags().StringVar(&statsSort, "sort", "", "order entries by this stat, highest first")
	statsCmd.Flags().BoolVar(&statsAsc, "asc", false, "with --sort, lowest first")
	statsCmd.Flags().IntVar(&statsTop, "top", 0, "keep only the first N entries (after --sort)")
	statsCmd.Flags().Float64Var(&statsMin, "min", 0, "keep entries whose --stat is at least this value")
	statsCmd.Flags().Float64Var(&statsMax, "max", 0, "keep entries whose --stat is at most this value")
	statsCmd.Flags().StringVar(&statsNorm, "normalize", "", "with --chart plot, rescale values: zscore|minmax")
}

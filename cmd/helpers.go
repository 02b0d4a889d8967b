package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/derickschaefer/dex/internal/app"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/pipeline"
	"github.com/derickschaefer/dex/internal/render"
	"github.com/derickschaefer/dex/internal/util"
)

// resolveFormat returns the effective format string, falling back to "table".
func resolveFormat(cfgFormat string) string {
	if globalFlags.Format != "" {
		return globalFlags.Format
	}
	if cfgFormat != "" {
		return cfgFormat
	}
	return render.FormatTable
}

// outputWriter returns the destination for command output: the file named
// by --out, or def. The returned close func is always safe to call.
func outputWriter(def io.Writer) (io.Writer, func() error, error) {
	if globalFlags.Out == "" {
		return def, func() error { return nil }, nil
	}
	f, err := os.Create(globalFlags.Out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// renderResult writes result in the effective format, followed by the
// message and footer unless --quiet is set.
func renderResult(cmd *cobra.Command, deps *app.Deps, result *model.Result, opts render.Options) error {
	if opts.Language == "" {
		opts.Language = deps.Config.Language
	}
	w, closeOut, err := outputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	format := resolveFormat(deps.Config.Format)
	if err := render.RenderWith(w, result, format, opts); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	if !deps.Config.Quiet {
		render.PrintFooter(cmd.ErrOrStderr(), result, deps.Config.Verbose)
	}
	return nil
}

// newResult wraps data in a Result envelope stamped with the elapsed time
// since start.
func newResult(kind, command string, data interface{}, items int, start time.Time) *model.Result {
	return &model.Result{
		Kind:        kind,
		GeneratedAt: time.Now(),
		Command:     command,
		Data:        data,
		Stats: model.ResultStats{
			DurationMs: time.Since(start).Milliseconds(),
			Items:      items,
		},
	}
}

// readIdentifiers returns the identifiers named on the command line. A sole
// "-" argument, or no arguments with piped stdin, reads them from stdin.
func readIdentifiers(cmd *cobra.Command, args []string) ([]string, error) {
	if (len(args) == 1 && args[0] == "-") || (len(args) == 0 && !pipeline.IsTTY()) {
		ids, err := pipeline.ReadIdentifiers(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("no identifiers read from stdin")
		}
		return ids, nil
	}
	ids := util.NormalizeIdentifiers(args)
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one id or name is required")
	}
	return ids, nil
}

// batchFetch resolves ids concurrently, bounded by the configured
// concurrency. Results keep the order of ids; per-item failures become
// warnings instead of failing the batch. The batch fails only when no id
// resolves, with every per-item failure joined into the error.
func batchFetch[T any](ctx context.Context, deps *app.Deps, ids []string, fetch func(context.Context, string) (T, error)) ([]T, []string, error) {
	type result struct {
		val T
		err error
	}

	results := make([]result, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deps.Config.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			v, err := fetch(gctx, id)
			results[i] = result{val: v, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var out []T
	var errs util.MultiError
	var warnings []string
	for i, r := range results {
		if r.err != nil {
			err := fmt.Errorf("%s: %w", ids[i], r.err)
			errs.Add(err)
			warnings = append(warnings, err.Error())
			continue
		}
		out = append(out, r.val)
	}
	if len(out) == 0 && len(ids) > 0 {
		return nil, warnings, fmt.Errorf("nothing resolved: %w", errs.Err())
	}
	if len(errs.Errors) > 0 {
		deps.Logger.Debug("batch fetch had failures", "failed", len(errs.Errors))
	}
	return out, warnings, nil
}

// printSimpleTable renders a simple table with headers using tablewriter.
// The add callback is called with row values as variadic strings.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// parseIntID parses a string as a positive integer ID, with a descriptive label for errors.
func parseIntID(s, label string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive integer", label, s)
	}
	return id, nil
}

func humanBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/catalog"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive catalog session",
	Long: `Start an interactive session over one catalog. The first page is loaded
on start; each line read from stdin is one command:

  more            load the next page (browse mode only)
  type <c>        keep only entries of category c (whole catalog)
  type -          drop the category filter and browse again
  search <term>   exact lookup, then substring search over every name
  search          leave search and restore the previous listing
  filter <text>   narrow the shown entries by name or id (no request)
  filter          clear the local filter
  get <id|name>   show one entry in detail
  reset           back to the first browse page with no filters
  state           show the current mode and counts
  quit            end the session`,
	Example: `  dex browse
  printf 'type fire\nfilter char\nquit\n' | dex browse`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		cat := deps.NewCatalog(catalog.Options{
			OnChange: func(v catalog.View) {
				slog.Debug("catalog state", "mode", v.Mode.String(), "loading", v.Loading,
					"entries", len(v.Entries), "generation", v.Generation)
			},
		})
		s := &browseSession{
			cat:    cat,
			lookup: catalog.NewLookup(deps.Client),
			out:    cmd.OutOrStdout(),
			format: resolveFormat(deps.Config.Format),
			opts:   render.Options{Language: deps.Config.Language},
			quiet:  deps.Config.Quiet,
		}
		return s.run(cmd.Context(), cmd.InOrStdin())
	},
}

// browseSession is one REPL over a catalog.
type browseSession struct {
	cat    *catalog.Catalog
	lookup *catalog.Lookup
	out    io.Writer
	format string
	opts   render.Options
	quiet  bool
}

var errQuit = errors.New("quit")

func (s *browseSession) run(ctx context.Context, in io.Reader) error {
	s.report(s.cat.LoadNextPage(ctx))
	s.show()

	scanner := bufio.NewScanner(in)
	for {
		s.prompt()
		if !scanner.Scan() {
			break
		}
		err := s.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
	}
	return scanner.Err()
}

func (s *browseSession) prompt() {
	if !s.quiet {
		fmt.Fprint(s.out, "dex> ")
	}
}

// exec runs one command line. Command failures are printed, not returned;
// only errQuit ends the session.
func (s *browseSession) exec(ctx context.Context, line string) error {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "":
		return nil
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprintln(s.out, "commands: more | type <c> | type - | search [term] | filter [text] | get <id> | reset | state | quit")
		return nil
	case "state":
		s.status(s.cat.State())
		return nil
	case "more", "next":
		s.report(s.cat.LoadNextPage(ctx))
	case "type":
		if arg == "" || arg == "-" {
			s.report(s.cat.SetCategoryFilter(ctx, ""))
			break
		}
		c, err := model.ParseCategory(arg)
		if err != nil {
			s.report(err)
			return nil
		}
		s.report(s.cat.SetCategoryFilter(ctx, c))
	case "search":
		s.report(s.cat.Search(ctx, arg))
	case "filter":
		s.cat.SetLocalFilter(arg)
	case "reset":
		s.report(s.cat.Reset(ctx))
	case "get":
		s.get(ctx, arg)
		return nil
	default:
		fmt.Fprintf(s.out, "unknown command %q (try help)\n", verb)
		return nil
	}
	s.show()
	return nil
}

func (s *browseSession) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrNotBrowsing):
		fmt.Fprintln(s.out, "more: only available while browsing (use 'type -' or 'reset')")
	default:
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}

func (s *browseSession) get(ctx context.Context, ident string) {
	start := time.Now()
	e, err := s.lookup.Find(ctx, ident)
	if err != nil {
		s.report(err)
		return
	}
	if e == nil {
		return
	}
	if err := render.RenderWith(s.out, newResult(model.KindEntry, "get "+ident, e, 1, start), s.format, s.opts); err != nil {
		s.report(err)
	}
}

// show renders the current collection followed by a status line.
func (s *browseSession) show() {
	v := s.cat.State()
	result := &model.Result{
		Kind:        model.KindEntries,
		GeneratedAt: time.Now(),
		Command:     "browse",
		Data:        v.Entries,
		Message:     v.Message,
		Stats:       model.ResultStats{Items: len(v.Entries), Total: v.TotalCount, HasMore: v.HasMore},
	}
	if v.Err == "" {
		if err := render.RenderWith(s.out, result, s.format, s.opts); err != nil {
			s.report(err)
		}
	}
	s.status(v)
}

func (s *browseSession) status(v catalog.View) {
	if s.quiet {
		return
	}
	line := fmt.Sprintf("[%s • %d shown", v.Mode, len(v.Entries))
	if v.LocalTerm != "" {
		line += fmt.Sprintf(" • filter %q", v.LocalTerm)
	}
	if v.TotalCount > 0 {
		line += fmt.Sprintf(" • %d in catalog", v.TotalCount)
	}
	if v.HasMore {
		line += " • more available"
	}
	fmt.Fprintln(s.out, line+"]")
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

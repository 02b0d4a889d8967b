// Package render converts Result values into human-readable or machine-parseable
// output. Each format is a separate function; RenderWith dispatches on the
// format string.
//
// Table, CSV, TSV and Markdown share one tabulation step: every result kind
// is reduced to one or more titled sections of headers and rows.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/derickschaefer/dex/internal/analyze"
	"github.com/derickschaefer/dex/internal/evolution"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/pipeline"
	"github.com/derickschaefer/dex/internal/util"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
	FormatYAML  = "yaml"
)

// Formats lists every supported format.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD, FormatYAML}

// ValidFormat reports whether f is a supported format.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Detail tabs for entry and complete results.
const (
	TabInfo      = "info"
	TabStats     = "stats"
	TabMoves     = "moves"
	TabEvolution = "evolution"
	TabAll       = "all"
)

// Tabs lists every detail tab.
var Tabs = []string{TabInfo, TabStats, TabMoves, TabEvolution, TabAll}

// MoveListLimit is how many moves the moves tab shows.
const MoveListLimit = 20

// Options tune presentation. The zero value shows every tab in English
// with the regular images.
type Options struct {
	Language string
	Tab      string
	Shiny    bool
}

func (o Options) lang() string {
	if o.Language == "" {
		return "en"
	}
	return o.Language
}

func (o Options) shows(tab string) bool {
	return o.Tab == "" || o.Tab == TabAll || o.Tab == tab
}

// RenderWith writes result to w in the specified format.
func RenderWith(w io.Writer, result *model.Result, format string, opts Options) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatYAML:
		return renderYAML(w, result)
	case FormatCSV:
		return renderDelimited(w, result, ',', opts)
	case FormatTSV:
		return renderDelimited(w, result, '\t', opts)
	case FormatMD:
		return renderMarkdown(w, result, opts)
	default:
		return renderTable(w, result, opts)
	}
}

// ─── JSON / YAML ──────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func renderYAML(w io.Writer, result *model.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return err
	}
	return enc.Close()
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

// renderJSONL writes entry collections one entry per line, the format
// `dex store import` and `dex stats -` read back. Other kinds are written as
// a single line holding the payload.
func renderJSONL(w io.Writer, result *model.Result) error {
	switch data := result.Data.(type) {
	case []model.Entry:
		return pipeline.WriteJSONL(w, data)
	case *model.Entry:
		return pipeline.WriteJSONL(w, []model.Entry{*data})
	case []model.Move:
		enc := json.NewEncoder(w)
		for _, m := range data {
			if err := enc.Encode(m); err != nil {
				return err
			}
		}
		return nil
	default:
		return json.NewEncoder(w).Encode(result.Data)
	}
}

// ─── Tabulation ───────────────────────────────────────────────────────────────

type section struct {
	title   string
	headers []string
	rows    [][]string
	note    string
}

func fields(title string, rows ...[]string) section {
	return section{title: title, headers: []string{"FIELD", "VALUE"}, rows: rows}
}

// tabulate reduces result to sections. ok is false for kinds with no
// tabular form.
func tabulate(result *model.Result, opts Options) ([]section, bool) {
	switch data := result.Data.(type) {
	case []model.Entry:
		return []section{entriesSection(data)}, true
	case *model.Entry:
		return entrySections(model.Complete{Entry: *data}, opts), true
	case *model.Complete:
		return entrySections(*data, opts), true
	case *model.Species:
		return []section{speciesSection(data, opts)}, true
	case *model.EvolutionChain:
		return []section{evolutionSection(*data)}, true
	case *model.Ability:
		return []section{abilitySection(data, opts)}, true
	case *model.Move:
		return []section{moveSection(data, opts)}, true
	case []model.Move:
		return []section{movesSection(data, len(data))}, true
	case *analyze.Report:
		return reportSections(data), true
	case model.Table:
		return []section{{headers: data.Headers, rows: data.Rows}}, true
	case *model.Table:
		return []section{{headers: data.Headers, rows: data.Rows}}, true
	}
	return nil, false
}

func entriesSection(entries []model.Entry) section {
	headers := []string{"ID", "NAME", "TYPES"}
	for _, s := range model.StatOrder {
		headers = append(headers, model.StatShortLabel(s))
	}
	headers = append(headers, "TOTAL")

	s := section{headers: headers}
	for _, e := range entries {
		row := []string{strconv.Itoa(e.ID), e.Name, e.CategoryNames()}
		for _, st := range e.Stats {
			row = append(row, strconv.Itoa(st.Base))
		}
		row = append(row, strconv.Itoa(e.TotalStats()))
		s.rows = append(s.rows, row)
	}
	return s
}

func entrySections(c model.Complete, opts Options) []section {
	var out []section
	if opts.shows(TabInfo) {
		out = append(out, infoSection(c, opts))
	}
	if opts.shows(TabStats) {
		out = append(out, statsSection(c.Entry))
	}
	if opts.shows(TabMoves) {
		if len(c.Moves) > 0 {
			out = append(out, movesSection(c.Moves, len(c.Entry.Moves)))
		} else {
			out = append(out, moveRefsSection(c.Entry.Moves))
		}
	}
	if opts.shows(TabEvolution) {
		switch {
		case c.Evolution != nil:
			out = append(out, evolutionSection(*c.Evolution))
		case c.Species != nil || opts.Tab == TabEvolution:
			out = append(out, section{
				title:   "Evolution",
				headers: []string{"STAGE", "SPECIES", "FROM", "CONDITION"},
				note:    "No evolution data.",
			})
		}
	}
	return out
}

func infoSection(c model.Complete, opts Options) section {
	e := c.Entry
	s := fields(fmt.Sprintf("#%d %s", e.ID, util.Humanize(e.Name)),
		[]string{"ID", strconv.Itoa(e.ID)},
		[]string{"Name", e.Name},
		[]string{"Types", e.CategoryNames()},
		[]string{"Height", util.FormatTenths(e.Height, "m")},
		[]string{"Weight", util.FormatTenths(e.Weight, "kg")},
	)
	if e.BaseExperience != nil {
		s.rows = append(s.rows, []string{"Base Experience", strconv.Itoa(*e.BaseExperience)})
	}
	var abilities []string
	for _, a := range e.Abilities {
		name := util.Humanize(a.Name)
		if a.Hidden {
			name += " (hidden)"
		}
		abilities = append(abilities, name)
	}
	s.rows = append(s.rows, []string{"Abilities", strings.Join(abilities, ", ")})
	if img := e.Images.Primary(opts.Shiny); img != "" {
		s.rows = append(s.rows, []string{"Image", img})
	}
	if sp := c.Species; sp != nil {
		s.rows = append(s.rows,
			[]string{"Genus", sp.Genus(opts.lang())},
			[]string{"Status", sp.Status()},
		)
		if d := sp.Description(opts.lang()); d != "" {
			s.rows = append(s.rows, []string{"Description", d})
		}
	}
	for _, a := range c.Abilities {
		if eff := a.ShortEffect(opts.lang()); eff != "" {
			s.rows = append(s.rows, []string{"  " + util.Humanize(a.Name), eff})
		}
	}
	return s
}

func statsSection(e model.Entry) section {
	s := section{title: "Stats", headers: []string{"STAT", "BASE", "BAR", "TIER"}}
	for _, st := range e.Stats {
		s.rows = append(s.rows, []string{
			model.StatLabel(st.Name),
			strconv.Itoa(st.Base),
			statBar(st.Base, 20),
			model.StatTier(st.Base),
		})
	}
	s.rows = append(s.rows, []string{"Total", strconv.Itoa(e.TotalStats()), "", ""})
	return s
}

// statBar draws base/255 of width cells, capped at width.
func statBar(base, width int) string {
	n := int(math.Round(math.Min(float64(base)/model.MaxStat, 1) * float64(width)))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func learnedLabel(level int, method string) string {
	if level > 0 {
		return fmt.Sprintf("Level %d", level)
	}
	return util.Humanize(method)
}

func moveRefsSection(refs []model.MoveRef) section {
	s := section{title: "Moves", headers: []string{"MOVE", "LEARNED"}}
	for i, m := range refs {
		if i == MoveListLimit {
			break
		}
		l := m.FirstLearn()
		s.rows = append(s.rows, []string{util.Humanize(m.Name), learnedLabel(l.Level, l.Method)})
	}
	if len(refs) > MoveListLimit {
		s.note = fmt.Sprintf("… and %d more moves", len(refs)-MoveListLimit)
	}
	return s
}

func movesSection(moves []model.Move, total int) section {
	s := section{title: "Moves", headers: []string{"MOVE", "TYPE", "CLASS", "POWER", "ACC", "PP", "LEARNED"}}
	for _, m := range moves {
		s.rows = append(s.rows, []string{
			util.Humanize(m.Name),
			string(m.Category),
			m.DamageClass,
			optInt(m.Power),
			optInt(m.Accuracy),
			strconv.Itoa(m.PP),
			learnedLabel(m.LearnedAt, m.LearnMethod),
		})
	}
	if total > len(moves) {
		s.note = fmt.Sprintf("… and %d more moves", total-len(moves))
	}
	return s
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func evolutionSection(chain model.EvolutionChain) section {
	s := section{title: "Evolution", headers: []string{"STAGE", "SPECIES", "FROM", "CONDITION"}}
	for _, step := range evolution.Flatten(chain) {
		name := util.Humanize(step.Species)
		if step.IsBaby {
			name += " (baby)"
		}
		s.rows = append(s.rows, []string{
			strconv.Itoa(step.Depth + 1),
			name,
			util.Humanize(step.From),
			step.Condition,
		})
	}
	return s
}

func speciesSection(sp *model.Species, opts Options) section {
	s := fields(util.Humanize(sp.Name),
		[]string{"ID", strconv.Itoa(sp.ID)},
		[]string{"Genus", sp.Genus(opts.lang())},
		[]string{"Status", sp.Status()},
		[]string{"Capture Rate", strconv.Itoa(sp.CaptureRate)},
		[]string{"Base Happiness", strconv.Itoa(sp.BaseHappiness)},
		[]string{"Hatch Counter", strconv.Itoa(sp.HatchCounter)},
		[]string{"Gender", genderLabel(sp.GenderRate)},
	)
	if d := sp.Description(opts.lang()); d != "" {
		s.rows = append(s.rows, []string{"Description", d})
	}
	return s
}

// genderLabel renders the eighths-female rate; -1 is genderless.
func genderLabel(rate int) string {
	if rate < 0 {
		return "genderless"
	}
	female := float64(rate) / 8 * 100
	return fmt.Sprintf("%.1f%% female, %.1f%% male", female, 100-female)
}

func abilitySection(a *model.Ability, opts Options) section {
	return fields(util.Humanize(a.Name),
		[]string{"ID", strconv.Itoa(a.ID)},
		[]string{"Main Series", strconv.FormatBool(a.IsMainSeries)},
		[]string{"Effect", a.ShortEffect(opts.lang())},
	)
}

func moveSection(m *model.Move, opts Options) section {
	return fields(util.Humanize(m.Name),
		[]string{"ID", strconv.Itoa(m.ID)},
		[]string{"Type", string(m.Category)},
		[]string{"Class", m.DamageClass},
		[]string{"Power", optInt(m.Power)},
		[]string{"Accuracy", optInt(m.Accuracy)},
		[]string{"PP", strconv.Itoa(m.PP)},
		[]string{"Priority", strconv.Itoa(m.Priority)},
		[]string{"Effect", m.ShortEffect(opts.lang())},
	)
}

func reportSections(r *analyze.Report) []section {
	profiles := section{title: "Entries", headers: []string{"ID", "NAME", "TYPES", "TOTAL", "HIGHEST"}}
	for _, p := range r.Profiles {
		profiles.rows = append(profiles.rows, []string{
			strconv.Itoa(p.ID), p.Name, p.Categories, strconv.Itoa(p.Total),
			fmt.Sprintf("%s (%d)", model.StatLabel(p.Highest), p.HighestValue),
		})
	}

	sums := section{title: "Summary", headers: []string{"STAT", "N", "MEAN", "STD", "MIN", "MEDIAN", "MAX", "WEAKEST", "STRONGEST"}}
	for _, s := range r.Summaries {
		sums.rows = append(sums.rows, []string{
			s.Label, strconv.Itoa(s.Count), formatValue(s.Mean), formatValue(s.Std),
			formatValue(s.Min), formatValue(s.Median), formatValue(s.Max), s.MinName, s.MaxName,
		})
	}

	cats := section{title: "Types", headers: []string{"TYPE", "COUNT", "PCT"}}
	for _, c := range r.Categories {
		cats.rows = append(cats.rows, []string{string(c.Category), strconv.Itoa(c.Count), fmt.Sprintf("%.1f%%", c.Pct)})
	}

	out := []section{sums, profiles, cats}
	if t := r.Trend; t != nil {
		out = append(out, fields("Trend",
			[]string{"Method", string(t.Method)},
			[]string{"Direction", t.Direction},
			[]string{"Slope per 100 ids", formatValue(t.SlopePer100)},
			[]string{"R²", formatValue(t.R2)},
		))
	}
	return out
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, result *model.Result, opts Options) error {
	sections, ok := tabulate(result, opts)
	if !ok {
		// Fallback: JSON
		return renderJSON(w, result)
	}
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if s.title != "" {
			fmt.Fprintln(w, s.title)
		}
		writeTable(w, s)
		if s.note != "" {
			fmt.Fprintln(w, s.note)
		}
	}
	if len(sections) == 1 && len(sections[0].rows) == 0 && result.Message != "" {
		fmt.Fprintln(w, result.Message)
	}
	return nil
}

func writeTable(w io.Writer, s section) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(s.headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	if len(s.headers) == 2 && s.headers[0] == "FIELD" {
		tw.SetColWidth(80)
		tw.SetAutoWrapText(true)
	} else {
		tw.SetAutoWrapText(false)
	}
	for _, r := range s.rows {
		tw.Append(r)
	}
	tw.Render()
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, result *model.Result, sep rune, opts Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	sections, ok := tabulate(result, opts)
	if !ok {
		// Fallback: serialize as JSON on a single line
		b, _ := json.Marshal(result.Data)
		_ = cw.Write([]string{string(b)})
	}
	for i, s := range sections {
		if i > 0 {
			_ = cw.Write(nil)
		}
		header := make([]string, len(s.headers))
		for j, h := range s.headers {
			header[j] = strings.ToLower(h)
		}
		_ = cw.Write(header)
		for _, r := range s.rows {
			_ = cw.Write(r)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result, opts Options) error {
	sections, ok := tabulate(result, opts)
	if !ok {
		return renderJSON(w, result)
	}
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if s.title != "" {
			fmt.Fprintf(w, "### %s\n\n", mdEscape(s.title))
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(s.headers, " | "))
		fmt.Fprintf(w, "|%s\n", strings.Repeat("----|", len(s.headers)))
		for _, r := range s.rows {
			cells := make([]string, len(r))
			for j, c := range r {
				cells[j] = mdEscape(c)
			}
			fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
		}
		if s.note != "" {
			fmt.Fprintf(w, "\n_%s_\n", s.note)
		}
	}
	return nil
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes the message, warnings and, in verbose mode, stats to w.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		more := ""
		if result.Stats.HasMore {
			more = " • more available"
		}
		src := "live"
		if result.Stats.Archived {
			src = "archive"
		}
		fmt.Fprintf(w, "\n[%s • %d items • %dms • %s%s]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.DurationMs,
			src,
			more,
		)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// formatValue formats a statistic for display with at most two decimals.
// NaN renders as ".".
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "."
	}
	s := strings.TrimRight(fmt.Sprintf("%.2f", v), "0")
	if strings.HasSuffix(s, ".") {
		s += "0" // "4." → "4.0"
	}
	return s
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// Package chart renders entry stats as ASCII terminal charts.
//
//   - StatBars: the six stat bars of one entry, scaled to the stat ceiling
//   - Bar: one horizontal bar per point, scaled to the largest value
//   - Plot: multi-line ASCII chart of a value across a collection
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/derickschaefer/dex/internal/model"
)

// Point is one labelled value.
type Point struct {
	Label string
	Value float64
}

// EntryPoints extracts stat (a StatOrder name or "total") from each entry,
// labelled by entry name.
func EntryPoints(entries []model.Entry, stat string) ([]Point, error) {
	idx := -1
	for i, s := range model.StatOrder {
		if s == stat {
			idx = i
		}
	}
	if idx < 0 && stat != "total" {
		return nil, fmt.Errorf("unknown stat %q (valid: %s, total)", stat, strings.Join(model.StatOrder, ", "))
	}
	points := make([]Point, 0, len(entries))
	for _, e := range entries {
		v := float64(e.TotalStats())
		if idx >= 0 {
			v = math.NaN()
			if idx < len(e.Stats) {
				v = float64(e.Stats[idx].Base)
			}
		}
		points = append(points, Point{Label: e.Name, Value: v})
	}
	return points, nil
}

// ─── Stat bars ───────────────────────────────────────────────────────────────

// BarOptions controls horizontal bar chart rendering.
type BarOptions struct {
	// Width is the total character width available for the chart.
	// If 0, auto-detects from $COLUMNS, falls back to 80.
	Width int
	// MaxBars caps the number of bars; the first MaxBars points are kept.
	// If 0, no limit is applied.
	MaxBars int
}

// tierGlyph marks the colour class of a stat value.
var tierGlyph = map[string]string{"low": "▁", "mid": "▄", "high": "█"}

// StatBars renders the six stats of e with their long labels. Each bar is
// base/255 of the bar area, capped at the full width, and filled with the
// glyph of its tier. A total line follows.
//
// Output example:
//
//	pikachu  #25
//	PS            35  ▁▁▁▁▁▁
//	Ataque        55  ▄▄▄▄▄▄▄▄▄
//	Velocidad     90  ████████████████
//	Total        320
func StatBars(w io.Writer, e model.Entry, opts BarOptions) error {
	if len(e.Stats) == 0 {
		return fmt.Errorf("chart stats: %s has no stats", e.Name)
	}
	totalWidth := opts.Width
	if totalWidth <= 0 {
		totalWidth = termWidth()
	}

	labelWidth := 0
	for _, s := range e.Stats {
		if l := utf8.RuneCountInString(model.StatLabel(s.Name)); l > labelWidth {
			labelWidth = l
		}
	}
	barAreaWidth := totalWidth - labelWidth - 3 - 4
	if barAreaWidth < 4 {
		barAreaWidth = 4
	}

	fmt.Fprintf(w, "%s  #%d\n", e.Name, e.ID)
	for _, s := range e.Stats {
		pct := float64(s.Base) / model.MaxStat
		if pct > 1 {
			pct = 1
		}
		barLen := int(math.Round(pct * float64(barAreaWidth)))
		if barLen < 1 && s.Base > 0 {
			barLen = 1
		}
		label := model.StatLabel(s.Name)
		pad := strings.Repeat(" ", labelWidth-utf8.RuneCountInString(label))
		fmt.Fprintf(w, "%s%s  %3d  %s\n", label, pad, s.Base, strings.Repeat(tierGlyph[model.StatTier(s.Base)], barLen))
	}
	fmt.Fprintf(w, "%s%s  %3d\n", "Total", strings.Repeat(" ", max(labelWidth-5, 0)), e.TotalStats())
	return nil
}

// ─── Bar ─────────────────────────────────────────────────────────────────────

// Bar renders one horizontal bar per point, scaled so the largest value
// fills the bar area. NaN points are skipped.
//
// Output example:
//
//	speed
//	pikachu   90  ████████████████████
//	raichu   110  ████████████████████████
func Bar(w io.Writer, title string, points []Point, opts BarOptions) error {
	totalWidth := opts.Width
	if totalWidth <= 0 {
		totalWidth = termWidth()
	}

	var valid []Point
	for _, p := range points {
		if !math.IsNaN(p.Value) {
			valid = append(valid, p)
		}
	}
	if len(valid) < 1 {
		return fmt.Errorf("chart bar: no values to render")
	}
	if opts.MaxBars > 0 && len(valid) > opts.MaxBars {
		valid = valid[:opts.MaxBars]
	}

	maxVal := valid[0].Value
	for _, p := range valid[1:] {
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	labelWidth, valWidth := 0, 0
	for _, p := range valid {
		if l := utf8.RuneCountInString(p.Label); l > labelWidth {
			labelWidth = l
		}
		if l := len(formatFloat(p.Value)); l > valWidth {
			valWidth = l
		}
	}

	// Bar area width = totalWidth - labelWidth - valWidth - separators (4 chars)
	barAreaWidth := totalWidth - labelWidth - valWidth - 4
	if barAreaWidth < 4 {
		barAreaWidth = 4
	}

	fmt.Fprintln(w, title)
	for _, p := range valid {
		barLen := int(math.Round(p.Value / maxVal * float64(barAreaWidth)))
		if barLen < 1 {
			barLen = 1 // minimum 1 block so every bar is visible
		}
		fmt.Fprintf(w, "%-*s  %*s  %s\n",
			labelWidth, p.Label, valWidth, formatFloat(p.Value), strings.Repeat("█", barLen))
	}
	return nil
}

// ─── Plot ─────────────────────────────────────────────────────────────────────

// PlotOptions controls multi-line ASCII plot rendering.
type PlotOptions struct {
	// Width is the total character width of the chart (including Y-axis label).
	// If 0, auto-detects from $COLUMNS, falls back to 80.
	Width int
	// Height is the number of data rows in the chart body (not counting axis labels).
	// If 0, defaults to 12.
	Height int
}

// Plot renders a multi-line ASCII chart of points to w.
func Plot(w io.Writer, title string, points []Point, opts PlotOptions) error {
	width := opts.Width
	if width <= 0 {
		width = termWidth()
	}
	height := opts.Height
	if height <= 0 {
		height = 12
	}

	// Collect valid values for scaling
	var validVals []float64
	for _, p := range points {
		if !math.IsNaN(p.Value) {
			validVals = append(validVals, p.Value)
		}
	}
	if len(validVals) < 2 {
		return fmt.Errorf("chart plot: need at least 2 values (got %d)", len(validVals))
	}

	minVal, maxVal := validVals[0], validVals[0]
	for _, v := range validVals[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	// Y-axis label width: measure the widest tick label
	ticks := yTicks(minVal, maxVal, height)
	yLabelWidth := 0
	for _, t := range ticks {
		if l := len(formatFloat(t)); l > yLabelWidth {
			yLabelWidth = l
		}
	}
	yAxisWidth := yLabelWidth + 2

	plotWidth := width - yAxisWidth
	if plotWidth < 10 {
		plotWidth = 10
	}

	cols := sampleCols(points, plotWidth)
	grid := buildGrid(cols, minVal, maxVal, height)

	fmt.Fprintf(w, "%s  (%s to %s)\n", title, points[0].Label, points[len(points)-1].Label)

	for row := 0; row < height; row++ {
		label := ""
		for _, t := range ticks {
			if math.Abs(rowForValue(t, minVal, maxVal, height)-float64(row)) < 0.5 {
				label = formatFloat(t)
				break
			}
		}
		labelPadded := fmt.Sprintf("%*s", yLabelWidth, label)

		axisCh := "┤"
		if label != "" && math.Abs(minVal) < 1e-9 && row == height-1 {
			axisCh = "┼"
		} else if label == "" {
			axisCh = " "
		}

		var rowSB strings.Builder
		for col := 0; col < plotWidth; col++ {
			rowSB.WriteRune(grid[row][col])
		}
		fmt.Fprintf(w, "%s%s%s\n", labelPadded, axisCh, rowSB.String())
	}

	fmt.Fprintf(w, "%s└%s\n", strings.Repeat(" ", yLabelWidth), strings.Repeat("─", plotWidth))
	fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", yLabelWidth), xAxisLabels(points, plotWidth))
	return nil
}

// ─── Grid building ────────────────────────────────────────────────────────────

// sampleCols reduces points to exactly n columns by sampling.
// Each column holds the average of its bucket, or NaN if all are NaN.
func sampleCols(points []Point, n int) []float64 {
	total := len(points)
	cols := make([]float64, n)
	for col := 0; col < n; col++ {
		lo := col * total / n
		hi := (col+1)*total/n - 1
		if hi >= total {
			hi = total - 1
		}
		sum, count := 0.0, 0
		for i := lo; i <= hi; i++ {
			if !math.IsNaN(points[i].Value) {
				sum += points[i].Value
				count++
			}
		}
		if count == 0 {
			cols[col] = math.NaN()
		} else {
			cols[col] = sum / float64(count)
		}
	}
	return cols
}

// rowForValue returns the float row index (0=top=max) for a given value.
func rowForValue(v, minVal, maxVal float64, height int) float64 {
	if maxVal == minVal {
		return float64(height) / 2
	}
	return (maxVal - v) / (maxVal - minVal) * float64(height-1)
}

// buildGrid renders columns into a height×width rune grid using
// box-drawing characters to connect adjacent data points.
func buildGrid(cols []float64, minVal, maxVal float64, height int) [][]rune {
	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = make([]rune, len(cols))
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}

	// For each column, find the row index of its value
	rowOf := make([]int, len(cols))
	for col, v := range cols {
		if math.IsNaN(v) {
			rowOf[col] = -1 // sentinel: gap
		} else {
			r := int(math.Round(rowForValue(v, minVal, maxVal, height)))
			if r < 0 {
				r = 0
			}
			if r >= height {
				r = height - 1
			}
			rowOf[col] = r
		}
	}

	// Draw each column
	for col := 0; col < len(cols); col++ {
		r := rowOf[col]
		if r < 0 {
			continue // NaN gap
		}

		// Determine connecting characters based on neighbours
		prevRow := -2
		if col > 0 {
			prevRow = rowOf[col-1]
		}
		nextRow := -2
		if col < len(cols)-1 {
			nextRow = rowOf[col+1]
		}

		if prevRow == -2 && nextRow == -2 {
			// Isolated point
			grid[r][col] = '·'
			continue
		}

		// Horizontal run
		if (prevRow < 0 || prevRow == r) && (nextRow < 0 || nextRow == r) {
			grid[r][col] = '─'
			continue
		}

		// Transitions
		goingUp := (nextRow >= 0 && nextRow < r) || (prevRow >= 0 && prevRow < r)
		goingDown := (nextRow >= 0 && nextRow > r) || (prevRow >= 0 && prevRow > r)

		switch {
		case prevRow >= 0 && prevRow < r && nextRow >= 0 && nextRow < r:
			// Both neighbours above: flat top of a valley; rare with smooth data
			grid[r][col] = '─'
		case prevRow >= 0 && prevRow > r && nextRow >= 0 && nextRow > r:
			// Both neighbours below: peak
			grid[r][col] = '─'
		case (prevRow < 0 || prevRow < r) && nextRow >= 0 && nextRow > r:
			grid[r][col] = '╭'
		case (prevRow < 0 || prevRow > r) && nextRow >= 0 && nextRow < r:
			grid[r][col] = '╰'
		case prevRow >= 0 && prevRow < r && (nextRow < 0 || nextRow > r):
			grid[r][col] = '╮'
		case prevRow >= 0 && prevRow > r && (nextRow < 0 || nextRow < r):
			grid[r][col] = '╯'
		default:
			if goingUp || goingDown {
				grid[r][col] = '│'
			} else {
				grid[r][col] = '─'
			}
		}

		// Fill vertical connectors between this row and previous column's row
		if prevRow >= 0 && prevRow != r {
			lo, hi := r, prevRow
			if lo > hi {
				lo, hi = hi, lo
			}
			for fill := lo + 1; fill < hi; fill++ {
				if grid[fill][col] == ' ' {
					grid[fill][col] = '│'
				}
			}
		}
	}

	return grid
}

// ─── Axis helpers ─────────────────────────────────────────────────────────────

// yTicks returns 3–5 evenly-spaced tick values for the Y axis.
func yTicks(minVal, maxVal float64, height int) []float64 {
	if maxVal == minVal {
		return []float64{minVal}
	}
	nTicks := 4
	if height <= 6 {
		nTicks = 3
	}
	ticks := make([]float64, nTicks)
	for i := 0; i < nTicks; i++ {
		ticks[i] = minVal + float64(i)*(maxVal-minVal)/float64(nTicks-1)
	}
	return ticks
}

// xAxisLabels builds a padded string with start, middle, and end labels.
func xAxisLabels(points []Point, plotWidth int) string {
	if len(points) == 0 {
		return ""
	}
	startLabel := points[0].Label
	endLabel := points[len(points)-1].Label
	midLabel := points[len(points)/2].Label

	// Position: start at left, mid centred, end at right
	midPos := plotWidth/2 - utf8.RuneCountInString(midLabel)/2
	endPos := plotWidth - utf8.RuneCountInString(endLabel)

	buf := []rune(strings.Repeat(" ", plotWidth))

	writeAt := func(pos int, s string) {
		for i, ch := range s {
			if pos+i >= 0 && pos+i < len(buf) {
				buf[pos+i] = ch
			}
		}
	}

	writeAt(0, startLabel)
	writeAt(midPos, midLabel)
	writeAt(endPos, endLabel)

	return string(buf)
}

// ─── Utilities ────────────────────────────────────────────────────────────────

// formatFloat formats a float for axis labels: no unnecessary trailing zeros,
// at least one decimal place, compact notation for large/small numbers.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "."
	}
	abs := math.Abs(v)
	var s string
	switch {
	case abs == 0:
		return "0"
	case abs >= 1e6:
		s = strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e3:
		s = strconv.FormatFloat(v/1e3, 'f', 1, 64) + "K"
	case abs >= 100:
		s = strconv.FormatFloat(v, 'f', 1, 64)
	case abs >= 10:
		s = strconv.FormatFloat(v, 'f', 2, 64)
	case abs >= 1:
		s = strconv.FormatFloat(v, 'f', 2, 64)
	default:
		s = strconv.FormatFloat(v, 'f', 4, 64)
	}
	// Trim trailing zeros after decimal point, keep at least one decimal
	if strings.Contains(s, ".") && !strings.Contains(s, "M") && !strings.Contains(s, "K") {
		s = strings.TrimRight(s, "0")
		if strings.HasSuffix(s, ".") {
			s += "0"
		}
	}
	return s
}

// termWidth returns the terminal width from $COLUMNS, defaulting to 80.
func termWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 20 {
			return n
		}
	}
	return 80
}

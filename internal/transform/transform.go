// Package transform implements stateless operators over entry collections
// and the stat values drawn from them. Each operator is a pure function;
// no side effects, no I/O. Inputs are never modified.
package transform

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/derickschaefer/dex/internal/model"
)

// TotalStat selects the sum of all six stats.
const TotalStat = "total"

// StatValue returns the base value of stat for e. stat is a StatOrder name
// or TotalStat. A missing stat is NaN.
func StatValue(e model.Entry, stat string) (float64, error) {
	if stat == TotalStat {
		return float64(e.TotalStats()), nil
	}
	known := false
	for _, s := range model.StatOrder {
		known = known || s == stat
	}
	if !known {
		return 0, fmt.Errorf("unknown stat %q (valid: %s, %s)", stat, strings.Join(model.StatOrder, ", "), TotalStat)
	}
	for _, s := range e.Stats {
		if s.Name == stat {
			return float64(s.Base), nil
		}
	}
	return math.NaN(), nil
}

// ─── Sort ─────────────────────────────────────────────────────────────────────

// Sort orders entries by stat, highest first unless ascending is set.
// Ties keep their input order; entries missing the stat sort last.
func Sort(entries []model.Entry, stat string, ascending bool) ([]model.Entry, error) {
	keys := make([]float64, len(entries))
	for i, e := range entries {
		v, err := StatValue(e, stat)
		if err != nil {
			return nil, err
		}
		keys[i] = v
	}

	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := keys[idx[a]], keys[idx[b]]
		switch {
		case math.IsNaN(va):
			return false
		case math.IsNaN(vb):
			return true
		case ascending:
			return va < vb
		default:
			return va > vb
		}
	})

	out := make([]model.Entry, len(entries))
	for i, j := range idx {
		out[i] = entries[j]
	}
	return out, nil
}

// Top returns the first n entries; n <= 0 returns all of them.
func Top(entries []model.Entry, n int) []model.Entry {
	if n <= 0 || n >= len(entries) {
		return append([]model.Entry(nil), entries...)
	}
	return append([]model.Entry(nil), entries[:n]...)
}

// ─── Range ────────────────────────────────────────────────────────────────────

// RangeOptions describes a value filter on one stat.
type RangeOptions struct {
	Stat        string
	Min         float64 // keep entries with value >= Min (NaN = no lower bound)
	Max         float64 // keep entries with value <= Max (NaN = no upper bound)
	DropMissing bool    // drop entries without the stat
}

// NoBound is the value of an unset Min or Max.
var NoBound = math.NaN()

// Range returns the entries whose stat value satisfies opts.
func Range(entries []model.Entry, opts RangeOptions) ([]model.Entry, error) {
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		v, err := StatValue(e, opts.Stat)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(v) {
			if opts.DropMissing {
				continue
			}
		} else {
			if !math.IsNaN(opts.Min) && v < opts.Min {
				continue
			}
			if !math.IsNaN(opts.Max) && v > opts.Max {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// ─── Normalize ────────────────────────────────────────────────────────────────

// NormalizeMethod selects the normalization algorithm.
type NormalizeMethod string

const (
	NormalizeZScore NormalizeMethod = "zscore"
	NormalizeMinMax NormalizeMethod = "minmax"
)

// Normalize scales values using z-score or min-max normalization.
// NaN values are skipped when computing statistics but preserved in output.
func Normalize(vals []float64, method NormalizeMethod) ([]float64, error) {
	var present []float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("normalize: no values")
	}

	var a, b float64 // output = (v - a) / b
	switch method {
	case NormalizeZScore:
		m := mean(present)
		std := stddev(present, m)
		if std == 0 {
			return nil, fmt.Errorf("normalize: standard deviation is zero, cannot z-score")
		}
		a, b = m, std
	case NormalizeMinMax:
		mn, mx := minmax(present)
		if mx == mn {
			return nil, fmt.Errorf("normalize: min == max (%g), cannot min-max normalize", mn)
		}
		a, b = mn, mx-mn
	default:
		return nil, fmt.Errorf("normalize: unknown method %q (use zscore or minmax)", method)
	}

	out := make([]float64, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		out[i] = (v - a) / b
	}
	return out, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func mean(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

func stddev(vals []float64, m float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var sq float64
	for _, v := range vals {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vals)-1))
}

func minmax(vals []float64) (float64, float64) {
	mn, mx := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	return mn, mx
}

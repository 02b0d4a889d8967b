// Package analyze computes statistical summaries over collections of
// entries. All functions are pure; no I/O.
package analyze

import (
	"fmt"
	"math"
	"sort"

	"github.com/derickschaefer/dex/internal/model"
)

// TotalStat is the pseudo stat name used for the sum of all six stats.
const TotalStat = "total"

// Report bundles everything `dex stats` shows for a collection.
type Report struct {
	Profiles   []Profile       `json:"profiles" yaml:"profiles"`
	Summaries  []Summary       `json:"summaries" yaml:"summaries"`
	Categories []CategoryCount `json:"categories" yaml:"categories"`
	Trend      *TrendResult    `json:"trend,omitempty" yaml:"trend,omitempty"`
}

// NewReport profiles and summarises entries. The trend is fitted only when
// method is non-empty.
func NewReport(entries []model.Entry, method TrendMethod) (*Report, error) {
	r := &Report{
		Summaries:  Summarize(entries),
		Categories: Categories(entries),
	}
	for _, e := range entries {
		r.Profiles = append(r.Profiles, ProfileOf(e))
	}
	if method != "" {
		tr, err := Trend(entries, method)
		if err != nil {
			return nil, err
		}
		r.Trend = &tr
	}
	return r, nil
}

// ─── Profile ──────────────────────────────────────────────────────────────────

// Profile summarises a single entry's stat line.
type Profile struct {
	ID           int               `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Categories   string            `json:"categories" yaml:"categories"`
	Total        int               `json:"total" yaml:"total"`
	Highest      string            `json:"highest" yaml:"highest"`
	HighestValue int               `json:"highest_value" yaml:"highest_value"`
	Tiers        map[string]string `json:"tiers" yaml:"tiers"`
}

// ProfileOf builds the profile of e. Ties for the highest stat go to the
// stat that comes first in StatOrder.
func ProfileOf(e model.Entry) Profile {
	p := Profile{
		ID:         e.ID,
		Name:       e.Name,
		Categories: e.CategoryNames(),
		Total:      e.TotalStats(),
		Tiers:      make(map[string]string, len(e.Stats)),
	}
	for i, s := range e.Stats {
		if i == 0 || s.Base > p.HighestValue {
			p.Highest = s.Name
			p.HighestValue = s.Base
		}
		p.Tiers[s.Name] = model.StatTier(s.Base)
	}
	return p
}

// ─── Summary ──────────────────────────────────────────────────────────────────

// Summary holds descriptive statistics for one stat across a collection.
type Summary struct {
	Stat    string  `json:"stat" yaml:"stat"`
	Label   string  `json:"label" yaml:"label"`
	Count   int     `json:"count" yaml:"count"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Std     float64 `json:"std" yaml:"std"`
	Min     float64 `json:"min" yaml:"min"`
	P25     float64 `json:"p25" yaml:"p25"`
	Median  float64 `json:"median" yaml:"median"`
	P75     float64 `json:"p75" yaml:"p75"`
	Max     float64 `json:"max" yaml:"max"`
	MinName string  `json:"min_name" yaml:"min_name"` // first entry holding Min
	MaxName string  `json:"max_name" yaml:"max_name"` // first entry holding Max
}

// Summarize computes one Summary per stat in StatOrder, followed by one for
// the total. An empty collection yields NaN statistics with Count 0.
func Summarize(entries []model.Entry) []Summary {
	out := make([]Summary, 0, len(model.StatOrder)+1)
	for i, name := range model.StatOrder {
		idx := i
		out = append(out, summarizeBy(name, model.StatLabel(name), entries, func(e model.Entry) float64 {
			if idx < len(e.Stats) {
				return float64(e.Stats[idx].Base)
			}
			return math.NaN()
		}))
	}
	out = append(out, summarizeBy(TotalStat, "Total", entries, func(e model.Entry) float64 {
		return float64(e.TotalStats())
	}))
	return out
}

func summarizeBy(stat, label string, entries []model.Entry, value func(model.Entry) float64) Summary {
	s := Summary{Stat: stat, Label: label}

	var vals []float64
	for _, e := range entries {
		v := value(e)
		if math.IsNaN(v) {
			continue
		}
		vals = append(vals, v)
		if len(vals) == 1 || v < s.Min {
			s.Min, s.MinName = v, e.Name
		}
		if len(vals) == 1 || v > s.Max {
			s.Max, s.MaxName = v, e.Name
		}
	}
	s.Count = len(vals)
	if len(vals) == 0 {
		s.Mean = math.NaN()
		s.Std = math.NaN()
		s.Min = math.NaN()
		s.Max = math.NaN()
		s.Median = math.NaN()
		s.P25 = math.NaN()
		s.P75 = math.NaN()
		return s
	}

	// Sort for percentile computation
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	s.Mean = sumF(vals) / float64(len(vals))
	s.Std = stddevF(vals, s.Mean)
	s.Median = percentile(sorted, 50)
	s.P25 = percentile(sorted, 25)
	s.P75 = percentile(sorted, 75)
	return s
}

// ─── Categories ───────────────────────────────────────────────────────────────

// CategoryCount is how many entries of a collection carry a category.
type CategoryCount struct {
	Category model.Category `json:"category" yaml:"category"`
	Count    int            `json:"count" yaml:"count"`
	Pct      float64        `json:"pct" yaml:"pct"`
}

// Categories counts category occurrences, most frequent first. Dual-category
// entries count once for each of their categories.
func Categories(entries []model.Entry) []CategoryCount {
	counts := make(map[model.Category]int)
	for _, e := range entries {
		for _, c := range e.Categories {
			counts[c]++
		}
	}
	var out []CategoryCount
	for _, c := range model.Categories {
		n := counts[c]
		if n == 0 {
			continue
		}
		out = append(out, CategoryCount{
			Category: c,
			Count:    n,
			Pct:      float64(n) / float64(len(entries)) * 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// ─── Trend ────────────────────────────────────────────────────────────────────

// TrendMethod selects the regression algorithm.
type TrendMethod string

const (
	TrendLinear   TrendMethod = "linear"
	TrendTheilSen TrendMethod = "theil-sen"
)

// TrendResult describes how total stats move with catalog id.
type TrendResult struct {
	Method       TrendMethod `json:"method" yaml:"method"`
	Slope        float64     `json:"slope" yaml:"slope"` // total stats per id
	Intercept    float64     `json:"intercept" yaml:"intercept"`
	R2           float64     `json:"r2" yaml:"r2"`
	Direction    string      `json:"direction" yaml:"direction"`         // "up", "down", "flat"
	SlopePer100  float64     `json:"slope_per_100" yaml:"slope_per_100"` // slope * 100
	Observations int         `json:"observations" yaml:"observations"`
}

// Trend fits total stats against entry id.
func Trend(entries []model.Entry, method TrendMethod) (TrendResult, error) {
	tr := TrendResult{Method: method}

	pts := make([]point, 0, len(entries))
	for _, e := range entries {
		pts = append(pts, point{float64(e.ID), float64(e.TotalStats())})
	}
	tr.Observations = len(pts)
	if len(pts) < 2 {
		return tr, fmt.Errorf("trend: need at least 2 entries, got %d", len(pts))
	}

	switch method {
	case TrendTheilSen:
		tr.Slope = theilSenSlope(pts)
		// Use OLS intercept with Theil-Sen slope
		xMean := meanPts(pts, func(p point) float64 { return p.x })
		yMean := meanPts(pts, func(p point) float64 { return p.y })
		tr.Intercept = yMean - tr.Slope*xMean
	case TrendLinear, "":
		tr.Method = TrendLinear
		tr.Slope, tr.Intercept = olsRegress(pts)
	default:
		return tr, fmt.Errorf("trend: unknown method %q (linear|theil-sen)", method)
	}

	tr.R2 = r2(pts, tr.Slope, tr.Intercept)
	tr.SlopePer100 = tr.Slope * 100

	switch {
	case tr.SlopePer100 > 1:
		tr.Direction = "up"
	case tr.SlopePer100 < -1:
		tr.Direction = "down"
	default:
		tr.Direction = "flat"
	}
	return tr, nil
}

// ─── Math helpers ─────────────────────────────────────────────────────────────

func sumF(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func stddevF(vals []float64, m float64) float64 {
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

func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	idx := p / 100 * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

type point struct{ x, y float64 }

func olsRegress(pts []point) (slope, intercept float64) {
	n := float64(len(pts))
	var xSum, ySum, xySum, x2Sum float64
	for _, p := range pts {
		xSum += p.x
		ySum += p.y
		xySum += p.x * p.y
		x2Sum += p.x * p.x
	}
	denom := n*x2Sum - xSum*xSum
	if denom == 0 {
		return 0, ySum / n
	}
	slope = (n*xySum - xSum*ySum) / denom
	intercept = (ySum - slope*xSum) / n
	return
}

func theilSenSlope(pts []point) float64 {
	var slopes []float64
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			dx := pts[j].x - pts[i].x
			if dx == 0 {
				continue
			}
			slopes = append(slopes, (pts[j].y-pts[i].y)/dx)
		}
	}
	if len(slopes) == 0 {
		return 0
	}
	sort.Float64s(slopes)
	return percentile(slopes, 50)
}

func r2(pts []point, slope, intercept float64) float64 {
	var yMean float64
	for _, p := range pts {
		yMean += p.y
	}
	yMean /= float64(len(pts))

	var ssTot, ssRes float64
	for _, p := range pts {
		pred := slope*p.x + intercept
		ssTot += (p.y - yMean) * (p.y - yMean)
		ssRes += (p.y - pred) * (p.y - pred)
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

func meanPts(pts []point, f func(point) float64) float64 {
	var s float64
	for _, p := range pts {
		s += f(p)
	}
	return s / float64(len(pts))
}

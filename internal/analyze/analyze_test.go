package analyze_test

import (
	"math"
	"testing"

	"github.com/derickschaefer/dex/internal/analyze"
	"github.com/derickschaefer/dex/internal/model"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// makeEntry builds an entry whose six stats are the given values in
// StatOrder.
func makeEntry(id int, name string, stats [6]int, cats ...model.Category) model.Entry {
	e := model.Entry{ID: id, Name: name, Categories: cats}
	for i, s := range model.StatOrder {
		e.Stats = append(e.Stats, model.Stat{Name: s, Base: stats[i]})
	}
	return e
}

// uniform builds an entry whose six stats all equal v (total 6v).
func uniform(id int, v int) model.Entry {
	return makeEntry(id, "e", [6]int{v, v, v, v, v, v}, model.Normal)
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func byStat(sums []analyze.Summary) map[string]analyze.Summary {
	m := make(map[string]analyze.Summary, len(sums))
	for _, s := range sums {
		m[s.Stat] = s
	}
	return m
}

// ─── Profile ──────────────────────────────────────────────────────────────────

func TestProfileOfPikachu(t *testing.T) {
	p := analyze.ProfileOf(makeEntry(25, "pikachu", [6]int{35, 55, 40, 50, 50, 90}, model.Electric))

	if p.Total != 320 {
		t.Errorf("Total: expected 320, got %d", p.Total)
	}
	if p.Highest != "speed" || p.HighestValue != 90 {
		t.Errorf("Highest: expected speed/90, got %s/%d", p.Highest, p.HighestValue)
	}
	if p.Tiers["hp"] != "low" || p.Tiers["attack"] != "mid" || p.Tiers["speed"] != "high" {
		t.Errorf("Tiers: unexpected %v", p.Tiers)
	}
	if p.Categories != "electric" {
		t.Errorf("Categories: expected electric, got %q", p.Categories)
	}
}

func TestProfileOfTieGoesToFirstStat(t *testing.T) {
	p := analyze.ProfileOf(makeEntry(1, "x", [6]int{80, 80, 10, 10, 10, 10}, model.Normal))
	if p.Highest != "hp" {
		t.Errorf("tie should favour hp, got %s", p.Highest)
	}
}

// ─── Summarize ────────────────────────────────────────────────────────────────

func TestSummarizeShape(t *testing.T) {
	sums := analyze.Summarize([]model.Entry{uniform(1, 10)})
	if len(sums) != len(model.StatOrder)+1 {
		t.Fatalf("expected %d summaries, got %d", len(model.StatOrder)+1, len(sums))
	}
	for i, s := range model.StatOrder {
		if sums[i].Stat != s {
			t.Errorf("summary %d: expected %s, got %s", i, s, sums[i].Stat)
		}
	}
	if sums[len(sums)-1].Stat != analyze.TotalStat {
		t.Errorf("last summary should be the total, got %s", sums[len(sums)-1].Stat)
	}
	if sums[1].Label != "Ataque" {
		t.Errorf("attack label: expected Ataque, got %q", sums[1].Label)
	}
}

func TestSummarizeMeanMedianMinMax(t *testing.T) {
	entries := []model.Entry{
		makeEntry(1, "a", [6]int{10, 1, 1, 1, 1, 1}, model.Normal),
		makeEntry(2, "b", [6]int{20, 1, 1, 1, 1, 1}, model.Normal),
		makeEntry(3, "c", [6]int{30, 1, 1, 1, 1, 1}, model.Normal),
		makeEntry(4, "d", [6]int{40, 1, 1, 1, 1, 1}, model.Normal),
	}
	hp := byStat(analyze.Summarize(entries))["hp"]

	if hp.Count != 4 {
		t.Errorf("Count: expected 4, got %d", hp.Count)
	}
	if !approxEqual(hp.Mean, 25, 1e-9) {
		t.Errorf("Mean: expected 25, got %g", hp.Mean)
	}
	if !approxEqual(hp.Median, 25, 1e-9) {
		t.Errorf("Median: expected 25, got %g", hp.Median)
	}
	if !approxEqual(hp.P25, 17.5, 1e-9) || !approxEqual(hp.P75, 32.5, 1e-9) {
		t.Errorf("P25/P75: expected 17.5/32.5, got %g/%g", hp.P25, hp.P75)
	}
	if hp.Min != 10 || hp.MinName != "a" || hp.Max != 40 || hp.MaxName != "d" {
		t.Errorf("Min/Max: got %g(%s)/%g(%s)", hp.Min, hp.MinName, hp.Max, hp.MaxName)
	}
	// sample std of 10,20,30,40
	if !approxEqual(hp.Std, 12.909944, 1e-5) {
		t.Errorf("Std: expected ~12.91, got %g", hp.Std)
	}
}

func TestSummarizeTotal(t *testing.T) {
	total := byStat(analyze.Summarize([]model.Entry{uniform(1, 10), uniform(2, 20)}))[analyze.TotalStat]
	if total.Min != 60 || total.Max != 120 {
		t.Errorf("total Min/Max: expected 60/120, got %g/%g", total.Min, total.Max)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	for _, s := range analyze.Summarize(nil) {
		if s.Count != 0 {
			t.Errorf("%s: expected count 0, got %d", s.Stat, s.Count)
		}
		if !math.IsNaN(s.Mean) || !math.IsNaN(s.Median) {
			t.Errorf("%s: expected NaN statistics for empty input", s.Stat)
		}
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	hp := byStat(analyze.Summarize([]model.Entry{uniform(1, 45)}))["hp"]
	if hp.Std != 0 {
		t.Errorf("Std of a single value should be 0, got %g", hp.Std)
	}
	if hp.Min != 45 || hp.Max != 45 || hp.Median != 45 {
		t.Errorf("single value: got min=%g max=%g median=%g", hp.Min, hp.Max, hp.Median)
	}
}

// ─── Categories ───────────────────────────────────────────────────────────────

func TestCategoriesCountsDualTypesTwice(t *testing.T) {
	entries := []model.Entry{
		makeEntry(6, "charizard", [6]int{}, model.Fire, model.Flying),
		makeEntry(4, "charmander", [6]int{}, model.Fire),
		makeEntry(16, "pidgey", [6]int{}, model.Normal, model.Flying),
	}
	counts := analyze.Categories(entries)

	got := map[model.Category]int{}
	for _, c := range counts {
		got[c.Category] = c.Count
	}
	if got[model.Fire] != 2 || got[model.Flying] != 2 || got[model.Normal] != 1 {
		t.Errorf("unexpected counts %v", got)
	}
	if counts[len(counts)-1].Category != model.Normal {
		t.Errorf("least frequent should be last, got %s", counts[len(counts)-1].Category)
	}
	if !approxEqual(counts[0].Pct, 200.0/3, 1e-9) {
		t.Errorf("Pct: expected 66.67, got %g", counts[0].Pct)
	}
}

// ─── Trend ────────────────────────────────────────────────────────────────────

func TestTrendLinearUpward(t *testing.T) {
	entries := []model.Entry{uniform(1, 10), uniform(2, 20), uniform(3, 30), uniform(4, 40)}
	tr, err := analyze.Trend(entries, analyze.TrendLinear)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if !approxEqual(tr.Slope, 60, 1e-9) {
		t.Errorf("Slope: expected 60 per id, got %g", tr.Slope)
	}
	if tr.Direction != "up" {
		t.Errorf("Direction: expected up, got %s", tr.Direction)
	}
	if !approxEqual(tr.R2, 1, 1e-9) {
		t.Errorf("R2: expected 1 for a perfect line, got %g", tr.R2)
	}
	if tr.Observations != 4 {
		t.Errorf("Observations: expected 4, got %d", tr.Observations)
	}
}

func TestTrendFlat(t *testing.T) {
	entries := []model.Entry{uniform(1, 50), uniform(2, 50), uniform(3, 50)}
	tr, err := analyze.Trend(entries, analyze.TrendLinear)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if tr.Direction != "flat" {
		t.Errorf("Direction: expected flat, got %s", tr.Direction)
	}
}

func TestTrendTheilSenRobustToOutlier(t *testing.T) {
	entries := []model.Entry{
		uniform(1, 10), uniform(2, 11), uniform(3, 12), uniform(4, 13), uniform(5, 200),
	}
	ts, err := analyze.Trend(entries, analyze.TrendTheilSen)
	if err != nil {
		t.Fatalf("Trend theil-sen: %v", err)
	}
	ols, _ := analyze.Trend(entries, analyze.TrendLinear)
	if !(ts.Slope < ols.Slope) {
		t.Errorf("theil-sen slope %g should be less affected by the outlier than OLS %g", ts.Slope, ols.Slope)
	}
	if ts.R2 > 1 {
		t.Errorf("R2 must not exceed 1, got %g", ts.R2)
	}
}

func TestTrendTooFewEntries(t *testing.T) {
	if _, err := analyze.Trend([]model.Entry{uniform(1, 10)}, analyze.TrendLinear); err == nil {
		t.Error("expected error for a single entry")
	}
}

func TestTrendUnknownMethod(t *testing.T) {
	if _, err := analyze.Trend([]model.Entry{uniform(1, 1), uniform(2, 2)}, "quadratic"); err == nil {
		t.Error("expected error for unknown method")
	}
}

// ─── Report ───────────────────────────────────────────────────────────────────

func TestNewReport(t *testing.T) {
	entries := []model.Entry{uniform(1, 10), uniform(2, 20)}

	r, err := analyze.NewReport(entries, "")
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	if len(r.Profiles) != 2 || r.Trend != nil {
		t.Errorf("expected 2 profiles and no trend, got %d/%v", len(r.Profiles), r.Trend)
	}

	r, err = analyze.NewReport(entries, analyze.TrendLinear)
	if err != nil {
		t.Fatalf("NewReport with trend: %v", err)
	}
	if r.Trend == nil || r.Trend.Direction != "up" {
		t.Errorf("expected an upward trend, got %+v", r.Trend)
	}

	if _, err := analyze.NewReport(entries[:1], analyze.TrendLinear); err == nil {
		t.Error("trend over one entry should fail")
	}
}

package transform_test

import (
	"math"
	"testing"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/transform"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// makeEntry builds an entry whose six stats are the given values in
// StatOrder.
func makeEntry(id int, name string, stats [6]int) model.Entry {
	e := model.Entry{ID: id, Name: name, Categories: []model.Category{model.Normal}}
	for i, s := range model.StatOrder {
		e.Stats = append(e.Stats, model.Stat{Name: s, Base: stats[i]})
	}
	return e
}

func sample() []model.Entry {
	return []model.Entry{
		makeEntry(1, "bulbasaur", [6]int{45, 49, 49, 65, 65, 45}),
		makeEntry(4, "charmander", [6]int{39, 52, 43, 60, 50, 65}),
		makeEntry(7, "squirtle", [6]int{44, 48, 65, 50, 64, 43}),
		makeEntry(25, "pikachu", [6]int{35, 55, 40, 50, 50, 90}),
	}
}

func names(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// ─── StatValue ────────────────────────────────────────────────────────────────

func TestStatValue(t *testing.T) {
	e := sample()[3]
	if v, err := transform.StatValue(e, "speed"); err != nil || v != 90 {
		t.Errorf("speed: expected 90, got %g (%v)", v, err)
	}
	if v, err := transform.StatValue(e, transform.TotalStat); err != nil || v != 320 {
		t.Errorf("total: expected 320, got %g (%v)", v, err)
	}
	if _, err := transform.StatValue(e, "luck"); err == nil {
		t.Error("expected error for unknown stat")
	}
	if v, _ := transform.StatValue(model.Entry{Name: "bare"}, "hp"); !math.IsNaN(v) {
		t.Errorf("missing stat should be NaN, got %g", v)
	}
}

// ─── Sort / Top ───────────────────────────────────────────────────────────────

func TestSortDescendingBySpeed(t *testing.T) {
	got, err := transform.Sort(sample(), "speed", false)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want := []string{"pikachu", "charmander", "bulbasaur", "squirtle"}
	if !equalStrings(names(got), want) {
		t.Errorf("expected %v, got %v", want, names(got))
	}
}

func TestSortAscendingKeepsTieOrder(t *testing.T) {
	// charmander and pikachu tie on special-defense (50)
	got, err := transform.Sort(sample(), "special-defense", true)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want := []string{"charmander", "pikachu", "squirtle", "bulbasaur"}
	if !equalStrings(names(got), want) {
		t.Errorf("expected %v, got %v", want, names(got))
	}
}

func TestSortDoesNotModifyInput(t *testing.T) {
	in := sample()
	before := names(in)
	if _, err := transform.Sort(in, "hp", true); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if !equalStrings(names(in), before) {
		t.Errorf("input reordered: %v", names(in))
	}
}

func TestSortMissingStatLast(t *testing.T) {
	in := append(sample(), model.Entry{ID: 999, Name: "bare"})
	got, err := transform.Sort(in, "hp", true)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if got[len(got)-1].Name != "bare" {
		t.Errorf("entry without stats should sort last, got %v", names(got))
	}
}

func TestTop(t *testing.T) {
	if got := transform.Top(sample(), 2); !equalStrings(names(got), []string{"bulbasaur", "charmander"}) {
		t.Errorf("Top 2: got %v", names(got))
	}
	if got := transform.Top(sample(), 0); len(got) != 4 {
		t.Errorf("Top 0 should keep all, got %d", len(got))
	}
	if got := transform.Top(sample(), 10); len(got) != 4 {
		t.Errorf("Top past the end should keep all, got %d", len(got))
	}
}

// ─── Range ────────────────────────────────────────────────────────────────────

func TestRange(t *testing.T) {
	got, err := transform.Range(sample(), transform.RangeOptions{Stat: "attack", Min: 49, Max: 52})
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if !equalStrings(names(got), []string{"bulbasaur", "charmander"}) {
		t.Errorf("attack 49..52: got %v", names(got))
	}
}

func TestRangeOpenBounds(t *testing.T) {
	got, err := transform.Range(sample(), transform.RangeOptions{Stat: "speed", Min: 60, Max: transform.NoBound})
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if !equalStrings(names(got), []string{"charmander", "pikachu"}) {
		t.Errorf("speed >= 60: got %v", names(got))
	}
}

func TestRangeMissingValues(t *testing.T) {
	in := append(sample(), model.Entry{ID: 999, Name: "bare"})
	opts := transform.RangeOptions{Stat: "hp", Min: transform.NoBound, Max: transform.NoBound}

	kept, _ := transform.Range(in, opts)
	if len(kept) != 5 {
		t.Errorf("missing values kept by default: expected 5, got %d", len(kept))
	}
	opts.DropMissing = true
	dropped, _ := transform.Range(in, opts)
	if len(dropped) != 4 {
		t.Errorf("DropMissing: expected 4, got %d", len(dropped))
	}
}

func TestRangeUnknownStat(t *testing.T) {
	if _, err := transform.Range(sample(), transform.RangeOptions{Stat: "luck"}); err == nil {
		t.Error("expected error for unknown stat")
	}
}

// ─── Normalize ────────────────────────────────────────────────────────────────

func TestNormalizeMinMax(t *testing.T) {
	got, err := transform.Normalize([]float64{10, 20, math.NaN(), 30}, transform.NormalizeMinMax)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []float64{0, 0.5, math.NaN(), 1}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Errorf("[%d]: NaN should be preserved, got %g", i, got[i])
			}
			continue
		}
		if !approxEqual(got[i], want[i], 1e-9) {
			t.Errorf("[%d]: expected %g, got %g", i, want[i], got[i])
		}
	}
}

func TestNormalizeZScore(t *testing.T) {
	got, err := transform.Normalize([]float64{2, 4, 6}, transform.NormalizeZScore)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	// mean 4, sample std 2
	if !approxEqual(got[0], -1, 1e-9) || !approxEqual(got[1], 0, 1e-9) || !approxEqual(got[2], 1, 1e-9) {
		t.Errorf("expected [-1 0 1], got %v", got)
	}
}

func TestNormalizeErrors(t *testing.T) {
	if _, err := transform.Normalize([]float64{5, 5, 5}, transform.NormalizeZScore); err == nil {
		t.Error("zscore of constant values should fail")
	}
	if _, err := transform.Normalize([]float64{5, 5}, transform.NormalizeMinMax); err == nil {
		t.Error("minmax of constant values should fail")
	}
	if _, err := transform.Normalize([]float64{math.NaN()}, transform.NormalizeMinMax); err == nil {
		t.Error("all-NaN input should fail")
	}
	if _, err := transform.Normalize([]float64{1, 2}, "log"); err == nil {
		t.Error("unknown method should fail")
	}
}

package render_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/derickschaefer/dex/internal/analyze"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/pipeline"
	"github.com/derickschaefer/dex/internal/render"
)

// ─── Fixtures ─────────────────────────────────────────────────────────────────

func intp(v int) *int { return &v }

func pikachu() model.Entry {
	e := model.Entry{
		ID: 25, Name: "pikachu", Categories: []model.Category{model.Electric},
		Height: 4, Weight: 60, BaseExperience: intp(112),
		Abilities: []model.AbilityRef{{Name: "static", Slot: 1}, {Name: "lightning-rod", Hidden: true, Slot: 3}},
		Images:    model.Images{Artwork: "art.png", ArtworkShiny: "art-shiny.png"},
	}
	for i, s := range model.StatOrder {
		e.Stats = append(e.Stats, model.Stat{Name: s, Base: []int{35, 55, 40, 50, 50, 90}[i]})
	}
	for i := 0; i < 25; i++ {
		e.Moves = append(e.Moves, model.MoveRef{
			Name:    "move-" + string(rune('a'+i)),
			Learned: []model.MoveLearn{{Level: i, Method: "level-up"}},
		})
	}
	return e
}

func result(kind string, data interface{}) *model.Result {
	return &model.Result{Kind: kind, Command: "test", GeneratedAt: time.Unix(0, 0).UTC(), Data: data}
}

func renderString(t *testing.T, r *model.Result, format string, opts render.Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, render.RenderWith(&buf, r, format, opts))
	return buf.String()
}

// ─── Entries ──────────────────────────────────────────────────────────────────

func TestEntriesTable(t *testing.T) {
	out := renderString(t, result(model.KindEntries, []model.Entry{pikachu()}), render.FormatTable, render.Options{})

	for _, want := range []string{"ID", "NAME", "PS", "ATK", "VEL", "TOTAL", "pikachu", "electric", "320"} {
		assert.Contains(t, out, want)
	}
}

func TestEntriesCSV(t *testing.T) {
	out := renderString(t, result(model.KindEntries, []model.Entry{pikachu()}), render.FormatCSV, render.Options{})

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "name", "types", "ps", "atk", "def", "sp.atk", "sp.def", "vel", "total"}, rows[0])
	assert.Equal(t, "320", rows[1][9])
}

func TestEntriesTSV(t *testing.T) {
	out := renderString(t, result(model.KindEntries, []model.Entry{pikachu()}), render.FormatTSV, render.Options{})
	assert.Contains(t, strings.Split(out, "\n")[1], "25\tpikachu\telectric")
}

func TestEntriesJSONLRoundTrip(t *testing.T) {
	out := renderString(t, result(model.KindEntries, []model.Entry{pikachu()}), render.FormatJSONL, render.Options{})

	entries, err := pipeline.ReadEntries(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pikachu", entries[0].Name)
}

func TestEmptyEntriesShowMessage(t *testing.T) {
	r := result(model.KindEntries, []model.Entry{})
	r.Message = `no results for "zzz"`
	out := renderString(t, r, render.FormatTable, render.Options{})
	assert.Contains(t, out, `no results for "zzz"`)
}

// ─── Detail ───────────────────────────────────────────────────────────────────

func TestCompleteTableAllTabs(t *testing.T) {
	c := &model.Complete{
		Entry: pikachu(),
		Species: &model.Species{
			ID: 25, Name: "pikachu",
			Genera:       []model.LocalizedText{{Language: "en", Text: "Mouse Pokémon"}},
			Descriptions: []model.LocalizedText{{Language: "es", Text: "Cuando se\nenfada"}},
		},
		Evolution: &model.EvolutionChain{Root: model.EvolutionNode{
			Species: "pichu", IsBaby: true,
			EvolvesTo: []model.EvolutionNode{{Species: "pikachu", Triggers: []model.EvolutionTrigger{{Kind: "level-up"}}}},
		}},
	}
	out := renderString(t, result(model.KindComplete, c), render.FormatTable, render.Options{Language: "es"})

	for _, want := range []string{
		"#25 Pikachu", "0.4 m", "6.0 kg", "112", "Lightning Rod (hidden)", "art.png",
		"Mouse Pokémon", "normal", "Cuando se enfada",
		"Stats", "Ataque", "Velocidad", "320",
		"Moves", "Level 1", "… and 5 more moves",
		"Evolution", "Pichu (baby)", "level-up",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Move U", "only the first 20 moves are listed")
}

func TestEntryTabSelection(t *testing.T) {
	e := pikachu()
	out := renderString(t, result(model.KindEntry, &e), render.FormatTable, render.Options{Tab: render.TabStats})

	assert.Contains(t, out, "Velocidad")
	assert.NotContains(t, out, "Abilities")
	assert.NotContains(t, out, "Moves")
}

func TestEvolutionTabWithoutChain(t *testing.T) {
	c := &model.Complete{Entry: pikachu(), Species: &model.Species{ID: 151, Name: "mew", IsMythical: true}}
	out := renderString(t, result(model.KindComplete, c), render.FormatTable, render.Options{Tab: render.TabEvolution})

	assert.Contains(t, out, "Evolution")
	assert.Contains(t, out, "No evolution data.")
	assert.NotContains(t, out, "Abilities")
}

func TestShinyImage(t *testing.T) {
	e := pikachu()
	out := renderString(t, result(model.KindEntry, &e), render.FormatTable, render.Options{Tab: render.TabInfo, Shiny: true})
	assert.Contains(t, out, "art-shiny.png")
}

func TestLevelZeroShowsMethod(t *testing.T) {
	e := pikachu()
	e.Moves = []model.MoveRef{{Name: "thunder-shock", Learned: []model.MoveLearn{{Level: 0, Method: "tutor"}}}, {Name: "mystery"}}
	out := renderString(t, result(model.KindEntry, &e), render.FormatCSV, render.Options{Tab: render.TabMoves})

	assert.Contains(t, out, "Thunder Shock,Tutor")
	assert.Contains(t, out, "Mystery,Unknown")
}

func TestMoveDetailOptionalFields(t *testing.T) {
	m := &model.Move{ID: 14, Name: "swords-dance", PP: 20, DamageClass: "status", Category: model.Normal}
	out := renderString(t, result(model.KindMove, m), render.FormatMD, render.Options{})

	assert.Contains(t, out, "### Swords Dance")
	assert.Contains(t, out, "| Power | - |")
}

// ─── Report ───────────────────────────────────────────────────────────────────

func TestReportSections(t *testing.T) {
	rep, err := analyze.NewReport([]model.Entry{pikachu()}, "")
	require.NoError(t, err)
	out := renderString(t, result(model.KindSummary, rep), render.FormatTable, render.Options{})

	for _, want := range []string{"Summary", "Entries", "Types", "Velocidad (90)", "electric"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Trend")
}

// ─── Structured formats ───────────────────────────────────────────────────────

func TestJSONEnvelope(t *testing.T) {
	e := pikachu()
	out := renderString(t, result(model.KindEntry, &e), render.FormatJSON, render.Options{})

	var env struct {
		Kind string      `json:"kind"`
		Data model.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, model.KindEntry, env.Kind)
	assert.Equal(t, 25, env.Data.ID)
}

func TestYAMLEnvelope(t *testing.T) {
	out := renderString(t, result(model.KindEntries, []model.Entry{pikachu()}), render.FormatYAML, render.Options{})

	var env struct {
		Kind string        `yaml:"kind"`
		Data []model.Entry `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &env))
	assert.Equal(t, model.KindEntries, env.Kind)
	require.Len(t, env.Data, 1)
	assert.Equal(t, []model.Category{model.Electric}, env.Data[0].Categories)
}

func TestGenericTable(t *testing.T) {
	tbl := model.Table{Headers: []string{"TYPE", "COLOR"}, Rows: [][]string{{"fire", "#F08030"}}}
	out := renderString(t, result(model.KindTable, tbl), render.FormatMD, render.Options{})
	assert.Contains(t, out, "| fire | #F08030 |")
}

func TestValidFormat(t *testing.T) {
	for _, f := range render.Formats {
		assert.True(t, render.ValidFormat(f), f)
	}
	assert.False(t, render.ValidFormat("xml"))
}

// ─── Footer ───────────────────────────────────────────────────────────────────

func TestPrintFooter(t *testing.T) {
	r := result(model.KindEntries, nil)
	r.Warnings = []string{"2 of 3 failed"}
	r.Stats = model.ResultStats{Items: 3, DurationMs: 12, HasMore: true}

	var buf bytes.Buffer
	render.PrintFooter(&buf, r, true)
	out := buf.String()
	assert.Contains(t, out, "⚠  2 of 3 failed")
	assert.Contains(t, out, "3 items")
	assert.Contains(t, out, "more available")

	buf.Reset()
	render.PrintFooter(&buf, r, false)
	assert.NotContains(t, buf.String(), "items")
}

package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/derickschaefer/dex/internal/config"
	"github.com/derickschaefer/dex/internal/model"
)

// detailAPI serves pikachu (with species and evolution chain) and mew
// (species without a chain).
type detailAPI struct {
	srv   *httptest.Server
	mu    sync.Mutex
	paths []string
}

func newDetailAPI(t *testing.T) *detailAPI {
	t.Helper()
	a := &detailAPI{}
	a.srv = httptest.NewServer(http.HandlerFunc(a.serve))
	t.Cleanup(a.srv.Close)
	t.Setenv(config.EnvBaseURL, a.srv.URL)
	return a
}

func (a *detailAPI) requested(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.paths {
		if p == path {
			return true
		}
	}
	return false
}

func (a *detailAPI) entry(id int, name, category string) map[string]any {
	var stats []map[string]any
	for _, s := range model.StatOrder {
		stats = append(stats, map[string]any{"base_stat": 50, "effort": 0, "stat": map[string]string{"name": s}})
	}
	return map[string]any{
		"id": id, "name": name, "height": 4, "weight": 60,
		"types": []map[string]any{{"slot": 1, "type": map[string]string{"name": category}}},
		"stats": stats,
		"abilities": []map[string]any{
			{"is_hidden": false, "slot": 1, "ability": map[string]string{"name": "static", "url": a.srv.URL + "/ability/static/"}},
		},
		"moves": []map[string]any{{
			"move": map[string]string{"name": "thunder-shock", "url": a.srv.URL + "/move/thunder-shock/"},
			"version_group_details": []map[string]any{
				{"level_learned_at": 1, "move_learn_method": map[string]string{"name": "level-up"}, "version_group": map[string]string{"name": "red-blue"}},
			},
		}},
		"sprites": map[string]any{},
	}
}

func (a *detailAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.paths = append(a.paths, r.URL.Path)
	a.mu.Unlock()

	var body any
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/pokemon/pikachu", "/pokemon/25":
		body = a.entry(25, "pikachu", "electric")
	case "/pokemon/mew", "/pokemon/151":
		body = a.entry(151, "mew", "psychic")
	case "/pokemon-species/25":
		body = map[string]any{
			"id": 25, "name": "pikachu", "capture_rate": 190,
			"evolution_chain": map[string]string{"url": a.srv.URL + "/evolution-chain/10/"},
			"flavor_text_entries": []map[string]any{
				{"flavor_text": "It keeps its\ftail raised.", "language": map[string]string{"name": "en"}, "version": map[string]string{"name": "red"}},
			},
			"genera": []map[string]any{{"genus": "Mouse Pokémon", "language": map[string]string{"name": "en"}}},
		}
	case "/pokemon-species/151":
		body = map[string]any{
			"id": 151, "name": "mew", "is_mythical": true,
			"genera": []map[string]any{{"genus": "New Species Pokémon", "language": map[string]string{"name": "en"}}},
		}
	case "/evolution-chain/10":
		body = map[string]any{
			"id": 10,
			"chain": map[string]any{
				"is_baby": true,
				"species": map[string]string{"name": "pichu"},
				"evolves_to": []map[string]any{{
					"species":           map[string]string{"name": "pikachu"},
					"evolution_details": []map[string]any{{"trigger": map[string]string{"name": "level-up"}}},
					"evolves_to": []map[string]any{{
						"species": map[string]string{"name": "raichu"},
						"evolution_details": []map[string]any{{
							"trigger": map[string]string{"name": "use-item"},
							"item":    map[string]string{"name": "thunder-stone"},
						}},
					}},
				}},
			},
		}
	case "/move/thunder-shock":
		body = map[string]any{
			"id": 84, "name": "thunder-shock", "power": 40, "accuracy": 100, "pp": 30,
			"damage_class": map[string]string{"name": "special"},
			"type":         map[string]string{"name": "electric"},
		}
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// runDex executes the root command with args and returns stdout.
func runDex(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		getTab, getShiny, getComplete = "", false, false
		globalFlags.Language, globalFlags.Format, globalFlags.Quiet = "", "", false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGetEvolutionTab(t *testing.T) {
	api := newDetailAPI(t)
	out, err := runDex(t, "get", "pikachu", "--tab", "evolution", "--lang", "en", "--quiet")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, want := range []string{"Evolution", "Pichu (baby)", "Raichu", "Item: thunder-stone"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !api.requested("/pokemon-species/25") || !api.requested("/evolution-chain/10/") {
		t.Errorf("species and chain not requested: %v", api.paths)
	}
}

func TestGetInfoTabShowsSpecies(t *testing.T) {
	api := newDetailAPI(t)
	out, err := runDex(t, "get", "pikachu", "--tab", "info", "--lang", "en", "--quiet")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, want := range []string{"Genus", "Mouse Pokémon", "Status", "normal", "It keeps its tail raised."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if api.requested("/evolution-chain/10/") {
		t.Error("info tab should not resolve the evolution chain")
	}
}

func TestGetStatsTabSkipsSpecies(t *testing.T) {
	api := newDetailAPI(t)
	if _, err := runDex(t, "get", "pikachu", "--tab", "stats", "--quiet"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if api.requested("/pokemon-species/25") {
		t.Error("stats tab should not fetch species")
	}
}

func TestGetEvolutionTabWithoutChain(t *testing.T) {
	newDetailAPI(t)
	out, err := runDex(t, "get", "mew", "--tab", "evolution", "--quiet")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, "No evolution data.") {
		t.Errorf("expected an explicit empty evolution section:\n%s", out)
	}
}

func TestGetSeveralWithTab(t *testing.T) {
	newDetailAPI(t)
	out, err := runDex(t, "get", "pikachu", "mew", "--tab", "info", "--lang", "en", "--quiet")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, "Mouse Pokémon") || !strings.Contains(out, "mythical") {
		t.Errorf("each entry should carry its species:\n%s", out)
	}
}

package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/app"
	"github.com/derickschaefer/dex/internal/config"
)

func TestOutputWriterDefault(t *testing.T) {
	globalFlags.Out = ""
	w, closeFn, err := outputWriter(os.Stdout)
	if err != nil {
		t.Fatalf("outputWriter default: %v", err)
	}
	if w != os.Stdout {
		t.Fatalf("expected stdout writer passthrough")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("default closer should be nil error, got: %v", err)
	}
}

func TestOutputWriterFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.txt")
	globalFlags.Out = p
	t.Cleanup(func() { globalFlags.Out = "" })

	w, closeFn, err := outputWriter(os.Stdout)
	if err != nil {
		t.Fatalf("outputWriter file: %v", err)
	}
	if w == os.Stdout {
		t.Fatalf("expected file writer, got stdout")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("closing output writer: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
}

func TestParseIntID(t *testing.T) {
	got, err := parseIntID("25", "entry id")
	if err != nil || got != 25 {
		t.Fatalf("expected 25, got %d (%v)", got, err)
	}
	for _, bad := range []string{"0", "-1", "pikachu", "2.5", ""} {
		if _, err := parseIntID(bad, "entry id"); err == nil {
			t.Errorf("parseIntID(%q): expected error", bad)
		}
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		512:     "512 B",
		2048:    "2.0 KB",
		3 << 20: "3.0 MB",
	}
	for in, want := range cases {
		if got := humanBytes(in); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveFormat(t *testing.T) {
	t.Cleanup(func() { globalFlags.Format = "" })

	globalFlags.Format = ""
	if got := resolveFormat(""); got != "table" {
		t.Errorf("expected table fallback, got %q", got)
	}
	if got := resolveFormat("csv"); got != "csv" {
		t.Errorf("expected config format csv, got %q", got)
	}
	globalFlags.Format = "json"
	if got := resolveFormat("csv"); got != "json" {
		t.Errorf("flag should win over config, got %q", got)
	}
}

func TestReadIdentifiersFromArgs(t *testing.T) {
	ids, err := readIdentifiers(&cobra.Command{}, []string{" Pikachu", "25", "pikachu"})
	if err != nil {
		t.Fatalf("readIdentifiers: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"pikachu", "25"}) {
		t.Errorf("expected [pikachu 25], got %v", ids)
	}
}

func TestReadIdentifiersFromStdin(t *testing.T) {
	c := &cobra.Command{}
	c.SetIn(strings.NewReader("bulbasaur ivysaur\n{\"id\":6,\"name\":\"charizard\"}\n"))
	ids, err := readIdentifiers(c, []string{"-"})
	if err != nil {
		t.Fatalf("readIdentifiers: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"bulbasaur", "ivysaur", "charizard"}) {
		t.Errorf("unexpected ids %v", ids)
	}

	c.SetIn(strings.NewReader("\n\n"))
	if _, err := readIdentifiers(c, []string{"-"}); err == nil {
		t.Error("expected error for empty stdin")
	}
}

func testDeps(concurrency int) *app.Deps {
	return &app.Deps{
		Config: &config.Config{Concurrency: concurrency},
		Logger: slog.Default(),
	}
}

func TestBatchFetchKeepsOrderAndCollectsWarnings(t *testing.T) {
	fetch := func(_ context.Context, id string) (string, error) {
		if id == "missingno" {
			return "", errors.New("not found")
		}
		// Later ids finish first.
		time.Sleep(time.Duration(5-len(id)%5) * time.Millisecond)
		return strings.ToUpper(id), nil
	}

	got, warnings, err := batchFetch(context.Background(), testDeps(4), []string{"mew", "missingno", "abra", "onix"}, fetch)
	if err != nil {
		t.Fatalf("a partial failure must not fail the batch: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"MEW", "ABRA", "ONIX"}) {
		t.Errorf("expected results in input order, got %v", got)
	}
	if len(warnings) != 1 || !strings.HasPrefix(warnings[0], "missingno:") {
		t.Errorf("expected one warning for missingno, got %v", warnings)
	}
}

func TestBatchFetchFailsWhenNothingResolves(t *testing.T) {
	errGone := errors.New("gone")
	fetch := func(_ context.Context, id string) (string, error) {
		return "", errGone
	}

	got, warnings, err := batchFetch(context.Background(), testDeps(2), []string{"missingno", "bad-egg"}, fetch)
	if err == nil || len(got) != 0 {
		t.Fatalf("expected an error and no results, got %v (%v)", got, err)
	}
	if !errors.Is(err, errGone) {
		t.Errorf("per-item causes should stay reachable, got %v", err)
	}
	for _, id := range []string{"missingno", "bad-egg"} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("error should name %s: %v", id, err)
		}
	}
	if len(warnings) != 2 {
		t.Errorf("expected a warning per id, got %v", warnings)
	}
}

func TestBatchFetchRespectsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	fetch := func(_ context.Context, id string) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return id, nil
	}

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	got, _, _ := batchFetch(context.Background(), testDeps(2), ids, fetch)
	if len(got) != len(ids) {
		t.Fatalf("expected %d results, got %d", len(ids), len(got))
	}
	if peak.Load() > 2 {
		t.Errorf("concurrency ceiling exceeded: peak %d", peak.Load())
	}
}

func TestPrintSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	printSimpleTable(&buf, []string{"ID", "NAME"}, func(add func(...string)) {
		add("25", "pikachu")
	})
	out := buf.String()
	if !strings.Contains(out, "pikachu") || !strings.Contains(out, "NAME") {
		t.Errorf("unexpected table output:\n%s", out)
	}
}

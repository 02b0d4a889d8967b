package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/derickschaefer/dex/internal/catalog"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
)

// memGateway serves a fixed catalog from memory.
type memGateway struct {
	entries []model.Entry
}

func (g *memGateway) ListPage(_ context.Context, limit, offset int) (*model.ListPage, error) {
	end := offset + limit
	if end > len(g.entries) {
		end = len(g.entries)
	}
	if offset > end {
		offset = end
	}
	page := &model.ListPage{Count: len(g.entries), HasNext: end < len(g.entries)}
	for _, e := range g.entries[offset:end] {
		page.Results = append(page.Results, model.ListItem{Name: e.Name, URL: e.Name})
	}
	return page, nil
}

func (g *memGateway) FetchByIdentifier(_ context.Context, ident string) (*model.Entry, error) {
	for _, e := range g.entries {
		if e.Name == ident || strconv.Itoa(e.ID) == ident {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("entry %s: not found", ident)
}

func (g *memGateway) FetchDetails(ctx context.Context, refs []string) ([]model.Entry, error) {
	out := make([]model.Entry, 0, len(refs))
	for _, r := range refs {
		e, err := g.FetchByIdentifier(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

func browseEntry(id int, name string, cats ...model.Category) model.Entry {
	e := model.Entry{ID: id, Name: name, Categories: cats}
	for _, s := range model.StatOrder {
		e.Stats = append(e.Stats, model.Stat{Name: s, Base: 50})
	}
	return e
}

func newTestSession(out *bytes.Buffer, format string, quiet bool) *browseSession {
	gw := &memGateway{entries: []model.Entry{
		browseEntry(1, "bulbasaur", model.Grass, model.Poison),
		browseEntry(4, "charmander", model.Fire),
		browseEntry(7, "squirtle", model.Water),
		browseEntry(25, "pikachu", model.Electric),
		browseEntry(26, "raichu", model.Electric),
		browseEntry(37, "vulpix", model.Fire),
	}}
	return &browseSession{
		cat:    catalog.New(gw, catalog.Options{PageSize: 2, BulkLimit: 100}),
		lookup: catalog.NewLookup(gw),
		out:    out,
		format: format,
		quiet:  quiet,
	}
}

func TestBrowseSessionCommands(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out, render.FormatCSV, true)
	ctx := context.Background()

	if err := s.run(ctx, strings.NewReader("")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if v := s.cat.State(); len(v.Entries) != 2 || !v.HasMore {
		t.Fatalf("expected first page of 2 with more, got %d (more=%v)", len(v.Entries), v.HasMore)
	}

	steps := []struct {
		line  string
		names []string
	}{
		{"more", []string{"bulbasaur", "charmander", "squirtle", "pikachu"}},
		{"type fire", []string{"charmander", "vulpix"}},
		{"filter vul", []string{"vulpix"}},
		{"search chu", []string{"pikachu", "raichu"}},
		{"search", []string{"charmander", "vulpix"}},
		{"type -", []string{"bulbasaur", "charmander"}},
		{"reset", []string{"bulbasaur", "charmander"}},
	}
	for _, st := range steps {
		if err := s.exec(ctx, st.line); err != nil {
			t.Fatalf("%q: %v", st.line, err)
		}
		got := s.cat.State().Entries
		var names []string
		for _, e := range got {
			names = append(names, e.Name)
		}
		if strings.Join(names, ",") != strings.Join(st.names, ",") {
			t.Errorf("after %q: expected %v, got %v", st.line, st.names, names)
		}
	}
}

func TestBrowseSessionMoreOutsideBrowse(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out, render.FormatCSV, true)
	ctx := context.Background()

	_ = s.exec(ctx, "type electric")
	out.Reset()
	_ = s.exec(ctx, "more")
	if !strings.Contains(out.String(), "only available while browsing") {
		t.Errorf("expected pagination notice, got:\n%s", out.String())
	}
}

func TestBrowseSessionReportsErrorsAndKeepsGoing(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out, render.FormatCSV, true)
	ctx := context.Background()

	if err := s.exec(ctx, "type plasma"); err != nil {
		t.Fatalf("a bad category must not end the session: %v", err)
	}
	if !strings.Contains(out.String(), "error:") {
		t.Errorf("expected an error line, got:\n%s", out.String())
	}
	if err := s.exec(ctx, "frobnicate"); err != nil {
		t.Fatalf("unknown command must not end the session: %v", err)
	}
	if err := s.exec(ctx, "quit"); err != errQuit {
		t.Errorf("quit should end the session, got %v", err)
	}
}

func TestBrowseSessionOutput(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out, render.FormatTable, false)

	if err := s.run(context.Background(), strings.NewReader("search zzz\nget pikachu\nquit\n")); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"dex> ",
		"[browse • 2 shown • 6 in catalog • more available]",
		`no results for "zzz"`,
		`[global-search("zzz") • 0 shown]`,
		"pikachu",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

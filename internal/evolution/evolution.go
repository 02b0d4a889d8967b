// Package evolution turns an evolution tree into the flat and staged forms
// the presentation layer shows.
package evolution

import (
	"fmt"

	"github.com/gammazero/toposort"

	"github.com/derickschaefer/dex/internal/model"
)

// Step is one species of a flattened chain.
type Step struct {
	Species   string `json:"species" yaml:"species"`
	From      string `json:"from,omitempty" yaml:"from,omitempty"`
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
	Depth     int    `json:"depth" yaml:"depth"`
	IsBaby    bool   `json:"is_baby,omitempty" yaml:"is_baby,omitempty"`
}

// Flatten lists the chain base first, then each child followed by its own
// descendants. Condition is empty for the base.
func Flatten(chain model.EvolutionChain) []Step {
	var out []Step
	var walk func(n model.EvolutionNode, from string, depth int)
	walk = func(n model.EvolutionNode, from string, depth int) {
		out = append(out, Step{
			Species:   n.Species,
			From:      from,
			Condition: n.Condition(),
			Depth:     depth,
			IsBaby:    n.IsBaby,
		})
		for _, child := range n.EvolvesTo {
			walk(child, n.Species, depth+1)
		}
	}
	walk(chain.Root, "", 0)
	return out
}

// Order returns every species so that each appears after the species it
// evolves from.
func Order(chain model.EvolutionChain) ([]string, error) {
	if chain.Root.Species == "" {
		return nil, nil
	}
	if len(chain.Root.EvolvesTo) == 0 {
		return []string{chain.Root.Species}, nil
	}

	edges := make([]toposort.Edge, 0)
	var walk func(n model.EvolutionNode)
	walk = func(n model.EvolutionNode) {
		for _, child := range n.EvolvesTo {
			edges = append(edges, toposort.Edge{n.Species, child.Species})
			walk(child)
		}
	}
	walk(chain.Root)

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("evolution chain %d: %w", chain.ID, err)
	}
	out := make([]string, 0, len(sorted))
	for _, node := range sorted {
		out = append(out, node.(string))
	}
	return out, nil
}

// Stages groups the ordered species by their distance from the base:
// stage 0 is the base, stage 1 its direct evolutions, and so on.
func Stages(chain model.EvolutionChain) ([][]string, error) {
	order, err := Order(chain)
	if err != nil {
		return nil, err
	}
	depth := make(map[string]int)
	for _, s := range Flatten(chain) {
		depth[s.Species] = s.Depth
	}

	var stages [][]string
	for _, name := range order {
		d := depth[name]
		for len(stages) <= d {
			stages = append(stages, nil)
		}
		stages[d] = append(stages[d], name)
	}
	return stages, nil
}

package evolution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/dex/internal/evolution"
	"github.com/derickschaefer/dex/internal/model"
)

func level(n int) *int { return &n }

func eeveeChain() model.EvolutionChain {
	return model.EvolutionChain{
		ID: 67,
		Root: model.EvolutionNode{
			Species: "eevee",
			EvolvesTo: []model.EvolutionNode{
				{Species: "vaporeon", Triggers: []model.EvolutionTrigger{{Kind: "use-item", Item: "water-stone"}}},
				{Species: "jolteon", Triggers: []model.EvolutionTrigger{{Kind: "use-item", Item: "thunder-stone"}}},
				{Species: "espeon", Triggers: []model.EvolutionTrigger{{Kind: "level-up"}}},
			},
		},
	}
}

func bulbasaurChain() model.EvolutionChain {
	return model.EvolutionChain{
		ID: 1,
		Root: model.EvolutionNode{
			Species: "bulbasaur",
			EvolvesTo: []model.EvolutionNode{{
				Species:  "ivysaur",
				Triggers: []model.EvolutionTrigger{{Kind: "level-up", MinLevel: level(16)}},
				EvolvesTo: []model.EvolutionNode{{
					Species:  "venusaur",
					Triggers: []model.EvolutionTrigger{{Kind: "level-up", MinLevel: level(32)}},
				}},
			}},
		},
	}
}

func TestFlattenLinearChain(t *testing.T) {
	steps := evolution.Flatten(bulbasaurChain())
	require.Len(t, steps, 3)

	assert.Equal(t, evolution.Step{Species: "bulbasaur"}, steps[0])
	assert.Equal(t, "ivysaur", steps[1].Species)
	assert.Equal(t, "Level 16", steps[1].Condition)
	assert.Equal(t, "bulbasaur", steps[1].From)
	assert.Equal(t, "Level 32", steps[2].Condition)
	assert.Equal(t, 2, steps[2].Depth)
}

func TestFlattenBranchingChain(t *testing.T) {
	steps := evolution.Flatten(eeveeChain())
	var got []string
	for _, s := range steps {
		got = append(got, s.Species+":"+s.Condition)
	}
	assert.Equal(t, []string{
		"eevee:",
		"vaporeon:Item: water-stone",
		"jolteon:Item: thunder-stone",
		"espeon:level-up",
	}, got)
}

func TestOrderPlacesParentsFirst(t *testing.T) {
	for _, chain := range []model.EvolutionChain{bulbasaurChain(), eeveeChain()} {
		order, err := evolution.Order(chain)
		require.NoError(t, err)

		pos := map[string]int{}
		for i, name := range order {
			pos[name] = i
		}
		for _, s := range evolution.Flatten(chain) {
			require.Contains(t, pos, s.Species)
			if s.From != "" {
				assert.Less(t, pos[s.From], pos[s.Species], "%s before %s", s.From, s.Species)
			}
		}
	}
}

func TestOrderSingleSpecies(t *testing.T) {
	order, err := evolution.Order(model.EvolutionChain{Root: model.EvolutionNode{Species: "tauros"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"tauros"}, order)

	order, err = evolution.Order(model.EvolutionChain{})
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestStages(t *testing.T) {
	stages, err := evolution.Stages(bulbasaurChain())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"bulbasaur"}, {"ivysaur"}, {"venusaur"}}, stages)

	stages, err = evolution.Stages(eeveeChain())
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, []string{"eevee"}, stages[0])
	assert.ElementsMatch(t, []string{"vaporeon", "jolteon", "espeon"}, stages[1])
}

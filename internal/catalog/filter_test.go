package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/derickschaefer/dex/internal/model"
)

func sample() []model.Entry {
	return []model.Entry{
		{ID: 1, Name: "bulbasaur"},
		{ID: 25, Name: "pikachu"},
		{ID: 26, Name: "raichu"},
		{ID: 250, Name: "ho-oh"},
	}
}

func TestFilterByNameAndID(t *testing.T) {
	tests := []struct {
		term string
		want []int
	}{
		{"", []int{1, 25, 26, 250}},
		{"CHU", []int{25, 26}},
		{"  chu  ", []int{25, 26}},
		{"25", []int{25, 250}},
		{"2", []int{25, 26, 250}},
		{"-oh", []int{250}},
		{"zzz", []int{}},
	}
	for _, tc := range tests {
		t.Run(tc.term, func(t *testing.T) {
			got := Filter(sample(), tc.term)
			ids := make([]int, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	in := sample()
	before := append([]model.Entry(nil), in...)

	out := Filter(in, "chu")
	out[0].Name = "changed"

	assert.Equal(t, before, in)
}

func TestFilterEmptyTermReturnsCopy(t *testing.T) {
	in := sample()
	out := Filter(in, "")
	out[0].Name = "changed"
	assert.Equal(t, "bulbasaur", in[0].Name)
}

func TestMatchNames(t *testing.T) {
	items := []model.ListItem{{Name: "pikachu"}, {Name: "raichu"}, {Name: "eevee"}}
	assert.Len(t, MatchNames(items, "Chu"), 2)
	assert.Empty(t, MatchNames(items, "mew"))
}

func TestModeAccessors(t *testing.T) {
	m := GlobalSearch("chu", model.Fire)
	term, ok := m.Term()
	assert.True(t, ok)
	assert.Equal(t, "chu", term)
	c, ok := m.Category()
	assert.True(t, ok)
	assert.Equal(t, model.Fire, c)
	assert.Equal(t, `global-search("chu")`, m.String())

	_, ok = Browse().Category()
	assert.False(t, ok)
	_, ok = TypeFilter(model.Water).Term()
	assert.False(t, ok)
	assert.Equal(t, "type-filter(water)", TypeFilter(model.Water).String())
	assert.Equal(t, ModeNone, Mode{}.Kind())
}

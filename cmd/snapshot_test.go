package cmd

import (
	"reflect"
	"testing"

	"github.com/anmitsu/go-shlex"
)

func TestSnapshotCommandLineSplitting(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"get pikachu", []string{"get", "pikachu"}},
		{"  list   --pages 2  ", []string{"list", "--pages", "2"}},
		{`search "mr mime"`, []string{"search", "mr mime"}},
		{`search 'farfetch\d'`, []string{"search", `farfetch\d`}},
		{`search mr\ mime`, []string{"search", "mr mime"}},
		{"", nil},
	}
	for _, c := range cases {
		got, err := shlex.Split(c.in, true)
		if err != nil {
			t.Errorf("Split(%q): %v", c.in, err)
			continue
		}
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Split(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSnapshotCommandLineRejectsUnbalancedQuotes(t *testing.T) {
	for _, in := range []string{`search "mr mime`, `get 'x`, `get x\`} {
		if _, err := shlex.Split(in, true); err == nil {
			t.Errorf("Split(%q): expected error", in)
		}
	}
}

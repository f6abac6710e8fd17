package main

import (
	"reflect"
	"testing"
)

func TestRewriteCardLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"no args", []string{"cardwrite"}, []string{"cardwrite"}},
		{"card id first", []string{"cardwrite", "card-abc"}, []string{"cardwrite", "cards", "show", "card-abc"}},
		{"after value flag", []string{"cardwrite", "--dir", "./doc", "card-abc"}, []string{"cardwrite", "--dir", "./doc", "cards", "show", "card-abc"}},
		{"after equals flag", []string{"cardwrite", "--format=edn", "card-abc"}, []string{"cardwrite", "--format=edn", "cards", "show", "card-abc"}},
		{"after bool flag", []string{"cardwrite", "--pretty", "card-abc"}, []string{"cardwrite", "--pretty", "cards", "show", "card-abc"}},
		{"after double dash", []string{"cardwrite", "--", "card-abc"}, []string{"cardwrite", "--", "cards", "show", "card-abc"}},
		{"dir named like a card", []string{"cardwrite", "--dir", "card-abc"}, []string{"cardwrite", "--dir", "card-abc"}},
		{"subcommand untouched", []string{"cardwrite", "cards", "show", "card-abc"}, []string{"cardwrite", "cards", "show", "card-abc"}},
		{"bare prefix", []string{"cardwrite", "card-"}, []string{"cardwrite", "card-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteCardLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteCardLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}

package format

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type sample struct {
	ID      string    `json:"id"`
	Cards   int       `json:"cards"`
	Ratio   float64   `json:"ratio"`
	Tags    []string  `json:"tags"`
	Parent  *string   `json:"parentId"`
	TakenAt time.Time `json:"takenAt"`
}

func sampleValue() map[string]any {
	return map[string]any{
		"data": sample{
			ID:      "card-1",
			Cards:   3,
			Ratio:   0.5,
			Tags:    []string{"a", "b"},
			TakenAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}

func TestWrite_EDN(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleValue(), "edn", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{:data {:cards 3 :id "card-1" :parentId nil :ratio 0.5 :tags ["a" "b"] :takenAt "2026-01-02T03:04:05Z"}}` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected edn:\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWrite_EDNPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"xs": []int{1, 2}, "empty": []int{}}, "edn", true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "{\n  :empty []\n  :xs [\n    1\n    2\n  ]\n}\n"
	if buf.String() != want {
		t.Fatalf("unexpected pretty edn:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleValue(), "YAML", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, want := range []string{"data:\n", "  id: card-1\n", "  cards: 3\n", "  parentId: null\n", "    - a\n"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in:\n%s", want, buf.String())
		}
	}
}

func TestWrite_JSONKeepsHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]string{"html": "<p>"}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "{\"html\":\"<p>\"}\n" {
		t.Fatalf("unexpected json %q", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, 1, "toml", false)
	if err == nil || !strings.Contains(err.Error(), "edn|json|yaml") {
		t.Fatalf("expected an unknown format error, got %v", err)
	}
}

func TestKeyword(t *testing.T) {
	cases := map[string]string{
		"parentId":  ":parentId",
		"has space": ":has-space",
		"a/b":       ":a-b",
		"":          ":_",
	}
	for in, want := range cases {
		if got := keyword(in); got != want {
			t.Fatalf("keyword(%q) = %q, want %q", in, got, want)
		}
	}
}

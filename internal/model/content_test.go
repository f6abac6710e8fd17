package model

import "testing"

func TestNormalizeContent(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{"\tindent", "    indent"},
		{"bell\a", "bell"},
		{"bad\xffbyte", "badbyte"},
		{"emoji 😀", "emoji 😀"},
	}
	for _, tc := range cases {
		if got := NormalizeContent(tc.in); got != tc.want {
			t.Fatalf("NormalizeContent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestColumn_BlocksAndIndexOf(t *testing.T) {
	c := Column{Groups: []ParentGroup{
		{ParentID: "p1", Blocks: []Block{{ID: "a"}, {ID: "b"}}},
		{ParentID: "p2", Blocks: []Block{{ID: "c"}}},
	}}
	if got := c.Blocks(); len(got) != 3 || got[2].ID != "c" {
		t.Fatalf("unexpected blocks: %+v", got)
	}
	if c.IndexOf("c") != 2 || c.IndexOf("zz") != -1 {
		t.Fatalf("unexpected IndexOf results")
	}
}

func TestSnapshot_Content(t *testing.T) {
	var s Snapshot
	if _, ok := s.Content("a"); ok {
		t.Fatalf("expected no content in an empty snapshot")
	}
	s.Blocks = map[string]string{"a": "x"}
	if c, ok := s.Content("a"); !ok || c != "x" {
		t.Fatalf("unexpected content %q ok=%v", c, ok)
	}
}

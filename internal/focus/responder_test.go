package focus

import "testing"

func TestResponderTracker(t *testing.T) {
	tr := NewResponderTracker()
	a := &fakeSurface{text: "a"}
	b := &fakeSurface{text: "b"}

	tr.Remember(a, "A")
	tr.Remember(b, "B")
	tr.Remember(nil, "C")
	tr.Remember(a, "")
	if tr.Len() != 2 {
		t.Fatalf("expected 2 mappings, got %d", tr.Len())
	}
	if id, ok := tr.BlockFor(a); !ok || id != "A" {
		t.Fatalf("expected a -> A, got %q ok=%v", id, ok)
	}

	// The surface got reused for another block.
	tr.Remember(a, "C")
	if !tr.isStale(a, "A") {
		t.Fatalf("expected a to be stale for A")
	}
	if tr.isStale(a, "C") {
		t.Fatalf("expected a to be current for C")
	}
	if tr.isStale(&fakeSurface{}, "A") {
		t.Fatalf("unknown surfaces are never stale")
	}

	tr.forgetBlock("C")
	if _, ok := tr.BlockFor(a); ok {
		t.Fatalf("expected a forgotten with its block")
	}
	tr.Forget(b)
	if tr.Len() != 0 {
		t.Fatalf("expected empty tracker, got %d", tr.Len())
	}

	tr.Remember(a, "A")
	tr.Clear()
	if _, ok := tr.BlockFor(a); ok || tr.Len() != 0 {
		t.Fatalf("expected Clear to drop everything")
	}
	if _, ok := tr.BlockFor(nil); ok {
		t.Fatalf("nil surface must not resolve")
	}
}

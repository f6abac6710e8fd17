package focus

import (
	"strings"
	"testing"
	"time"
)

func TestCaret_RetriesUntilContentMatches(t *testing.T) {
	h := newHarness(DefaultConfig(), "alpha", "beta")
	h.enterAt("A", 5)

	// The host has not re-rendered B yet.
	b := h.surface("B")
	b.text = "stale"
	b.caret = 2

	h.e.Navigator.Navigate(Down, false)
	if b.caretSets != 0 {
		t.Fatalf("caret must not land on a surface with mismatched content")
	}
	h.loop.advance(45 * time.Millisecond)
	if b.caretSets != 0 {
		t.Fatalf("caret landed before content caught up")
	}

	b.text = "beta"
	h.loop.advance(20 * time.Millisecond)
	if b.caret != 0 {
		t.Fatalf("expected caret 0 once content matched, got %d", b.caret)
	}
	st := h.e.Caret.Stats()
	if st.Retried < 2 || st.Exhausted != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if got := h.e.State().EditingSurfaceBlockID; got != "B" {
		t.Fatalf("expected editing surface B, got %q", got)
	}
}

func TestCaret_ExhaustionIsSilent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CaretRetries = 3
	h := newHarness(cfg, "alpha", "beta")
	var logs []string
	h.e.logf = func(format string, args ...any) {
		logs = append(logs, format)
	}
	h.enterAt("A", 5)
	h.surface("B").text = "never matches"

	h.e.Navigator.Navigate(Down, false)
	h.loop.advance(time.Second)

	st := h.e.Caret.Stats()
	if st.Exhausted != 1 || st.Retried != 3 {
		t.Fatalf("expected 3 retries then exhaustion, got %+v", st)
	}
	if h.loop.pending() != 0 {
		t.Fatalf("expected no tasks left, got %d", h.loop.pending())
	}
	if got := h.e.State().ActiveBlockID; got != "B" {
		t.Fatalf("exhaustion must not roll back the switch, got %q", got)
	}
	found := false
	for _, l := range logs {
		if strings.HasPrefix(l, "caret abandoned") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an abandoned caret to be logged, got %v", logs)
	}
}

func TestCaret_SupersededRequestNeverLands(t *testing.T) {
	h := newHarness(DefaultConfig(), "alpha", "beta", "gamma")
	h.enterAt("A", 0)
	h.host.refuseFocus = true

	h.e.Navigator.Activate("B", CaretAtEnd())
	first := h.e.Token()
	h.loop.advance(30 * time.Millisecond)
	h.e.Navigator.Activate("C", CaretAtEnd())
	if h.e.Token() <= first {
		t.Fatalf("expected a strictly newer token")
	}

	h.host.refuseFocus = false
	h.loop.advance(time.Second)

	if got := h.surface("B").caretSets; got != 0 {
		t.Fatalf("superseded request touched B %d times", got)
	}
	if got := h.surface("C").Caret(); got != 5 {
		t.Fatalf("expected caret at end of C, got %d", got)
	}
	if h.e.Caret.Stats().Dropped == 0 {
		t.Fatalf("expected the stale request to be dropped")
	}
}

func TestCaret_DelayedFocusHandoff(t *testing.T) {
	h := newHarness(DefaultConfig(), "alpha", "beta")
	h.host.focusDelay = 50 * time.Millisecond
	h.enterAt("A", 3)

	if h.surface("A").caretSets != 0 {
		t.Fatalf("caret applied before the host focused the surface")
	}
	h.loop.advance(100 * time.Millisecond)
	if got := h.surface("A").Caret(); got != 3 {
		t.Fatalf("expected caret 3 after focus arrived, got %d", got)
	}
}

func TestCaret_FollowUpsReapplyUnlessUserEdited(t *testing.T) {
	h := newHarness(DefaultConfig(), "alpha", "beta")
	h.enterAt("A", 5)

	// A late host reset moves the caret away.
	h.surface("A").caret = 0
	h.loop.advance(70 * time.Millisecond)
	if got := h.surface("A").Caret(); got != 5 {
		t.Fatalf("expected follow-up to restore caret 5, got %d", got)
	}

	h.surface("A").caret = 2
	h.host.typeText(h.e, "A", "alXpha")
	h.surface("A").caret = 3
	h.loop.advance(200 * time.Millisecond)
	if got := h.surface("A").Caret(); got != 3 {
		t.Fatalf("follow-up overrode the user's caret: %d", got)
	}
}

func TestCaret_CancelDropsFollowUps(t *testing.T) {
	h := newHarness(DefaultConfig(), "alpha")
	h.enterAt("A", 5)

	h.surface("A").caret = 1
	h.e.Caret.Cancel()
	h.loop.advance(time.Second)
	if got := h.surface("A").Caret(); got != 1 {
		t.Fatalf("expected caret to stay at 1, got %d", got)
	}
}

func TestCaret_OffsetsAreUTF16(t *testing.T) {
	// U+1F600 takes two UTF-16 code units.
	h := newHarness(DefaultConfig(), "a\U0001F600b", "next")
	h.enterAt("B", 0)

	h.e.Navigator.OnClick("A", h.surface("A"), 99)
	if got := h.surface("A").Caret(); got != 4 {
		t.Fatalf("expected caret clamped to 4 code units, got %d", got)
	}
	if got := h.lis.ensured[len(h.lis.ensured)-1]; got != 4 {
		t.Fatalf("expected ensured offset 4, got %d", got)
	}
}

func TestCaret_TokensIncreaseAcrossActivations(t *testing.T) {
	h := newHarness(DefaultConfig(), "a", "b", "c")
	h.enterAt("A", 0)
	last := h.e.Token()
	for _, id := range []string{"B", "C", "A", "C"} {
		h.e.Navigator.Activate(id, CaretAtStart())
		if h.e.Token() <= last {
			t.Fatalf("token did not increase on activation of %s", id)
		}
		last = h.e.Token()
	}
}

func TestCaret_NotInFocusModeIsNoop(t *testing.T) {
	h := newHarness(DefaultConfig(), "alpha")
	h.e.Caret.Schedule(CaretRequest{Token: h.e.Token(), TargetBlockID: "A", TargetOffset: 3, placement: CaretAt})
	if h.surface("A").caretSets != 0 || h.host.requests != 0 {
		t.Fatalf("caret request acted outside focus mode")
	}
}

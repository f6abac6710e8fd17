package store

import (
	"errors"
	"testing"
)

func TestRankBetween(t *testing.T) {
	cases := []struct {
		lo, hi, want string
	}{
		{"", "", "h"},
		{"h", "", "q"},
		{"", "h", "8"},
		{"a", "b", "ah"},
		{"a0", "a1", "a0h"},
		{"az", "b", "azh"},
		{"A", "C", "b"},
	}
	for _, tc := range cases {
		got, err := RankBetween(tc.lo, tc.hi)
		if err != nil {
			t.Fatalf("RankBetween(%q, %q): %v", tc.lo, tc.hi, err)
		}
		if got != tc.want {
			t.Fatalf("RankBetween(%q, %q) = %q, want %q", tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestRankBetween_PrefixAdjacent_NoSpace(t *testing.T) {
	// "y" < "y0" but nothing sorts strictly between them: end-of-string sorts
	// before '0', the smallest digit.
	if _, err := RankBetween("y", "y0"); !errors.Is(err, ErrNoSpace) {
		t.Fatalf("expected ErrNoSpace, got %v", err)
	}
}

func TestRankBetween_RejectsBadBounds(t *testing.T) {
	if _, err := RankBetween("b", "a"); err == nil {
		t.Fatalf("expected error for inverted bounds")
	}
	if _, err := RankBetween("!a", ""); err == nil {
		t.Fatalf("expected error for invalid character")
	}
}

func TestRankBetween_RepeatedInsertsStayOrdered(t *testing.T) {
	lo, hi := "a", "b"
	for i := 0; i < 50; i++ {
		r, err := RankBetween(lo, hi)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !(lo < r && r < hi) {
			t.Fatalf("step %d: %q not between %q and %q", i, r, lo, hi)
		}
		if i%2 == 0 {
			lo = r
		} else {
			hi = r
		}
	}
}

func TestSpreadRanks(t *testing.T) {
	for _, n := range []int{0, 1, 3, 35, 36, 40, 2000} {
		rs := spreadRanks(n)
		if len(rs) != n {
			t.Fatalf("n=%d: got %d ranks", n, len(rs))
		}
		for i := 1; i < len(rs); i++ {
			if !(rs[i-1] < rs[i]) {
				t.Fatalf("n=%d: ranks not increasing at %d: %q >= %q", n, i, rs[i-1], rs[i])
			}
			if len(rs[i]) != len(rs[0]) {
				t.Fatalf("n=%d: uneven widths", n)
			}
		}
	}
	if got := spreadRanks(3); got[0] != "9" || got[1] != "i" || got[2] != "r" {
		t.Fatalf("unexpected spread: %v", got)
	}
}

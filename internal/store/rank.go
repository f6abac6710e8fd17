package store

import (
	"errors"
	"fmt"
	"strings"
)

// Siblings are ordered by comparing rank strings byte-wise. Ranks use the
// lowercase base36 alphabet below, so "" < "0" < "00" < "1" < ... < "z".
const rankDigits = "0123456789abcdefghijklmnopqrstuvwxyz"

func rankDigit(c byte) (int, error) {
	if i := strings.IndexByte(rankDigits, c); i >= 0 {
		return i, nil
	}
	return 0, fmt.Errorf("rank: invalid character %q", c)
}

func normalizeRank(r string) string {
	return strings.ToLower(strings.TrimSpace(r))
}

// RankBetween returns a rank that sorts strictly between lo and hi. An empty
// bound is open. It returns ErrNoSpace when hi extends lo by zeros only.
func RankBetween(lo, hi string) (string, error) {
	lo, hi = normalizeRank(lo), normalizeRank(hi)
	if lo != "" && hi != "" && lo >= hi {
		return "", errors.New("rank: lower bound must sort before upper bound")
	}

	open := hi == ""
	prefix := make([]byte, 0, len(lo)+1)
	for i := 0; i < 256; i++ {
		dl, dh := 0, len(rankDigits)-1
		if i < len(lo) {
			d, err := rankDigit(lo[i])
			if err != nil {
				return "", err
			}
			dl = d
		}
		if !open {
			if i >= len(hi) {
				return "", ErrNoSpace
			}
			d, err := rankDigit(hi[i])
			if err != nil {
				return "", err
			}
			dh = d
		}
		switch {
		case dl == dh:
			prefix = append(prefix, rankDigits[dl])
		case dh-dl > 1:
			prefix = append(prefix, rankDigits[dl+(dh-dl)/2])
			return rankInside(string(prefix), lo, hi)
		default:
			// Neighbouring digits: keep lo's digit; everything after it is
			// already below hi.
			prefix = append(prefix, rankDigits[dl])
			open = true
		}
	}
	return "", ErrNoSpace
}

func rankInside(r, lo, hi string) (string, error) {
	if r == "" || (lo != "" && r <= lo) || (hi != "" && r >= hi) {
		return "", ErrNoSpace
	}
	return r, nil
}

func RankAfter(lo string) (string, error)  { return RankBetween(lo, "") }
func RankBefore(hi string) (string, error) { return RankBetween("", hi) }
func RankInitial() (string, error)         { return RankBetween("", "") }

// spreadRanks returns n increasing ranks of equal width, evenly spaced over
// the rank space. It is used to renumber a sibling group that ran out of room.
func spreadRanks(n int) []string {
	if n <= 0 {
		return nil
	}
	base := len(rankDigits)
	width, space := 1, base
	for space <= n+1 {
		width++
		space *= base
	}
	step := space / (n + 1)
	out := make([]string, n)
	for i := range out {
		v := (i + 1) * step
		b := make([]byte, width)
		for j := width - 1; j >= 0; j-- {
			b[j] = rankDigits[v%base]
			v /= base
		}
		out[i] = string(b)
	}
	return out
}

package focus

import (
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// ClampOffset clamps a UTF-16 offset to [0, UTF16Len(s)].
func ClampOffset(s string, offset int) int {
	if offset < 0 {
		return 0
	}
	if n := UTF16Len(s); offset > n {
		return n
	}
	return offset
}

// RuneIndex converts a UTF-16 offset into a rune index. An offset that falls
// inside a surrogate pair resolves to the rune that starts the pair.
func RuneIndex(s string, offset int) int {
	offset = ClampOffset(s, offset)
	units, runes := 0, 0
	for _, r := range s {
		w := utf16.RuneLen(r)
		if units+w > offset {
			break
		}
		units += w
		runes++
	}
	return runes
}

// UTF16Offset converts a rune index into a UTF-16 offset.
func UTF16Offset(s string, runeIdx int) int {
	if runeIdx <= 0 {
		return 0
	}
	units, runes := 0, 0
	for _, r := range s {
		if runes == runeIdx {
			break
		}
		units += utf16.RuneLen(r)
		runes++
	}
	return units
}

// ByteIndex converts a UTF-16 offset into a byte index of s.
func ByteIndex(s string, offset int) int {
	ri := RuneIndex(s, offset)
	i := 0
	for n := 0; n < ri && i < len(s); n++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

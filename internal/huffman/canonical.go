package huffman

import (
	"cmp"
	"slices"
)

// BuildCanonicalCodes assigns canonical codes from code lengths.
//
// Symbols are ordered by (length, symbol); codes count up from zero and
// are shifted left whenever the length grows. The same lengths always
// yield the same codes. Over-subscribed length tables are rejected.
func BuildCanonicalCodes(lengths []uint8) ([]uint64, error) {
	type entry struct {
		symbol int
		length uint8
	}
	entries := make([]entry, 0, len(lengths))
	for s, l := range lengths {
		if l == 0 {
			continue
		}
		if l > MaxCodeLength {
			return nil, ErrCodeTooLong
		}
		entries = append(entries, entry{symbol: s, length: l})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.length, b.length); c != 0 {
			return c
		}
		return cmp.Compare(a.symbol, b.symbol)
	})

	codes := make([]uint64, len(lengths))
	var code uint64
	var prevLen uint8
	for i, e := range entries {
		if e.length > prevLen {
			code <<= e.length - prevLen
			prevLen = e.length
		}
		if e.length < MaxCodeLength && code>>e.length != 0 {
			return nil, ErrCorrupt
		}
		if i > 0 && e.length == MaxCodeLength && code == 0 {
			// wrapped around the 64-bit register
			return nil, ErrCorrupt
		}
		codes[e.symbol] = code
		code++
	}
	return codes, nil
}

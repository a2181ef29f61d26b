package huffman

import (
	"container/heap"
	"errors"
)

// MaxCodeLength is the longest code the coder supports. It fits the
// one-byte length field of the container and the 64-bit code register.
const MaxCodeLength = 64

var (
	// ErrNoSymbols is returned when every frequency is zero.
	ErrNoSymbols = errors.New("huffman: all frequencies are zero")
	// ErrCodeTooLong is returned when a code length exceeds MaxCodeLength.
	ErrCodeTooLong = errors.New("huffman: code length overflow")
	// ErrCorrupt is returned for code tables or bit sequences that do not form a valid prefix code.
	ErrCorrupt = errors.New("huffman: corrupted code")
	// ErrUnexpectedEOF is returned when the bitstream ends in the middle of a symbol.
	ErrUnexpectedEOF = errors.New("huffman: unexpected end of bitstream")
	// ErrUnknownSymbol is returned when encoding a symbol that has no code.
	ErrUnknownSymbol = errors.New("huffman: symbol has no code")
)

type buildNode struct {
	symbol int // -1 for internal and synthetic nodes
	freq   uint64
	seq    int // insertion order, breaks frequency ties
	left   int
	right  int
}

// buildHeap is a min-heap of arena indices ordered by (freq, seq).
type buildHeap struct {
	arena []buildNode
	items []int
}

func (h *buildHeap) Len() int { return len(h.items) }

func (h *buildHeap) Less(i, j int) bool {
	a, b := &h.arena[h.items[i]], &h.arena[h.items[j]]
	if a.freq != b.freq {
		return a.freq < b.freq
	}
	return a.seq < b.seq
}

func (h *buildHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *buildHeap) Push(x any) { h.items = append(h.items, x.(int)) }

func (h *buildHeap) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}

func (h *buildHeap) add(symbol int, freq uint64, left, right int) {
	h.arena = append(h.arena, buildNode{
		symbol: symbol,
		freq:   freq,
		seq:    len(h.arena),
		left:   left,
		right:  right,
	})
	heap.Push(h, len(h.arena)-1)
}

// BuildCodeLengths returns the Huffman code length of every symbol.
// Symbols with zero frequency get length 0. Ties in the merge order are
// broken by insertion order, so the result is fully deterministic.
func BuildCodeLengths(freq []uint64) ([]uint8, error) {
	h := &buildHeap{
		arena: make([]buildNode, 0, 2*len(freq)+1),
		items: make([]int, 0, len(freq)+1),
	}
	for s, f := range freq {
		if f > 0 {
			h.add(s, f, -1, -1)
		}
	}
	if h.Len() == 0 {
		return nil, ErrNoSymbols
	}
	if h.Len() == 1 {
		// A lone symbol still needs one bit.
		h.add(-1, 0, -1, -1)
	}

	for h.Len() > 1 {
		first := heap.Pop(h).(int)
		second := heap.Pop(h).(int)
		h.add(-1, h.arena[first].freq+h.arena[second].freq, first, second)
	}
	root := heap.Pop(h).(int)

	lengths := make([]uint8, len(freq))
	if err := assignDepths(h.arena, root, lengths); err != nil {
		return nil, err
	}
	return lengths, nil
}

func assignDepths(arena []buildNode, root int, lengths []uint8) error {
	type frame struct {
		node  int
		depth int
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &arena[f.node]
		if n.left < 0 && n.right < 0 {
			if n.symbol < 0 {
				continue
			}
			depth := f.depth
			if depth == 0 {
				depth = 1
			}
			if depth > MaxCodeLength {
				return ErrCodeTooLong
			}
			lengths[n.symbol] = uint8(depth)
			continue
		}
		if n.right >= 0 {
			stack = append(stack, frame{node: n.right, depth: f.depth + 1})
		}
		if n.left >= 0 {
			stack = append(stack, frame{node: n.left, depth: f.depth + 1})
		}
	}
	return nil
}

// Frequencies counts how often each symbol in [0, size) occurs.
func Frequencies(symbols []uint32, size int) ([]uint64, error) {
	freq := make([]uint64, size)
	for _, s := range symbols {
		if int(s) >= size {
			return nil, ErrUnknownSymbol
		}
		freq[s]++
	}
	return freq, nil
}

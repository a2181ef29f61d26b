package huffman

import (
	"github.com/hupe1980/pkcc/internal/bitstream"
)

const noChild = -1

// node is one entry of the decode trie arena.
type node struct {
	symbol int32 // -1 for internal nodes
	left   int32
	right  int32
}

// Tree is a binary decode trie stored as an arena; the root is node 0.
// A built Tree is read-only and safe to share between goroutines.
type Tree struct {
	nodes []node
}

func (t *Tree) newNode() int32 {
	t.nodes = append(t.nodes, node{symbol: -1, left: noChild, right: noChild})
	return int32(len(t.nodes) - 1)
}

// BuildDecodingTree rebuilds the decode trie from code lengths and codes.
// Each symbol with a nonzero length is inserted by walking its code from
// the most significant bit. Codes that collide or prefix one another are
// rejected with ErrCorrupt.
func BuildDecodingTree(lengths []uint8, codes []uint64) (*Tree, error) {
	if len(codes) < len(lengths) {
		return nil, ErrCorrupt
	}
	t := &Tree{nodes: make([]node, 0, 2*len(lengths)+1)}
	t.newNode()

	for s, l := range lengths {
		if l == 0 {
			continue
		}
		if l > MaxCodeLength {
			return nil, ErrCodeTooLong
		}
		code := codes[s]
		cur := int32(0)
		for i := int(l) - 1; i >= 0; i-- {
			if t.nodes[cur].symbol >= 0 {
				return nil, ErrCorrupt
			}
			if (code>>uint(i))&1 == 0 {
				if t.nodes[cur].left == noChild {
					child := t.newNode()
					t.nodes[cur].left = child
				}
				cur = t.nodes[cur].left
			} else {
				if t.nodes[cur].right == noChild {
					child := t.newNode()
					t.nodes[cur].right = child
				}
				cur = t.nodes[cur].right
			}
		}
		n := &t.nodes[cur]
		if n.symbol >= 0 || n.left != noChild || n.right != noChild {
			return nil, ErrCorrupt
		}
		n.symbol = int32(s)
	}
	return t, nil
}

// Len returns the number of nodes in the trie.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// DecodeSymbol reads bits until a leaf is reached: 0 goes left, 1 goes right.
// Running out of bits before a leaf yields ErrUnexpectedEOF.
func DecodeSymbol(r *bitstream.Reader, t *Tree) (int, error) {
	cur := int32(0)
	for {
		n := t.nodes[cur]
		if n.symbol >= 0 {
			return int(n.symbol), nil
		}
		bit, ok, err := r.ReadBit()
		if err != nil {
			return -1, err
		}
		if !ok {
			return -1, ErrUnexpectedEOF
		}
		next := n.left
		if bit == 1 {
			next = n.right
		}
		if next == noChild {
			return -1, ErrCorrupt
		}
		cur = next
	}
}

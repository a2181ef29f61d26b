package huffman

import (
	"github.com/hupe1980/pkcc/internal/bitstream"
)

// Encoder writes symbols using a canonical code table.
type Encoder struct {
	lengths []uint8
	codes   []uint64
}

// NewEncoder builds the canonical codes for lengths.
func NewEncoder(lengths []uint8) (*Encoder, error) {
	codes, err := BuildCanonicalCodes(lengths)
	if err != nil {
		return nil, err
	}
	return &Encoder{lengths: lengths, codes: codes}, nil
}

// Lengths returns the code length table.
func (e *Encoder) Lengths() []uint8 { return e.lengths }

// Codes returns the canonical codes.
func (e *Encoder) Codes() []uint64 { return e.codes }

// Encode writes the code of symbol to w.
func (e *Encoder) Encode(w *bitstream.Writer, symbol int) error {
	if symbol < 0 || symbol >= len(e.lengths) || e.lengths[symbol] == 0 {
		return ErrUnknownSymbol
	}
	return w.WriteBits(e.codes[symbol], e.lengths[symbol])
}

// EncodeAll writes every symbol in order.
func (e *Encoder) EncodeAll(w *bitstream.Writer, symbols []uint32) error {
	for _, s := range symbols {
		if err := e.Encode(w, int(s)); err != nil {
			return err
		}
	}
	return nil
}

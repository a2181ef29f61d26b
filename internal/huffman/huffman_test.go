package huffman

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/hupe1980/pkcc/internal/bitstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCodeLengths_Classic(t *testing.T) {
	freq := []uint64{5, 9, 12, 13, 16, 45}

	lengths, err := BuildCodeLengths(freq)
	require.NoError(t, err)
	assert.Equal(t, []uint8{4, 4, 3, 3, 3, 1}, lengths)

	codes, err := BuildCanonicalCodes(lengths)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0b1110, 0b1111, 0b100, 0b101, 0b110, 0b0}, codes)
}

func TestBuildCodeLengths_SingleSymbol(t *testing.T) {
	lengths, err := BuildCodeLengths([]uint64{0, 0, 7, 0})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 1, 0}, lengths)

	codes, err := BuildCanonicalCodes(lengths)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), codes[2])
}

func TestBuildCodeLengths_AllZero(t *testing.T) {
	_, err := BuildCodeLengths([]uint64{0, 0, 0})
	assert.ErrorIs(t, err, ErrNoSymbols)

	_, err = BuildCodeLengths(nil)
	assert.ErrorIs(t, err, ErrNoSymbols)
}

func TestBuildCodeLengths_EqualFrequencies(t *testing.T) {
	freq := make([]uint64, 256)
	for i := range freq {
		freq[i] = 3
	}
	lengths, err := BuildCodeLengths(freq)
	require.NoError(t, err)
	for s, l := range lengths {
		assert.Equal(t, uint8(8), l, "symbol %d", s)
	}
}

func TestBuildCodeLengths_KraftEquality(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	freq := make([]uint64, 200)
	for i := range freq {
		if rng.Intn(4) != 0 {
			freq[i] = uint64(rng.Intn(10000) + 1)
		}
	}
	lengths, err := BuildCodeLengths(freq)
	require.NoError(t, err)

	// A full binary tree satisfies sum(2^-len) == 1.
	var sum float64
	for s, l := range lengths {
		if freq[s] == 0 {
			assert.Zero(t, l)
			continue
		}
		require.NotZero(t, l)
		sum += 1 / float64(uint64(1)<<l)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestBuildCanonicalCodes_Deterministic(t *testing.T) {
	lengths := []uint8{3, 0, 2, 3, 2, 2}

	first, err := BuildCanonicalCodes(lengths)
	require.NoError(t, err)
	second, err := BuildCanonicalCodes(lengths)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []uint64{0b110, 0, 0b00, 0b111, 0b01, 0b10}, first)
}

func TestBuildCanonicalCodes_OverSubscribed(t *testing.T) {
	_, err := BuildCanonicalCodes([]uint8{1, 1, 1})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBuildCanonicalCodes_TooLong(t *testing.T) {
	_, err := BuildCanonicalCodes([]uint8{65, 1})
	assert.ErrorIs(t, err, ErrCodeTooLong)
}

func TestBuildDecodingTree_Collision(t *testing.T) {
	_, err := BuildDecodingTree([]uint8{1, 2}, []uint64{0, 0})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		symbols []uint32
	}{
		{name: "single symbol", size: 1, symbols: []uint32{0, 0, 0, 0}},
		{name: "two symbols", size: 2, symbols: []uint32{0, 1, 1, 0, 1}},
		{name: "sparse alphabet", size: 256, symbols: []uint32{255, 3, 3, 3, 200, 3, 255}},
		{name: "skewed", size: 16, symbols: skewed(rand.New(rand.NewSource(7)), 5000, 16)},
		{name: "uniform", size: 256, symbols: uniform(rand.New(rand.NewSource(9)), 4096, 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freq, err := Frequencies(tt.symbols, tt.size)
			require.NoError(t, err)
			lengths, err := BuildCodeLengths(freq)
			require.NoError(t, err)

			enc, err := NewEncoder(lengths)
			require.NoError(t, err)

			var buf bytes.Buffer
			w := bitstream.NewWriter(&buf)
			require.NoError(t, enc.EncodeAll(w, tt.symbols))
			require.NoError(t, w.Close())

			// The decoder only sees the lengths.
			codes, err := BuildCanonicalCodes(lengths)
			require.NoError(t, err)
			tree, err := BuildDecodingTree(lengths, codes)
			require.NoError(t, err)

			r := bitstream.NewReader(bytes.NewReader(buf.Bytes()))
			for i, want := range tt.symbols {
				got, err := DecodeSymbol(r, tree)
				require.NoError(t, err, "symbol %d", i)
				require.Equal(t, int(want), got, "symbol %d", i)
			}
		})
	}
}

func TestDecodeSymbol_UnexpectedEOF(t *testing.T) {
	lengths := []uint8{1, 2, 2}
	codes, err := BuildCanonicalCodes(lengths)
	require.NoError(t, err)
	tree, err := BuildDecodingTree(lengths, codes)
	require.NoError(t, err)

	r := bitstream.NewReader(bytes.NewReader(nil))
	_, err = DecodeSymbol(r, tree)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestDecodeSymbol_MissingBranch(t *testing.T) {
	// Codes 00 and 01 only; a leading 1 bit leads nowhere.
	lengths := []uint8{2, 2}
	codes, err := BuildCanonicalCodes(lengths)
	require.NoError(t, err)
	tree, err := BuildDecodingTree(lengths, codes)
	require.NoError(t, err)

	r := bitstream.NewReader(bytes.NewReader([]byte{0b11000000}))
	_, err = DecodeSymbol(r, tree)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestEncoder_UnknownSymbol(t *testing.T) {
	enc, err := NewEncoder([]uint8{1, 0, 1})
	require.NoError(t, err)

	w := bitstream.NewWriter(&bytes.Buffer{})
	assert.ErrorIs(t, enc.Encode(w, 1), ErrUnknownSymbol)
	assert.ErrorIs(t, enc.Encode(w, 3), ErrUnknownSymbol)
}

func TestFrequencies_OutOfRange(t *testing.T) {
	_, err := Frequencies([]uint32{0, 4}, 4)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func skewed(rng *rand.Rand, n, size int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		// Geometric-ish distribution.
		s := 0
		for s < size-1 && rng.Intn(2) == 0 {
			s++
		}
		out[i] = uint32(s)
	}
	return out
}

func uniform(rng *rand.Rand, n, size int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(rng.Intn(size))
	}
	return out
}

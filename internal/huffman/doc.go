// Package huffman implements the canonical Huffman coder used for the
// codebook index stream.
//
// Code lengths are derived from a symbol frequency table, codes are
// assigned canonically from the lengths alone, and decoding walks a
// binary trie rebuilt from the same lengths. Only the lengths are ever
// persisted.
package huffman

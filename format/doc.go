// Package format reads and writes the PKCC container.
//
// A container is a fixed 18-byte big-endian header followed by the
// byte-quantized codebook, one Huffman code length per codebook entry and
// the MSB-first Huffman-coded block index stream:
//
//	offset  field               size
//	0       magic "PKCC"        4
//	4       version             2  (u16)
//	6       width               4  (i32)
//	10      height              4  (i32)
//	14      block width         1  (u8)
//	15      block height        1  (u8)
//	16      codebook size k     2  (u16)
//	18      centroids           k*bw*bh
//	..      code lengths        k
//	..      indices             bit-packed, zero padded
//
// Only code lengths are stored; readers rebuild the canonical codes from
// them.
package format

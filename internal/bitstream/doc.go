// Package bitstream provides MSB-first bit I/O over byte streams.
//
// It is the transport for the entropy-coded index stream of a .pkcc
// container: codes are written most-significant bit first and the final
// partial byte is padded with zero bits.
package bitstream

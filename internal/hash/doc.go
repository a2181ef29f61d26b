// Package hash provides the CRC32-Castagnoli checksums used for blob
// uploads and container digests.
//
// One-shot:
//
//	sum := hash.CRC32C(data)
//
// Streaming:
//
//	h := hash.NewCRC32C()
//	_, _ = io.Copy(h, r)
//	sum := h.Sum32()
package hash

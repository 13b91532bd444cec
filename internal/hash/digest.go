// Package hash provides the digests used by the document format.
package hash

import "github.com/cespare/xxhash/v2"

// Digest16 computes the 16-bit key digest stored in dict key indexes.
//
// The xxHash64 of data is folded by XOR-ing its four 16-bit lanes, so every
// input bit influences the digest.
func Digest16(data []byte) uint16 {
	h := xxhash.Sum64(data)
	h ^= h >> 32
	h ^= h >> 16

	return uint16(h) //nolint: gosec
}

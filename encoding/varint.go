package encoding

import "github.com/arloliu/vtree/errs"

// MaxVarintLen64 is the maximum number of bytes a 64-bit varint occupies.
const MaxVarintLen64 = 10

// AppendUvarint appends the varint encoding of v to dst and returns the extended slice.
//
// Each output byte carries 7 payload bits, least significant group first.
// The high bit of a byte is set when another byte follows.
//
// Parameters:
//   - dst: Destination slice to append to (may be nil)
//   - v: Unsigned value to encode
//
// Returns:
//   - []byte: dst extended by 1 to 10 bytes
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// UvarintLen returns the number of bytes AppendUvarint would produce for v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// Uvarint decodes a varint from the start of b.
//
// Parameters:
//   - b: Input bytes beginning with a varint
//
// Returns:
//   - uint64: Decoded value
//   - int: Number of bytes consumed
//   - error: errs.ErrTruncated if b ends before the terminating byte,
//     errs.ErrVarintOverflow if the encoding does not fit in 64 bits
func Uvarint(b []byte) (uint64, int, error) {
	var v uint64
	var shift uint

	for i, c := range b {
		if i == MaxVarintLen64 {
			return 0, 0, errs.ErrVarintOverflow
		}

		// the tenth byte may only contribute the single remaining bit
		if i == MaxVarintLen64-1 && c > 1 {
			return 0, 0, errs.ErrVarintOverflow
		}

		if c < 0x80 {
			return v | uint64(c)<<shift, i + 1, nil
		}

		v |= uint64(c&0x7f) << shift
		shift += 7
	}

	return 0, 0, errs.ErrTruncated
}

package encoding

import (
	"fmt"

	"github.com/arloliu/vtree/errs"
)

// PrefixedLen returns the encoded size of an n-byte length-prefixed payload.
func PrefixedLen(n int) int {
	return UvarintLen(uint64(n)) + n //nolint: gosec
}

// AppendPrefixed appends data preceded by its varint length.
//
// Strings, raw numbers and binary data all share this layout:
//   - 1 to 10 bytes: length as varint
//   - N bytes: payload
//
// Parameters:
//   - dst: Destination slice to append to (may be nil)
//   - data: Payload bytes or string
//
// Returns:
//   - []byte: dst extended by PrefixedLen(len(data)) bytes
func AppendPrefixed[T ~string | ~[]byte](dst []byte, data T) []byte {
	dst = AppendUvarint(dst, uint64(len(data)))
	return append(dst, data...)
}

// ReadPrefixed reads a length-prefixed payload from the start of b.
//
// The returned payload aliases b.
//
// Returns:
//   - []byte: Payload bytes
//   - int: Total bytes consumed, prefix included
//   - error: errs.ErrTruncated or errs.ErrVarintOverflow
func ReadPrefixed(b []byte) ([]byte, int, error) {
	n, size, err := Uvarint(b)
	if err != nil {
		return nil, 0, err
	}

	if n > uint64(len(b)-size) {
		return nil, 0, fmt.Errorf("%w: payload of %d bytes, %d available", errs.ErrTruncated, n, len(b)-size)
	}
	end := size + int(n) //nolint: gosec

	return b[size:end], end, nil
}

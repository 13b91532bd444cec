// Package encoding provides the variable-length integer codec used throughout
// the document format.
//
// Lengths, container counts and string ids are all written as unsigned
// LEB128 varints: seven payload bits per byte, least significant group
// first, with the high bit set on every byte except the last. Values below
// 128 take a single byte and a full 64-bit value takes ten.
//
//	Value     Encoding
//	0         00
//	127       7F
//	128       80 01
//	300       AC 02
//	2^64-1    FF FF FF FF FF FF FF FF FF 01
//
// Length-prefixed payloads (strings, raw numbers, binary data) are a varint
// length followed by the bytes; see AppendPrefixed and ReadPrefixed.
//
// # Usage
//
//	buf = encoding.AppendUvarint(buf, uint64(count))
//
//	v, n, err := encoding.Uvarint(data)
//	if err != nil {
//	    return err // errs.ErrTruncated or errs.ErrVarintOverflow
//	}
//	data = data[n:]
//
// All functions are pure and safe for concurrent use.
package encoding

// Package endian provides the byte order engine used for fixed-width payloads.
//
// This package combines the ByteOrder and AppendByteOrder interfaces of
// encoding/binary into a single EndianEngine interface, so one value can both
// patch fixed-size slots and append to growing buffers.
//
// Every fixed-width field of the document format (integers, floats, dates,
// dict key index entries and envelope headers) is little-endian:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, offset)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine used on the wire.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

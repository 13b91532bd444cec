// Package vtree provides a compact, streaming binary format for trees of
// dynamically typed values: the null, boolean, integer, floating-point,
// raw number, date, string, binary data, array and dict kinds found in
// JSON-like documents.
//
// Documents are written in a single forward pass and never revised, so an
// encoder can stream straight into a file or socket. Repeated strings are
// written once and referenced afterwards, and every dict carries a trailing
// index of 16-bit key digests so readers can look keys up without scanning.
//
// # Core Features
//
//   - Streaming encoder with declared container counts and strict sequencing checks
//   - Narrowest-width integer encoding and LEB128 varint lengths
//   - Per-document string interning plus an optional shared extern string table
//   - Dict key index (digest + offset) sorted for binary search
//   - Optional envelope with CRC32 checksum and None/Zstd/S2/LZ4 compression
//
// # Basic Usage
//
// Streaming a document:
//
//	import "github.com/arloliu/vtree"
//
//	enc, _ := vtree.NewEncoder(w)
//	enc.BeginDict(2)
//	enc.WriteKey("name")
//	enc.WriteString("sensor-7")
//	enc.WriteKey("readings")
//	enc.BeginArray(2)
//	enc.WriteDouble(21.5)
//	enc.WriteDouble(21.7)
//	enc.EndArray()
//	enc.EndDict()
//	err := enc.Finish()
//
// Encoding a whole tree and reading it back:
//
//	doc, _ := vtree.Marshal(tree.Dict(
//	    tree.Pair{Key: "name", Value: tree.String("sensor-7")},
//	))
//	v, _ := vtree.Unmarshal(doc)
//	name, _ := v.Get("name")
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the tree and
// envelope packages. For fine-grained control, use those packages directly.
package vtree

import (
	"bytes"
	"io"

	"github.com/arloliu/vtree/envelope"
	"github.com/arloliu/vtree/format"
	"github.com/arloliu/vtree/internal/hash"
	"github.com/arloliu/vtree/internal/pool"
	"github.com/arloliu/vtree/strtab"
	"github.com/arloliu/vtree/tree"
)

var defaultSealOptions = []envelope.Option{
	envelope.WithCompression(format.CompressionS2),
}

// NewEncoder creates a streaming document encoder writing to w.
//
// Parameters:
//   - w: Destination sink; each encoder operation issues at most one Write
//   - opts: Optional configuration (see tree.EncoderOption)
//
// Returns:
//   - *tree.Encoder: The created encoder
//   - error: An error if an option is invalid
//
// Available options:
//   - tree.WithExternStrings(ext)
//   - tree.WithKeyHasher(fn)
//   - tree.WithMaxDepth(n)
//   - tree.WithRootValues(n)
//   - tree.WithLogger(logger)
//
// Example:
//
//	enc, err := vtree.NewEncoder(conn, tree.WithExternStrings(ext))
//	if err != nil {
//	    return err
//	}
func NewEncoder(w io.Writer, opts ...tree.EncoderOption) (*tree.Encoder, error) {
	return tree.NewEncoder(w, opts...)
}

// NewDecoder creates a decoder for an encoded document.
//
// Parameters:
//   - data: The encoded document; it is not retained after decoding
//   - opts: Optional configuration (see tree.DecoderOption)
//
// Returns:
//   - *tree.Decoder: The created decoder
//   - error: An error if an option is invalid
func NewDecoder(data []byte, opts ...tree.DecoderOption) (*tree.Decoder, error) {
	return tree.NewDecoder(data, opts...)
}

// Marshal encodes v as a complete single-root document.
//
// The document is assembled in a pooled buffer and copied out, so the
// returned slice is owned by the caller.
//
// Parameters:
//   - v: The value tree to encode
//   - opts: Optional encoder configuration
//
// Returns:
//   - []byte: The encoded document
//   - error: Option error or an encoding error (for example tree.WithMaxDepth exceeded)
func Marshal(v tree.Value, opts ...tree.EncoderOption) ([]byte, error) {
	buf := pool.GetDocumentBuffer()
	defer pool.PutDocumentBuffer(buf)

	enc, err := tree.NewEncoder(buf, opts...)
	if err != nil {
		return nil, err
	}
	if err := enc.WriteValue(v); err != nil {
		return nil, err
	}
	if err := enc.Finish(); err != nil {
		return nil, err
	}

	return bytes.Clone(buf.Bytes()), nil
}

// Unmarshal decodes a single-root document.
//
// Parameters:
//   - data: The encoded document
//   - opts: Optional decoder configuration; extern strings and key hasher
//     must match the ones used to encode
//
// Returns:
//   - tree.Value: The decoded root value
//   - error: A decoding error from the errs package
func Unmarshal(data []byte, opts ...tree.DecoderOption) (tree.Value, error) {
	return tree.Decode(data, opts...)
}

// Seal wraps an encoded document in an envelope with a checksum header.
//
// S2 compression is applied unless opts select another codec.
//
// Example:
//
//	sealed, err := vtree.Seal(doc, envelope.WithCompression(format.CompressionZstd))
func Seal(doc []byte, opts ...envelope.Option) ([]byte, error) {
	allOpts := append(append([]envelope.Option{}, defaultSealOptions...), opts...)
	return envelope.Seal(doc, allOpts...)
}

// Open verifies an envelope produced by Seal and returns the document.
func Open(data []byte, opts ...envelope.Option) ([]byte, error) {
	return envelope.Open(data, opts...)
}

// NewExternStrings builds an extern string table assigning ids in slice order.
//
// The same table, with the same ids, must be passed to the encoder, the
// decoder and the envelope.
func NewExternStrings(strs []string) (*strtab.Extern, error) {
	return strtab.NewExtern(strs)
}

// KeyDigest returns the 16-bit digest the default key hasher stores in dict
// key indexes.
func KeyDigest(key string) uint16 {
	return hash.Digest16([]byte(key))
}

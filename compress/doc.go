// Package compress provides the compression codecs used by document envelopes.
//
// An encoded document is already compact: repeated strings are references
// and integers use their narrowest width. General-purpose compression still
// pays off for large documents with many distinct strings or blobs, so the
// envelope package can compress the whole document before sealing it.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): the document is stored as is
//   - Zstd (format.CompressionZstd): best ratio, moderate speed
//   - S2 (format.CompressionS2): balanced speed and ratio
//   - LZ4 (format.CompressionLZ4): fastest decompression
//
// Zstd uses the pure-Go github.com/klauspost/compress/zstd implementation.
// Building with the gozstd tag (and cgo enabled) switches it to the cgo
// binding github.com/valyala/gozstd; both produce standard zstd frames.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionS2)
//	if err != nil {
//	    return err
//	}
//	payload, err := codec.Compress(doc)
//
// GetCodec returns shared, stateless instances safe for concurrent use.
//
// # Choosing an Algorithm
//
//	Workload               | Recommended
//	-----------------------|------------
//	Archival, cold storage | Zstd
//	Request/response paths | S2
//	Read-heavy caches      | LZ4
//	Small documents        | None
//
// # Thread Safety
//
// All codec implementations are stateless or pool their internal state and
// are safe for concurrent use.
package compress

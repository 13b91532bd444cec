package compress

import (
	"fmt"

	"github.com/arloliu/vtree/format"
)

// Compressor compresses a finished document before it is sealed in an envelope.
type Compressor interface {
	// Compress compresses data and returns the compressed result.
	//
	// Memory management:
	//   - The returned slice is owned by the caller unless documented otherwise
	//   - The input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a document compressed by the matching Compressor.
//
// Example:
//
//	codec, _ := compress.GetCodec(format.CompressionZstd)
//	doc, err := codec.Decompress(payload)
//	if err != nil {
//	    return fmt.Errorf("decompression failed: %w", err)
//	}
//
// Thread Safety: all built-in decompressors are safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses data and returns the original bytes.
	//
	// An error is returned when data is corrupted or was produced by a
	// different algorithm.
	Decompress(data []byte) ([]byte, error)
}

// SizedDecompressor is implemented by decompressors that can use an
// expected output size to allocate once. The envelope header records the
// document size, so Open prefers this path when available.
//
// The size is untrusted. Implementations never allocate it outright when
// the compressed input cannot plausibly expand that far.
type SizedDecompressor interface {
	// DecompressSized decompresses data whose original length is size.
	DecompressSized(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one compression of a document.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of the document before compression
	OriginalSize int64

	// CompressedSize is the size of the payload after compression
	CompressedSize int64

	// CompressionTimeNs is the time taken to compress the document
	CompressionTimeNs int64

	// DecompressionTimeNs is the time taken to decompress the payload (if applicable)
	DecompressionTimeNs int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
// Values greater than 1.0 indicate compression overhead, which is common
// for small documents that are mostly shared string references.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
//
// Returns:
//   - float64: Space savings percentage (negative when compression grew the payload)
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the shared built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// maxPreallocRatio bounds how far a size hint may exceed the compressed
// length before the excess is no longer preallocated.
const maxPreallocRatio = 16

// preallocSize returns the output capacity to reserve for a payload of
// compressedLen bytes that claims to decode to size bytes. The claim comes
// from an untrusted header, so it is only honored up to maxPreallocRatio.
func preallocSize(size, compressedLen int) int {
	return max(0, min(size, compressedLen*maxPreallocRatio))
}

// Decompress decompresses data with codec, passing size along when the
// codec implements SizedDecompressor. Size is a hint: callers must still
// check the length of the result.
func Decompress(codec Decompressor, data []byte, size int) ([]byte, error) {
	if sized, ok := codec.(SizedDecompressor); ok {
		return sized.DecompressSized(data, size)
	}

	return codec.Decompress(data)
}

package compress

// ZstdCompressor compresses documents with Zstandard.
//
// It gives the best ratio of the built-in codecs and suits archived or
// transmitted documents where size matters more than encode latency. The
// implementation is selected at build time, see the package documentation.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
//
// Example:
//
//	codec := compress.NewZstdCompressor()
//	payload, err := codec.Compress(doc)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

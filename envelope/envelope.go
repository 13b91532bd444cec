package envelope

import (
	"fmt"
	"hash/crc32"
	"time"

	"go.uber.org/zap"

	"github.com/arloliu/vtree/compress"
	"github.com/arloliu/vtree/errs"
	"github.com/arloliu/vtree/format"
	"github.com/arloliu/vtree/internal/options"
	"github.com/arloliu/vtree/section"
	"github.com/arloliu/vtree/strtab"
)

// DefaultMaxDocumentSize is the largest document Seal and Open accept
// unless WithMaxDocumentSize raises it.
const DefaultMaxDocumentSize = 128 * 1024 * 1024 // 128MiB

// Config holds the settings shared by Seal and Open.
type Config struct {
	compression     format.CompressionType
	extern          *strtab.Extern
	maxDocumentSize uint32
	logger          *zap.Logger
}

// NewConfig creates a configuration with no compression, no extern table,
// a DefaultMaxDocumentSize limit and a no-op logger.
func NewConfig() *Config {
	return &Config{
		compression:     format.CompressionNone,
		maxDocumentSize: DefaultMaxDocumentSize,
		logger:          zap.NewNop(),
	}
}

// Option is a functional option for Seal and Open.
type Option = options.Option[*Config]

// WithCompression selects the codec applied to the document by Seal.
// Open ignores it and uses the codec recorded in the header.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if _, err := compress.GetCodec(compression); err != nil {
			return fmt.Errorf("invalid envelope compression: %w", err)
		}
		c.compression = compression

		return nil
	})
}

// WithExternStrings declares the extern string table the document was
// encoded against. Seal records its fingerprint; Open rejects envelopes
// whose recorded fingerprint differs.
func WithExternStrings(ext *strtab.Extern) Option {
	return options.NoError(func(c *Config) {
		c.extern = ext
	})
}

// WithMaxDocumentSize sets the largest uncompressed document size in bytes.
// Open checks the size recorded in the header against it before any
// payload is decompressed.
func WithMaxDocumentSize(limit uint32) Option {
	return options.New(func(c *Config) error {
		if limit == 0 {
			return fmt.Errorf("invalid max document size: %d", limit)
		}
		c.maxDocumentSize = limit

		return nil
	})
}

// WithLogger sets the logger receiving compression statistics at debug level.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

// Seal wraps a finished document in an envelope.
//
// The envelope is a 20-byte section.EnvelopeHeader followed by the payload,
// which is the document compressed with the configured codec. The header
// records the uncompressed size, its CRC32-IEEE checksum and the extern
// table fingerprint.
//
// Parameters:
//   - doc: Encoded document bytes, as produced by tree.Encoder
//   - opts: Optional compression, extern table, document size limit and logger
//
// Returns:
//   - []byte: Newly allocated envelope bytes
//   - error: Option error, errs.ErrDocumentTooLarge, or compression error
func Seal(doc []byte, opts ...Option) ([]byte, error) {
	config := NewConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	if uint64(len(doc)) > uint64(config.maxDocumentSize) {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", errs.ErrDocumentTooLarge, len(doc), config.maxDocumentSize)
	}

	codec, err := compress.GetCodec(config.compression)
	if err != nil {
		return nil, err
	}

	header := section.NewEnvelopeHeader(config.compression)
	header.Size = uint32(len(doc)) //nolint: gosec
	header.Checksum = crc32.ChecksumIEEE(doc)
	header.ExternFingerprint = config.extern.Fingerprint()

	start := time.Now()
	payload, err := codec.Compress(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to compress document: %w", err)
	}

	stats := compress.CompressionStats{
		Algorithm:         config.compression,
		OriginalSize:      int64(len(doc)),
		CompressedSize:    int64(len(payload)),
		CompressionTimeNs: time.Since(start).Nanoseconds(),
	}
	config.logger.Debug("document sealed",
		zap.Stringer("compression", stats.Algorithm),
		zap.Int64("original_size", stats.OriginalSize),
		zap.Int64("compressed_size", stats.CompressedSize),
		zap.Float64("space_savings", stats.SpaceSavings()),
		zap.Int64("compression_ns", stats.CompressionTimeNs),
	)

	out := make([]byte, 0, section.EnvelopeHeaderSize+len(payload))
	out = append(out, header.Bytes()...)
	out = append(out, payload...)

	return out, nil
}

// Open verifies an envelope and returns the document it carries.
//
// Checks are applied in order: header size, magic number and version,
// extern table fingerprint, document size limit, decompression, document
// size, and checksum. The size recorded in the header is untrusted and only
// sizes the output buffer after it passes the limit.
//
// Parameters:
//   - data: Envelope bytes produced by Seal
//   - opts: Optional extern table (required when the document was sealed with one),
//     document size limit and logger
//
// Returns:
//   - []byte: The document; it aliases data when the envelope is uncompressed
//   - error: errs.ErrInvalidHeaderSize, errs.ErrInvalidMagicNumber,
//     errs.ErrUnsupportedVersion, errs.ErrExternMismatch, errs.ErrDocumentTooLarge,
//     errs.ErrSizeMismatch,
//     errs.ErrChecksumMismatch, or a decompression error
func Open(data []byte, opts ...Option) ([]byte, error) {
	config := NewConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	header, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	if want := config.extern.Fingerprint(); header.ExternFingerprint != want {
		return nil, fmt.Errorf("%w: envelope has 0x%016x, table has 0x%016x",
			errs.ErrExternMismatch, header.ExternFingerprint, want)
	}

	if header.Size > config.maxDocumentSize {
		return nil, fmt.Errorf("%w: header says %d bytes, limit %d",
			errs.ErrDocumentTooLarge, header.Size, config.maxDocumentSize)
	}

	codec, err := compress.GetCodec(header.Compression)
	if err != nil {
		return nil, err
	}

	payload := data[section.EnvelopeHeaderSize:]
	start := time.Now()
	doc, err := compress.Decompress(codec, payload, int(header.Size))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress document: %w", err)
	}

	if len(doc) != int(header.Size) {
		return nil, fmt.Errorf("%w: got %d bytes, header says %d", errs.ErrSizeMismatch, len(doc), header.Size)
	}

	if sum := crc32.ChecksumIEEE(doc); sum != header.Checksum {
		return nil, fmt.Errorf("%w: got 0x%08x, header says 0x%08x", errs.ErrChecksumMismatch, sum, header.Checksum)
	}

	stats := compress.CompressionStats{
		Algorithm:           header.Compression,
		OriginalSize:        int64(len(doc)),
		CompressedSize:      int64(len(payload)),
		DecompressionTimeNs: time.Since(start).Nanoseconds(),
	}
	config.logger.Debug("document opened",
		zap.Stringer("compression", stats.Algorithm),
		zap.Int64("original_size", stats.OriginalSize),
		zap.Int64("compressed_size", stats.CompressedSize),
		zap.Float64("space_savings", stats.SpaceSavings()),
		zap.Int64("decompression_ns", stats.DecompressionTimeNs),
	)

	return doc, nil
}

// ReadHeader parses and validates the envelope header without touching the payload.
func ReadHeader(data []byte) (*section.EnvelopeHeader, error) {
	header := &section.EnvelopeHeader{}
	if err := header.Parse(data); err != nil {
		return nil, err
	}

	return header, nil
}

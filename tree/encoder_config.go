package tree

import (
	"fmt"

	"github.com/arloliu/vtree/endian"
	"github.com/arloliu/vtree/internal/hash"
	"github.com/arloliu/vtree/internal/options"
	"github.com/arloliu/vtree/strtab"
	"go.uber.org/zap"
)

// KeyHasher computes the 16-bit digest of a dict key.
//
// It must be deterministic, and the decoder must use the same function as
// the encoder. Collisions only cost lookup time.
type KeyHasher func(key []byte) uint16

// EncoderConfig holds the encoder settings fixed at construction.
type EncoderConfig struct {
	extern     *strtab.Extern
	keyHasher  KeyHasher
	maxDepth   int
	rootValues int
	logger     *zap.Logger
	engine     endian.EndianEngine
}

// NewEncoderConfig creates a configuration with default settings:
// no extern strings, xxHash-based key digests, unlimited depth, a single
// root value and a no-op logger.
func NewEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		keyHasher:  hash.Digest16,
		rootValues: 1,
		logger:     zap.NewNop(),
		engine:     endian.GetLittleEndianEngine(),
	}
}

// EncoderOption is a functional option for configuring Encoder.
type EncoderOption = options.Option[*EncoderConfig]

// WithExternStrings makes the encoder write strings found in ext as extern
// references. The table is only read and may be shared between encoders.
func WithExternStrings(ext *strtab.Extern) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.extern = ext
	})
}

// WithKeyHasher replaces the dict key digest function.
// Default is the folded xxHash64 of the key bytes.
func WithKeyHasher(fn KeyHasher) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if fn == nil {
			return fmt.Errorf("key hasher must not be nil")
		}
		c.keyHasher = fn

		return nil
	})
}

// WithMaxDepth limits how deeply containers may nest. 0 disables the limit.
func WithMaxDepth(depth int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if depth < 0 {
			return fmt.Errorf("invalid max depth: %d", depth)
		}
		c.maxDepth = depth

		return nil
	})
}

// WithRootValues declares how many values the document holds at root level.
// Default is 1. Root values share one string table, so a string repeated in
// a later root value is written as a reference. Decode such documents with
// Decoder.DecodeValues.
func WithRootValues(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if n < 1 {
			return fmt.Errorf("invalid root value count: %d", n)
		}
		c.rootValues = n

		return nil
	})
}

// WithLogger sets the logger used for debug output. Default is a no-op logger.
func WithLogger(logger *zap.Logger) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

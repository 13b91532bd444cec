package tree

import (
	"fmt"

	"github.com/arloliu/vtree/endian"
	"github.com/arloliu/vtree/internal/hash"
	"github.com/arloliu/vtree/internal/options"
	"github.com/arloliu/vtree/strtab"
	"go.uber.org/zap"
)

// DefaultDecoderMaxDepth is the nesting limit applied by decoders unless
// overridden with WithDecoderMaxDepth.
const DefaultDecoderMaxDepth = 10000

// DecoderConfig holds the decoder settings fixed at construction.
type DecoderConfig struct {
	extern    *strtab.Extern
	keyHasher KeyHasher
	maxDepth  int
	logger    *zap.Logger
	engine    endian.EndianEngine
}

// NewDecoderConfig creates a configuration with default settings:
// no extern strings, xxHash-based key digests, a depth limit of
// DefaultDecoderMaxDepth and a no-op logger.
func NewDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		keyHasher: hash.Digest16,
		maxDepth:  DefaultDecoderMaxDepth,
		logger:    zap.NewNop(),
		engine:    endian.GetLittleEndianEngine(),
	}
}

// DecoderOption is a functional option for configuring Decoder.
type DecoderOption = options.Option[*DecoderConfig]

// WithDecoderExternStrings resolves extern string references against ext.
// It must hold the same table the document was encoded with.
func WithDecoderExternStrings(ext *strtab.Extern) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.extern = ext
	})
}

// WithDecoderKeyHasher replaces the dict key digest function used to
// verify and search key indexes. It must match the encoder's.
func WithDecoderKeyHasher(fn KeyHasher) DecoderOption {
	return options.New(func(c *DecoderConfig) error {
		if fn == nil {
			return fmt.Errorf("key hasher must not be nil")
		}
		c.keyHasher = fn

		return nil
	})
}

// WithDecoderMaxDepth limits how deeply containers may nest. 0 disables the limit.
func WithDecoderMaxDepth(depth int) DecoderOption {
	return options.New(func(c *DecoderConfig) error {
		if depth < 0 {
			return fmt.Errorf("invalid max depth: %d", depth)
		}
		c.maxDepth = depth

		return nil
	})
}

// WithDecoderLogger sets the logger used for debug output. Default is a no-op logger.
func WithDecoderLogger(logger *zap.Logger) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

package section

import (
	"fmt"

	"github.com/arloliu/vtree/endian"
	"github.com/arloliu/vtree/errs"
	"github.com/arloliu/vtree/format"
)

// EnvelopeHeader is the fixed 20-byte header of a sealed document.
type EnvelopeHeader struct {
	// Magic must be MagicEnvelopeV1.
	Magic uint16 // 2 bytes, offset 0-1
	// Version is the envelope layout version.
	Version uint8 // 1 byte, offset 2
	// Compression is the codec applied to the payload.
	Compression format.CompressionType // 1 byte, offset 3
	// Size is the uncompressed document size in bytes.
	Size uint32 // 4 bytes, offset 4-7
	// Checksum is the CRC32-IEEE of the uncompressed document.
	Checksum uint32 // 4 bytes, offset 8-11
	// ExternFingerprint identifies the extern string table the document
	// was encoded against; 0 when none was used.
	ExternFingerprint uint64 // 8 bytes, offset 12-19
}

// NewEnvelopeHeader creates a header for the given compression type.
func NewEnvelopeHeader(compression format.CompressionType) *EnvelopeHeader {
	return &EnvelopeHeader{
		Magic:       MagicEnvelopeV1,
		Version:     EnvelopeVersion,
		Compression: compression,
	}
}

// Bytes serializes the header into a new 20-byte slice.
func (h *EnvelopeHeader) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, 0, EnvelopeHeaderSize)
	b = engine.AppendUint16(b, h.Magic)
	b = append(b, h.Version, byte(h.Compression))
	b = engine.AppendUint32(b, h.Size)
	b = engine.AppendUint32(b, h.Checksum)
	b = engine.AppendUint64(b, h.ExternFingerprint)

	return b
}

// Parse parses the header from the first 20 bytes of data.
// It returns an error if data is too short, the magic number is wrong,
// or the version is newer than this package understands.
func (h *EnvelopeHeader) Parse(data []byte) error {
	if len(data) < EnvelopeHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()

	h.Magic = engine.Uint16(data[0:2])
	if h.Magic != MagicEnvelopeV1 {
		return fmt.Errorf("%w: 0x%04x", errs.ErrInvalidMagicNumber, h.Magic)
	}

	h.Version = data[2]
	if h.Version == 0 || h.Version > EnvelopeVersion {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, h.Version)
	}

	h.Compression = format.CompressionType(data[3])
	h.Size = engine.Uint32(data[4:8])
	h.Checksum = engine.Uint32(data[8:12])
	h.ExternFingerprint = engine.Uint64(data[12:20])

	return nil
}

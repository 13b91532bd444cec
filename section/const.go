package section

import "math"

const (
	// MagicEnvelopeV1 identifies a sealed document.
	MagicEnvelopeV1 = 0xEC10
	// EnvelopeVersion is the current envelope version.
	EnvelopeVersion = 1
)

// record sizes in bytes
const (
	KeyIndexEntrySize  = 6              // digest (2) + offset (4)
	EnvelopeHeaderSize = 20             // fixed envelope header size
	KeyIndexMaxOffset  = math.MaxUint32 // largest offset a key index entry can hold
)

// Package errs defines the sentinel errors returned by vtree.
//
// Errors fall into three groups:
//   - Sequencing errors: the caller broke the encoder's call-order contract.
//     Every one of them also matches ErrSequencing under errors.Is.
//   - Decoding errors: the input is not a well-formed document.
//   - Envelope errors: a sealed document failed header or integrity checks.
//
// Errors returned by the underlying io.Writer are never wrapped into any of
// these; they reach the caller unchanged.
package errs

import "errors"

// ErrSequencing is matched by every encoder call-order violation.
var ErrSequencing = errors.New("sequencing error")

// sequencingError is a sentinel that also reports itself as ErrSequencing.
type sequencingError struct {
	msg string
}

func (e *sequencingError) Error() string { return e.msg }

func (e *sequencingError) Is(target error) bool { return target == ErrSequencing }

func newSequencing(msg string) error {
	return &sequencingError{msg: msg}
}

// Encoder sequencing errors.
var (
	ErrKeyOutsideDict        = newSequencing("key written outside of a dict")
	ErrKeyExpected           = newSequencing("dict expects a key before the next value")
	ErrValueExpected         = newSequencing("dict expects a value after the key")
	ErrCountExceeded         = newSequencing("container element count exceeded")
	ErrCountMismatch         = newSequencing("container closed with missing elements")
	ErrContainerKindMismatch = newSequencing("container end does not match its begin")
	ErrNoOpenContainer       = newSequencing("no open container")
	ErrRootAlreadyWritten    = newSequencing("root value already written")
	ErrRootIncomplete        = newSequencing("root value is not complete")
	ErrInvalidCount          = newSequencing("invalid container count")
	ErrMaxDepthExceeded      = newSequencing("maximum nesting depth exceeded")
	ErrOffsetOverflow        = newSequencing("dict body exceeds the addressable index offset")
	ErrEncoderFinished       = newSequencing("encoder already finished")
)

// Decoding errors.
var (
	ErrTruncated           = errors.New("unexpected end of data")
	ErrInvalidTypeCode     = errors.New("invalid type code")
	ErrVarintOverflow      = errors.New("varint overflows 64 bits")
	ErrUnknownSharedString = errors.New("unknown shared string id")
	ErrUnknownExternString = errors.New("unknown extern string id")
	ErrTrailingData        = errors.New("trailing data after root value")
	ErrInvalidKeyIndex     = errors.New("invalid dict key index")
	ErrInvalidDictKey      = errors.New("dict key is not a string")
	ErrKeyNotFound         = errors.New("key not found")
	ErrKindMismatch        = errors.New("value kind mismatch")
)

// Section and envelope errors.
var (
	ErrInvalidIndexEntrySize = errors.New("invalid key index entry size")
	ErrInvalidHeaderSize     = errors.New("invalid envelope header size")
	ErrInvalidMagicNumber    = errors.New("invalid envelope magic number")
	ErrUnsupportedVersion    = errors.New("unsupported envelope version")
	ErrChecksumMismatch      = errors.New("document checksum mismatch")
	ErrSizeMismatch          = errors.New("document size mismatch")
	ErrExternMismatch        = errors.New("extern string table fingerprint mismatch")
	ErrDocumentTooLarge      = errors.New("document too large for envelope")
	ErrDuplicateExternString = errors.New("duplicate extern string")
)

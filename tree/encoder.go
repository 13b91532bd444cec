package tree

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/arloliu/vtree/encoding"
	"github.com/arloliu/vtree/errs"
	"github.com/arloliu/vtree/format"
	"github.com/arloliu/vtree/internal/intern"
	"github.com/arloliu/vtree/internal/options"
	"github.com/arloliu/vtree/internal/pool"
	"github.com/arloliu/vtree/section"
	"go.uber.org/zap"
)

// Encoder streams one document of dynamically typed values to an io.Writer.
//
// Values are written depth-first: scalars with the Write* methods, arrays
// between BeginArray and EndArray, dicts between BeginDict and EndDict with a
// WriteKey before every value. Container element counts are declared up
// front and enforced. A document holds exactly one root value unless
// WithRootValues declares more; Finish must be called after the last one.
//
// Every method issues at most one Write to the sink. Bytes are never revised
// once written; the key index of a dict is appended after its last pair.
//
// The first error is sticky: once a method fails, every later call returns
// the same error and the partially written output should be discarded.
// Sequencing errors match errs.ErrSequencing; sink errors are returned
// unchanged.
//
// Note: The Encoder is NOT thread-safe. Each encoder instance should be used by a single goroutine at a time.
//
// Note: The Encoder is NOT reusable. After calling Finish, a new encoder must be created for further encoding.
type Encoder struct {
	*EncoderConfig

	w      io.Writer
	offset int64 // bytes accepted by the sink so far

	stack   frameStack
	strings *intern.Table // session shared strings

	rootWritten int // root-level values written so far
	finished    bool
	err         error // sticky first error

	// Pooled scratch buffer holding the bytes of the current operation
	buf *pool.ByteBuffer
}

// NewEncoder creates a new Encoder writing to w.
//
// Parameters:
//   - w: Append-only byte sink; the encoder never seeks
//   - opts: Optional configuration (extern strings, key hasher, depth limit, logger)
//
// Returns:
//   - *Encoder: New encoder ready for the root value
//   - error: Configuration error if an option is invalid
func NewEncoder(w io.Writer, opts ...EncoderOption) (*Encoder, error) {
	config := NewEncoderConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	return &Encoder{
		EncoderConfig: config,
		w:             w,
		strings:       intern.NewTable(),
		buf:           pool.GetScratchBuffer(),
	}, nil
}

// Offset returns the number of bytes written to the sink so far.
func (e *Encoder) Offset() int64 {
	return e.offset
}

// Depth returns the number of currently open containers.
func (e *Encoder) Depth() int {
	return e.stack.depth()
}

// SharedStringCount returns the number of strings registered in the session table.
func (e *Encoder) SharedStringCount() int {
	return e.strings.Len()
}

// Err returns the sticky error, if any.
func (e *Encoder) Err() error {
	return e.err
}

// WriteNull writes a null value.
func (e *Encoder) WriteNull() error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.buf.B = append(e.buf.B, byte(format.TypeNull))

	return e.commitValue()
}

// WriteBool writes a boolean value.
func (e *Encoder) WriteBool(b bool) error {
	if err := e.beginValue(); err != nil {
		return err
	}

	code := format.TypeFalse
	if b {
		code = format.TypeTrue
	}
	e.buf.B = append(e.buf.B, byte(code))

	return e.commitValue()
}

// WriteInt writes a signed integer using the narrowest of the Int8, Int16,
// Int32 and Int64 encodings that holds i exactly.
func (e *Encoder) WriteInt(i int64) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.appendInt(i)

	return e.commitValue()
}

// WriteUInt writes an unsigned integer.
//
// Values up to math.MaxInt64 are encoded exactly like WriteInt; larger
// values use the UInt64 encoding.
func (e *Encoder) WriteUInt(u uint64) error {
	if err := e.beginValue(); err != nil {
		return err
	}

	if u <= math.MaxInt64 {
		e.appendInt(int64(u))
	} else {
		e.buf.B = append(e.buf.B, byte(format.TypeUInt64))
		e.buf.B = e.engine.AppendUint64(e.buf.B, u)
	}

	return e.commitValue()
}

// WriteFloat writes a single-precision float.
func (e *Encoder) WriteFloat(f float32) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.buf.B = append(e.buf.B, byte(format.TypeFloat32))
	e.buf.B = e.engine.AppendUint32(e.buf.B, math.Float32bits(f))

	return e.commitValue()
}

// WriteDouble writes a double-precision float.
func (e *Encoder) WriteDouble(f float64) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.buf.B = append(e.buf.B, byte(format.TypeFloat64))
	e.buf.B = e.engine.AppendUint64(e.buf.B, math.Float64bits(f))

	return e.commitValue()
}

// WriteRawNumber writes pre-formatted numeric text verbatim, for example an
// arbitrary precision decimal. The content is not validated.
func (e *Encoder) WriteRawNumber(text []byte) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.appendBytes(format.TypeRawNumber, text)

	return e.commitValue()
}

// WriteDate writes a point in time as whole seconds since the Unix epoch.
// Sub-second precision and the location are not preserved.
func (e *Encoder) WriteDate(t time.Time) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.buf.B = append(e.buf.B, byte(format.TypeDate))
	e.buf.B = e.engine.AppendUint64(e.buf.B, uint64(t.Unix())) //nolint: gosec

	return e.commitValue()
}

// WriteString writes a string value.
//
// Strings in the extern table are written as extern references. A string
// already written in this session is written as a shared reference. Any
// other string is written literally and remembered for later references.
func (e *Encoder) WriteString(s string) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.appendString(s)

	return e.commitValue()
}

// WriteData writes a binary blob. Blobs are never deduplicated.
func (e *Encoder) WriteData(data []byte) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.appendBytes(format.TypeData, data)

	return e.commitValue()
}

// BeginArray opens an array that will hold exactly count elements.
//
// Returns:
//   - error: errs.ErrInvalidCount for a negative count, errs.ErrMaxDepthExceeded
//     past the configured depth limit, or any error WriteNull would return here
func (e *Encoder) BeginArray(count int) error {
	return e.beginContainer(kindArray, format.TypeArray, count)
}

// EndArray closes the innermost container, which must be an array holding
// exactly its declared number of elements.
func (e *Encoder) EndArray() error {
	if _, err := e.endContainer(kindArray); err != nil {
		return err
	}
	e.stack.pop()

	return nil
}

// BeginDict opens a dict that will hold exactly count key/value pairs.
func (e *Encoder) BeginDict(count int) error {
	return e.beginContainer(kindDict, format.TypeDict, count)
}

// WriteKey writes the key of the next pair in the innermost dict.
//
// Keys are resolved like WriteString. Each key, repeated or not, adds one
// entry to the dict's key index.
func (e *Encoder) WriteKey(key string) error {
	if err := e.usable(); err != nil {
		return err
	}

	f := e.stack.top()
	if f == nil || f.kind != kindDict {
		return e.fail(errs.ErrKeyOutsideDict)
	}
	if f.keyPending {
		return e.fail(fmt.Errorf("%w: key %q follows a key", errs.ErrValueExpected, key))
	}
	if f.remaining() <= 0 {
		return e.fail(fmt.Errorf("%w: dict declared %d pairs", errs.ErrCountExceeded, f.expected))
	}

	rel := e.offset - f.start
	if rel > section.KeyIndexMaxOffset {
		return e.fail(fmt.Errorf("%w: key at dict offset %d", errs.ErrOffsetOverflow, rel))
	}

	e.buf.Reset()
	e.appendString(key)
	if err := e.flush(); err != nil {
		return err
	}

	f.keys = append(f.keys, section.KeyIndexEntry{
		Digest: e.keyHasher([]byte(key)),
		Offset: uint32(rel), //nolint: gosec
	})
	f.keyPending = true

	return nil
}

// EndDict closes the innermost container, which must be a dict holding
// exactly its declared number of pairs, and appends its key index.
func (e *Encoder) EndDict() error {
	f, err := e.endContainer(kindDict)
	if err != nil {
		return err
	}

	if err := e.writeKeyIndex(f); err != nil {
		return err
	}
	e.stack.pop()

	return nil
}

// WriteValue writes v and, recursively, everything it contains.
func (e *Encoder) WriteValue(v Value) error {
	switch v.kind {
	case KindNull:
		return e.WriteNull()
	case KindBool:
		return e.WriteBool(v.b)
	case KindInt:
		return e.WriteInt(v.i)
	case KindUint:
		return e.WriteUInt(v.u)
	case KindFloat32:
		return e.WriteFloat(float32(v.f))
	case KindFloat64:
		return e.WriteDouble(v.f)
	case KindRawNumber:
		return e.WriteRawNumber(v.data)
	case KindDate:
		return e.WriteDate(v.Time())
	case KindString:
		return e.WriteString(v.s)
	case KindData:
		return e.WriteData(v.data)
	case KindArray:
		if err := e.BeginArray(len(v.items)); err != nil {
			return err
		}
		for _, item := range v.items {
			if err := e.WriteValue(item); err != nil {
				return err
			}
		}

		return e.EndArray()
	case KindDict:
		if err := e.BeginDict(len(v.items)); err != nil {
			return err
		}
		for i, item := range v.items {
			if err := e.WriteKey(v.keys[i]); err != nil {
				return err
			}
			if err := e.WriteValue(item); err != nil {
				return err
			}
		}

		return e.EndDict()
	default:
		return fmt.Errorf("%w: cannot encode kind %v", errs.ErrKindMismatch, v.kind)
	}
}

// Finish verifies that every declared root value was written completely and
// releases the encoder's buffers. It succeeds at most once.
func (e *Encoder) Finish() error {
	if err := e.usable(); err != nil {
		return err
	}

	if e.rootWritten != e.rootValues || e.stack.depth() > 0 {
		return e.fail(fmt.Errorf("%w: %d of %d root values, %d containers still open",
			errs.ErrRootIncomplete, e.rootWritten, e.rootValues, e.stack.depth()))
	}

	pool.PutScratchBuffer(e.buf)
	e.buf = nil
	e.finished = true

	e.logger.Debug("document finished",
		zap.Int64("bytes", e.offset),
		zap.Int("shared_strings", e.strings.Len()),
	)

	return nil
}

// beginValue validates that a value may be written at the current position
// and prepares the scratch buffer.
func (e *Encoder) beginValue() error {
	if err := e.usable(); err != nil {
		return err
	}

	f := e.stack.top()
	if f == nil {
		if e.rootWritten >= e.rootValues {
			return e.fail(fmt.Errorf("%w: %d root values declared", errs.ErrRootAlreadyWritten, e.rootValues))
		}
	} else {
		if f.kind == kindDict && !f.keyPending {
			return e.fail(errs.ErrKeyExpected)
		}
		if f.remaining() <= 0 {
			return e.fail(fmt.Errorf("%w: %s declared %d elements", errs.ErrCountExceeded, f.kind, f.expected))
		}
	}

	e.buf.Reset()

	return nil
}

// commitValue writes the scratch buffer and counts the value against the
// innermost container, or marks the root as written.
func (e *Encoder) commitValue() error {
	if err := e.flush(); err != nil {
		return err
	}
	e.countValue()

	return nil
}

func (e *Encoder) countValue() {
	f := e.stack.top()
	if f == nil {
		e.rootWritten++
		return
	}

	f.written++
	f.keyPending = false
}

func (e *Encoder) beginContainer(kind containerKind, code format.TypeCode, count int) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	if count < 0 {
		return e.fail(fmt.Errorf("%w: %d", errs.ErrInvalidCount, count))
	}
	if e.maxDepth > 0 && e.stack.depth() >= e.maxDepth {
		return e.fail(fmt.Errorf("%w: limit %d", errs.ErrMaxDepthExceeded, e.maxDepth))
	}

	start := e.offset
	e.buf.B = append(e.buf.B, byte(code))
	e.buf.B = encoding.AppendUvarint(e.buf.B, uint64(count))
	if err := e.flush(); err != nil {
		return err
	}

	// the container is one element of its parent
	e.countValue()
	e.stack.push(kind, count, start)

	return nil
}

// endContainer validates closing the innermost container as kind and
// returns its frame without popping it.
func (e *Encoder) endContainer(kind containerKind) (*frame, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}

	f := e.stack.top()
	if f == nil {
		return nil, e.fail(fmt.Errorf("%w: cannot end %s", errs.ErrNoOpenContainer, kind))
	}
	if f.kind != kind {
		return nil, e.fail(fmt.Errorf("%w: open %s closed as %s", errs.ErrContainerKindMismatch, f.kind, kind))
	}
	if f.keyPending {
		return nil, e.fail(fmt.Errorf("%w: dict closed after a key", errs.ErrValueExpected))
	}
	if f.written != f.expected {
		return nil, e.fail(fmt.Errorf("%w: %s declared %d elements, got %d",
			errs.ErrCountMismatch, f.kind, f.expected, f.written))
	}

	return f, nil
}

// writeKeyIndex appends the digest-sorted key index of a completed dict.
func (e *Encoder) writeKeyIndex(f *frame) error {
	if len(f.keys) == 0 {
		return nil
	}

	section.SortKeyIndex(f.keys)

	e.buf.Reset()
	e.buf.Grow(len(f.keys) * section.KeyIndexEntrySize)
	collisions := 0
	for i, entry := range f.keys {
		if i > 0 && f.keys[i-1].Digest == entry.Digest {
			collisions++
		}
		e.buf.B = entry.AppendTo(e.buf.B, e.engine)
	}

	if collisions > 0 {
		e.logger.Debug("dict key digest collisions",
			zap.Int64("dict_offset", f.start),
			zap.Int("keys", len(f.keys)),
			zap.Int("collisions", collisions),
		)
	}

	return e.flush()
}

func (e *Encoder) appendInt(i int64) {
	switch {
	case i >= math.MinInt8 && i <= math.MaxInt8:
		e.buf.B = append(e.buf.B, byte(format.TypeInt8), byte(int8(i)))
	case i >= math.MinInt16 && i <= math.MaxInt16:
		e.buf.B = append(e.buf.B, byte(format.TypeInt16))
		e.buf.B = e.engine.AppendUint16(e.buf.B, uint16(int16(i))) //nolint: gosec
	case i >= math.MinInt32 && i <= math.MaxInt32:
		e.buf.B = append(e.buf.B, byte(format.TypeInt32))
		e.buf.B = e.engine.AppendUint32(e.buf.B, uint32(int32(i))) //nolint: gosec
	default:
		e.buf.B = append(e.buf.B, byte(format.TypeInt64))
		e.buf.B = e.engine.AppendUint64(e.buf.B, uint64(i)) //nolint: gosec
	}
}

func (e *Encoder) appendString(s string) {
	code, id := e.strings.Resolve(s, e.extern)
	if code != format.TypeString {
		e.buf.B = append(e.buf.B, byte(code))
		e.buf.B = encoding.AppendUvarint(e.buf.B, id)

		return
	}

	e.buf.Grow(1 + encoding.PrefixedLen(len(s)))
	e.buf.B = append(e.buf.B, byte(format.TypeString))
	e.buf.B = encoding.AppendPrefixed(e.buf.B, s)
}

func (e *Encoder) appendBytes(code format.TypeCode, data []byte) {
	e.buf.Grow(1 + encoding.PrefixedLen(len(data)))
	e.buf.B = append(e.buf.B, byte(code))
	e.buf.B = encoding.AppendPrefixed(e.buf.B, data)
}

// flush hands the scratch buffer to the sink in a single Write.
func (e *Encoder) flush() error {
	if len(e.buf.B) == 0 {
		return nil
	}

	n, err := e.buf.WriteTo(e.w)
	e.offset += n
	if err == nil && n < int64(e.buf.Len()) {
		err = io.ErrShortWrite
	}
	if err != nil {
		e.err = err
		return err
	}

	return nil
}

// usable returns the sticky error, or errs.ErrEncoderFinished after Finish.
func (e *Encoder) usable() error {
	if e.err != nil {
		return e.err
	}
	if e.finished {
		return errs.ErrEncoderFinished
	}

	return nil
}

// fail records err as the sticky error and returns it.
func (e *Encoder) fail(err error) error {
	e.err = err
	e.logger.Debug("encoder sequencing error",
		zap.Error(err),
		zap.Int("depth", e.stack.depth()),
		zap.Int64("offset", e.offset),
	)

	return err
}

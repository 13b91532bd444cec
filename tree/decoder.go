package tree

import (
	"bytes"
	"fmt"
	"math"

	"github.com/arloliu/vtree/encoding"
	"github.com/arloliu/vtree/errs"
	"github.com/arloliu/vtree/format"
	"github.com/arloliu/vtree/internal/intern"
	"github.com/arloliu/vtree/internal/options"
	"github.com/arloliu/vtree/section"
	"go.uber.org/zap"
)

// Decoder parses one encoded document into a Value tree.
//
// The decoder rebuilds the session string table in the same order the
// encoder grew it, so shared string references resolve to the literal they
// point back to. Every dict's key index is verified: it must be sorted by
// digest, hold one entry per key, point at the first byte of that key and
// carry the key's digest.
//
// Decoded values never alias the input; strings and blobs are copied.
//
// Note: The Decoder is NOT thread-safe.
type Decoder struct {
	*DecoderConfig

	data    []byte
	pos     int
	strings *intern.Table
}

// NewDecoder creates a new Decoder over data.
//
// Parameters:
//   - data: One complete encoded document
//   - opts: Optional configuration (extern strings, key hasher, depth limit, logger)
//
// Returns:
//   - *Decoder: New decoder
//   - error: Configuration error if an option is invalid
func NewDecoder(data []byte, opts ...DecoderOption) (*Decoder, error) {
	config := NewDecoderConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	return &Decoder{
		DecoderConfig: config,
		data:          data,
		strings:       intern.NewTable(),
	}, nil
}

// Decode parses the document and returns its root value.
//
// Decode may be called repeatedly; every call parses the whole document
// from the start with a fresh string table.
//
// Returns:
//   - Value: The root value
//   - error: errs.ErrTruncated, errs.ErrInvalidTypeCode, errs.ErrVarintOverflow,
//     errs.ErrUnknownSharedString, errs.ErrUnknownExternString,
//     errs.ErrInvalidDictKey, errs.ErrInvalidKeyIndex, errs.ErrMaxDepthExceeded
//     or errs.ErrTrailingData, wrapped with the offending offset
func (d *Decoder) Decode() (Value, error) {
	d.pos = 0
	d.strings.Reset()

	root, err := d.decodeValue(0)
	if err != nil {
		return Value{}, err
	}

	if d.pos != len(d.data) {
		return Value{}, fmt.Errorf("%w: %d bytes after offset %d", errs.ErrTrailingData, len(d.data)-d.pos, d.pos)
	}

	d.logger.Debug("document decoded",
		zap.Int("bytes", len(d.data)),
		zap.Int("shared_strings", d.strings.Len()),
	)

	return root, nil
}

// DecodeValues parses a document written with WithRootValues and returns
// its root values in order. Later values may reference strings first
// written by earlier ones.
func (d *Decoder) DecodeValues() ([]Value, error) {
	d.pos = 0
	d.strings.Reset()

	if len(d.data) == 0 {
		return nil, fmt.Errorf("%w: empty document", errs.ErrTruncated)
	}

	var values []Value
	for d.pos < len(d.data) {
		v, err := d.decodeValue(0)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	d.logger.Debug("document decoded",
		zap.Int("bytes", len(d.data)),
		zap.Int("root_values", len(values)),
		zap.Int("shared_strings", d.strings.Len()),
	)

	return values, nil
}

// Decode parses one encoded document.
//
// It is a shorthand for NewDecoder followed by Decoder.Decode.
func Decode(data []byte, opts ...DecoderOption) (Value, error) {
	d, err := NewDecoder(data, opts...)
	if err != nil {
		return Value{}, err
	}

	return d.Decode()
}

func (d *Decoder) decodeValue(depth int) (Value, error) {
	start := d.pos
	code, err := d.readByte()
	if err != nil {
		return Value{}, err
	}

	switch format.TypeCode(code) {
	case format.TypeNull:
		return Null(), nil
	case format.TypeFalse:
		return Bool(false), nil
	case format.TypeTrue:
		return Bool(true), nil
	case format.TypeInt8:
		b, err := d.readFixed(1)
		if err != nil {
			return Value{}, err
		}

		return Int(int64(int8(b[0]))), nil
	case format.TypeInt16:
		b, err := d.readFixed(2)
		if err != nil {
			return Value{}, err
		}

		return Int(int64(int16(d.engine.Uint16(b)))), nil //nolint: gosec
	case format.TypeInt32:
		b, err := d.readFixed(4)
		if err != nil {
			return Value{}, err
		}

		return Int(int64(int32(d.engine.Uint32(b)))), nil //nolint: gosec
	case format.TypeInt64:
		b, err := d.readFixed(8)
		if err != nil {
			return Value{}, err
		}

		return Int(int64(d.engine.Uint64(b))), nil //nolint: gosec
	case format.TypeUInt64:
		b, err := d.readFixed(8)
		if err != nil {
			return Value{}, err
		}

		return Uint(d.engine.Uint64(b)), nil
	case format.TypeFloat32:
		b, err := d.readFixed(4)
		if err != nil {
			return Value{}, err
		}

		return Float32(math.Float32frombits(d.engine.Uint32(b))), nil
	case format.TypeFloat64:
		b, err := d.readFixed(8)
		if err != nil {
			return Value{}, err
		}

		return Float64(math.Float64frombits(d.engine.Uint64(b))), nil
	case format.TypeDate:
		b, err := d.readFixed(8)
		if err != nil {
			return Value{}, err
		}

		return Value{kind: KindDate, i: int64(d.engine.Uint64(b))}, nil //nolint: gosec
	case format.TypeRawNumber:
		b, err := d.readPrefixed()
		if err != nil {
			return Value{}, err
		}

		return Value{kind: KindRawNumber, data: bytes.Clone(b)}, nil
	case format.TypeData:
		b, err := d.readPrefixed()
		if err != nil {
			return Value{}, err
		}

		return Data(bytes.Clone(b)), nil
	case format.TypeString, format.TypeSharedString, format.TypeExternString:
		s, err := d.decodeString(format.TypeCode(code))
		if err != nil {
			return Value{}, err
		}

		return String(s), nil
	case format.TypeArray:
		return d.decodeArray(depth)
	case format.TypeDict:
		return d.decodeDict(start, depth)
	default:
		return Value{}, fmt.Errorf("%w: 0x%02x at offset %d", errs.ErrInvalidTypeCode, code, start)
	}
}

// decodeString decodes the payload of a string of the given code.
func (d *Decoder) decodeString(code format.TypeCode) (string, error) {
	switch code { //nolint:exhaustive
	case format.TypeString:
		b, err := d.readPrefixed()
		if err != nil {
			return "", err
		}
		s := string(b)
		d.strings.Add(s)

		return s, nil
	case format.TypeSharedString:
		id, err := d.readUvarint()
		if err != nil {
			return "", err
		}
		s, ok := d.strings.Get(id)
		if !ok {
			return "", fmt.Errorf("%w: %d (table holds %d)", errs.ErrUnknownSharedString, id, d.strings.Len())
		}

		return s, nil
	default:
		id, err := d.readUvarint()
		if err != nil {
			return "", err
		}
		s, ok := d.extern.String(id)
		if !ok {
			return "", fmt.Errorf("%w: %d", errs.ErrUnknownExternString, id)
		}

		return s, nil
	}
}

func (d *Decoder) enter(depth int) error {
	if d.maxDepth > 0 && depth >= d.maxDepth {
		return fmt.Errorf("%w: limit %d", errs.ErrMaxDepthExceeded, d.maxDepth)
	}

	return nil
}

// readCount reads a container count. Every element occupies at least one
// byte, so a count larger than the remaining input is rejected up front.
func (d *Decoder) readCount() (int, error) {
	count, err := d.readUvarint()
	if err != nil {
		return 0, err
	}
	if count > uint64(len(d.data)-d.pos) {
		return 0, fmt.Errorf("%w: count %d exceeds remaining %d bytes", errs.ErrTruncated, count, len(d.data)-d.pos)
	}

	return int(count), nil //nolint: gosec
}

func (d *Decoder) decodeArray(depth int) (Value, error) {
	if err := d.enter(depth); err != nil {
		return Value{}, err
	}

	count, err := d.readCount()
	if err != nil {
		return Value{}, err
	}

	items := make([]Value, count)
	for i := range items {
		if items[i], err = d.decodeValue(depth + 1); err != nil {
			return Value{}, err
		}
	}

	return Array(items...), nil
}

func (d *Decoder) decodeDict(start int, depth int) (Value, error) {
	if err := d.enter(depth); err != nil {
		return Value{}, err
	}

	count, err := d.readCount()
	if err != nil {
		return Value{}, err
	}

	v := Value{
		kind:      KindDict,
		items:     make([]Value, count),
		keys:      make([]string, count),
		keyOffset: make(map[uint32]int, count),
		hasher:    d.keyHasher,
	}

	for i := range count {
		keyStart := d.pos
		code, err := d.readByte()
		if err != nil {
			return Value{}, err
		}
		if !format.TypeCode(code).IsString() {
			return Value{}, fmt.Errorf("%w: type %v at offset %d", errs.ErrInvalidDictKey, format.TypeCode(code), keyStart)
		}
		if v.keys[i], err = d.decodeString(format.TypeCode(code)); err != nil {
			return Value{}, err
		}
		v.keyOffset[uint32(keyStart-start)] = i //nolint: gosec

		if v.items[i], err = d.decodeValue(depth + 1); err != nil {
			return Value{}, err
		}
	}

	if count == 0 {
		return v, nil
	}

	if v.index, err = d.readKeyIndex(count); err != nil {
		return Value{}, err
	}
	if err := v.verifyKeyIndex(start); err != nil {
		return Value{}, err
	}

	return v, nil
}

func (d *Decoder) readKeyIndex(count int) ([]section.KeyIndexEntry, error) {
	b, err := d.readFixed(count * section.KeyIndexEntrySize)
	if err != nil {
		return nil, err
	}

	entries := make([]section.KeyIndexEntry, count)
	for i := range entries {
		if entries[i], err = section.ParseKeyIndexEntry(b[i*section.KeyIndexEntrySize:], d.engine); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// verifyKeyIndex checks that the index is sorted and maps every key exactly once.
func (v Value) verifyKeyIndex(start int) error {
	if !section.IsSortedKeyIndex(v.index) {
		return fmt.Errorf("%w: dict at offset %d is not sorted by digest", errs.ErrInvalidKeyIndex, start)
	}

	seen := make([]bool, len(v.keys))
	for _, entry := range v.index {
		pos, ok := v.keyOffset[entry.Offset]
		if !ok || seen[pos] {
			return fmt.Errorf("%w: dict at offset %d has entry for offset %d", errs.ErrInvalidKeyIndex, start, entry.Offset)
		}
		if entry.Digest != v.hasher([]byte(v.keys[pos])) {
			return fmt.Errorf("%w: digest mismatch for key %q", errs.ErrInvalidKeyIndex, v.keys[pos])
		}
		seen[pos] = true
	}

	return nil
}

func (d *Decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, fmt.Errorf("%w: at offset %d", errs.ErrTruncated, d.pos)
	}
	b := d.data[d.pos]
	d.pos++

	return b, nil
}

func (d *Decoder) readFixed(n int) ([]byte, error) {
	if n > len(d.data)-d.pos {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d", errs.ErrTruncated, n, d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n

	return b, nil
}

func (d *Decoder) readUvarint() (uint64, error) {
	v, n, err := encoding.Uvarint(d.data[d.pos:])
	if err != nil {
		return 0, fmt.Errorf("%w: at offset %d", err, d.pos)
	}
	d.pos += n

	return v, nil
}

// readPrefixed reads a varint length followed by that many bytes.
func (d *Decoder) readPrefixed() ([]byte, error) {
	b, n, err := encoding.ReadPrefixed(d.data[d.pos:])
	if err != nil {
		return nil, fmt.Errorf("%w: at offset %d", err, d.pos)
	}
	d.pos += n

	return b, nil
}

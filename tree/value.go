package tree

import (
	"fmt"
	"math"
	"time"

	"github.com/arloliu/vtree/errs"
	"github.com/arloliu/vtree/section"
)

// Kind identifies the type of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint // only for values above math.MaxInt64
	KindFloat32
	KindFloat64
	KindRawNumber
	KindDate
	KindString
	KindData
	KindArray
	KindDict
)

var kindNames = [...]string{
	KindNull:      "Null",
	KindBool:      "Bool",
	KindInt:       "Int",
	KindUint:      "Uint",
	KindFloat32:   "Float32",
	KindFloat64:   "Float64",
	KindRawNumber: "RawNumber",
	KindDate:      "Date",
	KindString:    "String",
	KindData:      "Data",
	KindArray:     "Array",
	KindDict:      "Dict",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "Unknown"
	}

	return kindNames[k]
}

// Number is the native form of a raw number value returned by Value.Interface.
type Number string

// Pair is one key/value entry of a dict built with the Dict constructor.
type Pair struct {
	Key   string
	Value Value
}

// Value is an immutable node of a document tree.
//
// Values are produced by the Decoder or assembled with the constructors in
// this file, and written with Encoder.WriteValue. The zero Value is null.
type Value struct {
	kind  Kind
	b     bool
	i     int64 // Int, and Date as Unix seconds
	u     uint64
	f     float64
	s     string
	data  []byte   // Data, RawNumber text
	items []Value  // array elements or dict values
	keys  []string // dict keys, parallel to items

	// decoded dicts only
	index     []section.KeyIndexEntry
	keyOffset map[uint32]int // key offset → pair position
	hasher    KeyHasher
}

// Null returns a null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a signed integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Uint returns an unsigned integer value. Values that fit in an int64 are
// represented as KindInt, matching how they are encoded.
func Uint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}

	return Value{kind: KindUint, u: u}
}

// Float32 returns a single-precision float value.
func Float32(f float32) Value { return Value{kind: KindFloat32, f: float64(f)} }

// Float64 returns a double-precision float value.
func Float64(f float64) Value { return Value{kind: KindFloat64, f: f} }

// RawNumber returns a raw number value holding text verbatim.
func RawNumber(text string) Value { return Value{kind: KindRawNumber, data: []byte(text)} }

// Date returns a date value truncated to whole seconds.
func Date(t time.Time) Value { return Value{kind: KindDate, i: t.Unix()} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Data returns a binary blob value.
func Data(b []byte) Value { return Value{kind: KindData, data: b} }

// Array returns an array value holding items in order.
func Array(items ...Value) Value { return Value{kind: KindArray, items: items} }

// Dict returns a dict value holding pairs in order.
func Dict(pairs ...Pair) Value {
	v := Value{
		kind:  KindDict,
		items: make([]Value, len(pairs)),
		keys:  make([]string, len(pairs)),
	}
	for i, p := range pairs {
		v.keys[i] = p.Key
		v.items[i] = p.Value
	}

	return v
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean held by v, or false for other kinds.
func (v Value) Bool() bool { return v.b }

// Int returns v as an int64. Floats are truncated; other kinds yield 0.
func (v Value) Int() int64 {
	switch v.kind { //nolint:exhaustive
	case KindInt:
		return v.i
	case KindUint:
		return int64(v.u) //nolint:gosec
	case KindFloat32, KindFloat64:
		return int64(v.f)
	default:
		return 0
	}
}

// Uint returns v as a uint64. Floats are truncated; other kinds yield 0.
func (v Value) Uint() uint64 {
	switch v.kind { //nolint:exhaustive
	case KindInt:
		return uint64(v.i) //nolint:gosec
	case KindUint:
		return v.u
	case KindFloat32, KindFloat64:
		return uint64(v.f)
	default:
		return 0
	}
}

// Float returns v as a float64. Integers are converted; other kinds yield 0.
func (v Value) Float() float64 {
	switch v.kind { //nolint:exhaustive
	case KindFloat32, KindFloat64:
		return v.f
	case KindInt:
		return float64(v.i)
	case KindUint:
		return float64(v.u)
	default:
		return 0
	}
}

// String returns the string held by v, or the text of a raw number.
func (v Value) String() string {
	if v.kind == KindRawNumber {
		return string(v.data)
	}

	return v.s
}

// Bytes returns the blob held by v, or the text of a raw number.
func (v Value) Bytes() []byte {
	return v.data
}

// RawNumber returns the text of a raw number, or an empty Number for other kinds.
func (v Value) RawNumber() Number {
	if v.kind != KindRawNumber {
		return ""
	}

	return Number(v.data)
}

// Time returns the date held by v in UTC, or the zero time for other kinds.
func (v Value) Time() time.Time {
	if v.kind != KindDate {
		return time.Time{}
	}

	return time.Unix(v.i, 0).UTC()
}

// Len returns the number of elements of an array or pairs of a dict.
func (v Value) Len() int {
	return len(v.items)
}

// Index returns the i-th element of an array or the i-th value of a dict.
// It panics if i is out of range.
func (v Value) Index(i int) Value {
	return v.items[i]
}

// KeyAt returns the i-th key of a dict. It panics if i is out of range.
func (v Value) KeyAt(i int) string {
	return v.keys[i]
}

// Get returns the value stored under key in a dict.
//
// Decoded dicts binary-search their key index by digest and confirm each
// candidate by comparing the full key. Constructed dicts are scanned. When a
// key occurs more than once, the first occurrence wins.
func (v Value) Get(key string) (Value, bool) {
	pos, _, ok := v.lookup(key)
	if !ok {
		return Value{}, false
	}

	return v.items[pos], true
}

// Field is like Get but reports why no value was returned.
//
// Returns:
//   - Value: The value stored under key
//   - error: errs.ErrKindMismatch if v is not a dict, errs.ErrKeyNotFound if key is absent
func (v Value) Field(key string) (Value, error) {
	if v.kind != KindDict {
		return Value{}, fmt.Errorf("%w: %v is not a dict", errs.ErrKindMismatch, v.kind)
	}

	item, ok := v.Get(key)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", errs.ErrKeyNotFound, key)
	}

	return item, nil
}

// KeyOffset returns the key index offset recorded for key: the distance
// from the dict's type code to the first byte of the key. It is only
// available for decoded dicts.
func (v Value) KeyOffset(key string) (uint32, bool) {
	if v.hasher == nil {
		return 0, false
	}

	_, offset, ok := v.lookup(key)

	return offset, ok
}

// lookup returns the position of key among the dict's pairs and, for
// decoded dicts, the index offset it was found at.
func (v Value) lookup(key string) (int, uint32, bool) {
	if v.kind != KindDict {
		return 0, 0, false
	}

	if v.hasher == nil {
		for i, k := range v.keys {
			if k == key {
				return i, 0, true
			}
		}

		return 0, 0, false
	}

	for _, entry := range section.SearchKeyIndex(v.index, v.hasher([]byte(key))) {
		if pos, ok := v.keyOffset[entry.Offset]; ok && v.keys[pos] == key {
			return pos, entry.Offset, true
		}
	}

	return 0, 0, false
}

// Interface returns v in native Go form:
//
//	Null      nil
//	Bool      bool
//	Int       int64
//	Uint      uint64
//	Float32   float32
//	Float64   float64
//	RawNumber Number
//	Date      time.Time (UTC)
//	String    string
//	Data      []byte
//	Array     []any
//	Dict      map[string]any (the first occurrence of a repeated key wins)
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindUint:
		return v.u
	case KindFloat32:
		return float32(v.f)
	case KindFloat64:
		return v.f
	case KindRawNumber:
		return Number(v.data)
	case KindDate:
		return v.Time()
	case KindString:
		return v.s
	case KindData:
		return v.data
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}

		return out
	case KindDict:
		out := make(map[string]any, len(v.items))
		for i, item := range v.items {
			if _, exists := out[v.keys[i]]; !exists {
				out[v.keys[i]] = item.Interface()
			}
		}

		return out
	default:
		return nil
	}
}

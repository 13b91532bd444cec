package tree

import (
	"bytes"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/vtree/format"
	"github.com/arloliu/vtree/strtab"
)

// sampleTree returns a document mixing every kind, nested four levels deep.
func sampleTree() Value {
	return Dict(
		Pair{Key: "id", Value: Int(9_000_000_000)},
		Pair{Key: "name", Value: String("sensor-1")},
		Pair{Key: "active", Value: Bool(true)},
		Pair{Key: "ratio", Value: Float32(0.25)},
		Pair{Key: "mean", Value: Float64(math.Pi)},
		Pair{Key: "big", Value: Uint(math.MaxUint64)},
		Pair{Key: "price", Value: RawNumber("12345678901234567890.0001")},
		Pair{Key: "seen", Value: Date(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))},
		Pair{Key: "blob", Value: Data([]byte{0xDE, 0xAD, 0xBE, 0xEF})},
		Pair{Key: "none", Value: Null()},
		Pair{Key: "tags", Value: Array(String("sensor-1"), String("indoor"), String(""), String("indoor"))},
		Pair{Key: "nested", Value: Dict(
			Pair{Key: "level", Value: Int(2)},
			Pair{Key: "children", Value: Array(
				Dict(
					Pair{Key: "level", Value: Int(3)},
					Pair{Key: "leaf", Value: Array(Int(-1), Int(math.MinInt64), Int(math.MaxInt64))},
				),
				Dict(
					Pair{Key: "level", Value: Int(3)},
					Pair{Key: "name", Value: String("name")},
				),
				Array(),
				Dict(),
			)},
		)},
	)
}

func roundTrip(t *testing.T, v Value, encOpts []EncoderOption, decOpts []DecoderOption) (Value, []byte) {
	t.Helper()

	data := encode(t, func(enc *Encoder) {
		require.NoError(t, enc.WriteValue(v))
	}, encOpts...)

	got, err := Decode(data, decOpts...)
	require.NoError(t, err)

	return got, data
}

func requireSameTree(t *testing.T, want, got Value) {
	t.Helper()

	if diff := cmp.Diff(want.Interface(), got.Interface(), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("decoded tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_SampleTree(t *testing.T) {
	want := sampleTree()

	got, _ := roundTrip(t, want, nil, nil)
	requireSameTree(t, want, got)

	nested, err := got.Field("nested")
	require.NoError(t, err)
	children, err := nested.Field("children")
	require.NoError(t, err)
	leaf, err := children.Index(0).Field("leaf")
	require.NoError(t, err)
	require.Equal(t, int64(math.MinInt64), leaf.Index(1).Int())
}

func TestRoundTrip_Scalars(t *testing.T) {
	values := []Value{
		Null(), Bool(false), Bool(true),
		Int(0), Int(math.MinInt8), Int(math.MaxInt8), Int(math.MinInt16), Int(math.MaxInt16),
		Int(math.MinInt32), Int(math.MaxInt32), Int(math.MinInt64), Int(math.MaxInt64),
		Uint(0), Uint(math.MaxInt64), Uint(math.MaxInt64 + 1), Uint(math.MaxUint64),
		Float32(-0.5), Float32(math.MaxFloat32), Float64(math.SmallestNonzeroFloat64), Float64(math.Inf(-1)),
		RawNumber("-0.000"), RawNumber(""),
		Date(time.Unix(0, 0)), Date(time.Unix(-86400*365, 0)),
		String(""), String("héllo wörld"), Data(nil), Data([]byte{0}),
	}

	for _, want := range values {
		t.Run(fmt.Sprintf("%v/%v", want.Kind(), want.Interface()), func(t *testing.T) {
			got, _ := roundTrip(t, want, nil, nil)
			require.Equal(t, want.Kind(), got.Kind())
			requireSameTree(t, want, got)
		})
	}
}

func TestRoundTrip_CollidingDigests(t *testing.T) {
	// every two-letter key shares digest 2
	want := Dict(
		Pair{Key: "zz", Value: Int(1)},
		Pair{Key: "a", Value: Int(2)},
		Pair{Key: "yy", Value: Int(3)},
		Pair{Key: "xx", Value: Dict(
			Pair{Key: "qq", Value: Int(4)},
			Pair{Key: "pp", Value: Int(5)},
		)},
	)

	got, data := roundTrip(t, want,
		[]EncoderOption{WithKeyHasher(lengthHasher)},
		[]DecoderOption{WithDecoderKeyHasher(lengthHasher)},
	)
	requireSameTree(t, want, got)

	for i := range want.Len() {
		key := want.KeyAt(i)

		v, ok := got.Get(key)
		require.True(t, ok, key)
		require.Equal(t, want.Index(i).Interface(), v.Interface())

		off, ok := got.KeyOffset(key)
		require.True(t, ok, key)
		requireKeyAt(t, data, off, key)
	}

	inner, ok := got.Get("xx")
	require.True(t, ok)
	pp, ok := inner.Get("pp")
	require.True(t, ok)
	require.Equal(t, int64(5), pp.Int())
}

func TestRoundTrip_ManyKeysDefaultHasher(t *testing.T) {
	const n = 3000

	pairs := make([]Pair, n)
	for i := range pairs {
		pairs[i] = Pair{Key: fmt.Sprintf("key-%04d", i), Value: Int(int64(i))}
	}
	want := Dict(pairs...)

	got, data := roundTrip(t, want, nil, nil)
	require.Equal(t, n, got.Len())

	for i := range n {
		key := pairs[i].Key

		v, ok := got.Get(key)
		require.True(t, ok, key)
		require.Equal(t, int64(i), v.Int())

		off, ok := got.KeyOffset(key)
		require.True(t, ok, key)
		requireKeyAt(t, data, off, key)
	}

	_, ok := got.Get("key-9999")
	require.False(t, ok)
}

func TestRoundTrip_ExternStrings(t *testing.T) {
	ext := strtab.MustNewExtern([]string{"temperature", "humidity", "celsius"})
	want := Array(
		Dict(Pair{Key: "temperature", Value: Float64(21.5)}, Pair{Key: "unit", Value: String("celsius")}),
		Dict(Pair{Key: "humidity", Value: Float64(0.4)}, Pair{Key: "unit", Value: String("percent")}),
	)

	got, data := roundTrip(t, want,
		[]EncoderOption{WithExternStrings(ext)},
		[]DecoderOption{WithDecoderExternStrings(ext)},
	)
	requireSameTree(t, want, got)

	for _, s := range []string{"temperature", "humidity", "celsius"} {
		require.False(t, bytes.Contains(data, []byte(s)), s)
	}
	require.Equal(t, 1, bytes.Count(data, []byte("unit")))
	require.Equal(t, 1, bytes.Count(data, []byte("percent")))
}

func TestRoundTrip_StringsWrittenOnce(t *testing.T) {
	want := sampleTree()

	_, data := roundTrip(t, want, nil, nil)

	require.Equal(t, 1, bytes.Count(data, []byte("sensor-1")))
	require.Equal(t, 1, bytes.Count(data, []byte("indoor")))
	require.Equal(t, 1, bytes.Count(data, []byte("level")))
}

// requireKeyAt checks that the dict starting at data[0] holds key at offset off.
func requireKeyAt(t *testing.T, data []byte, off uint32, key string) {
	t.Helper()

	require.Less(t, int(off), len(data))
	code := format.TypeCode(data[off])
	require.True(t, code.IsString(), "offset %d holds %v", off, code)

	if code == format.TypeString {
		require.True(t, bytes.HasPrefix(data[off+1:], append([]byte{byte(len(key))}, key...)), key)
	}
}

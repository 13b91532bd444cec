package compress

import (
	"bytes"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/vtree/format"
	"github.com/arloliu/vtree/tree"
)

// ==============================================================================
// Helper Functions

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

// encodedDocument builds a real document of n records.
func encodedDocument(t testing.TB, n int) []byte {
	t.Helper()

	records := make([]tree.Value, n)
	for i := range records {
		records[i] = tree.Dict(
			tree.Pair{Key: "id", Value: tree.Int(int64(i))},
			tree.Pair{Key: "host", Value: tree.String(fmt.Sprintf("host-%03d", i))},
			tree.Pair{Key: "message", Value: tree.String(fmt.Sprintf("request %d served in %dms", i, i%250))},
			tree.Pair{Key: "load", Value: tree.Float64(float64(i%97) / 7)},
		)
	}

	var buf bytes.Buffer
	enc, err := tree.NewEncoder(&buf)
	require.NoError(t, err)
	require.NoError(t, enc.WriteValue(tree.Array(records...)))
	require.NoError(t, enc.Finish())

	return buf.Bytes()
}

// allocatedBytes reports how many bytes fn allocated on the heap.
func allocatedBytes(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)

	return after.TotalAlloc - before.TotalAlloc
}

// ==============================================================================
// Factory Tests
// ==============================================================================

func TestCompressionType_String(t *testing.T) {
	tests := []struct {
		cType    format.CompressionType
		expected string
	}{
		{format.CompressionNone, "None"},
		{format.CompressionZstd, "Zstd"},
		{format.CompressionS2, "S2"},
		{format.CompressionLZ4, "LZ4"},
		{format.CompressionType(0xFF), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.cType.String())
		})
	}
}

func TestGetCodec(t *testing.T) {
	for name, want := range map[format.CompressionType]Codec{
		format.CompressionNone: NewNoOpCompressor(),
		format.CompressionZstd: NewZstdCompressor(),
		format.CompressionS2:   NewS2Compressor(),
		format.CompressionLZ4:  NewLZ4Compressor(),
	} {
		codec, err := GetCodec(name)
		require.NoError(t, err)
		require.IsType(t, want, codec)
	}

	_, err := GetCodec(format.CompressionType(0))
	require.ErrorContains(t, err, "unsupported compression type")

	_, err = GetCodec(format.CompressionType(0x7F))
	require.Error(t, err)
}

func TestCompressionStats_Calculations(t *testing.T) {
	tests := []struct {
		name            string
		stats           CompressionStats
		expectedRatio   float64
		expectedSavings float64
	}{
		{
			name:            "good compression",
			stats:           CompressionStats{Algorithm: format.CompressionZstd, OriginalSize: 1000, CompressedSize: 300},
			expectedRatio:   0.3,
			expectedSavings: 70.0,
		},
		{
			name:            "no compression benefit",
			stats:           CompressionStats{Algorithm: format.CompressionNone, OriginalSize: 500, CompressedSize: 500},
			expectedRatio:   1.0,
			expectedSavings: 0.0,
		},
		{
			name:            "compression overhead",
			stats:           CompressionStats{Algorithm: format.CompressionS2, OriginalSize: 100, CompressedSize: 120},
			expectedRatio:   1.2,
			expectedSavings: -20.0,
		},
		{
			name:            "zero original size",
			stats:           CompressionStats{Algorithm: format.CompressionLZ4, CompressedSize: 100},
			expectedRatio:   0.0,
			expectedSavings: 100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.expectedRatio, tt.stats.CompressionRatio(), 0.001)
			require.InDelta(t, tt.expectedSavings, tt.stats.SpaceSavings(), 0.001)
		})
	}
}

// ==============================================================================
// Codec Behavior Tests
// ==============================================================================

func TestNoOpCompressor_SharesInput(t *testing.T) {
	codec := NewNoOpCompressor()
	data := []byte("document")

	compressed, err := codec.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &compressed[0])

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Same(t, &data[0], &decompressed[0])
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Empty(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Empty(t, decompressed)

			decompressed, err = Decompress(codec, nil, 0)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"scalar document", []byte{0x0C, 0x02, 'h', 'i'}},
		{"small document", encodedDocument(t, 4)},
		{"medium document", encodedDocument(t, 500)},
		{"large document", encodedDocument(t, 5000)},
		{"repeated pattern", bytes.Repeat([]byte{0x10, 0x02, 0x0D, 0x00}, 4096)},
		{"highly compressible", make([]byte, 1024*1024)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotEmpty(t, compressed)

					t.Logf("Original: %d bytes, Compressed: %d bytes, Ratio: %.2f%%",
						len(tc.data), len(compressed), float64(len(compressed))/float64(len(tc.data))*100)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)

					sized, err := Decompress(codec, compressed, len(tc.data))
					require.NoError(t, err)
					require.Equal(t, tc.data, sized)
				})
			}
		})
	}
}

func TestSizedDecompressors_RejectWrongSize(t *testing.T) {
	data := encodedDocument(t, 50)

	for name, codec := range map[string]Codec{"S2": NewS2Compressor(), "LZ4": NewLZ4Compressor()} {
		t.Run(name, func(t *testing.T) {
			sized, ok := codec.(SizedDecompressor)
			require.True(t, ok)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			_, err = sized.DecompressSized(compressed, len(data)+1)
			require.Error(t, err)

			_, err = sized.DecompressSized(compressed, len(data)/2)
			require.Error(t, err)
		})
	}
}

func TestSizedDecompressors_UntrustedSizeHint(t *testing.T) {
	const claimed = 1 << 30 // 1GiB from a 3-byte payload
	payload := []byte{0x01, 0x02, 0x03}

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			if _, ok := codec.(SizedDecompressor); !ok {
				t.Skip("codec has no sized path")
			}

			// warm pooled decoders so their setup is not counted
			_, _ = Decompress(codec, payload, len(payload))

			var err error
			allocated := allocatedBytes(func() {
				_, err = Decompress(codec, payload, claimed)
			})
			require.Error(t, err)
			require.Less(t, allocated, uint64(64<<20), "allocated %d bytes", allocated)
		})
	}
}

func TestLZ4Compressor_DecompressSized_RejectsImpossibleRatio(t *testing.T) {
	codec := NewLZ4Compressor()
	compressed, err := codec.Compress(make([]byte, 64*1024))
	require.NoError(t, err)

	_, err = codec.DecompressSized(compressed, len(compressed)*lz4MaxBlockRatio+1)
	require.ErrorContains(t, err, "cannot decode")

	_, err = codec.DecompressSized(compressed, -1)
	require.Error(t, err)
}

func TestPreallocSize(t *testing.T) {
	require.Equal(t, 100, preallocSize(100, 50))
	require.Equal(t, 3*maxPreallocRatio, preallocSize(1<<30, 3))
	require.Equal(t, 0, preallocSize(-5, 10))
	require.Equal(t, 0, preallocSize(100, 0))
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{"random_bytes", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"text_as_compressed", []byte("this is not compressed data")},
		{"corrupted_header", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			if codecName == "NoOp" {
				t.Skip("NoOp codec doesn't validate data")
			}

			for _, input := range invalidInputs {
				t.Run(input.name, func(t *testing.T) {
					_, err := codec.Decompress(input.data)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 20
	data := encodedDocument(t, 100)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			done := make(chan error, numGoroutines)
			for range numGoroutines {
				go func() {
					c, err := codec.Compress(data)
					if err != nil {
						done <- err
						return
					}
					d, err := codec.Decompress(c)
					if err != nil {
						done <- err
						return
					}
					if !bytes.Equal(data, d) {
						done <- fmt.Errorf("round trip mismatch")
						return
					}
					if !bytes.Equal(compressed, c) {
						done <- fmt.Errorf("compression is not deterministic")
						return
					}
					done <- nil
				}()
			}

			for range numGoroutines {
				require.NoError(t, <-done)
			}
		})
	}
}

func TestLZ4Compressor_LargeExpansionRatio(t *testing.T) {
	data := make([]byte, 8*1024*1024)
	codec := NewLZ4Compressor()

	compressed, err := codec.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed)*4, len(data), "needs several buffer doublings")

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, len(data), len(decompressed))
}

package encoding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/vtree/errs"
)

func TestAppendPrefixed(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected []byte
	}{
		{"empty", "", []byte{0x00}},
		{"short", "hi", []byte{0x02, 'h', 'i'}},
		{"two byte length", strings.Repeat("a", 200), append([]byte{0xC8, 0x01}, strings.Repeat("a", 200)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendPrefixed(nil, tt.data)
			require.Equal(t, tt.expected, got)
			require.Equal(t, AppendPrefixed(nil, []byte(tt.data)), got)
			require.Len(t, got, PrefixedLen(len(tt.data)))
		})
	}
}

func TestAppendPrefixed_KeepsExisting(t *testing.T) {
	dst := []byte{0x0C}
	dst = AppendPrefixed(dst, "x")
	require.Equal(t, []byte{0x0C, 0x01, 'x'}, dst)
}

func TestReadPrefixed(t *testing.T) {
	encoded := AppendPrefixed(nil, "payload")
	encoded = append(encoded, 0xFF) // trailing byte belongs to the next value

	data, n, err := ReadPrefixed(encoded)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
	require.Equal(t, 8, n)
}

func TestReadPrefixed_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, errs.ErrTruncated},
		{"unterminated length", []byte{0x80}, errs.ErrTruncated},
		{"short payload", []byte{0x05, 'a', 'b'}, errs.ErrTruncated},
		{"length overflow", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F}, errs.ErrVarintOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadPrefixed(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

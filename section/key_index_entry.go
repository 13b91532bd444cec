package section

import (
	"slices"
	"sort"

	"github.com/arloliu/vtree/endian"
	"github.com/arloliu/vtree/errs"
)

// KeyIndexEntry is one slot of a dict's trailing key index. It is a fixed size of 6 bytes.
type KeyIndexEntry struct {
	// Digest is the 16-bit digest of the key bytes.
	Digest uint16 // 2 bytes, offset 0-1

	// Offset is the distance from the dict's type code to the first byte of the key.
	Offset uint32 // 4 bytes, offset 2-5
}

// AppendTo appends the 6-byte encoding of the entry to dst.
func (e KeyIndexEntry) AppendTo(dst []byte, engine endian.EndianEngine) []byte {
	dst = engine.AppendUint16(dst, e.Digest)
	return engine.AppendUint32(dst, e.Offset)
}

// ParseKeyIndexEntry parses a key index entry from the start of data.
func ParseKeyIndexEntry(data []byte, engine endian.EndianEngine) (KeyIndexEntry, error) {
	if len(data) < KeyIndexEntrySize {
		return KeyIndexEntry{}, errs.ErrInvalidIndexEntrySize
	}

	return KeyIndexEntry{
		Digest: engine.Uint16(data[0:2]),
		Offset: engine.Uint32(data[2:6]),
	}, nil
}

// SortKeyIndex orders entries by digest, keeping write order among equal digests.
func SortKeyIndex(entries []KeyIndexEntry) {
	slices.SortStableFunc(entries, func(a, b KeyIndexEntry) int {
		return int(a.Digest) - int(b.Digest)
	})
}

// IsSortedKeyIndex reports whether entries are ordered by digest.
func IsSortedKeyIndex(entries []KeyIndexEntry) bool {
	return slices.IsSortedFunc(entries, func(a, b KeyIndexEntry) int {
		return int(a.Digest) - int(b.Digest)
	})
}

// SearchKeyIndex returns the candidate entries whose digest equals digest.
//
// The entries must be sorted by SortKeyIndex. The result is a sub-slice of
// entries (possibly empty) in write order.
func SearchKeyIndex(entries []KeyIndexEntry, digest uint16) []KeyIndexEntry {
	lo := sort.Search(len(entries), func(i int) bool { return entries[i].Digest >= digest })
	hi := lo
	for hi < len(entries) && entries[hi].Digest == digest {
		hi++
	}

	return entries[lo:hi]
}

// Package strtab provides extern string tables.
//
// An extern table maps well-known strings to ids agreed on outside of any
// single document, for example the property names shared by every document
// in a database. An encoder given an extern table writes those strings as a
// short id reference and never copies their bytes into the document. The
// decoder must be given an equal table to resolve the references.
//
// An Extern is immutable after construction and is safe for concurrent use
// by any number of encoders and decoders.
package strtab

import (
	"fmt"
	"slices"

	"github.com/arloliu/vtree/encoding"
	"github.com/arloliu/vtree/errs"
	"github.com/cespare/xxhash/v2"
)

// Extern is an immutable table of strings with externally assigned ids.
//
// A nil *Extern is a valid, empty table.
type Extern struct {
	ids         map[string]uint64
	strs        map[uint64]string
	fingerprint uint64
}

// NewExtern creates an extern table assigning ids by position: strs[i] gets id i.
//
// Parameters:
//   - strs: Strings in id order (must be unique)
//
// Returns:
//   - *Extern: The table
//   - error: errs.ErrDuplicateExternString if a string appears twice
func NewExtern(strs []string) (*Extern, error) {
	ids := make(map[string]uint64, len(strs))
	for i, s := range strs {
		ids[s] = uint64(i)
		if len(ids) != i+1 {
			return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateExternString, s)
		}
	}

	return newExtern(ids)
}

// NewExternMap creates an extern table from an explicit string-to-id mapping.
//
// Ids need not be dense, but each id may be assigned to only one string.
//
// Parameters:
//   - ids: Mapping from string content to its extern id
//
// Returns:
//   - *Extern: The table (the map is copied)
//   - error: errs.ErrDuplicateExternString if two strings share an id
func NewExternMap(ids map[string]uint64) (*Extern, error) {
	copied := make(map[string]uint64, len(ids))
	for s, id := range ids {
		copied[s] = id
	}

	return newExtern(copied)
}

// MustNewExtern is like NewExtern but panics on error.
// It simplifies initialization of package-level tables.
func MustNewExtern(strs []string) *Extern {
	e, err := NewExtern(strs)
	if err != nil {
		panic(err)
	}

	return e
}

func newExtern(ids map[string]uint64) (*Extern, error) {
	strs := make(map[uint64]string, len(ids))
	for s, id := range ids {
		if prev, exists := strs[id]; exists {
			return nil, fmt.Errorf("%w: %q and %q share id %d", errs.ErrDuplicateExternString, prev, s, id)
		}
		strs[id] = s
	}

	e := &Extern{ids: ids, strs: strs}
	e.fingerprint = e.computeFingerprint()

	return e, nil
}

// computeFingerprint hashes every (id, string) pair in ascending id order.
func (e *Extern) computeFingerprint() uint64 {
	order := make([]uint64, 0, len(e.strs))
	for id := range e.strs {
		order = append(order, id)
	}
	slices.Sort(order)

	d := xxhash.New()
	var buf []byte
	for _, id := range order {
		s := e.strs[id]
		buf = encoding.AppendUvarint(buf[:0], id)
		buf = encoding.AppendUvarint(buf, uint64(len(s)))
		_, _ = d.Write(buf)
		_, _ = d.WriteString(s)
	}

	return d.Sum64()
}

// Lookup returns the extern id of s.
func (e *Extern) Lookup(s string) (uint64, bool) {
	if e == nil {
		return 0, false
	}
	id, ok := e.ids[s]

	return id, ok
}

// String returns the string registered under id.
func (e *Extern) String(id uint64) (string, bool) {
	if e == nil {
		return "", false
	}
	s, ok := e.strs[id]

	return s, ok
}

// Len returns the number of strings in the table.
func (e *Extern) Len() int {
	if e == nil {
		return 0
	}

	return len(e.ids)
}

// Fingerprint identifies the table's content.
//
// Two tables holding the same (id, string) pairs have equal fingerprints.
// An empty or nil table has fingerprint 0.
func (e *Extern) Fingerprint() uint64 {
	if e == nil || len(e.ids) == 0 {
		return 0
	}

	return e.fingerprint
}

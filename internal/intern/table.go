// Package intern implements the per-session shared string table.
package intern

import (
	"github.com/arloliu/vtree/format"
	"github.com/arloliu/vtree/strtab"
)

// Table maps string content to session ids in first-occurrence order.
//
// The encoder and the decoder each own one Table and grow it identically:
// every non-empty literal string receives the next id. The empty string is
// never registered, since a reference to it would not be shorter than the
// literal.
type Table struct {
	ids  map[string]uint64 // content → id
	strs []string          // id → content
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		ids:  make(map[string]uint64),
		strs: make([]string, 0),
	}
}

// Lookup returns the id assigned to s.
func (t *Table) Lookup(s string) (uint64, bool) {
	id, ok := t.ids[s]
	return id, ok
}

// Add registers s and returns its id. If s is already registered its
// existing id is returned. The empty string is not registered.
func (t *Table) Add(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	if id, exists := t.ids[s]; exists {
		return id, true
	}

	id := uint64(len(t.strs))
	t.ids[s] = id
	t.strs = append(t.strs, s)

	return id, true
}

// Get returns the string registered under id.
func (t *Table) Get(id uint64) (string, bool) {
	if id >= uint64(len(t.strs)) {
		return "", false
	}

	return t.strs[id], true
}

// Len returns the number of registered strings.
func (t *Table) Len() int {
	return len(t.strs)
}

// Reset clears the table but keeps its allocations.
func (t *Table) Reset() {
	clear(t.ids)
	t.strs = t.strs[:0]
}

// Resolve decides how s is written and updates the table accordingly.
//
// Resolution order:
//  1. s is in extern: TypeExternString with the extern id.
//  2. s is in the table: TypeSharedString with the session id.
//  3. otherwise: TypeString; s is registered for later references.
//
// The returned id is meaningful only for the two reference codes.
func (t *Table) Resolve(s string, extern *strtab.Extern) (format.TypeCode, uint64) {
	if id, ok := extern.Lookup(s); ok {
		return format.TypeExternString, id
	}
	if id, ok := t.ids[s]; ok {
		return format.TypeSharedString, id
	}

	id, _ := t.Add(s)

	return format.TypeString, id
}

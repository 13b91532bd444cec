// Package section defines the fixed-width binary records of the document format.
//
// Two records are defined here:
//
//  1. KeyIndexEntry: one slot of the index trailing every dict.
//  2. EnvelopeHeader: the header of a sealed (optionally compressed) document.
//
// # Dict Layout
//
// A dict is written as its type code, a varint pair count, the pairs, and a
// key index of count entries sorted by digest:
//
//	┌──────────────────────────────────────────────┐
//	│ TypeDict (1 byte)                            │
//	│ Count (varint)                               │
//	├──────────────────────────────────────────────┤
//	│ Key 0, Value 0                               │
//	│ ...                                          │
//	│ Key N-1, Value N-1                           │
//	├──────────────────────────────────────────────┤
//	│ Key index (N × 6 bytes, sorted by digest)    │
//	│  - Digest (uint16 LE)                        │
//	│  - Offset (uint32 LE), from the dict's type  │
//	│    code to the first byte of the key         │
//	└──────────────────────────────────────────────┘
//
// Entries with equal digests keep their write order. A reader locates a key
// by binary search over the digests and confirms each candidate by comparing
// the full key found at the entry's offset.
//
// # Envelope Layout
//
//	┌──────────────────────────────────────────────┐
//	│ Header (20 bytes)                            │
//	│  - Magic (uint16, 0xEC10)                    │
//	│  - Version (uint8)                           │
//	│  - Compression (uint8)                       │
//	│  - Size (uint32): uncompressed document size │
//	│  - Checksum (uint32): CRC32-IEEE of document │
//	│  - ExternFingerprint (uint64)                │
//	├──────────────────────────────────────────────┤
//	│ Payload (compressed document)                │
//	└──────────────────────────────────────────────┘
package section

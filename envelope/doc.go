// Package envelope frames a finished document for storage or transport.
//
// An encoded document carries no length, checksum or version of its own; it
// is just the root value. Seal prefixes it with a fixed 20-byte header and
// optionally compresses it:
//
//	Offset  Size  Field
//	0       2     magic (0xEC10, little-endian)
//	2       1     version
//	3       1     compression (format.CompressionType)
//	4       4     uncompressed document size
//	8       4     CRC32-IEEE of the uncompressed document
//	12      8     extern string table fingerprint (0 when none)
//	20      ...   payload
//
// Open reverses Seal and verifies every header field. The fingerprint check
// catches the most common misuse of extern strings: decoding a document with
// a table other than the one it was encoded against.
//
// # Usage
//
//	sealed, err := envelope.Seal(doc, envelope.WithCompression(format.CompressionZstd))
//	if err != nil {
//	    return err
//	}
//	doc, err = envelope.Open(sealed)
//
// Both functions are safe for concurrent use.
package envelope

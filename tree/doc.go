// Package tree encodes and decodes documents of dynamically typed values.
//
// A document is a single root value: null, a boolean, an integer, a float,
// a raw number, a date, a string, a binary blob, an array or a dict. Arrays
// and dicts nest to any depth.
//
// # Encoding
//
// The Encoder streams a document straight to an io.Writer without building
// it in memory. Containers declare their element count when they open:
//
//	enc, err := tree.NewEncoder(w)
//	if err != nil {
//	    return err
//	}
//	enc.BeginDict(2)
//	enc.WriteKey("name")
//	enc.WriteString("sensor-1")
//	enc.WriteKey("tags")
//	enc.BeginArray(2)
//	enc.WriteString("indoor")
//	enc.WriteString("floor-3")
//	enc.EndArray()
//	enc.EndDict()
//	if err := enc.Finish(); err != nil {
//	    return err
//	}
//
// Errors are sticky, so checking only the result of Finish is enough to know
// whether the whole document was written.
//
// # Strings
//
// Every string and dict key is resolved in three steps. A string found in
// the extern table (WithExternStrings) is written as a reference into that
// table. A string already written in this document is written as a
// reference to its first occurrence. Anything else is written literally.
// Each distinct string body therefore appears at most once per document.
//
// # Dict Key Index
//
// A dict is followed by an index holding one 16-bit digest and one offset
// per key, sorted by digest. Readers binary-search the index and compare
// the full key on a digest match, so digest collisions only cost time.
//
// # Decoding
//
// Decode parses a document into an immutable Value tree. Value.Get looks up
// dict keys through the key index.
//
//	root, err := tree.Decode(data)
//	if err != nil {
//	    return err
//	}
//	name, ok := root.Get("name")
//
// The decoder must be configured with the same extern table and key hasher
// as the encoder.
//
// # Thread Safety
//
// Encoders and Decoders are NOT safe for concurrent use. Decoded Values are
// immutable and may be shared. An extern table may be shared by any number
// of encoders and decoders.
package tree

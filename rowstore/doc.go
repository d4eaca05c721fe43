// Package rowstore persists built row tables to a blobstore.Store so the
// row build can be reused across processes.
//
// A saved table named "clicks" consists of three blobs:
//
//	clicks/keys      SetA and SetB, encoded with the manifest codec
//	clicks/rows      row payload, block-compressed
//	clicks/MANIFEST  shape, compression and CRC32C of the other two
//
// The manifest is written last; a table without one is incomplete and
// cannot be loaded.
//
// Row payload by kind:
//
//	sparse   sba.AppendBinary per row
//	dense    n * WordsPerRow little-endian uint64 words
//	roaring  uvarint(len) + roaring portable serialization per row
package rowstore

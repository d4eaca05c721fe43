// Package blockcompress frames a byte stream into independently compressed
// blocks.
//
// Each block is stored as:
//
//	[UncompressedSize uint32][StoredSize uint32][flag uint8][Data...]
//
// flag is 0 for raw data and 1 when Data is compressed with the stream's
// Type. Blocks that do not shrink by at least 10% are stored raw.
package blockcompress

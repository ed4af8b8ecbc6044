// Package store provides the file-backed key-value store that holds
// per-application configuration records.
//
// A store is a pair of files sharing a base name: the primary data file
// and a CRC-32 sidecar (<base>.crc). Both must exist for Open to
// succeed; devices create the pair when an application first runs, and
// this tool only ever edits an existing pair.
//
// # Data file format
//
//   - magic "EACKV1\n"
//   - uint32 entry count (little-endian)
//   - per entry: uint16 key length, key bytes, uint32 value length,
//     value bytes
//
// Keys and values are raw UTF-8. The sidecar holds a 4-byte
// little-endian IEEE CRC-32 of the entire data file.
//
// All entries are loaded at Open and served from memory. Every Set
// rewrites the pair, data file first, each file replaced atomically
// (write to a temp file, then rename). The window between the two
// renames is detectable at the next Open as a checksum mismatch.
package store

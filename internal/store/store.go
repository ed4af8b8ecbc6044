package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/natefinch/atomic"
)

const storeMagic = "EACKV1\n"

// Store errors.
var (
	ErrDatabaseNotFound = errors.New("store file pair not found")
	ErrChecksum         = errors.New("store checksum mismatch")
	ErrBadFormat        = errors.New("store data file malformed")
	ErrBackupExists     = errors.New("backup already exists")
	errKeyTooLong       = errors.New("key exceeds 65535 bytes")
)

// Store is an open key-value store. Not safe for concurrent use; the
// tool assumes exclusive single-process access to the file pair.
type Store struct {
	path    string
	crcPath string
	entries map[string]string
}

// Open loads the store at path. The primary file and its sidecar must
// both exist (ErrDatabaseNotFound otherwise) and the sidecar checksum
// must match the data file (ErrChecksum otherwise).
func Open(path string) (*Store, error) {
	crcPath := sidecarFor(path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, path)
	}
	if _, err := os.Stat(crcPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, crcPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	sidecar, err := os.ReadFile(crcPath)
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}

	if len(sidecar) != 4 {
		return nil, fmt.Errorf("%w: sidecar is %d bytes, want 4", ErrChecksum, len(sidecar))
	}
	want := binary.LittleEndian.Uint32(sidecar)
	if got := crc32.ChecksumIEEE(data); got != want {
		return nil, fmt.Errorf("%w: computed %08x, sidecar has %08x", ErrChecksum, got, want)
	}

	entries, err := parseEntries(data)
	if err != nil {
		return nil, err
	}

	return &Store{path: path, crcPath: crcPath, entries: entries}, nil
}

// Create writes a fresh store pair at path with the given entries,
// replacing any existing pair.
func Create(path string, entries map[string]string) error {
	return writePair(path, sidecarFor(path), entries)
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Set stores value under key and flushes the pair to disk. On error the
// in-memory state is rolled back, and the on-disk pair is untouched or
// fully replaced (each file is written atomically).
func (s *Store) Set(key, value string) error {
	prev, existed := s.entries[key]
	s.entries[key] = value

	if err := writePair(s.path, s.crcPath, s.entries); err != nil {
		if existed {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return err
	}
	return nil
}

// Keys returns every key in the store, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Backup copies the live pair to <primary>.backup and <sidecar>.backup
// without touching the live files. Existing backups are refused
// (ErrBackupExists) unless force is set.
func (s *Store) Backup(force bool) (string, string, error) {
	dataBackup := s.path + ".backup"
	crcBackup := s.crcPath + ".backup"

	if !force {
		for _, p := range []string{dataBackup, crcBackup} {
			if _, err := os.Stat(p); err == nil {
				return "", "", fmt.Errorf("%w: %s", ErrBackupExists, p)
			}
		}
	}

	if err := copyFile(s.path, dataBackup); err != nil {
		return "", "", fmt.Errorf("backup data file: %w", err)
	}
	if err := copyFile(s.crcPath, crcBackup); err != nil {
		return "", "", fmt.Errorf("backup sidecar: %w", err)
	}
	return dataBackup, crcBackup, nil
}

// Path returns the primary data file path.
func (s *Store) Path() string {
	return s.path
}

// CRCPath returns the sidecar path.
func (s *Store) CRCPath() string {
	return s.crcPath
}

// sidecarFor derives the sidecar path: the primary's extension (if any)
// is replaced with .crc, so "onyx_config" and "onyx_config.dat" both
// map to "onyx_config.crc".
func sidecarFor(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".crc"
}

// parseEntries decodes the data file. Every length is bounds-checked so
// a truncated or corrupt file fails with ErrBadFormat instead of
// panicking.
func parseEntries(data []byte) (map[string]string, error) {
	if len(data) < len(storeMagic)+4 {
		return nil, fmt.Errorf("%w: %d bytes is too small", ErrBadFormat, len(data))
	}
	if string(data[:len(storeMagic)]) != storeMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadFormat)
	}

	pos := len(storeMagic)
	count := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
	pos += 4

	entries := make(map[string]string, count)
	for i := 0; i < count; i++ {
		if pos+2 > len(data) {
			return nil, fmt.Errorf("%w: truncated key length at entry %d", ErrBadFormat, i)
		}
		klen := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
		pos += 2
		if pos+klen > len(data) {
			return nil, fmt.Errorf("%w: truncated key at entry %d", ErrBadFormat, i)
		}
		key := string(data[pos : pos+klen])
		pos += klen

		if pos+4 > len(data) {
			return nil, fmt.Errorf("%w: truncated value length at entry %d", ErrBadFormat, i)
		}
		vlen := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if pos+vlen > len(data) {
			return nil, fmt.Errorf("%w: truncated value at entry %d", ErrBadFormat, i)
		}
		entries[key] = string(data[pos : pos+vlen])
		pos += vlen
	}

	if pos != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrBadFormat, len(data)-pos)
	}
	return entries, nil
}

// encodeEntries builds the data file image. Entries are written in
// sorted key order so identical contents produce identical files.
func encodeEntries(entries map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	buf.WriteString(storeMagic)

	scratch := make([]byte, 4)
	binary.LittleEndian.PutUint32(scratch, uint32(len(keys)))
	buf.Write(scratch)

	for _, key := range keys {
		if len(key) > 0xFFFF {
			return nil, fmt.Errorf("%w: %q", errKeyTooLong, key[:32])
		}
		binary.LittleEndian.PutUint16(scratch[:2], uint16(len(key)))
		buf.Write(scratch[:2])
		buf.WriteString(key)

		value := entries[key]
		binary.LittleEndian.PutUint32(scratch, uint32(len(value)))
		buf.Write(scratch)
		buf.WriteString(value)
	}

	return buf.Bytes(), nil
}

// writePair writes the data file and then the sidecar, each atomically.
func writePair(path, crcPath string, entries map[string]string) error {
	data, err := encodeEntries(entries)
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}

	sidecar := make([]byte, 4)
	binary.LittleEndian.PutUint32(sidecar, crc32.ChecksumIEEE(data))
	if err := atomic.WriteFile(crcPath, bytes.NewReader(sidecar)); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return atomic.WriteFile(dst, bytes.NewReader(data))
}

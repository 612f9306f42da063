// Package matrix implements the on-disk N×N u32 shortest-path cost
// matrix: a positioned-read reader usable concurrently from many
// goroutines, and a row-at-a-time writer used by the all-pairs operators.
//
// The wire format places a small CRC32-checked header in front of the
// raw little-endian row-major body, so a partially computed matrix is
// distinguishable from a complete one instead of silently reading back
// zero for unfilled rows. The file is written to a temp path and renamed
// into place on commit.
package matrix

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sync"
	"unsafe"

	"spalgo/pkg/dimacs"
)

const (
	magicBytes = "SPALGOMX"
	version    = uint32(1)
)

// ErrOutOfRange is returned by Get when source or target exceeds the
// matrix dimension.
var ErrOutOfRange = errors.New("matrix: vertex out of range")

// header is the on-disk preamble. RowsComputed lets a nerfed (partial)
// APSP run record how many leading rows actually hold valid distances;
// rows at or beyond it are zero-filled placeholder bytes.
type header struct {
	Magic        [8]byte
	Version      uint32
	N            uint32
	RowsComputed uint32
}

const headerSize = 8 + 4 + 4 + 4 // Magic + Version + N + RowsComputed
const crcSize = 4
const dataOffset = int64(headerSize + crcSize)

// CostMatrix is a read-only, concurrency-safe view over a matrix file
// written by Writer.
type CostMatrix struct {
	f            *os.File
	n            uint32
	rowsComputed uint32
}

// Open opens the matrix file at path read-only and validates its header.
func Open(path string) (*CostMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("matrix: open: %w", err)
	}

	var hdr header
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("matrix: read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		f.Close()
		return nil, fmt.Errorf("matrix: bad magic %q", hdr.Magic)
	}
	if hdr.Version != version {
		f.Close()
		return nil, fmt.Errorf("matrix: unsupported version %d", hdr.Version)
	}

	headerBytes := make([]byte, headerSize)
	copy(headerBytes, hdr.Magic[:])
	binary.LittleEndian.PutUint32(headerBytes[8:], hdr.Version)
	binary.LittleEndian.PutUint32(headerBytes[12:], hdr.N)
	binary.LittleEndian.PutUint32(headerBytes[16:], hdr.RowsComputed)

	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		f.Close()
		return nil, fmt.Errorf("matrix: read header CRC32: %w", err)
	}
	if computed := crc32.ChecksumIEEE(headerBytes); computed != storedCRC {
		f.Close()
		return nil, fmt.Errorf("matrix: header CRC32 mismatch: stored=%08x computed=%08x", storedCRC, computed)
	}

	return &CostMatrix{f: f, n: hdr.N, rowsComputed: hdr.RowsComputed}, nil
}

// N returns the matrix dimension (the graph's vertex count).
func (m *CostMatrix) N() uint32 { return m.n }

// RowsComputed returns how many leading rows hold valid distances; rows
// at or past this index are unfilled (nerfed APSP run).
func (m *CostMatrix) RowsComputed() uint32 { return m.rowsComputed }

// Get reads the distance from source to target. Concurrent calls are
// safe: each uses a positional read that does not mutate the shared file
// offset.
func (m *CostMatrix) Get(source, target dimacs.Vertex) (uint32, error) {
	row, col := uint32(source.Slot()), uint32(target.Slot())
	if row >= m.n || col >= m.n {
		return 0, ErrOutOfRange
	}
	offset := dataOffset + int64(uint64(row)*uint64(m.n)+uint64(col))*4
	var buf [4]byte
	if _, err := m.f.ReadAt(buf[:], offset); err != nil {
		return 0, fmt.Errorf("matrix: read at %d: %w", offset, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Close releases the underlying file handle.
func (m *CostMatrix) Close() error { return m.f.Close() }

// Writer produces a matrix file one row at a time, as the parallel row
// workers complete. The file is the only state shared between workers;
// its mutex is held solely around the positioned write of one row.
type Writer struct {
	path string
	f    *os.File
	n    uint32
	mu   sync.Mutex
}

// Create opens path+".tmp" for writing and reserves space for n rows.
func Create(path string, n uint32) (*Writer, error) {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("matrix: create temp file: %w", err)
	}
	size := dataOffset + int64(n)*int64(n)*4
	if err := f.Truncate(size); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("matrix: truncate: %w", err)
	}
	return &Writer{path: path, f: f, n: n}, nil
}

// WriteRow writes dists (length n) as row's distance vector, at
// row*n*4 bytes past the header. Safe for concurrent use across rows.
func (w *Writer) WriteRow(row uint32, dists []uint32) error {
	if uint32(len(dists)) != w.n {
		return fmt.Errorf("matrix: row %d has %d entries, want %d", row, len(dists), w.n)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&dists[0])), len(dists)*4)
	offset := dataOffset + int64(row)*int64(w.n)*4

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.f.WriteAt(b, offset)
	if err != nil {
		return fmt.Errorf("matrix: write row %d: %w", row, err)
	}
	return nil
}

// Commit finalizes the header (recording rowsComputed, the nerf-factor
// boundary) and atomically renames the temp file into place.
func (w *Writer) Commit(rowsComputed uint32) error {
	hdr := header{Version: version, N: w.n, RowsComputed: rowsComputed}
	copy(hdr.Magic[:], magicBytes)

	headerBytes := make([]byte, headerSize)
	copy(headerBytes, hdr.Magic[:])
	binary.LittleEndian.PutUint32(headerBytes[8:], hdr.Version)
	binary.LittleEndian.PutUint32(headerBytes[12:], hdr.N)
	binary.LittleEndian.PutUint32(headerBytes[16:], hdr.RowsComputed)
	checksum := crc32.ChecksumIEEE(headerBytes)

	if _, err := w.f.WriteAt(headerBytes, 0); err != nil {
		return fmt.Errorf("matrix: write header: %w", err)
	}
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], checksum)
	if _, err := w.f.WriteAt(crcBuf[:], int64(headerSize)); err != nil {
		return fmt.Errorf("matrix: write header CRC32: %w", err)
	}

	if err := w.f.Close(); err != nil {
		return fmt.Errorf("matrix: close temp file: %w", err)
	}
	if err := os.Rename(w.path+".tmp", w.path); err != nil {
		return fmt.Errorf("matrix: rename: %w", err)
	}
	return nil
}

// Abort closes and discards the temp file without publishing it.
func (w *Writer) Abort() error {
	w.f.Close()
	return os.Remove(w.path + ".tmp")
}

var _ io.Closer = (*CostMatrix)(nil)

// Package bsp reads the entity lump out of GoldSrc (version 30) map files.
package bsp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// Version is the only BSP version GoldSrc maps use.
	Version = 30
	// NumLumps is the number of lump descriptors in the header.
	NumLumps = 15
	// LumpEntities is the index of the entity text lump.
	LumpEntities = 0
	// HeaderSize is the encoded size of Header in bytes.
	HeaderSize = 4 + NumLumps*8
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported map format")
	ErrCorruptContainer   = errors.New("corrupt map container")
	ErrTruncatedContainer = errors.New("truncated map container")
)

// Lump locates a byte range within the map file.
type Lump struct {
	Offset int32
	Length int32
}

// Header is the fixed layout at the start of every map file.
type Header struct {
	Version int32
	Lumps   [NumLumps]Lump
}

// ReadHeader decodes the little-endian header from r.
func ReadHeader(r io.Reader) (*Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: header shorter than %d bytes", ErrTruncatedContainer, HeaderSize)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	return &h, nil
}

// OpenEntities reads the entity text lump of the map at path.
func OpenEntities(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat map: %w", err)
	}

	return ReadEntities(f, info.Size())
}

// ReadEntities validates the header read from the first size bytes of r
// and returns a copy of the entity lump. The caller owns the returned slice.
func ReadEntities(r io.ReaderAt, size int64) ([]byte, error) {
	if size < HeaderSize {
		return nil, fmt.Errorf("%w: header shorter than %d bytes", ErrTruncatedContainer, HeaderSize)
	}

	h, err := ReadHeader(io.NewSectionReader(r, 0, HeaderSize))
	if err != nil {
		return nil, err
	}

	if h.Version != Version {
		return nil, fmt.Errorf("%w: version %d, expected %d", ErrUnsupportedFormat, h.Version, Version)
	}

	lump := h.Lumps[LumpEntities]
	if lump.Offset <= 0 || lump.Length <= 0 {
		return nil, fmt.Errorf("%w: entity lump offset %d length %d", ErrCorruptContainer, lump.Offset, lump.Length)
	}

	if end := int64(lump.Offset) + int64(lump.Length); end > size {
		return nil, fmt.Errorf("%w: entity lump ends at %d, map is %d bytes", ErrTruncatedContainer, end, size)
	}

	data := make([]byte, lump.Length)
	n, err := r.ReadAt(data, int64(lump.Offset))
	if n < len(data) {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: entity lump wants %d bytes at %d, got %d", ErrTruncatedContainer, lump.Length, lump.Offset, n)
		}
		return nil, fmt.Errorf("read entity lump: %w", err)
	}

	return data, nil
}

// Package store implements a hierarchical binary array container: named
// groups arranged in a tree, each holding typed chunked datasets and
// scalar attributes.
//
// The on-disk layout is append-oriented. A fixed header opens the file,
// dataset chunks are appended as datasets are created, and a footer index
// describing the full group tree is rewritten on Flush or Close, followed
// by a fixed-size trailer pointing at it. Datasets are write-once;
// replacing one drops its index entry and leaves the old extents as dead
// space.
//
// The package performs no locking. At most one writer may have a file open
// at a time; readers may share a file only if the platform allows it.
package store

import "errors"

// Common errors
var (
	ErrNotStore     = errors.New("not a solution container file")
	ErrCorruptIndex = errors.New("container index is corrupt")
	ErrClosed       = errors.New("file is closed")
	ErrReadOnly     = errors.New("file is read-only")
	ErrNotFound     = errors.New("object not found")
	ErrExists       = errors.New("object already exists")
	ErrBadDtype     = errors.New("unsupported data type")
	ErrBadShape     = errors.New("shape does not match data length")
)

// Dtype identifies the element type of a dataset.
type Dtype uint8

// Supported element types.
const (
	Float64 Dtype = iota
	Int64
	String
)

// String returns the dtype name.
func (d Dtype) String() string {
	switch d {
	case Float64:
		return "float64"
	case Int64:
		return "int64"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// FormatVersion is the container format version written into the header.
const FormatVersion = 1

const (
	headerMagic  = "SPCF"
	trailerMagic = "SPCT"
	headerSize   = 16
	trailerSize  = 24
)

// DefaultChunkElems is the chunk size, in elements, used when a dataset is
// created without an explicit chunk size.
const DefaultChunkElems = 4096

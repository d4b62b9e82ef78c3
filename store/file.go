package store

import (
	"fmt"
	"hash/crc32"
	"os"

	"github.com/radioastro/solparm/internal/alloc"
	"github.com/radioastro/solparm/internal/binary"
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// File represents an open container file.
type File struct {
	path   string
	file   *os.File
	reader *binary.Reader
	root   *Group
	closed bool

	// Write support fields
	writable  bool
	writer    *binary.Writer
	allocator *alloc.Allocator
	defaults  *fileOptions
}

// Create creates a new container file at the given path.
func Create(path string, opts ...FileOption) (*File, error) {
	options := defaultFileOptions()
	for _, opt := range opts {
		opt(options)
	}

	osFile, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	writer := binary.NewWriter(osFile)
	if err := writeHeader(writer); err != nil {
		osFile.Close()
		os.Remove(path)
		return nil, fmt.Errorf("writing header: %w", err)
	}

	f := &File{
		path:      path,
		file:      osFile,
		reader:    binary.NewReader(osFile),
		writable:  true,
		writer:    writer,
		allocator: alloc.New(headerSize),
		defaults:  options,
	}
	f.root = &Group{file: f, path: "/"}

	return f, nil
}

// Open opens an existing container file for reading.
func Open(path string) (*File, error) {
	osFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	f := &File{
		path:   path,
		file:   osFile,
		reader: binary.NewReader(osFile),
	}
	if err := f.loadIndex(); err != nil {
		osFile.Close()
		return nil, err
	}

	return f, nil
}

// OpenReadWrite opens an existing container file for reading and writing.
// New groups, datasets, and attributes may be added; the index is rewritten
// on Close.
func OpenReadWrite(path string, opts ...FileOption) (*File, error) {
	options := defaultFileOptions()
	for _, opt := range opts {
		opt(options)
	}

	osFile, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	f := &File{
		path:     path,
		file:     osFile,
		reader:   binary.NewReader(osFile),
		writable: true,
		writer:   binary.NewWriter(osFile),
		defaults: options,
	}
	indexOffset, err := f.loadIndexOffset()
	if err != nil {
		osFile.Close()
		return nil, err
	}
	// New extents overwrite the old index region; a fresh index goes at the
	// end on Close.
	f.allocator = alloc.New(indexOffset)

	return f, nil
}

// Close flushes pending changes and closes the file. Closing an already
// closed file is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.writable {
		if err := f.flushLocked(); err != nil {
			f.file.Close()
			return err
		}
	}
	return f.file.Close()
}

// Flush rewrites the index and trailer and syncs the file to disk.
func (f *File) Flush() error {
	if f.closed {
		return ErrClosed
	}
	if !f.writable {
		return nil
	}
	return f.flushLocked()
}

func (f *File) flushLocked() error {
	var buf binary.Buffer
	if err := encodeGroup(binary.NewWriter(&buf), f.root); err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	index := buf.Bytes()

	indexOffset := f.allocator.EOF()
	w := f.writer.At(int64(indexOffset))
	if err := w.WriteBytes(index); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	// Trailer: index offset, index length, index CRC, magic.
	if err := w.WriteUint64(indexOffset); err != nil {
		return err
	}
	if err := w.WriteUint64(uint64(len(index))); err != nil {
		return err
	}
	if err := w.WriteUint32(crc32.Checksum(index, crcTable)); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(trailerMagic)); err != nil {
		return err
	}

	// Drop any stale bytes from a previous, longer index.
	if err := f.file.Truncate(w.Pos()); err != nil {
		return err
	}
	return f.file.Sync()
}

// Root returns the root group of the file.
func (f *File) Root() *Group {
	return f.root
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// IsWritable returns true if the file was opened for writing.
func (f *File) IsWritable() bool {
	return f.writable
}

// allocate reserves space in the file and returns the offset.
func (f *File) allocate(size int64) uint64 {
	return f.allocator.Alloc(uint64(size))
}

func writeHeader(w *binary.Writer) error {
	if err := w.WriteBytes([]byte(headerMagic)); err != nil {
		return err
	}
	if err := w.WriteUint32(FormatVersion); err != nil {
		return err
	}
	return w.WriteZeros(headerSize - 8)
}

// loadIndex reads and verifies the header, trailer, and index tree.
func (f *File) loadIndex() error {
	_, err := f.loadIndexOffset()
	return err
}

// loadIndexOffset loads the index tree into f.root and returns the file
// offset the index was read from.
func (f *File) loadIndexOffset() (uint64, error) {
	stat, err := f.file.Stat()
	if err != nil {
		return 0, err
	}
	if stat.Size() < headerSize+trailerSize {
		return 0, fmt.Errorf("%w: %s", ErrNotStore, f.path)
	}

	magic, err := f.reader.At(0).ReadBytes(4)
	if err != nil {
		return 0, err
	}
	if string(magic) != headerMagic {
		return 0, fmt.Errorf("%w: %s", ErrNotStore, f.path)
	}
	version, err := f.reader.At(4).ReadUint32()
	if err != nil {
		return 0, err
	}
	if version != FormatVersion {
		return 0, fmt.Errorf("%w: unsupported format version %d", ErrNotStore, version)
	}

	tr := f.reader.At(stat.Size() - trailerSize)
	indexOffset, err := tr.ReadUint64()
	if err != nil {
		return 0, err
	}
	indexLen, err := tr.ReadUint64()
	if err != nil {
		return 0, err
	}
	indexCRC, err := tr.ReadUint32()
	if err != nil {
		return 0, err
	}
	tmagic, err := tr.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	if string(tmagic) != trailerMagic {
		return 0, fmt.Errorf("%w: missing trailer", ErrNotStore)
	}
	if indexOffset < headerSize || int64(indexOffset+indexLen) > stat.Size() {
		return 0, fmt.Errorf("%w: index extent out of bounds", ErrCorruptIndex)
	}

	index, err := f.reader.At(int64(indexOffset)).ReadBytes(int(indexLen))
	if err != nil {
		return 0, fmt.Errorf("reading index: %w", err)
	}
	if crc32.Checksum(index, crcTable) != indexCRC {
		return 0, fmt.Errorf("%w: checksum mismatch", ErrCorruptIndex)
	}

	var buf binary.Buffer
	if _, err := buf.WriteAt(index, 0); err != nil {
		return 0, err
	}
	root, err := decodeGroup(binary.NewReader(&buf), f, "/")
	if err != nil {
		return 0, fmt.Errorf("decoding index: %w", err)
	}
	f.root = root

	return indexOffset, nil
}

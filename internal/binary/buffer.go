package binary

// Buffer is a growable in-memory io.WriterAt, used to assemble variable-size
// blocks (such as the container index) before they are written to the file.
type Buffer struct {
	buf []byte
}

// WriteAt implements io.WriterAt, growing the buffer as needed.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(b.buf) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// ReadAt implements io.ReaderAt over the buffered bytes.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	copy(p, b.buf[off:])
	return len(p), nil
}

// Bytes returns the buffered bytes.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.buf)
}

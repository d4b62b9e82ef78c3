package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/radioastro/solparm/internal/binary"
)

// chunk describes one stored extent of a dataset.
type chunk struct {
	offset uint64
	stored uint64 // bytes on disk (possibly compressed)
	raw    uint64 // bytes after decompression
	elems  uint64
}

// Dataset represents a typed, chunked N-dimensional array.
type Dataset struct {
	file *File
	path string
	name string

	dtype      Dtype
	shape      []int
	compressed bool
	chunks     []chunk
	attrs      []attrEntry
}

// CreateDataset creates a new dataset holding the given data. The data must
// be a []float64, []int64, or []string; the dtype is inferred from it.
// Datasets are write-once: to replace one, remove it and create it again.
func (g *Group) CreateDataset(name string, data interface{}, opts ...DatasetOption) (*Dataset, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	if !g.file.writable {
		return nil, ErrReadOnly
	}
	if name == "" {
		return nil, fmt.Errorf("dataset name cannot be empty")
	}
	if g.HasGroup(name) || g.HasDataset(name) {
		return nil, fmt.Errorf("%w: %q in %s", ErrExists, name, g.path)
	}

	options := defaultDatasetOptions(g.file.defaults)
	for _, opt := range opts {
		opt(options)
	}

	dtype, n, err := inferDtype(data)
	if err != nil {
		return nil, err
	}

	shape := options.shape
	if shape == nil {
		shape = []int{n}
	}
	if numElements(shape) != n {
		return nil, fmt.Errorf("%w: shape %v holds %d elements, data has %d",
			ErrBadShape, shape, numElements(shape), n)
	}

	ds := &Dataset{
		file:       g.file,
		path:       childPath(g.path, name),
		name:       name,
		dtype:      dtype,
		shape:      append([]int(nil), shape...),
		compressed: options.compressionLvl > 0,
	}

	if err := ds.writeChunks(data, n, options.chunkElems, options.compressionLvl); err != nil {
		return nil, err
	}

	for _, attr := range options.attributes {
		ds.attrs, err = attrSet(ds.attrs, attr.name, attr.value)
		if err != nil {
			return nil, err
		}
	}

	g.datasets = append(g.datasets, ds)
	return ds, nil
}

// Name returns the dataset name (last component of path).
func (d *Dataset) Name() string {
	return d.name
}

// Path returns the full path to this dataset.
func (d *Dataset) Path() string {
	return d.path
}

// Shape returns the dimensions of the dataset.
func (d *Dataset) Shape() []int {
	return append([]int(nil), d.shape...)
}

// Dtype returns the element type.
func (d *Dataset) Dtype() Dtype {
	return d.dtype
}

// NumElements returns the total number of elements.
func (d *Dataset) NumElements() int {
	return numElements(d.shape)
}

// Attrs returns the attribute names of this dataset.
func (d *Dataset) Attrs() []string {
	return attrNames(d.attrs)
}

// Attr returns the value of the named attribute and whether it exists.
func (d *Dataset) Attr(name string) (interface{}, bool) {
	return attrLookup(d.attrs, name)
}

// SetAttr sets an attribute on the dataset. The value must be a string,
// int64, or float64.
func (d *Dataset) SetAttr(name string, value interface{}) error {
	if d.file.closed {
		return ErrClosed
	}
	if !d.file.writable {
		return ErrReadOnly
	}
	var err error
	d.attrs, err = attrSet(d.attrs, name, value)
	return err
}

// ReadFloat64 reads the dataset as float64 values.
func (d *Dataset) ReadFloat64() ([]float64, error) {
	if d.dtype != Float64 {
		return nil, fmt.Errorf("%w: %s holds %s, not float64", ErrBadDtype, d.path, d.dtype)
	}
	raw, err := d.readRaw()
	if err != nil {
		return nil, err
	}
	r := binary.NewReader(bufferOf(raw))
	out := make([]float64, d.NumElements())
	for i := range out {
		if out[i], err = r.ReadFloat64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadInt64 reads the dataset as int64 values.
func (d *Dataset) ReadInt64() ([]int64, error) {
	if d.dtype != Int64 {
		return nil, fmt.Errorf("%w: %s holds %s, not int64", ErrBadDtype, d.path, d.dtype)
	}
	raw, err := d.readRaw()
	if err != nil {
		return nil, err
	}
	r := binary.NewReader(bufferOf(raw))
	out := make([]int64, d.NumElements())
	for i := range out {
		v, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		out[i] = int64(v)
	}
	return out, nil
}

// ReadString reads the dataset as string values.
func (d *Dataset) ReadString() ([]string, error) {
	if d.dtype != String {
		return nil, fmt.Errorf("%w: %s holds %s, not string", ErrBadDtype, d.path, d.dtype)
	}
	raw, err := d.readRaw()
	if err != nil {
		return nil, err
	}
	r := binary.NewReader(bufferOf(raw))
	out := make([]string, d.NumElements())
	for i := range out {
		if out[i], err = r.ReadString(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// writeChunks encodes data into chunks of at most chunkElems elements and
// appends them to the file.
func (d *Dataset) writeChunks(data interface{}, n, chunkElems, level int) error {
	for start := 0; start < n; start += chunkElems {
		end := start + chunkElems
		if end > n {
			end = n
		}

		raw, err := encodeElems(d.dtype, data, start, end)
		if err != nil {
			return err
		}

		stored := raw
		if level > 0 {
			if stored, err = gzipBytes(raw, level); err != nil {
				return fmt.Errorf("compressing chunk: %w", err)
			}
		}

		offset := d.file.allocate(int64(len(stored)))
		w := d.file.writer.At(int64(offset))
		if err := w.WriteBytes(stored); err != nil {
			return fmt.Errorf("writing chunk: %w", err)
		}

		d.chunks = append(d.chunks, chunk{
			offset: offset,
			stored: uint64(len(stored)),
			raw:    uint64(len(raw)),
			elems:  uint64(end - start),
		})
	}
	return nil
}

// readRaw reads and concatenates all chunk payloads, decompressing if needed.
func (d *Dataset) readRaw() ([]byte, error) {
	if d.file.closed {
		return nil, ErrClosed
	}
	var raw []byte
	for _, c := range d.chunks {
		stored, err := d.file.reader.At(int64(c.offset)).ReadBytes(int(c.stored))
		if err != nil {
			return nil, fmt.Errorf("reading chunk at %d: %w", c.offset, err)
		}
		if d.compressed {
			if stored, err = gunzipBytes(stored, int(c.raw)); err != nil {
				return nil, fmt.Errorf("decompressing chunk at %d: %w", c.offset, err)
			}
		}
		raw = append(raw, stored...)
	}
	return raw, nil
}

func encodeElems(dtype Dtype, data interface{}, start, end int) ([]byte, error) {
	var buf binary.Buffer
	w := binary.NewWriter(&buf)
	switch vals := data.(type) {
	case []float64:
		for _, v := range vals[start:end] {
			if err := w.WriteFloat64(v); err != nil {
				return nil, err
			}
		}
	case []int64:
		for _, v := range vals[start:end] {
			if err := w.WriteUint64(uint64(v)); err != nil {
				return nil, err
			}
		}
	case []string:
		for _, v := range vals[start:end] {
			if err := w.WriteString(v); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrBadDtype, data)
	}
	return buf.Bytes(), nil
}

func inferDtype(data interface{}) (Dtype, int, error) {
	switch vals := data.(type) {
	case []float64:
		return Float64, len(vals), nil
	case []int64:
		return Int64, len(vals), nil
	case []string:
		return String, len(vals), nil
	default:
		return 0, 0, fmt.Errorf("%w: %T", ErrBadDtype, data)
	}
}

func numElements(shape []int) int {
	n := 1
	for _, dim := range shape {
		n *= dim
	}
	return n
}

func gzipBytes(raw []byte, level int) ([]byte, error) {
	var out bytes.Buffer
	zw, err := gzip.NewWriterLevel(&out, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func gunzipBytes(stored []byte, rawSize int) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	raw := bytes.NewBuffer(make([]byte, 0, rawSize))
	if _, err := io.Copy(raw, zr); err != nil {
		return nil, err
	}
	return raw.Bytes(), nil
}

func bufferOf(b []byte) *binary.Buffer {
	var buf binary.Buffer
	buf.WriteAt(b, 0)
	return &buf
}

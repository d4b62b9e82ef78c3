package store

import (
	"fmt"

	"github.com/radioastro/solparm/internal/binary"
)

// Attribute value kind tags used in the index encoding.
const (
	attrKindString uint8 = iota
	attrKindFloat64
	attrKindInt64
)

// encodeGroup writes a group record, recursively including its attributes,
// datasets, and subgroups.
func encodeGroup(w *binary.Writer, g *Group) error {
	if err := w.WriteString(g.Name()); err != nil {
		return err
	}
	if err := encodeAttrs(w, g.attrs); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(g.datasets))); err != nil {
		return err
	}
	for _, ds := range g.datasets {
		if err := encodeDataset(w, ds); err != nil {
			return err
		}
	}
	if err := w.WriteUint32(uint32(len(g.groups))); err != nil {
		return err
	}
	for _, sub := range g.groups {
		if err := encodeGroup(w, sub); err != nil {
			return err
		}
	}
	return nil
}

func decodeGroup(r *binary.Reader, f *File, path string) (*Group, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = name
	}
	g := &Group{file: f, path: path}

	if g.attrs, err = decodeAttrs(r); err != nil {
		return nil, err
	}

	ndatasets, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < ndatasets; i++ {
		ds, err := decodeDataset(r, f, path)
		if err != nil {
			return nil, err
		}
		g.datasets = append(g.datasets, ds)
	}

	ngroups, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < ngroups; i++ {
		// Peek the child name by decoding it inside decodeGroup; the path is
		// fixed up afterwards since the name is the first field.
		sub, err := decodeGroup(r, f, "")
		if err != nil {
			return nil, err
		}
		sub.rebase(childPath(path, sub.path))
		g.groups = append(g.groups, sub)
	}
	return g, nil
}

// rebase rewrites the paths of a decoded subtree under a new parent path.
func (g *Group) rebase(newPath string) {
	g.path = newPath
	for _, ds := range g.datasets {
		ds.path = childPath(newPath, ds.name)
	}
	for _, sub := range g.groups {
		sub.rebase(childPath(newPath, sub.Name()))
	}
}

func encodeDataset(w *binary.Writer, ds *Dataset) error {
	if err := w.WriteString(ds.name); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(ds.dtype)); err != nil {
		return err
	}
	compressed := uint8(0)
	if ds.compressed {
		compressed = 1
	}
	if err := w.WriteUint8(compressed); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(ds.shape))); err != nil {
		return err
	}
	for _, dim := range ds.shape {
		if err := w.WriteUint64(uint64(dim)); err != nil {
			return err
		}
	}
	if err := w.WriteUint32(uint32(len(ds.chunks))); err != nil {
		return err
	}
	for _, c := range ds.chunks {
		if err := w.WriteUint64(c.offset); err != nil {
			return err
		}
		if err := w.WriteUint64(c.stored); err != nil {
			return err
		}
		if err := w.WriteUint64(c.raw); err != nil {
			return err
		}
		if err := w.WriteUint64(c.elems); err != nil {
			return err
		}
	}
	return encodeAttrs(w, ds.attrs)
}

func decodeDataset(r *binary.Reader, f *File, parentPath string) (*Dataset, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	dtype, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if dtype > uint8(String) {
		return nil, fmt.Errorf("%w: dataset %q has dtype tag %d", ErrCorruptIndex, name, dtype)
	}
	compressed, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	rank, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	shape := make([]int, rank)
	for i := range shape {
		dim, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		shape[i] = int(dim)
	}

	nchunks, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	chunks := make([]chunk, nchunks)
	for i := range chunks {
		if chunks[i].offset, err = r.ReadUint64(); err != nil {
			return nil, err
		}
		if chunks[i].stored, err = r.ReadUint64(); err != nil {
			return nil, err
		}
		if chunks[i].raw, err = r.ReadUint64(); err != nil {
			return nil, err
		}
		if chunks[i].elems, err = r.ReadUint64(); err != nil {
			return nil, err
		}
	}

	attrs, err := decodeAttrs(r)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		file:       f,
		path:       childPath(parentPath, name),
		name:       name,
		dtype:      Dtype(dtype),
		shape:      shape,
		compressed: compressed != 0,
		chunks:     chunks,
		attrs:      attrs,
	}, nil
}

func encodeAttrs(w *binary.Writer, attrs []attrEntry) error {
	if err := w.WriteUint32(uint32(len(attrs))); err != nil {
		return err
	}
	for _, a := range attrs {
		if err := w.WriteString(a.name); err != nil {
			return err
		}
		switch v := a.value.(type) {
		case string:
			if err := w.WriteUint8(attrKindString); err != nil {
				return err
			}
			if err := w.WriteString(v); err != nil {
				return err
			}
		case float64:
			if err := w.WriteUint8(attrKindFloat64); err != nil {
				return err
			}
			if err := w.WriteFloat64(v); err != nil {
				return err
			}
		case int64:
			if err := w.WriteUint8(attrKindInt64); err != nil {
				return err
			}
			if err := w.WriteUint64(uint64(v)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: attribute %q of type %T", ErrBadDtype, a.name, a.value)
		}
	}
	return nil
}

func decodeAttrs(r *binary.Reader) ([]attrEntry, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	attrs := make([]attrEntry, 0, n)
	for i := uint32(0); i < n; i++ {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		var value interface{}
		switch kind {
		case attrKindString:
			if value, err = r.ReadString(); err != nil {
				return nil, err
			}
		case attrKindFloat64:
			if value, err = r.ReadFloat64(); err != nil {
				return nil, err
			}
		case attrKindInt64:
			v, err := r.ReadUint64()
			if err != nil {
				return nil, err
			}
			value = int64(v)
		default:
			return nil, fmt.Errorf("%w: attribute %q has kind tag %d", ErrCorruptIndex, name, kind)
		}
		attrs = append(attrs, attrEntry{name: name, value: value})
	}
	return attrs, nil
}

package store

import (
	"fmt"
	"path"
)

// attrEntry is one named attribute on a group or dataset.
type attrEntry struct {
	name  string
	value interface{}
}

// Group represents a named group in the container tree.
type Group struct {
	file *File
	path string

	attrs    []attrEntry
	groups   []*Group
	datasets []*Dataset
}

// Name returns the group name (last component of path).
func (g *Group) Name() string {
	return path.Base(g.path)
}

// Path returns the full path to this group.
func (g *Group) Path() string {
	return g.path
}

// Groups returns the names of all subgroups in definition order.
func (g *Group) Groups() []string {
	names := make([]string, 0, len(g.groups))
	for _, sub := range g.groups {
		names = append(names, sub.Name())
	}
	return names
}

// Datasets returns the names of all datasets in definition order.
func (g *Group) Datasets() []string {
	names := make([]string, 0, len(g.datasets))
	for _, ds := range g.datasets {
		names = append(names, ds.name)
	}
	return names
}

// HasGroup reports whether a subgroup with the given name exists.
func (g *Group) HasGroup(name string) bool {
	_, err := g.OpenGroup(name)
	return err == nil
}

// HasDataset reports whether a dataset with the given name exists.
func (g *Group) HasDataset(name string) bool {
	_, err := g.OpenDataset(name)
	return err == nil
}

// OpenGroup returns the subgroup with the given name.
func (g *Group) OpenGroup(name string) (*Group, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	for _, sub := range g.groups {
		if sub.Name() == name {
			return sub, nil
		}
	}
	return nil, fmt.Errorf("%w: group %q in %s", ErrNotFound, name, g.path)
}

// OpenDataset returns the dataset with the given name.
func (g *Group) OpenDataset(name string) (*Dataset, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	for _, ds := range g.datasets {
		if ds.name == name {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%w: dataset %q in %s", ErrNotFound, name, g.path)
}

// CreateGroup creates a new subgroup with the given name.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	if !g.file.writable {
		return nil, ErrReadOnly
	}
	if name == "" {
		return nil, fmt.Errorf("group name cannot be empty")
	}
	if g.HasGroup(name) || g.HasDataset(name) {
		return nil, fmt.Errorf("%w: %q in %s", ErrExists, name, g.path)
	}

	sub := &Group{
		file: g.file,
		path: childPath(g.path, name),
	}
	g.groups = append(g.groups, sub)
	return sub, nil
}

// RemoveDataset drops the dataset's index entry. The data extents remain in
// the file as dead space.
func (g *Group) RemoveDataset(name string) error {
	if g.file.closed {
		return ErrClosed
	}
	if !g.file.writable {
		return ErrReadOnly
	}
	for i, ds := range g.datasets {
		if ds.name == name {
			g.datasets = append(g.datasets[:i], g.datasets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: dataset %q in %s", ErrNotFound, name, g.path)
}

// Attrs returns the attribute names of this group.
func (g *Group) Attrs() []string {
	return attrNames(g.attrs)
}

// Attr returns the value of the named attribute and whether it exists.
func (g *Group) Attr(name string) (interface{}, bool) {
	return attrLookup(g.attrs, name)
}

// SetAttr sets an attribute on the group. The value must be a string,
// int64, or float64.
func (g *Group) SetAttr(name string, value interface{}) error {
	if g.file.closed {
		return ErrClosed
	}
	if !g.file.writable {
		return ErrReadOnly
	}
	var err error
	g.attrs, err = attrSet(g.attrs, name, value)
	return err
}

func attrNames(attrs []attrEntry) []string {
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.name)
	}
	return names
}

func attrLookup(attrs []attrEntry, name string) (interface{}, bool) {
	for _, a := range attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return nil, false
}

func attrSet(attrs []attrEntry, name string, value interface{}) ([]attrEntry, error) {
	switch value.(type) {
	case string, int64, float64:
	default:
		return attrs, fmt.Errorf("%w: attribute %q of type %T", ErrBadDtype, name, value)
	}
	for i := range attrs {
		if attrs[i].name == name {
			attrs[i].value = value
			return attrs, nil
		}
	}
	return append(attrs, attrEntry{name: name, value: value}), nil
}

// childPath joins a parent path and a child name.
func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return path.Join(parent, name)
}

package solparm

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/radioastro/solparm/store"
)

// historyPrefix names the attributes that hold history entries. Each entry
// is one attribute, HISTORY000 through HISTORY999.
const historyPrefix = "HISTORY"

// Soltab is one solution table: a dense grid of values and weights over an
// ordered sequence of named axes. A weight of 0 marks a flagged or missing
// cell; any nonzero weight marks a valid one.
type Soltab struct {
	solset *Solset
	g      *store.Group
	axes   []Axis
}

// loadSoltab reads the axis metadata of a table group.
func loadSoltab(s *Solset, g *store.Group) (*Soltab, error) {
	val, err := g.OpenDataset("val")
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "table %q has no value array", g.Name())
	}
	order, ok := val.Attr(axesAttr)
	if !ok {
		return nil, errors.Wrapf(ErrFormat, "table %q value array has no axis order", g.Name())
	}
	orderStr, ok := order.(string)
	if !ok {
		return nil, errors.Wrapf(ErrFormat, "table %q has a non-string axis order", g.Name())
	}

	st := &Soltab{solset: s, g: g}
	for _, axisName := range strings.Split(orderStr, ",") {
		ds, err := g.OpenDataset(axisName)
		if err != nil {
			return nil, errors.Wrapf(ErrFormat, "table %q is missing axis %q", g.Name(), axisName)
		}
		values, err := readAxisDataset(ds)
		if err != nil {
			return nil, err
		}
		st.axes = append(st.axes, Axis{Name: axisName, Values: values})
	}
	return st, nil
}

func readAxisDataset(ds *store.Dataset) (AxisValues, error) {
	switch ds.Dtype() {
	case store.String:
		vals, err := ds.ReadString()
		if err != nil {
			return AxisValues{}, err
		}
		return StringValues(vals...), nil
	case store.Int64:
		vals, err := ds.ReadInt64()
		if err != nil {
			return AxisValues{}, err
		}
		floats := make([]float64, len(vals))
		for i, v := range vals {
			floats[i] = float64(v)
		}
		return FloatValues(floats...), nil
	default:
		vals, err := ds.ReadFloat64()
		if err != nil {
			return AxisValues{}, err
		}
		return FloatValues(vals...), nil
	}
}

// Name returns the table name.
func (st *Soltab) Name() string {
	return st.g.Name()
}

// Type returns the solution type of the table (amplitude, phase, clock, ...).
func (st *Soltab) Type() string {
	if title, ok := st.g.Attr(titleAttr); ok {
		if s, ok := title.(string); ok {
			return s
		}
	}
	return ""
}

// AxesNames returns the axis names in grid dimension order.
func (st *Soltab) AxesNames() []string {
	names := make([]string, len(st.axes))
	for i, axis := range st.axes {
		names[i] = axis.Name
	}
	return names
}

// HasAxis reports whether the table has an axis with the given name.
func (st *Soltab) HasAxis(name string) bool {
	_, err := st.axis(name)
	return err == nil
}

func (st *Soltab) axis(name string) (Axis, error) {
	for _, axis := range st.axes {
		if axis.Name == name {
			return axis, nil
		}
	}
	return Axis{}, errors.Wrapf(ErrNotFound, "axis %q in table %q", name, st.Name())
}

// AxisValues returns the coordinate array of the named axis.
func (st *Soltab) AxisValues(name string) (AxisValues, error) {
	axis, err := st.axis(name)
	if err != nil {
		return AxisValues{}, err
	}
	return axis.Values, nil
}

// AxisLen returns the number of coordinates of the named axis.
func (st *Soltab) AxisLen(name string) (int, error) {
	axis, err := st.axis(name)
	if err != nil {
		return 0, err
	}
	return axis.Values.Len(), nil
}

// cachedAxisLen returns the axis length, consulting and (when writable)
// populating the per-table length cache attribute.
func (st *Soltab) cachedAxisLen(name string) (int, error) {
	cacheAttr := name + "_len"
	if v, ok := st.g.Attr(cacheAttr); ok {
		if n, ok := v.(int64); ok {
			return int(n), nil
		}
	}
	n, err := st.AxisLen(name)
	if err != nil {
		return 0, err
	}
	if st.solset.parm.f.IsWritable() {
		if err := st.g.SetAttr(cacheAttr, int64(n)); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// Shape returns the grid dimensions in axis order.
func (st *Soltab) Shape() []int {
	dims := make([]int, len(st.axes))
	for i, axis := range st.axes {
		dims[i] = axis.Values.Len()
	}
	return dims
}

// SetAxisValues overwrites the coordinates of the named axis. The new
// values must have the same length and kind as the existing ones; axes are
// never resized after creation.
func (st *Soltab) SetAxisValues(name string, values AxisValues) error {
	axis, err := st.axis(name)
	if err != nil {
		return err
	}
	if values.Len() != axis.Values.Len() {
		return errors.Wrapf(ErrShapeMismatch, "axis %q has %d coordinates, got %d",
			name, axis.Values.Len(), values.Len())
	}
	if values.Kind() != axis.Values.Kind() {
		return errors.Wrapf(ErrTypeMismatch, "axis %q", name)
	}

	if err := st.g.RemoveDataset(name); err != nil {
		return err
	}
	if err := createAxisDataset(st.g, Axis{Name: name, Values: values}); err != nil {
		return err
	}
	for i := range st.axes {
		if st.axes[i].Name == name {
			st.axes[i].Values = values
		}
	}
	return nil
}

// Values returns the full dense value grid.
func (st *Soltab) Values() (*Grid, error) {
	return st.readGrid("val")
}

// Weights returns the full dense weight grid.
func (st *Soltab) Weights() (*Grid, error) {
	return st.readGrid("weight")
}

func (st *Soltab) readGrid(name string) (*Grid, error) {
	ds, err := st.g.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	data, err := ds.ReadFloat64()
	if err != nil {
		return nil, err
	}
	return &Grid{Shape: ds.Shape(), Data: data}, nil
}

// SetValuesGrid overwrites the cells addressed by the selection with vals,
// in the value grid or, if weight is true, the weight grid. vals must hold
// exactly one element per selected cell, in row-major order over the
// selected sub-grid.
func (st *Soltab) SetValuesGrid(sel Selection, vals []float64, weight bool) error {
	target := "val"
	if weight {
		target = "weight"
	}

	indexLists, subShape, err := st.indexLists(sel)
	if err != nil {
		return err
	}
	if sizeOf(subShape) != len(vals) {
		return errors.Wrapf(ErrShapeMismatch, "selection covers %d cells, got %d values",
			sizeOf(subShape), len(vals))
	}

	grid, err := st.readGrid(target)
	if err != nil {
		return err
	}

	gridStrides := strides(grid.Shape)
	pos := 0
	odometer(subShape, func(idx []int) {
		flat := 0
		for dim, i := range idx {
			flat += indexLists[dim][i] * gridStrides[dim]
		}
		grid.Data[flat] = vals[pos]
		pos++
	})

	return st.rewriteGrid(target, grid)
}

// rewriteGrid replaces the val or weight dataset, carrying its attributes
// over to the replacement.
func (st *Soltab) rewriteGrid(name string, grid *Grid) error {
	ds, err := st.g.OpenDataset(name)
	if err != nil {
		return err
	}
	opts := []store.DatasetOption{store.WithShape(grid.Shape...)}
	for _, attrName := range ds.Attrs() {
		if v, ok := ds.Attr(attrName); ok {
			opts = append(opts, store.WithAttr(attrName, v))
		}
	}
	if err := st.g.RemoveDataset(name); err != nil {
		return err
	}
	_, err = st.g.CreateDataset(name, grid.Data, opts...)
	return err
}

// AddHistory appends a timestamped entry to the table history. At most 1000
// entries can be recorded; further entries fail.
func (st *Soltab) AddHistory(entry string) error {
	name, err := firstAvailName(st.g.Attrs(), historyPrefix)
	if err != nil {
		return err
	}
	stamp := time.Now().Format("2006-01-02 15:04:05")
	return st.g.SetAttr(name, fmt.Sprintf("%s: %s", stamp, entry))
}

// History returns all history entries, oldest first, separated by newlines.
func (st *Soltab) History() (string, error) {
	var names []string
	for _, name := range st.g.Attrs() {
		if m := suffixed.FindStringSubmatch(name); m != nil && m[1] == historyPrefix {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	entries := make([]string, 0, len(names))
	for _, name := range names {
		if v, ok := st.g.Attr(name); ok {
			if s, ok := v.(string); ok {
				entries = append(entries, s)
			}
		}
	}
	return strings.Join(entries, "\n"), nil
}

package solparm

import (
	"iter"

	"github.com/pkg/errors"
)

// GetValuesGrid materializes the dense sub-grid addressed by the selection,
// preserving axis order, from the value grid or, if weight is true, the
// weight grid. It also returns the coordinate values actually selected on
// each axis. The whole sub-grid is realized in memory; use
// GetIterValuesGrid for piecewise access to large tables.
func (st *Soltab) GetValuesGrid(sel Selection, weight bool) (*Grid, map[string]AxisValues, error) {
	indexLists, subShape, err := st.indexLists(sel)
	if err != nil {
		return nil, nil, err
	}

	source := "val"
	if weight {
		source = "weight"
	}
	full, err := st.readGrid(source)
	if err != nil {
		return nil, nil, err
	}

	fullStrides := strides(full.Shape)
	out := make([]float64, sizeOf(subShape))
	pos := 0
	odometer(subShape, func(idx []int) {
		flat := 0
		for dim, i := range idx {
			flat += indexLists[dim][i] * fullStrides[dim]
		}
		out[pos] = full.Data[flat]
		pos++
	})

	axisVals := make(map[string]AxisValues, len(st.axes))
	for i, axis := range st.axes {
		axisVals[axis.Name] = axis.Values.Pick(indexLists[i])
	}

	return &Grid{Shape: subShape, Data: out}, axisVals, nil
}

// GridSlice is one element of a grid iteration: a dense sub-array over the
// return axes, plus the coordinate values of every axis at this iteration
// point. Return axes carry their full selected coordinate arrays; iterated
// axes carry the single coordinate of this slice.
type GridSlice struct {
	Values *Grid
	Axes   map[string]AxisValues
}

// GetIterValuesGrid returns a finite, restartable sequence of dense slices.
// The axes named in returnAxes stay dense in each slice; all other axes are
// enumerated in row-major order, following the table's axis order. The
// return axes are moved to the trailing dimensions of each slice,
// preserving their relative order, as downstream consumers expect. With all
// axes in returnAxes, the sequence yields the whole grid once.
func (st *Soltab) GetIterValuesGrid(returnAxes []string, sel Selection, weight bool) (iter.Seq[GridSlice], error) {
	isReturn := make(map[string]bool, len(returnAxes))
	for _, name := range returnAxes {
		if !st.HasAxis(name) {
			return nil, errors.Wrapf(ErrNotFound, "return axis %q in table %q", name, st.Name())
		}
		isReturn[name] = true
	}

	full, axisVals, err := st.GetValuesGrid(sel, weight)
	if err != nil {
		return nil, err
	}

	// Iterated axes keep their table order and lead; return axes follow,
	// also in table order.
	var iterIdx, returnIdx []int
	for i, axis := range st.axes {
		if isReturn[axis.Name] {
			returnIdx = append(returnIdx, i)
		} else {
			iterIdx = append(iterIdx, i)
		}
	}
	perm := append(append([]int(nil), iterIdx...), returnIdx...)
	shape, data := permute(full.Shape, full.Data, perm)

	iterShape := shape[:len(iterIdx)]
	sliceShape := shape[len(iterIdx):]
	sliceLen := sizeOf(sliceShape)

	iterStrides := strides(iterShape)
	total := sizeOf(iterShape)

	return func(yield func(GridSlice) bool) {
		for k := 0; k < total; k++ {
			axes := make(map[string]AxisValues, len(st.axes))
			for _, dim := range returnIdx {
				name := st.axes[dim].Name
				axes[name] = axisVals[name]
			}
			for pos, dim := range iterIdx {
				name := st.axes[dim].Name
				axes[name] = axisVals[name].Pick([]int{k / iterStrides[pos] % iterShape[pos]})
			}
			slice := &Grid{
				Shape: append([]int(nil), sliceShape...),
				Data:  data[k*sliceLen : (k+1)*sliceLen],
			}
			if !yield(GridSlice{Values: slice, Axes: axes}) {
				return
			}
		}
	}, nil
}

package solparm

import "github.com/pkg/errors"

// Grid is a dense row-major array of float64 values with an explicit shape.
type Grid struct {
	Shape []int
	Data  []float64
}

// NewGrid wraps data in a Grid after checking that the shape matches.
func NewGrid(shape []int, data []float64) (*Grid, error) {
	if sizeOf(shape) != len(data) {
		return nil, errors.Wrapf(ErrShapeMismatch, "shape %v holds %d elements, data has %d",
			shape, sizeOf(shape), len(data))
	}
	return &Grid{Shape: append([]int(nil), shape...), Data: data}, nil
}

// At returns the value at the given multi-dimensional index.
func (g *Grid) At(idx ...int) float64 {
	return g.Data[flatIndex(strides(g.Shape), idx)]
}

// sizeOf returns the number of elements a shape holds.
func sizeOf(shape []int) int {
	n := 1
	for _, dim := range shape {
		n *= dim
	}
	return n
}

// strides returns row-major strides for a shape.
func strides(shape []int) []int {
	out := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		out[i] = stride
		stride *= shape[i]
	}
	return out
}

// flatIndex converts a multi-dimensional index to a flat offset.
func flatIndex(strides, idx []int) int {
	flat := 0
	for i, v := range idx {
		flat += v * strides[i]
	}
	return flat
}

// odometer iterates all multi-dimensional indices of a shape in row-major
// order, calling fn with a reused index slice. A zero-sized dimension means
// fn is never called. An empty shape calls fn once.
func odometer(shape []int, fn func(idx []int)) {
	for _, dim := range shape {
		if dim == 0 {
			return
		}
	}
	idx := make([]int, len(shape))
	for {
		fn(idx)
		pos := len(shape) - 1
		for ; pos >= 0; pos-- {
			idx[pos]++
			if idx[pos] < shape[pos] {
				break
			}
			idx[pos] = 0
		}
		if pos < 0 {
			return
		}
	}
}

// permute reorders the dimensions of a dense array. perm[i] names the
// source dimension that becomes output dimension i.
func permute(shape []int, data []float64, perm []int) ([]int, []float64) {
	outShape := make([]int, len(perm))
	for i, src := range perm {
		outShape[i] = shape[src]
	}
	inStrides := strides(shape)
	outStrides := strides(outShape)
	out := make([]float64, len(data))
	odometer(shape, func(idx []int) {
		flat := flatIndex(inStrides, idx)
		outFlat := 0
		for i, src := range perm {
			outFlat += idx[src] * outStrides[i]
		}
		out[outFlat] = data[flat]
	})
	return outShape, out
}

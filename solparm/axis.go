package solparm

import (
	"sort"

	"github.com/pkg/errors"
)

// AxisKind discriminates the coordinate type of an axis.
type AxisKind uint8

// Axis coordinate kinds.
const (
	FloatKind AxisKind = iota
	StringKind
)

// AxisValues holds the 1-D coordinate array of one axis: either numeric or
// string valued. The zero value is an empty numeric axis.
type AxisValues struct {
	kind    AxisKind
	floats  []float64
	strings []string
}

// FloatValues builds a numeric coordinate array.
func FloatValues(vals ...float64) AxisValues {
	return AxisValues{kind: FloatKind, floats: vals}
}

// StringValues builds a string coordinate array.
func StringValues(vals ...string) AxisValues {
	return AxisValues{kind: StringKind, strings: vals}
}

// Kind returns the coordinate kind.
func (av AxisValues) Kind() AxisKind {
	return av.kind
}

// Len returns the number of coordinates.
func (av AxisValues) Len() int {
	if av.kind == StringKind {
		return len(av.strings)
	}
	return len(av.floats)
}

// Floats returns the numeric coordinates. Valid only for FloatKind.
func (av AxisValues) Floats() []float64 {
	return av.floats
}

// Strings returns the string coordinates. Valid only for StringKind.
func (av AxisValues) Strings() []string {
	return av.strings
}

// Pick returns the coordinates at the given indices, in index order.
func (av AxisValues) Pick(indices []int) AxisValues {
	if av.kind == StringKind {
		out := make([]string, len(indices))
		for i, idx := range indices {
			out[i] = av.strings[idx]
		}
		return StringValues(out...)
	}
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = av.floats[idx]
	}
	return FloatValues(out...)
}

// Axis is one named, ordered coordinate dimension of a grid.
type Axis struct {
	Name   string
	Values AxisValues
}

// unionValues computes the sorted, duplicate-free union of coordinate
// arrays. All arrays must share one kind.
func unionValues(all []AxisValues) (AxisValues, error) {
	kind := FloatKind
	for _, av := range all {
		if av.Len() > 0 {
			kind = av.Kind()
			break
		}
	}

	if kind == StringKind {
		seen := map[string]bool{}
		var union []string
		for _, av := range all {
			if av.Len() > 0 && av.Kind() != kind {
				return AxisValues{}, errors.Wrap(ErrTypeMismatch, "mixed numeric and string coordinates")
			}
			for _, v := range av.Strings() {
				if !seen[v] {
					seen[v] = true
					union = append(union, v)
				}
			}
		}
		sort.Strings(union)
		return StringValues(union...), nil
	}

	seen := map[float64]bool{}
	var union []float64
	for _, av := range all {
		if av.Len() > 0 && av.Kind() != kind {
			return AxisValues{}, errors.Wrap(ErrTypeMismatch, "mixed numeric and string coordinates")
		}
		for _, v := range av.Floats() {
			if !seen[v] {
				seen[v] = true
				union = append(union, v)
			}
		}
	}
	sort.Float64s(union)
	return FloatValues(union...), nil
}

// searchSorted returns, for each coordinate in av, its position in the
// sorted union array. Every coordinate of av must be present in the union.
func searchSorted(union, av AxisValues) []int {
	out := make([]int, av.Len())
	if av.Kind() == StringKind {
		for i, v := range av.Strings() {
			out[i] = sort.SearchStrings(union.Strings(), v)
		}
		return out
	}
	for i, v := range av.Floats() {
		out[i] = sort.SearchFloat64s(union.Floats(), v)
	}
	return out
}

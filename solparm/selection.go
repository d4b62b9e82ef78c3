package solparm

import (
	"regexp"

	"github.com/pkg/errors"
)

// selectorKind discriminates the selector union.
type selectorKind uint8

const (
	exactFloatsSelector selectorKind = iota
	exactStringsSelector
	patternSelector
	rangeSelector
)

// Selector is one per-axis predicate. Selectors on different axes are
// independent: the selected sub-grid is the Cartesian product of the
// per-axis index lists.
type Selector struct {
	kind     selectorKind
	floats   []float64
	strings  []string
	pattern  string
	min, max *float64
}

// ExactFloats selects the coordinates equal to any of the given values.
func ExactFloats(vals ...float64) Selector {
	return Selector{kind: exactFloatsSelector, floats: vals}
}

// ExactStrings selects the coordinates equal to any of the given values.
func ExactStrings(vals ...string) Selector {
	return Selector{kind: exactStringsSelector, strings: vals}
}

// MatchPattern selects the coordinates of a string axis matching the
// regular expression.
func MatchPattern(expr string) Selector {
	return Selector{kind: patternSelector, pattern: expr}
}

// AtLeast selects the coordinates of a numeric axis greater than or equal
// to min.
func AtLeast(min float64) Selector {
	return Selector{kind: rangeSelector, min: &min}
}

// AtMost selects the coordinates of a numeric axis less than or equal to
// max.
func AtMost(max float64) Selector {
	return Selector{kind: rangeSelector, max: &max}
}

// Between selects the coordinates of a numeric axis within [min, max].
func Between(min, max float64) Selector {
	return Selector{kind: rangeSelector, min: &min, max: &max}
}

// Selection maps an axis name to the ordered coordinate indices selected on
// it. An axis with no entry is fully selected. Selections are transient:
// they are rebuilt per query and never persisted.
type Selection map[string][]int

// Select evaluates per-axis selectors against the table's axes. On any
// error no selection is produced.
func (st *Soltab) Select(criteria map[string]Selector) (Selection, error) {
	sel := make(Selection, len(criteria))
	for axisName, selector := range criteria {
		axis, err := st.axis(axisName)
		if err != nil {
			return nil, errors.Wrap(err, "cannot select")
		}
		indices, err := selector.apply(axis)
		if err != nil {
			return nil, err
		}
		sel[axisName] = indices
	}
	return sel, nil
}

func (sel Selector) apply(axis Axis) ([]int, error) {
	switch sel.kind {
	case exactFloatsSelector:
		if axis.Values.Kind() != FloatKind {
			return nil, errors.Wrapf(ErrTypeMismatch, "axis %q holds strings, not numbers", axis.Name)
		}
		var indices []int
		for i, v := range axis.Values.Floats() {
			for _, want := range sel.floats {
				if v == want {
					indices = append(indices, i)
					break
				}
			}
		}
		return indices, nil

	case exactStringsSelector:
		if axis.Values.Kind() != StringKind {
			return nil, errors.Wrapf(ErrTypeMismatch, "axis %q holds numbers, not strings", axis.Name)
		}
		var indices []int
		for i, v := range axis.Values.Strings() {
			for _, want := range sel.strings {
				if v == want {
					indices = append(indices, i)
					break
				}
			}
		}
		return indices, nil

	case patternSelector:
		if axis.Values.Kind() != StringKind {
			return nil, errors.Wrapf(ErrTypeMismatch,
				"cannot select on numeric axis %q with a regular expression", axis.Name)
		}
		re, err := regexp.Compile(sel.pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "pattern for axis %q", axis.Name)
		}
		var indices []int
		for i, v := range axis.Values.Strings() {
			if re.MatchString(v) {
				indices = append(indices, i)
			}
		}
		return indices, nil

	case rangeSelector:
		if sel.min == nil && sel.max == nil {
			return nil, errors.Wrapf(ErrTypeMismatch, "range selector for axis %q needs min and/or max", axis.Name)
		}
		if axis.Values.Kind() != FloatKind {
			return nil, errors.Wrapf(ErrTypeMismatch, "axis %q holds strings, not numbers", axis.Name)
		}
		var indices []int
		for i, v := range axis.Values.Floats() {
			if sel.min != nil && v < *sel.min {
				continue
			}
			if sel.max != nil && v > *sel.max {
				continue
			}
			indices = append(indices, i)
		}
		return indices, nil

	default:
		return nil, errors.Errorf("unknown selector kind %d", sel.kind)
	}
}

// indexLists expands a selection into one index list per axis, in axis
// order, using the full range for unselected axes. The second return is the
// selected sub-grid shape.
func (st *Soltab) indexLists(sel Selection) ([][]int, []int, error) {
	for axisName := range sel {
		if !st.HasAxis(axisName) {
			return nil, nil, errors.Wrapf(ErrNotFound, "selection on axis %q in table %q", axisName, st.Name())
		}
	}

	lists := make([][]int, len(st.axes))
	shape := make([]int, len(st.axes))
	for i, axis := range st.axes {
		if indices, ok := sel[axis.Name]; ok {
			lists[i] = indices
		} else {
			all := make([]int, axis.Values.Len())
			for j := range all {
				all[j] = j
			}
			lists[i] = all
		}
		shape[i] = len(lists[i])
	}
	return lists, shape, nil
}

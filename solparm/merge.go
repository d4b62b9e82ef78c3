package solparm

import (
	"math"

	"github.com/pkg/errors"
)

// MergeResult is the outcome of merging solution tables: the unioned axes
// and the filled value and weight arrays, ready to persist.
type MergeResult struct {
	Type    string
	Axes    []Axis
	Vals    []float64
	Weights []float64
}

// MergeSoltabs unions the grids of the given tables into one larger grid.
//
// The axis order of the first table is canonical; all tables are assumed to
// share the same axis set and order. Each merged axis holds the sorted,
// duplicate-free union of that axis's coordinates across the inputs. Cells
// populated by no input keep NaN and weight 0. Where inputs overlap, the
// last table in the list wins; values are never averaged and overlaps are
// not reported. Weights are normalized to {0,1}, and a NaN value forces its
// weight to 0.
func MergeSoltabs(tabs []*Soltab) (*MergeResult, error) {
	if len(tabs) == 0 {
		return nil, errors.Wrap(ErrMissingArgument, "no solution-tables to merge")
	}

	axisNames := tabs[0].AxesNames()

	// Sorted-unique union per axis. Order-independent, so re-merging a
	// merged table with further inputs yields the same coordinate sets.
	axes := make([]Axis, len(axisNames))
	for i, name := range axisNames {
		all := make([]AxisValues, len(tabs))
		for j, tab := range tabs {
			values, err := tab.AxisValues(name)
			if err != nil {
				return nil, err
			}
			all[j] = values
		}
		union, err := unionValues(all)
		if err != nil {
			return nil, errors.Wrapf(err, "axis %q", name)
		}
		axes[i] = Axis{Name: name, Values: union}
	}

	shape := make([]int, len(axes))
	for i, axis := range axes {
		shape[i] = axis.Values.Len()
	}
	mergedStrides := strides(shape)

	vals := make([]float64, sizeOf(shape))
	for i := range vals {
		vals[i] = math.NaN()
	}
	weights := make([]float64, sizeOf(shape))

	for _, tab := range tabs {
		// Map each local coordinate position to its merged-grid position.
		mappings := make([][]int, len(axes))
		for i, axis := range axes {
			values, err := tab.AxisValues(axis.Name)
			if err != nil {
				return nil, err
			}
			mappings[i] = searchSorted(axis.Values, values)
		}

		tabVals, err := tab.Values()
		if err != nil {
			return nil, err
		}
		tabWeights, err := tab.Weights()
		if err != nil {
			return nil, err
		}

		pos := 0
		odometer(tabVals.Shape, func(idx []int) {
			flat := 0
			for dim, i := range idx {
				flat += mappings[dim][i] * mergedStrides[dim]
			}
			vals[flat] = tabVals.Data[pos]
			weights[flat] = tabWeights.Data[pos]
			pos++
		})
	}

	// Binary weights; missing values can never carry a positive weight.
	for i := range weights {
		if weights[i] != 0 {
			weights[i] = 1
		}
		if math.IsNaN(vals[i]) {
			weights[i] = 0
		}
	}

	return &MergeResult{
		Type:    tabs[0].Type(),
		Axes:    axes,
		Vals:    vals,
		Weights: weights,
	}, nil
}

// UnionAntennas folds the antenna catalogs of the given solution-sets into
// a new slice. The first occurrence of a name wins its position; later
// duplicates are dropped.
func UnionAntennas(sets []*Solset) ([]Antenna, error) {
	seen := map[string]bool{}
	var out []Antenna
	for _, set := range sets {
		ants, err := set.Antennas()
		if err != nil {
			return nil, err
		}
		for _, ant := range ants {
			if !seen[ant.Name] {
				seen[ant.Name] = true
				out = append(out, ant)
			}
		}
	}
	return out, nil
}

// UnionSources folds the direction catalogs of the given solution-sets into
// a new slice, first occurrence of a name winning.
func UnionSources(sets []*Solset) ([]Source, error) {
	seen := map[string]bool{}
	var out []Source
	for _, set := range sets {
		sources, err := set.Sources()
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			if !seen[src.Name] {
				seen[src.Name] = true
				out = append(out, src)
			}
		}
	}
	return out, nil
}

// Collect merges the named solution-table across the input solution-sets
// into the output set, then extends the output set's antenna and direction
// catalogs with the union of the inputs' catalogs (entries already present
// in the output keep their values).
func Collect(inSets []*Solset, soltabName string, out *Solset) (*Soltab, error) {
	if len(inSets) == 0 {
		return nil, errors.Wrap(ErrMissingArgument, "no input solution-sets")
	}

	tabs := make([]*Soltab, len(inSets))
	for i, set := range inSets {
		tab, err := set.GetSoltab(soltabName)
		if err != nil {
			return nil, err
		}
		tabs[i] = tab
	}

	res, err := MergeSoltabs(tabs)
	if err != nil {
		return nil, err
	}

	merged, err := out.MakeSoltab(res.Type, soltabName, res.Axes, res.Vals, res.Weights)
	if err != nil {
		return nil, err
	}

	ants, err := UnionAntennas(append([]*Solset{out}, inSets...))
	if err != nil {
		return nil, err
	}
	if err := out.SetAntennas(ants); err != nil {
		return nil, err
	}

	sources, err := UnionSources(append([]*Solset{out}, inSets...))
	if err != nil {
		return nil, err
	}
	if err := out.SetSources(sources); err != nil {
		return nil, err
	}

	return merged, nil
}

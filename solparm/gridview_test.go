package solparm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetValuesGridSelectAll(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	// An empty selection reproduces the dense grid unchanged.
	grid, axes, err := st.GetValuesGrid(nil, false)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, grid.Shape)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, grid.Data)
	assert.Equal(t, []float64{1, 2, 3}, axes["time"].Floats())
	assert.Equal(t, []string{"CS001HBA", "RS106HBA"}, axes["ant"].Strings())
}

func TestGetValuesGridWeights(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)

	vals := []float64{0, 1, 2, 3, 4, 5}
	weights := []float64{1, 0, 1, 0, 1, 0}
	st, err := ss.MakeSoltab("phase", "", testAxes(), vals, weights)
	require.NoError(t, err)

	grid, _, err := st.GetValuesGrid(nil, true)
	require.NoError(t, err)
	assert.Equal(t, weights, grid.Data)
}

func TestGetValuesGridUnknownAxis(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	_, _, err = st.GetValuesGrid(Selection{"pol": {0}}, false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIterSlicesConcatenateToGrid(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	// Iterating over the leading axis with the trailing axis dense keeps
	// the storage order, so concatenating the slices rebuilds the grid.
	seq, err := st.GetIterValuesGrid([]string{"ant"}, nil, false)
	require.NoError(t, err)

	var got []float64
	var seenTimes []float64
	for slice := range seq {
		assert.Equal(t, []int{2}, slice.Values.Shape)
		assert.Equal(t, []string{"CS001HBA", "RS106HBA"}, slice.Axes["ant"].Strings())
		require.Equal(t, 1, slice.Axes["time"].Len())
		seenTimes = append(seenTimes, slice.Axes["time"].Floats()[0])
		got = append(got, slice.Values.Data...)
	}
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, got)
	assert.Equal(t, []float64{1, 2, 3}, seenTimes)
}

func TestIterReordersReturnAxesToTrailing(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	// Iterating over the trailing axis: each slice is a column of the
	// stored grid, dense over time.
	seq, err := st.GetIterValuesGrid([]string{"time"}, nil, false)
	require.NoError(t, err)

	var slices [][]float64
	var seenAnts []string
	for slice := range seq {
		assert.Equal(t, []int{3}, slice.Values.Shape)
		seenAnts = append(seenAnts, slice.Axes["ant"].Strings()...)
		slices = append(slices, slice.Values.Data)
	}
	require.Len(t, slices, 2)
	assert.Equal(t, []float64{0, 2, 4}, slices[0])
	assert.Equal(t, []float64{1, 3, 5}, slices[1])
	assert.Equal(t, []string{"CS001HBA", "RS106HBA"}, seenAnts)
}

func TestIterAllAxesYieldsWholeGridOnce(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	seq, err := st.GetIterValuesGrid([]string{"time", "ant"}, nil, false)
	require.NoError(t, err)

	count := 0
	for slice := range seq {
		count++
		assert.Equal(t, []int{3, 2}, slice.Values.Shape)
		assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, slice.Values.Data)
	}
	assert.Equal(t, 1, count)
}

func TestIterIsRestartable(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	seq, err := st.GetIterValuesGrid([]string{"ant"}, nil, false)
	require.NoError(t, err)

	// Break out of a first pass, then replay from the start.
	for range seq {
		break
	}
	count := 0
	for range seq {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestIterHonorsSelection(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	sel, err := st.Select(map[string]Selector{"time": ExactFloats(2, 3)})
	require.NoError(t, err)

	seq, err := st.GetIterValuesGrid([]string{"ant"}, sel, false)
	require.NoError(t, err)

	var got []float64
	for slice := range seq {
		got = append(got, slice.Values.Data...)
	}
	assert.Equal(t, []float64{2, 3, 4, 5}, got)
}

func TestIterUnknownReturnAxis(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	_, err = st.GetIterValuesGrid([]string{"pol"}, nil, false)
	require.ErrorIs(t, err, ErrNotFound)
}

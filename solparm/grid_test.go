package solparm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridShapeCheck(t *testing.T) {
	g, err := NewGrid([]int{2, 3}, []float64{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, g.At(1, 2))
	assert.Equal(t, 2.0, g.At(0, 2))

	_, err = NewGrid([]int{2, 3}, make([]float64, 5))
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestOdometerRowMajor(t *testing.T) {
	var visited [][]int
	odometer([]int{2, 3}, func(idx []int) {
		visited = append(visited, append([]int(nil), idx...))
	})
	assert.Equal(t, [][]int{
		{0, 0}, {0, 1}, {0, 2},
		{1, 0}, {1, 1}, {1, 2},
	}, visited)
}

func TestOdometerDegenerateShapes(t *testing.T) {
	calls := 0
	odometer([]int{3, 0, 2}, func([]int) { calls++ })
	assert.Equal(t, 0, calls)

	odometer(nil, func([]int) { calls++ })
	assert.Equal(t, 1, calls)
}

func TestPermute(t *testing.T) {
	// Transpose a 2x3 grid.
	shape, data := permute([]int{2, 3}, []float64{0, 1, 2, 3, 4, 5}, []int{1, 0})
	assert.Equal(t, []int{3, 2}, shape)
	assert.Equal(t, []float64{0, 3, 1, 4, 2, 5}, data)

	// The identity permutation is a no-op.
	shape, data = permute([]int{2, 3}, []float64{0, 1, 2, 3, 4, 5}, []int{0, 1})
	assert.Equal(t, []int{2, 3}, shape)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, data)
}

func TestUnionValues(t *testing.T) {
	union, err := unionValues([]AxisValues{
		FloatValues(3, 1, 2),
		FloatValues(2, 4),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, union.Floats())

	union, err = unionValues([]AxisValues{
		StringValues("b", "a"),
		StringValues("a", "c"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, union.Strings())

	_, err = unionValues([]AxisValues{
		FloatValues(1),
		StringValues("a"),
	})
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSearchSorted(t *testing.T) {
	union := FloatValues(1, 2, 3, 4)
	assert.Equal(t, []int{1, 3}, searchSorted(union, FloatValues(2, 4)))

	sunion := StringValues("a", "b", "c")
	assert.Equal(t, []int{2, 0}, searchSorted(sunion, StringValues("c", "a")))
}

package solparm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectExact(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	sel, err := st.Select(map[string]Selector{"time": ExactFloats(1, 3)})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, sel["time"])

	sel, err = st.Select(map[string]Selector{"ant": ExactStrings("RS106HBA")})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, sel["ant"])

	// Values absent from the axis are silently skipped.
	sel, err = st.Select(map[string]Selector{"time": ExactFloats(7)})
	require.NoError(t, err)
	assert.Empty(t, sel["time"])
}

func TestSelectPattern(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	sel, err := st.Select(map[string]Selector{"ant": MatchPattern("^CS")})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, sel["ant"])

	// Patterns only apply to string axes.
	_, err = st.Select(map[string]Selector{"time": MatchPattern("^1$")})
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = st.Select(map[string]Selector{"ant": MatchPattern("([")})
	require.Error(t, err)
}

func TestSelectRange(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	sel, err := st.Select(map[string]Selector{"time": Between(1.5, 3)})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, sel["time"])

	sel, err = st.Select(map[string]Selector{"time": AtLeast(2)})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, sel["time"])

	sel, err = st.Select(map[string]Selector{"time": AtMost(2)})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, sel["time"])

	// Ranges require a numeric axis and at least one bound.
	_, err = st.Select(map[string]Selector{"ant": Between(0, 1)})
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = st.Select(map[string]Selector{"time": {kind: rangeSelector}})
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSelectUnknownAxis(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	// All-or-nothing: a single bad axis fails the whole selection.
	_, err = st.Select(map[string]Selector{
		"time": ExactFloats(1),
		"pol":  ExactStrings("XX"),
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSelectionCartesianProduct(t *testing.T) {
	p := newTestParm(t)
	ss, err := p.MakeSolset("sol000")
	require.NoError(t, err)
	st := makeTestSoltab(t, ss)

	sel, err := st.Select(map[string]Selector{
		"time": ExactFloats(1, 3),
		"ant":  ExactStrings("RS106HBA"),
	})
	require.NoError(t, err)

	grid, axes, err := st.GetValuesGrid(sel, false)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, grid.Shape)
	assert.Equal(t, []float64{1, 5}, grid.Data)
	assert.Equal(t, []float64{1, 3}, axes["time"].Floats())
	assert.Equal(t, []string{"RS106HBA"}, axes["ant"].Strings())
}

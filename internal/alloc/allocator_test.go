package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocAdvancesWatermark(t *testing.T) {
	a := New(16)

	assert.Equal(t, uint64(16), a.Alloc(100))
	assert.Equal(t, uint64(116), a.Alloc(8))
	assert.Equal(t, uint64(124), a.EOF())
	assert.Equal(t, 2, a.Count())
}

func TestZeroSizeAllocation(t *testing.T) {
	a := New(0)

	assert.Equal(t, uint64(0), a.Alloc(0))
	assert.Equal(t, uint64(0), a.EOF())
	assert.Equal(t, 1, a.Count())
}

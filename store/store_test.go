package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempFile(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func TestCreateReopenRoundTrip(t *testing.T) {
	path := tempFile(t, "roundtrip.spc")

	f, err := Create(path)
	require.NoError(t, err)

	g, err := f.Root().CreateGroup("sol000")
	require.NoError(t, err)

	vals := []float64{1.5, 2.5, 3.5, 4.5, 5.5, 6.5}
	_, err = g.CreateDataset("val", vals, WithShape(2, 3), WithAttr("AXES", "time,freq"))
	require.NoError(t, err)

	names := []string{"CS001HBA", "CS002HBA", "RS106HBA"}
	_, err = g.CreateDataset("ant", names)
	require.NoError(t, err)

	require.NoError(t, g.SetAttr("TITLE", "amplitude"))
	require.NoError(t, f.Close())

	f2, err := Open(path)
	require.NoError(t, err)
	defer f2.Close()

	g2, err := f2.Root().OpenGroup("sol000")
	require.NoError(t, err)

	title, ok := g2.Attr("TITLE")
	require.True(t, ok)
	assert.Equal(t, "amplitude", title)

	ds, err := g2.OpenDataset("val")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ds.Shape())
	assert.Equal(t, Float64, ds.Dtype())

	axes, ok := ds.Attr("AXES")
	require.True(t, ok)
	assert.Equal(t, "time,freq", axes)

	got, err := ds.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, vals, got)

	ants, err := g2.OpenDataset("ant")
	require.NoError(t, err)
	gotNames, err := ants.ReadString()
	require.NoError(t, err)
	assert.Equal(t, names, gotNames)
}

func TestCompressedChunks(t *testing.T) {
	path := tempFile(t, "compressed.spc")

	f, err := Create(path, WithCompression(5))
	require.NoError(t, err)

	vals := make([]float64, 10000)
	for i := range vals {
		vals[i] = float64(i % 17)
	}
	_, err = f.Root().CreateDataset("val", vals, WithChunkElems(1024))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2, err := Open(path)
	require.NoError(t, err)
	defer f2.Close()

	ds, err := f2.Root().OpenDataset("val")
	require.NoError(t, err)
	got, err := ds.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, vals, got)
}

func TestAppendAndReplace(t *testing.T) {
	path := tempFile(t, "append.spc")

	f, err := Create(path)
	require.NoError(t, err)
	g, err := f.Root().CreateGroup("sol000")
	require.NoError(t, err)
	_, err = g.CreateDataset("time", []float64{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Reopen for append: add a dataset, replace the old one.
	f2, err := OpenReadWrite(path)
	require.NoError(t, err)
	g2, err := f2.Root().OpenGroup("sol000")
	require.NoError(t, err)

	_, err = g2.CreateDataset("freq", []float64{100e6, 110e6})
	require.NoError(t, err)

	require.NoError(t, g2.RemoveDataset("time"))
	_, err = g2.CreateDataset("time", []float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, f2.Close())

	f3, err := Open(path)
	require.NoError(t, err)
	defer f3.Close()

	g3, err := f3.Root().OpenGroup("sol000")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"freq", "time"}, g3.Datasets())

	ds, err := g3.OpenDataset("time")
	require.NoError(t, err)
	got, err := ds.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, got)
}

func TestOpenRejectsForeignFile(t *testing.T) {
	path := tempFile(t, "foreign.dat")
	require.NoError(t, os.WriteFile(path, []byte("this is not a container, just some text padding"), 0o644))

	_, err := Open(path)
	require.ErrorIs(t, err, ErrNotStore)
}

func TestOpenRejectsTruncatedFile(t *testing.T) {
	path := tempFile(t, "tiny.spc")
	require.NoError(t, os.WriteFile(path, []byte("SPCF"), 0o644))

	_, err := Open(path)
	require.ErrorIs(t, err, ErrNotStore)
}

func TestCreateDatasetShapeMismatch(t *testing.T) {
	path := tempFile(t, "shape.spc")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Root().CreateDataset("val", []float64{1, 2, 3}, WithShape(2, 2))
	require.ErrorIs(t, err, ErrBadShape)
}

func TestCreateDuplicateFails(t *testing.T) {
	path := tempFile(t, "dup.spc")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Root().CreateDataset("val", []float64{1})
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("val", []float64{2})
	require.ErrorIs(t, err, ErrExists)

	_, err = f.Root().CreateGroup("val")
	require.ErrorIs(t, err, ErrExists)
}

func TestZeroLengthDataset(t *testing.T) {
	path := tempFile(t, "empty.spc")

	f, err := Create(path)
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("empty", []float64{}, WithShape(0))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2, err := Open(path)
	require.NoError(t, err)
	defer f2.Close()

	ds, err := f2.Root().OpenDataset("empty")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, ds.Shape())
	got, err := ds.ReadFloat64()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	path := tempFile(t, "ro.spc")

	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2, err := Open(path)
	require.NoError(t, err)
	defer f2.Close()

	_, err = f2.Root().CreateGroup("sol000")
	require.ErrorIs(t, err, ErrReadOnly)
	require.ErrorIs(t, f2.Root().SetAttr("a", "b"), ErrReadOnly)
}

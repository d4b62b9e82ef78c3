package solparm

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/radioastro/solparm/store"
)

// Catalog group names reserved inside every solution-set.
const (
	antennaGroup = "antenna"
	sourceGroup  = "source"
)

// axesAttr records the axis order on the val and weight datasets.
const axesAttr = "AXES"

// Antenna is one station catalog entry: a name and an ITRF position.
type Antenna struct {
	Name     string
	Position [3]float64
}

// Source is one direction catalog entry: a name and an (ra, dec) pair.
type Source struct {
	Name string
	Dir  [2]float64
}

// Solset is a named solution-set: a namespace of solution tables plus
// shared antenna and source catalogs.
type Solset struct {
	parm *Parm
	g    *store.Group
}

// Name returns the solution-set name.
func (s *Solset) Name() string {
	return s.g.Name()
}

// initCatalogs creates empty antenna and source catalogs.
func (s *Solset) initCatalogs() error {
	if err := s.writeCatalog(antennaGroup, "position", 3, nil, nil); err != nil {
		return err
	}
	return s.writeCatalog(sourceGroup, "dir", 2, nil, nil)
}

// writeCatalog (re)writes one catalog group holding a name dataset and a
// fixed-width coordinate dataset.
func (s *Solset) writeCatalog(group, coordName string, width int, names []string, coords []float64) error {
	g, err := s.g.OpenGroup(group)
	if errors.Is(err, store.ErrNotFound) {
		if g, err = s.g.CreateGroup(group); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if g.HasDataset("name") {
		if err := g.RemoveDataset("name"); err != nil {
			return err
		}
		if err := g.RemoveDataset(coordName); err != nil {
			return err
		}
	}

	if names == nil {
		names = []string{}
	}
	if coords == nil {
		coords = []float64{}
	}
	if _, err := g.CreateDataset("name", names, store.WithAttr(versionAttr, schemaVersion)); err != nil {
		return err
	}
	_, err = g.CreateDataset(coordName, coords,
		store.WithShape(len(names), width), store.WithAttr(versionAttr, schemaVersion))
	return err
}

func (s *Solset) readCatalog(group, coordName string, width int) ([]string, []float64, error) {
	g, err := s.g.OpenGroup(group)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrNotFound, "catalog %q in solution-set %q", group, s.Name())
	}
	nameDS, err := g.OpenDataset("name")
	if err != nil {
		return nil, nil, err
	}
	names, err := nameDS.ReadString()
	if err != nil {
		return nil, nil, err
	}
	coordDS, err := g.OpenDataset(coordName)
	if err != nil {
		return nil, nil, err
	}
	coords, err := coordDS.ReadFloat64()
	if err != nil {
		return nil, nil, err
	}
	if len(coords) != len(names)*width {
		return nil, nil, errors.Wrapf(ErrShapeMismatch, "catalog %q: %d names, %d coordinates",
			group, len(names), len(coords))
	}
	return names, coords, nil
}

// Antennas returns the antenna catalog in stored order.
func (s *Solset) Antennas() ([]Antenna, error) {
	names, coords, err := s.readCatalog(antennaGroup, "position", 3)
	if err != nil {
		return nil, err
	}
	out := make([]Antenna, len(names))
	for i, name := range names {
		out[i] = Antenna{Name: name, Position: [3]float64{coords[3*i], coords[3*i+1], coords[3*i+2]}}
	}
	return out, nil
}

// SetAntennas replaces the antenna catalog.
func (s *Solset) SetAntennas(ants []Antenna) error {
	names := make([]string, len(ants))
	coords := make([]float64, 0, 3*len(ants))
	for i, ant := range ants {
		names[i] = ant.Name
		coords = append(coords, ant.Position[0], ant.Position[1], ant.Position[2])
	}
	return s.writeCatalog(antennaGroup, "position", 3, names, coords)
}

// Sources returns the direction catalog in stored order.
func (s *Solset) Sources() ([]Source, error) {
	names, coords, err := s.readCatalog(sourceGroup, "dir", 2)
	if err != nil {
		return nil, err
	}
	out := make([]Source, len(names))
	for i, name := range names {
		out[i] = Source{Name: name, Dir: [2]float64{coords[2*i], coords[2*i+1]}}
	}
	return out, nil
}

// SetSources replaces the direction catalog.
func (s *Solset) SetSources(sources []Source) error {
	names := make([]string, len(sources))
	coords := make([]float64, 0, 2*len(sources))
	for i, src := range sources {
		names[i] = src.Name
		coords = append(coords, src.Dir[0], src.Dir[1])
	}
	return s.writeCatalog(sourceGroup, "dir", 2, names, coords)
}

// SoltabNames returns the names of all solution tables in the set.
func (s *Solset) SoltabNames() []string {
	var names []string
	for _, name := range s.g.Groups() {
		if name == antennaGroup || name == sourceGroup {
			continue
		}
		names = append(names, name)
	}
	return names
}

// GetSoltab returns the named solution table.
func (s *Solset) GetSoltab(name string) (*Soltab, error) {
	if name == "" {
		return nil, errors.Wrap(ErrMissingArgument, "solution-table not specified")
	}
	if name == antennaGroup || name == sourceGroup {
		return nil, errors.Wrapf(ErrNotFound, "%q is a catalog, not a solution-table", name)
	}
	g, err := s.g.OpenGroup(name)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "solution-table %q in solution-set %q", name, s.Name())
	}
	return loadSoltab(s, g)
}

// MakeSoltab creates a solution table of the given type in this set.
// All axes and the full value and weight arrays are supplied atomically;
// the table is never resized afterwards. If name is empty, invalid, or
// already taken, the first available soltype### name is used instead.
func (s *Solset) MakeSoltab(soltype, name string, axes []Axis, vals, weights []float64) (*Soltab, error) {
	if soltype == "" {
		return nil, errors.Wrap(ErrMissingArgument, "solution-type not specified while adding a solution-table")
	}

	if name != "" && !validName.MatchString(name) {
		s.parm.log.Warnf("solution-table name %q contains unsupported characters, use [A-Za-z0-9_-]; switching to default", name)
		name = ""
	}
	if name != "" && s.hasChild(name) {
		s.parm.log.Warnf("solution-table %q already present; switching to default", name)
		name = ""
	}
	if name == "" {
		var err error
		if name, err = firstAvailName(s.SoltabNames(), soltype); err != nil {
			return nil, err
		}
	}

	dims := make([]int, len(axes))
	axisNames := make([]string, len(axes))
	for i, axis := range axes {
		if axis.Name == "val" || axis.Name == "weight" {
			return nil, errors.Errorf("axis name %q is reserved", axis.Name)
		}
		for _, prev := range axisNames[:i] {
			if prev == axis.Name {
				return nil, errors.Errorf("duplicate axis name %q", axis.Name)
			}
		}
		dims[i] = axis.Values.Len()
		axisNames[i] = axis.Name
	}
	if n := sizeOf(dims); n != len(vals) || n != len(weights) {
		return nil, errors.Wrapf(ErrShapeMismatch,
			"axes %v hold %d cells, got %d values and %d weights", dims, sizeOf(dims), len(vals), len(weights))
	}

	s.parm.log.Infof("creating a new solution-table: %s", name)
	g, err := s.g.CreateGroup(name)
	if err != nil {
		return nil, err
	}
	if err := g.SetAttr(titleAttr, soltype); err != nil {
		return nil, err
	}

	for _, axis := range axes {
		if err := createAxisDataset(g, axis); err != nil {
			return nil, err
		}
	}

	order := strings.Join(axisNames, ",")
	if _, err := g.CreateDataset("val", vals,
		store.WithShape(dims...), store.WithAttr(axesAttr, order), store.WithAttr(versionAttr, schemaVersion)); err != nil {
		return nil, err
	}
	if _, err := g.CreateDataset("weight", weights,
		store.WithShape(dims...), store.WithAttr(axesAttr, order), store.WithAttr(versionAttr, schemaVersion)); err != nil {
		return nil, err
	}

	return loadSoltab(s, g)
}

func (s *Solset) hasChild(name string) bool {
	return s.g.HasGroup(name) || s.g.HasDataset(name)
}

func createAxisDataset(g *store.Group, axis Axis) error {
	var err error
	if axis.Values.Kind() == StringKind {
		vals := axis.Values.Strings()
		if vals == nil {
			vals = []string{}
		}
		_, err = g.CreateDataset(axis.Name, vals, store.WithAttr(versionAttr, schemaVersion))
	} else {
		vals := axis.Values.Floats()
		if vals == nil {
			vals = []float64{}
		}
		_, err = g.CreateDataset(axis.Name, vals, store.WithAttr(versionAttr, schemaVersion))
	}
	return err
}

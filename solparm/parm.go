package solparm

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/radioastro/solparm/store"
)

// versionAttr tags every axis, value, and weight object with the schema
// version it was written under.
const (
	versionAttr   = "VERSION_SOLPARM"
	schemaVersion = "1.0"
)

// titleAttr holds the solution type of a table's group.
const titleAttr = "TITLE"

// Option configures a Parm handle.
type Option func(*Parm)

// WithLogger sets the logger used for informational and warning messages.
// Errors are always returned, never only logged.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Parm) {
		p.log = log
	}
}

// WithCompression sets the gzip level (1-9, 0 = none) for datasets written
// through this handle. Only meaningful for Create and OpenReadWrite.
func WithCompression(level int) Option {
	return func(p *Parm) {
		p.compression = level
	}
}

// Parm is an open solution container holding zero or more solution-sets.
// A handle is single-threaded: operations run to completion before
// returning and no in-process locking is performed.
type Parm struct {
	f           *store.File
	log         logrus.FieldLogger
	compression int
}

func newParm(opts []Option) *Parm {
	p := &Parm{log: logrus.StandardLogger(), compression: 5}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open opens an existing container read-only. A missing or unrecognized
// file is a format error.
func Open(path string, opts ...Option) (*Parm, error) {
	p := newParm(opts)
	f, err := store.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, store.ErrNotStore) {
			return nil, errors.Wrapf(ErrFormat, "%s: %v", path, err)
		}
		return nil, err
	}
	p.f = f
	p.log.Debugf("reading from %s", path)
	return p, nil
}

// Create creates a new, empty container.
func Create(path string, opts ...Option) (*Parm, error) {
	p := newParm(opts)
	f, err := store.Create(path, store.WithCompression(p.compression))
	if err != nil {
		return nil, err
	}
	p.f = f
	p.log.Debugf("creating %s", path)
	return p, nil
}

// OpenReadWrite opens a container for appending, creating it if it does not
// exist yet.
func OpenReadWrite(path string, opts ...Option) (*Parm, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Create(path, opts...)
	}
	p := newParm(opts)
	f, err := store.OpenReadWrite(path, store.WithCompression(p.compression))
	if err != nil {
		if errors.Is(err, store.ErrNotStore) {
			return nil, errors.Wrapf(ErrFormat, "%s: %v", path, err)
		}
		return nil, err
	}
	p.f = f
	p.log.Debugf("appending to %s", path)
	return p, nil
}

// Close flushes and releases the underlying file. Closing twice is a no-op.
func (p *Parm) Close() error {
	return p.f.Close()
}

// Path returns the container file path.
func (p *Parm) Path() string {
	return p.f.Path()
}

// SolsetNames returns the names of all solution-sets.
func (p *Parm) SolsetNames() []string {
	return p.f.Root().Groups()
}

// GetSolset returns the named solution-set.
func (p *Parm) GetSolset(name string) (*Solset, error) {
	if name == "" {
		return nil, errors.Wrap(ErrMissingArgument, "solution-set not specified")
	}
	g, err := p.f.Root().OpenGroup(name)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "solution-set %q", name)
	}
	return &Solset{parm: p, g: g}, nil
}

// MakeSolset creates a new solution-set with empty antenna and source
// catalogs. If name is empty, invalid, or already taken, the first
// available sol### name is used instead.
func (p *Parm) MakeSolset(name string) (*Solset, error) {
	if name != "" && !validName.MatchString(name) {
		p.log.Warnf("solution-set name %q contains unsupported characters, use [A-Za-z0-9_-]; switching to default", name)
		name = ""
	}
	if name != "" && p.hasSolset(name) {
		p.log.Warnf("solution-set %q already present; switching to default", name)
		name = ""
	}
	if name == "" {
		var err error
		if name, err = firstAvailName(p.SolsetNames(), "sol"); err != nil {
			return nil, err
		}
	}

	p.log.Infof("creating a new solution-set: %s", name)
	g, err := p.f.Root().CreateGroup(name)
	if err != nil {
		return nil, err
	}

	ss := &Solset{parm: p, g: g}
	if err := ss.initCatalogs(); err != nil {
		return nil, err
	}
	return ss, nil
}

func (p *Parm) hasSolset(name string) bool {
	for _, n := range p.SolsetNames() {
		if n == name {
			return true
		}
	}
	return false
}

// Describe returns a human-readable summary of the container: each
// solution-set with its direction and station catalogs and the axis lengths
// of every table. Axis lengths are cached as table attributes when the
// container is writable, so later summaries avoid re-reading the axes.
func (p *Parm) Describe() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "\nSummary of %s\n", p.f.Path())

	solsets := p.SolsetNames()
	if len(solsets) == 0 {
		b.WriteString("\nNo solution sets found.\n")
		return b.String(), nil
	}

	for _, ssName := range solsets {
		ss, err := p.GetSolset(ssName)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\nSolution set '%s':\n", ssName)
		b.WriteString(strings.Repeat("=", len(ssName)+16) + "\n\n")

		sources, err := ss.Sources()
		if err != nil {
			return "", err
		}
		b.WriteString("Directions: ")
		for _, src := range sources {
			fmt.Fprintf(&b, "%s\n            ", src.Name)
		}

		antennas, err := ss.Antennas()
		if err != nil {
			return "", err
		}
		names := make([]string, len(antennas))
		for i, ant := range antennas {
			names[i] = ant.Name
		}
		sort.Strings(names)
		b.WriteString("\nStations: ")
		for i := 0; i < len(names); i += 4 {
			row := names[i:min(i+4, len(names))]
			for _, n := range row {
				fmt.Fprintf(&b, "%-10s ", n)
			}
			b.WriteString("\n          ")
		}

		tabs := ss.SoltabNames()
		if len(tabs) == 0 {
			b.WriteString("\nNo tables\n")
			continue
		}
		for _, tabName := range tabs {
			st, err := ss.GetSoltab(tabName)
			if err != nil {
				return "", err
			}
			parts := make([]string, 0, len(st.AxesNames()))
			for _, axisName := range st.AxesNames() {
				n, err := st.cachedAxisLen(axisName)
				if err != nil {
					return "", err
				}
				plural := ""
				if n != 1 {
					plural = "s"
				}
				parts = append(parts, fmt.Sprintf("%d %s%s", n, axisName, plural))
			}
			fmt.Fprintf(&b, "\nSolution table '%s': %s\n", tabName, strings.Join(parts, ", "))

			history, err := st.History()
			if err != nil {
				return "", err
			}
			if history != "" {
				b.WriteString("\n    History:\n    ")
				b.WriteString(strings.ReplaceAll(history, "\n", "\n    "))
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

// Package scene holds the result of evaluating a mesh script: an ordered
// list of named entries, each with a generator that produces its buffer.
// A Scene is built once per evaluation and not mutated afterwards.
package scene

import (
	"fmt"

	"github.com/chazu/meshgen/pkg/mesh"
)

// Generator produces a mesh buffer. parametric shapes, lattices and
// isosurfaces all satisfy it.
type Generator interface {
	Generate() (*mesh.Buffer, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() (*mesh.Buffer, error)

// Generate calls f.
func (f GeneratorFunc) Generate() (*mesh.Buffer, error) { return f() }

// Kind identifies the generator behind an entry.
type Kind int

const (
	KindQuad Kind = iota
	KindRing
	KindSphere
	KindTorus
	KindLattice
	KindIsosurface
	KindSolid
)

var kindNames = [...]string{
	KindQuad:       "quad",
	KindRing:       "ring",
	KindSphere:     "sphere",
	KindTorus:      "torus",
	KindLattice:    "lattice",
	KindIsosurface: "isosurface",
	KindSolid:      "solid",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Entry is one named mesh in a scene.
type Entry struct {
	Name      string
	Kind      Kind
	Generator Generator
	Line      int // source line of the defining form, 0 if unknown
}

// Scene is an ordered collection of entries.
type Scene struct {
	Entries   []*Entry
	NameIndex map[string]int // name -> position of the first entry with that name
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{NameIndex: make(map[string]int)}
}

// Add appends an entry. Duplicate names are allowed here and reported by
// Validate; Lookup keeps returning the first one.
func (s *Scene) Add(e *Entry) {
	if _, ok := s.NameIndex[e.Name]; !ok && e.Name != "" {
		s.NameIndex[e.Name] = len(s.Entries)
	}
	s.Entries = append(s.Entries, e)
}

// Lookup returns the entry with the given name, or nil.
func (s *Scene) Lookup(name string) *Entry {
	i, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Entries[i]
}

// Len returns the number of entries.
func (s *Scene) Len() int {
	return len(s.Entries)
}

// Names returns the entry names in scene order.
func (s *Scene) Names() []string {
	names := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		names[i] = e.Name
	}
	return names
}

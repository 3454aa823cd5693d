// Package lattice builds the regular 3D point lattice that seeds isosurface
// extraction. The lattice has no connectivity; consumers index it per cube
// corner using the fixed enumeration documented on Generate.
package lattice

import (
	"fmt"

	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/ungerik/go3d/vec3"
)

// Field is a scalar density sampled at lattice points.
type Field interface {
	Density(p vec3.T) float32
}

// FieldFunc adapts a plain function to Field.
type FieldFunc func(p vec3.T) float32

// Density implements Field.
func (f FieldFunc) Density(p vec3.T) float32 { return f(p) }

// maxSize keeps Size^3 addressable by uint32 indices.
const maxSize = 1625 // 1625^3 < 2^32

// Generate returns cubeSize^3 points evenly spaced over [-1, 1) on each axis
// with step 2/cubeSize.
//
// Enumeration is x outermost, then y, then z innermost, so the point at
// lattice coordinate (x, y, z) has flat index (x*cubeSize+y)*cubeSize+z.
func Generate(cubeSize int) ([]vec3.T, error) {
	if err := checkSize(cubeSize); err != nil {
		return nil, err
	}
	n := cubeSize
	step := 2 / float32(n)
	points := make([]vec3.T, 0, n*n*n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				points = append(points, vec3.T{
					coord(x, step),
					coord(y, step),
					coord(z, step),
				})
			}
		}
	}
	return points, nil
}

// coord maps an integer sample to [-1, 1). It is computed from the index
// rather than accumulated so the count never drifts with rounding.
func coord(k int, step float32) float32 {
	return -1 + float32(k)*step
}

func checkSize(cubeSize int) error {
	if cubeSize < 1 || cubeSize > maxSize {
		return fmt.Errorf("lattice: %w: cubeSize = %d, need 1..%d", mesh.ErrInvalidResolution, cubeSize, maxSize)
	}
	return nil
}

// Lattice is a generated point cube plus an optional world-space placement.
type Lattice struct {
	size   int
	points []vec3.T

	center     vec3.T
	halfExtent float32
}

// New generates a lattice of cubeSize^3 points in canonical [-1, 1) space.
func New(cubeSize int) (*Lattice, error) {
	pts, err := Generate(cubeSize)
	if err != nil {
		return nil, err
	}
	return &Lattice{size: cubeSize, points: pts, halfExtent: 1}, nil
}

// Size returns the number of samples along each axis.
func (l *Lattice) Size() int { return l.size }

// Len returns the total number of points.
func (l *Lattice) Len() int { return len(l.points) }

// Points returns the canonical points. The slice is shared; do not modify.
func (l *Lattice) Points() []vec3.T { return l.points }

// Index returns the flat index of lattice coordinate (x, y, z).
func (l *Lattice) Index(x, y, z int) int {
	return (x*l.size+y)*l.size + z
}

// At returns the canonical point at lattice coordinate (x, y, z).
func (l *Lattice) At(x, y, z int) vec3.T {
	return l.points[l.Index(x, y, z)]
}

// Transform places the canonical cube so that [-1, 1) maps to
// center ± halfExtent. It returns the receiver for chaining.
func (l *Lattice) Transform(center vec3.T, halfExtent float32) *Lattice {
	l.center = center
	l.halfExtent = halfExtent
	return l
}

// World maps a canonical point into the placed cube.
func (l *Lattice) World(p vec3.T) vec3.T {
	return vec3.T{
		l.center[0] + p[0]*l.halfExtent,
		l.center[1] + p[1]*l.halfExtent,
		l.center[2] + p[2]*l.halfExtent,
	}
}

// Spacing returns the world-space distance between neighbouring samples.
func (l *Lattice) Spacing() float32 {
	return 2 * l.halfExtent / float32(l.size)
}

// Sample evaluates f at every world-space point, in lattice order.
func (l *Lattice) Sample(f Field) []float32 {
	out := make([]float32, len(l.points))
	for i, p := range l.points {
		out[i] = f.Density(l.World(p))
	}
	return out
}

// Buffer returns the world-space points as a position-only mesh buffer
// with no indices, ready for a point-consuming geometry stage.
func (l *Lattice) Buffer() *mesh.Buffer {
	pos := make([]vec3.T, len(l.points))
	for i, p := range l.points {
		pos[i] = l.World(p)
	}
	return &mesh.Buffer{Positions: pos}
}

// CellCount returns the number of cubes between adjacent samples.
func (l *Lattice) CellCount() int {
	c := l.size - 1
	return c * c * c
}

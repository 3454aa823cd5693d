// Package kernel defines the solid modeling interface behind the isosurface
// generators. A Solid is a density field: positive inside, negative outside,
// zero on the surface, so it can be sampled straight onto a lattice.
package kernel

import (
	"errors"

	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/ungerik/go3d/vec3"
)

// ErrForeignSolid is returned when a Solid created by one kernel is handed
// to another.
var ErrForeignSolid = errors.New("kernel: solid belongs to a different kernel")

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Density is the negated signed distance at p.
	Density(p vec3.T) float32
}

// Kernel creates and combines solids.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) (Solid, error)
	Rotate(s Solid, x, y, z float64) (Solid, error) // Euler angles in degrees

	// ToMesh tessellates s with the kernel's own mesher on a grid of
	// cells along the longest bounding box axis.
	ToMesh(s Solid, cells int) (*mesh.Buffer, error)
}

// Bounds returns the center and the half extent of the smallest cube that
// contains the bounding box of s, grown by margin on every side.
func Bounds(s Solid, margin float64) (center vec3.T, halfExtent float32) {
	min, max := s.BoundingBox()
	var half float64
	for i := 0; i < 3; i++ {
		center[i] = float32((min[i] + max[i]) / 2)
		if h := (max[i] - min[i]) / 2; h > half {
			half = h
		}
	}
	return center, float32(half + margin)
}

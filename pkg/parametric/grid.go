// Package parametric tessellates 2D parametric surfaces sampled on a
// regular UV grid. Each shape owns its vertex flattening order; the index
// pass of a shape always goes through the same index function as its
// vertex pass.
package parametric

import (
	"fmt"
	"math"

	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/chewxy/math32"
)

// Shape is a parameter set that can build its own mesh.
type Shape interface {
	Generate() (*mesh.Buffer, error)
}

// Compile-time interface checks.
var (
	_ Shape = QuadParams{}
	_ Shape = RingParams{}
	_ Shape = SphereParams{}
	_ Shape = TorusParams{}
)

// minGridResolution is the smallest per-axis sample count that yields at
// least one cell and keeps every (res-1) divisor non-zero.
const minGridResolution = 2

// checkGrid validates a pair of grid resolutions and makes sure the vertex
// count can be addressed with uint32 indices.
func checkGrid(nameU string, resU int, nameV string, resV int) error {
	for _, r := range []struct {
		name string
		val  int
	}{{nameU, resU}, {nameV, resV}} {
		if r.val < minGridResolution {
			return fmt.Errorf("%w: %s = %d, need >= %d", mesh.ErrInvalidResolution, r.name, r.val, minGridResolution)
		}
	}
	if uint64(resU)*uint64(resV) > math.MaxUint32 {
		return fmt.Errorf("%w: %s x %s = %d x %d vertices overflows uint32 indices",
			mesh.ErrInvalidResolution, nameU, nameV, resU, resV)
	}
	return nil
}

// checkFinite rejects NaN and infinite size parameters.
func checkFinite(name string, v float32) error {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return fmt.Errorf("%w: %s = %v", mesh.ErrInvalidDimension, name, v)
	}
	return nil
}

// cellTriangles is the index-buffer length of a grid with resU x resV samples.
func cellTriangles(resU, resV int) int {
	return 2 * (resU - 1) * (resV - 1)
}

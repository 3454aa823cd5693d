// Package sdfx implements kernel.Kernel on top of the signed distance
// functions of github.com/deadsy/sdfx.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/meshgen/pkg/kernel"
	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ungerik/go3d/vec3"
)

var _ kernel.Kernel = (*Kernel)(nil)

// solid wraps an sdf.SDF3.
type solid struct {
	s sdf.SDF3
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Density negates the SDF so the inside is positive.
func (s *solid) Density(p vec3.T) float32 {
	return -float32(s.s.Evaluate(v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}))
}

// Kernel implements kernel.Kernel using sdfx.
type Kernel struct{}

// New returns a new Kernel.
func New() *Kernel {
	return &Kernel{}
}

func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	w, ok := s.(*solid)
	if !ok || w == nil {
		return nil, fmt.Errorf("sdfx: %w: %T", kernel.ErrForeignSolid, s)
	}
	return w.s, nil
}

func unwrap2(a, b kernel.Solid) (sdf.SDF3, sdf.SDF3, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &solid{s: s}
}

// Box creates a box with the given edge lengths, centered on the origin.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	return wrap(s), nil
}

// Sphere creates a sphere centered on the origin.
func (k *Kernel) Sphere(radius float64) (kernel.Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return wrap(s), nil
}

// Cylinder creates a Z-aligned cylinder centered on the origin.
func (k *Kernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return wrap(s), nil
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := unwrap2(a, b)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Union3D(sa, sb)), nil
}

// Difference returns a - b.
func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := unwrap2(a, b)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Difference3D(sa, sb)), nil
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := unwrap2(a, b)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Intersect3D(sa, sb)), nil
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Transform3D(ss, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))), nil
}

// Rotate rotates a solid by Euler angles (degrees), X first, then Y, then Z.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(ss, m)), nil
}

// ToMesh runs the sdfx uniform marching cubes renderer. The output is a
// triangle soup with flat face normals.
func (k *Kernel) ToMesh(s kernel.Solid, cells int) (*mesh.Buffer, error) {
	if cells < 1 {
		return nil, fmt.Errorf("sdfx: %w: cells = %d, need >= 1", mesh.ErrInvalidResolution, cells)
	}
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	triangles := render.ToTriangles(ss, render.NewMarchingCubesUniform(cells))

	buf := &mesh.Buffer{
		Positions: make([]vec3.T, 0, len(triangles)*3),
		Normals:   make([]vec3.T, 0, len(triangles)*3),
		Indices:   make([]mesh.Tri, 0, len(triangles)),
	}
	for i, tri := range triangles {
		n := tri.Normal()
		normal := vec3.T{float32(n.X), float32(n.Y), float32(n.Z)}
		for j := 0; j < 3; j++ {
			v := tri[j]
			buf.Positions = append(buf.Positions, vec3.T{float32(v.X), float32(v.Y), float32(v.Z)})
			buf.Normals = append(buf.Normals, normal)
		}
		base := uint32(i * 3)
		buf.Indices = append(buf.Indices, mesh.Tri{base, base + 1, base + 2})
	}
	return buf, nil
}

package parametric

import (
	"fmt"

	"github.com/chazu/meshgen/pkg/mesh"
)

// SphereParams describes a UV sphere. Generation is not implemented.
type SphereParams struct {
	Radius   float32 `json:"radius"`
	ResTheta int     `json:"resTheta"`
	ResPhi   int     `json:"resPhi"`
}

// Generate implements Shape.
func (p SphereParams) Generate() (*mesh.Buffer, error) {
	return Sphere(p.ResTheta, p.ResPhi, p.Radius)
}

// Sphere always fails with mesh.ErrNotImplemented. It never returns an empty
// buffer, which would be indistinguishable from a valid zero-triangle mesh.
func Sphere(resTheta, resPhi int, radius float32) (*mesh.Buffer, error) {
	return nil, fmt.Errorf("parametric: sphere (%dx%d, r=%v): %w", resTheta, resPhi, radius, mesh.ErrNotImplemented)
}

// TorusParams describes a torus with ring radius MajorRadius and tube
// radius MinorRadius. Generation is not implemented.
type TorusParams struct {
	MajorRadius float32 `json:"majorRadius"`
	MinorRadius float32 `json:"minorRadius"`
	ResTheta    int     `json:"resTheta"`
	ResPhi      int     `json:"resPhi"`
}

// Generate implements Shape.
func (p TorusParams) Generate() (*mesh.Buffer, error) {
	return Torus(p.ResTheta, p.ResPhi, p.MajorRadius, p.MinorRadius)
}

// Torus always fails with mesh.ErrNotImplemented.
func Torus(resTheta, resPhi int, majorRadius, minorRadius float32) (*mesh.Buffer, error) {
	return nil, fmt.Errorf("parametric: torus (%dx%d, R=%v, r=%v): %w", resTheta, resPhi, majorRadius, minorRadius, mesh.ErrNotImplemented)
}

package parametric

import (
	"fmt"

	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/chewxy/math32"
	"github.com/ungerik/go3d/vec3"
)

// RingParams describes an annulus in the z = 0 plane.
type RingParams struct {
	InnerRadius float32 `json:"innerRadius"`
	OuterRadius float32 `json:"outerRadius"`
	ResRadius   int     `json:"resRadius"`
	ResTheta    int     `json:"resTheta"`
}

// Generate implements Shape.
func (p RingParams) Generate() (*mesh.Buffer, error) {
	return Ring(p.ResRadius, p.ResTheta, p.InnerRadius, p.OuterRadius)
}

// Ring tessellates an annulus between innerRadius and outerRadius with
// resRadius radial and resTheta angular samples. The first and last angular
// rows both sit on theta = 0 and theta = 2π, so the seam is duplicated rather
// than shared; texture coordinates run 0..1 across it.
//
// Every vertex carries a full frame: the tangent points radially outward,
// the binormal along increasing theta and the normal (tangent × binormal)
// along +z. Triangles wind counter-clockwise seen from +z.
func Ring(resRadius, resTheta int, innerRadius, outerRadius float32) (*mesh.Buffer, error) {
	if err := checkGrid("resRadius", resRadius, "resTheta", resTheta); err != nil {
		return nil, fmt.Errorf("parametric: ring: %w", err)
	}
	if err := checkFinite("innerRadius", innerRadius); err != nil {
		return nil, fmt.Errorf("parametric: ring: %w", err)
	}
	if err := checkFinite("outerRadius", outerRadius); err != nil {
		return nil, fmt.Errorf("parametric: ring: %w", err)
	}
	if innerRadius > outerRadius {
		return nil, fmt.Errorf("parametric: ring: %w: need innerRadius (%v) <= outerRadius (%v)",
			mesh.ErrInvalidDimension, innerRadius, outerRadius)
	}

	dTheta := 2 * math32.Pi / (float32(resTheta) - 1)
	dRadius := (outerRadius - innerRadius) / (float32(resRadius) - 1)

	// Angle-major: one angular row holds resRadius consecutive vertices.
	index := func(i, j int) uint32 {
		return uint32(i*resRadius + j)
	}

	n := resRadius * resTheta
	buf := &mesh.Buffer{
		Positions: make([]vec3.T, n),
		Normals:   make([]vec3.T, n),
		Tangents:  make([]vec3.T, n),
		Binormals: make([]vec3.T, n),
		TexCoords: make([]vec3.T, n),
		Indices:   make([]mesh.Tri, 0, cellTriangles(resTheta, resRadius)),
	}

	for i := 0; i < resTheta; i++ {
		sin, cos := math32.Sincos(float32(i) * dTheta)

		tangent := vec3.T{cos, sin, 0}
		tangent.Normalize()
		binormal := vec3.T{-sin, cos, 0}
		binormal.Normalize()
		normal := vec3.Cross(&tangent, &binormal)

		v := float32(i) / (float32(resTheta) - 1)
		for j := 0; j < resRadius; j++ {
			r := innerRadius + float32(j)*dRadius
			k := index(i, j)
			buf.Positions[k] = vec3.T{r * cos, r * sin, 0}
			buf.Tangents[k] = tangent
			buf.Binormals[k] = binormal
			buf.Normals[k] = normal
			buf.TexCoords[k] = vec3.T{float32(j) / (float32(resRadius) - 1), v, 0}
		}
	}

	for i := 0; i < resTheta-1; i++ {
		for j := 0; j < resRadius-1; j++ {
			base := index(i, j)
			next := index(i+1, j) // base + resRadius
			buf.Indices = append(buf.Indices,
				mesh.Tri{base, base + 1, next + 1},
				mesh.Tri{base, next + 1, next},
			)
		}
	}

	return buf, nil
}

package parametric

import (
	"fmt"

	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/ungerik/go3d/vec3"
)

// QuadParams describes a flat rectangular grid in the z = 0 plane.
type QuadParams struct {
	Width     float32 `json:"width"`
	Height    float32 `json:"height"`
	ResWidth  int     `json:"resWidth"`
	ResHeight int     `json:"resHeight"`
}

// Generate implements Shape.
func (p QuadParams) Generate() (*mesh.Buffer, error) {
	return Quad(p.Width, p.Height, p.ResWidth, p.ResHeight)
}

// Quad tessellates a width x height rectangle with resWidth x resHeight
// samples. Only positions are produced.
//
// Sample (x, y) sits at (x*width/resWidth, y*height/resHeight, 0): the
// divisor is the resolution, so the far edges at width and height are never
// reached.
func Quad(width, height float32, resWidth, resHeight int) (*mesh.Buffer, error) {
	if err := checkGrid("resWidth", resWidth, "resHeight", resHeight); err != nil {
		return nil, fmt.Errorf("parametric: quad: %w", err)
	}
	for _, d := range []struct {
		name string
		val  float32
	}{{"width", width}, {"height", height}} {
		if err := checkFinite(d.name, d.val); err != nil {
			return nil, fmt.Errorf("parametric: quad: %w", err)
		}
		if d.val <= 0 {
			return nil, fmt.Errorf("parametric: quad: %w: %s = %v, need > 0", mesh.ErrInvalidDimension, d.name, d.val)
		}
	}

	// x-major: the x loop is outermost in both passes.
	index := func(x, y int) uint32 {
		return uint32(x*resHeight + y)
	}

	positions := make([]vec3.T, resWidth*resHeight)
	for x := 0; x < resWidth; x++ {
		for y := 0; y < resHeight; y++ {
			positions[index(x, y)] = vec3.T{
				float32(x) * width / float32(resWidth),
				float32(y) * height / float32(resHeight),
				0,
			}
		}
	}

	indices := make([]mesh.Tri, 0, cellTriangles(resWidth, resHeight))
	for x := 0; x < resWidth-1; x++ {
		for y := 0; y < resHeight-1; y++ {
			indices = append(indices,
				mesh.Tri{index(x, y), index(x+1, y), index(x+1, y+1)},
				mesh.Tri{index(x+1, y+1), index(x, y+1), index(x, y)},
			)
		}
	}

	return &mesh.Buffer{
		Positions: positions,
		Indices:   indices,
	}, nil
}

// Package mesh defines the output container shared by every generator:
// per-vertex attribute arrays plus triangle index triples. A Buffer is
// built once by a generator and owned by the caller afterwards.
package mesh

import (
	"fmt"

	"github.com/ungerik/go3d/vec3"
)

// Tri is one triangle: three offsets into Buffer.Positions, in winding order.
type Tri [3]uint32

// Buffer is a triangle mesh suitable for rendering.
// Optional attribute arrays are either empty or exactly as long as Positions.
type Buffer struct {
	Positions []vec3.T `json:"positions"`
	Normals   []vec3.T `json:"normals,omitempty"`
	Tangents  []vec3.T `json:"tangents,omitempty"`
	Binormals []vec3.T `json:"binormals,omitempty"`
	TexCoords []vec3.T `json:"texcoords,omitempty"`
	Indices   []Tri    `json:"indices"`
	Name      string   `json:"name,omitempty"` // set by the scene layer
}

// VertexCount returns the number of vertices.
func (b *Buffer) VertexCount() int {
	return len(b.Positions)
}

// TriangleCount returns the number of triangles.
func (b *Buffer) TriangleCount() int {
	return len(b.Indices)
}

// IsEmpty returns true if the mesh has no geometry.
func (b *Buffer) IsEmpty() bool {
	return len(b.Positions) == 0
}

// Attribute returns the array stored for a, or nil for an unknown attribute.
func (b *Buffer) Attribute(a Attribute) []vec3.T {
	switch a {
	case AttrPosition:
		return b.Positions
	case AttrNormal:
		return b.Normals
	case AttrTangent:
		return b.Tangents
	case AttrBinormal:
		return b.Binormals
	case AttrTexCoord:
		return b.TexCoords
	}
	return nil
}

// Attributes lists the populated attribute arrays in hand-off order.
func (b *Buffer) Attributes() []Attribute {
	var attrs []Attribute
	for _, a := range allAttributes {
		if len(b.Attribute(a)) > 0 {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// Validate checks the buffer invariants: every optional attribute array is
// empty or parallel to Positions, and every index addresses a vertex.
func (b *Buffer) Validate() error {
	n := len(b.Positions)
	for _, a := range allAttributes[1:] {
		if got := len(b.Attribute(a)); got != 0 && got != n {
			return fmt.Errorf("mesh: %s has %d entries, want 0 or %d", a, got, n)
		}
	}
	for i, t := range b.Indices {
		for _, idx := range t {
			if int64(idx) >= int64(n) {
				return fmt.Errorf("mesh: triangle %d index %d out of range [0,%d)", i, idx, n)
			}
		}
	}
	return nil
}

// Flat returns an attribute array as x0,y0,z0,x1,... for buffer upload.
func Flat(vs []vec3.T) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

// FlatIndices returns the index triples as a single uint32 slice.
func (b *Buffer) FlatIndices() []uint32 {
	out := make([]uint32, 0, len(b.Indices)*3)
	for _, t := range b.Indices {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

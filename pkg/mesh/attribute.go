package mesh

import (
	"fmt"

	"github.com/ungerik/go3d/vec3"
)

// Attribute is the semantic tag of a per-vertex array.
type Attribute int

const (
	AttrPosition Attribute = iota
	AttrNormal
	AttrTangent
	AttrBinormal
	AttrTexCoord
)

var allAttributes = []Attribute{AttrPosition, AttrNormal, AttrTangent, AttrBinormal, AttrTexCoord}

func (a Attribute) String() string {
	switch a {
	case AttrPosition:
		return "position"
	case AttrNormal:
		return "normal"
	case AttrTangent:
		return "tangent"
	case AttrBinormal:
		return "binormal"
	case AttrTexCoord:
		return "texcoord"
	default:
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
}

// Sink receives a finished buffer. Physical layout (interleaved or separate
// arrays, byte offsets) is the sink's business; it only sees logical arrays.
type Sink interface {
	SetAttribute(a Attribute, data []vec3.T) error
	SetIndices(tris []Tri) error
}

// Emit hands every populated attribute to s in position, normal, tangent,
// binormal, texcoord order, then the index triples. The buffer must not be
// modified by the caller after a successful Emit if s retains the slices.
func (b *Buffer) Emit(s Sink) error {
	if err := b.Validate(); err != nil {
		return err
	}
	for _, a := range b.Attributes() {
		if err := s.SetAttribute(a, b.Attribute(a)); err != nil {
			return fmt.Errorf("mesh: emit %s: %w", a, err)
		}
	}
	if err := s.SetIndices(b.Indices); err != nil {
		return fmt.Errorf("mesh: emit indices: %w", err)
	}
	return nil
}

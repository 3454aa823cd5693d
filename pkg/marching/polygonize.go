package marching

import (
	"errors"
	"fmt"

	"github.com/chazu/meshgen/pkg/lattice"
	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/chewxy/math32"
	"github.com/ungerik/go3d/vec3"
)

// Polygonize extracts the iso surface of density over the cells of l.
// density must hold one sample per lattice point in lattice order (as
// returned by Lattice.Sample).
//
// Crossing points are shared between neighbouring cells, so a surface that
// stays inside the lattice comes out closed. Triangles face toward
// decreasing density; normals are the normalized negative density gradient.
func Polygonize(l *lattice.Lattice, density []float32, iso float32) (*mesh.Buffer, error) {
	if l == nil {
		return nil, errors.New("marching: nil lattice")
	}
	if len(density) != l.Len() {
		return nil, fmt.Errorf("marching: %d density samples for %d lattice points", len(density), l.Len())
	}

	p := &polygonizer{
		l:       l,
		density: density,
		iso:     iso,
		grad:    gradients(l, density),
		shared:  make(map[uint64]uint32),
		buf:     &mesh.Buffer{},
	}

	n := l.Size()
	for x := 0; x < n-1; x++ {
		for y := 0; y < n-1; y++ {
			for z := 0; z < n-1; z++ {
				p.cell(x, y, z)
			}
		}
	}
	return p.buf, nil
}

type polygonizer struct {
	l       *lattice.Lattice
	density []float32
	iso     float32
	grad    []vec3.T

	// shared maps a lattice edge key to the vertex placed on it.
	shared map[uint64]uint32
	buf    *mesh.Buffer
}

func (p *polygonizer) cell(x, y, z int) {
	var corners [8]int
	var mask uint8
	for c, off := range CornerOffsets {
		corners[c] = p.l.Index(x+off[0], y+off[1], z+off[2])
		if p.density[corners[c]] > p.iso {
			mask |= 1 << c
		}
	}
	if mask == 0 || mask == 0xff {
		return
	}

	for _, tri := range Triangles(mask) {
		a := p.vertex(corners, tri[0])
		b := p.vertex(corners, tri[1])
		c := p.vertex(corners, tri[2])
		// Table winding faces increasing density; flip it.
		p.buf.Indices = append(p.buf.Indices, mesh.Tri{a, c, b})
	}
}

// vertex returns the shared vertex on cube edge e of the cell whose corner
// lattice indices are corners, creating it on first use.
func (p *polygonizer) vertex(corners [8]int, e int) uint32 {
	i0, i1 := corners[EdgeCorners[e][0]], corners[EdgeCorners[e][1]]
	if i1 < i0 {
		i0, i1 = i1, i0
	}
	key := uint64(i0)<<32 | uint64(i1)
	if v, ok := p.shared[key]; ok {
		return v
	}

	d0, d1 := p.density[i0], p.density[i1]
	t := float32(0.5)
	if diff := d1 - d0; math32.Abs(diff) > 1e-12 {
		t = (p.iso - d0) / diff
	}

	pts := p.l.Points()
	w0, w1 := p.l.World(pts[i0]), p.l.World(pts[i1])
	pos := vec3.Interpolate(&w0, &w1, t)
	g := vec3.Interpolate(&p.grad[i0], &p.grad[i1], t)
	normal := g.Inverted()
	normal.Normalize()

	v := uint32(len(p.buf.Positions))
	p.buf.Positions = append(p.buf.Positions, pos)
	p.buf.Normals = append(p.buf.Normals, normal)
	p.shared[key] = v
	return v
}

// gradients estimates the density gradient at every lattice point with
// central differences, one-sided at the lattice border.
func gradients(l *lattice.Lattice, density []float32) []vec3.T {
	n := l.Size()
	h := l.Spacing()
	out := make([]vec3.T, len(density))
	if n < 2 {
		return out
	}
	diff := func(lo, hi int, steps int) float32 {
		return (density[hi] - density[lo]) / (float32(steps) * h)
	}
	span := func(k int) (lo, hi, steps int) {
		lo, hi = k-1, k+1
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		return lo, hi, hi - lo
	}
	for x := 0; x < n; x++ {
		xl, xh, xs := span(x)
		for y := 0; y < n; y++ {
			yl, yh, ys := span(y)
			for z := 0; z < n; z++ {
				zl, zh, zs := span(z)
				out[l.Index(x, y, z)] = vec3.T{
					diff(l.Index(xl, y, z), l.Index(xh, y, z), xs),
					diff(l.Index(x, yl, z), l.Index(x, yh, z), ys),
					diff(l.Index(x, y, zl), l.Index(x, y, zh), zs),
				}
			}
		}
	}
	return out
}

// Isosurface extracts the surface density == Iso of Field sampled on a
// Size^3 lattice spanning Center ± HalfExtent.
type Isosurface struct {
	Field      lattice.Field
	Size       int
	Iso        float32
	Center     vec3.T
	HalfExtent float32
}

// Generate samples the field and polygonizes it.
func (s Isosurface) Generate() (*mesh.Buffer, error) {
	if s.Field == nil {
		return nil, errors.New("marching: isosurface has no field")
	}
	if !(s.HalfExtent > 0) || math32.IsInf(s.HalfExtent, 0) {
		return nil, fmt.Errorf("marching: %w: halfExtent = %v, need > 0", mesh.ErrInvalidDimension, s.HalfExtent)
	}
	l, err := lattice.New(s.Size)
	if err != nil {
		return nil, fmt.Errorf("marching: %w", err)
	}
	l.Transform(s.Center, s.HalfExtent)
	return Polygonize(l, l.Sample(s.Field), s.Iso)
}

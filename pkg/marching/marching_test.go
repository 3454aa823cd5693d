package marching

import (
	"math/bits"
	"testing"

	"github.com/chazu/meshgen/pkg/lattice"
	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ungerik/go3d/vec3"
)

func TestEdgeTableTrivialRows(t *testing.T) {
	for _, mask := range []uint8{0x00, 0xff} {
		row := EdgeTableRow(mask)
		for i, v := range row {
			assert.Equal(t, Sentinel, v, "mask %#x entry %d", mask, i)
		}
		assert.Empty(t, Triangles(mask))
		assert.Zero(t, TriangleCount(mask))
	}
}

func TestEdgeTableRowShape(t *testing.T) {
	for m := 0; m < 256; m++ {
		row := EdgeTableRow(uint8(m))
		n := 0
		for n < RowLen && row[n] != Sentinel {
			assert.GreaterOrEqual(t, row[n], 0, "mask %#x", m)
			assert.Less(t, row[n], NumEdges, "mask %#x", m)
			n++
		}
		assert.Zero(t, n%3, "mask %#x has %d edge entries", m, n)
		assert.LessOrEqual(t, n, 15, "mask %#x", m)
		for ; n < RowLen; n++ {
			assert.Equal(t, Sentinel, row[n], "mask %#x tail entry %d", m, n)
		}
	}
}

// The edges a row references are exactly the edges whose corners straddle
// the mask.
func TestEdgeTableUsesCutEdges(t *testing.T) {
	for m := 0; m < 256; m++ {
		want := map[int]bool{}
		for e, c := range EdgeCorners {
			in0 := m&(1<<c[0]) != 0
			in1 := m&(1<<c[1]) != 0
			if in0 != in1 {
				want[e] = true
			}
		}
		got := map[int]bool{}
		for _, tri := range Triangles(uint8(m)) {
			for _, e := range tri {
				got[e] = true
			}
		}
		assert.Equal(t, want, got, "mask %#x", m)
	}
}

func TestEdgeTableMixedRowsEmit(t *testing.T) {
	for m := 0; m < 256; m++ {
		pop := bits.OnesCount8(uint8(m))
		if pop == 0 || pop == 8 {
			continue
		}
		assert.NotZero(t, TriangleCount(uint8(m)), "mask %#x", m)
	}
}

func TestEdgeTableRowIsCopy(t *testing.T) {
	row := EdgeTableRow(1)
	orig := row[0]
	row[0] = 99
	assert.Equal(t, orig, EdgeTableRow(1)[0])

	flat := Flat32()
	require.Len(t, flat, 256*RowLen)
	flat[RowLen] = 99
	assert.Equal(t, int32(EdgeTableRow(1)[0]), Flat32()[RowLen])
}

func TestFlat32Layout(t *testing.T) {
	flat := Flat32()
	table := EdgeTable()
	for m := 0; m < 256; m++ {
		for i := 0; i < RowLen; i++ {
			require.Equal(t, int32(table[m][i]), flat[m*RowLen+i])
		}
	}
}

func sphereField(r float32) lattice.Field {
	return lattice.FieldFunc(func(p vec3.T) float32 {
		return r - p.Length()
	})
}

func TestPolygonizeSphereIsClosed(t *testing.T) {
	buf, err := Isosurface{
		Field:      sphereField(0.63),
		Size:       24,
		HalfExtent: 1,
	}.Generate()
	require.NoError(t, err)
	require.NoError(t, buf.Validate())
	require.NotZero(t, buf.TriangleCount())

	// Every directed edge must be matched by its reverse exactly once.
	type edge struct{ a, b uint32 }
	directed := map[edge]int{}
	for _, tri := range buf.Indices {
		for k := 0; k < 3; k++ {
			directed[edge{tri[k], tri[(k+1)%3]}]++
		}
	}
	for e, n := range directed {
		assert.Equal(t, 1, n, "edge %v used %d times", e, n)
		assert.Equal(t, 1, directed[edge{e.b, e.a}], "edge %v has no twin", e)
	}

	// Closed genus-0 surface.
	v := buf.VertexCount()
	f := buf.TriangleCount()
	eCount := len(directed) / 2
	assert.Equal(t, 2, v-eCount+f)
}

func TestPolygonizeSphereFacesOutward(t *testing.T) {
	buf, err := Isosurface{
		Field:      sphereField(0.5),
		Size:       20,
		HalfExtent: 1,
	}.Generate()
	require.NoError(t, err)
	require.Len(t, buf.Normals, buf.VertexCount())

	for i, p := range buf.Positions {
		assert.InDelta(t, 0.5, p.Length(), 0.05, "vertex %d", i)
		n := buf.Normals[i]
		assert.InDelta(t, 1, n.Length(), 1e-4, "normal %d", i)
		assert.Greater(t, vec3.Dot(&n, &p), float32(0), "normal %d points inward", i)
	}

	var inward int
	for _, tri := range buf.Indices {
		a, b, c := buf.Positions[tri[0]], buf.Positions[tri[1]], buf.Positions[tri[2]]
		ab, ac := vec3.Sub(&b, &a), vec3.Sub(&c, &a)
		n := vec3.Cross(&ab, &ac)
		centroid := vec3.Add(&a, &b)
		centroid = vec3.Add(&centroid, &c)
		if vec3.Dot(&n, &centroid) < 0 {
			inward++
		}
	}
	assert.Zero(t, inward)
}

func TestPolygonizeEmptyField(t *testing.T) {
	l, err := lattice.New(8)
	require.NoError(t, err)

	for _, d := range []float32{-1, 1} {
		density := make([]float32, l.Len())
		for i := range density {
			density[i] = d
		}
		buf, err := Polygonize(l, density, 0)
		require.NoError(t, err)
		assert.True(t, buf.IsEmpty())
	}
}

func TestPolygonizeSingleCorner(t *testing.T) {
	l, err := lattice.New(2)
	require.NoError(t, err)
	density := make([]float32, l.Len())
	for i := range density {
		density[i] = -1
	}
	density[l.Index(0, 0, 0)] = 1

	buf, err := Polygonize(l, density, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, buf.VertexCount())
	assert.Equal(t, 1, buf.TriangleCount())

	// Each crossing sits halfway along its edge.
	origin := l.World(l.At(0, 0, 0))
	half := l.Spacing() / 2
	for _, p := range buf.Positions {
		d := vec3.Sub(&p, &origin)
		assert.InDelta(t, half, d.Length(), 1e-5)
	}
}

func TestPolygonizeErrors(t *testing.T) {
	l, err := lattice.New(4)
	require.NoError(t, err)

	_, err = Polygonize(nil, nil, 0)
	assert.Error(t, err)

	_, err = Polygonize(l, make([]float32, 3), 0)
	assert.Error(t, err)

	_, err = Isosurface{Size: 4, HalfExtent: 1}.Generate()
	assert.Error(t, err)

	_, err = Isosurface{Field: sphereField(1), Size: 4}.Generate()
	assert.ErrorIs(t, err, mesh.ErrInvalidDimension)

	_, err = Isosurface{Field: sphereField(1), Size: 0, HalfExtent: 1}.Generate()
	assert.ErrorIs(t, err, mesh.ErrInvalidResolution)
}

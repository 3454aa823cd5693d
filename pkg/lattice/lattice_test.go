package lattice

import (
	"testing"

	"github.com/chazu/meshgen/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ungerik/go3d/vec3"
)

func TestGenerateCount(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 10, 16} {
		pts, err := Generate(n)
		require.NoError(t, err)
		assert.Len(t, pts, n*n*n, "cubeSize %d", n)
		for i, p := range pts {
			for axis := 0; axis < 3; axis++ {
				assert.GreaterOrEqual(t, p[axis], float32(-1), "point %d axis %d", i, axis)
				assert.Less(t, p[axis], float32(1), "point %d axis %d", i, axis)
			}
		}
	}
}

func TestGenerateOrder(t *testing.T) {
	const n = 4
	pts, err := Generate(n)
	require.NoError(t, err)

	// z varies fastest, x slowest.
	assert.Equal(t, vec3.T{-1, -1, -1}, pts[0])
	assert.Equal(t, vec3.T{-1, -1, -0.5}, pts[1])
	assert.Equal(t, vec3.T{-1, -0.5, -1}, pts[n])
	assert.Equal(t, vec3.T{-0.5, -1, -1}, pts[n*n])
	assert.Equal(t, vec3.T{0.5, 0.5, 0.5}, pts[n*n*n-1])
}

func TestGenerateSingle(t *testing.T) {
	pts, err := Generate(1)
	require.NoError(t, err)
	assert.Equal(t, []vec3.T{{-1, -1, -1}}, pts)
}

func TestGenerateErrors(t *testing.T) {
	for _, n := range []int{0, -1, maxSize + 1} {
		pts, err := Generate(n)
		assert.ErrorIs(t, err, mesh.ErrInvalidResolution, "cubeSize %d", n)
		assert.Nil(t, pts)
	}
	l, err := New(0)
	assert.ErrorIs(t, err, mesh.ErrInvalidResolution)
	assert.Nil(t, l)
}

func TestGenerateIdempotent(t *testing.T) {
	a, err := Generate(9)
	require.NoError(t, err)
	b, err := Generate(9)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLatticeIndexing(t *testing.T) {
	l, err := New(5)
	require.NoError(t, err)
	assert.Equal(t, 5, l.Size())
	assert.Equal(t, 125, l.Len())
	assert.Equal(t, 64, l.CellCount())

	pts := l.Points()
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			for z := 0; z < 5; z++ {
				assert.Equal(t, pts[(x*5+y)*5+z], l.At(x, y, z))
			}
		}
	}
}

func TestLatticeTransformAndSample(t *testing.T) {
	l, err := New(4)
	require.NoError(t, err)
	l.Transform(vec3.T{10, 0, -2}, 4)

	assert.InDelta(t, 2, l.Spacing(), 1e-6)
	assert.Equal(t, vec3.T{6, -4, -6}, l.World(l.At(0, 0, 0)))

	var calls int
	d := l.Sample(FieldFunc(func(p vec3.T) float32 {
		calls++
		return p[0]
	}))
	assert.Equal(t, l.Len(), calls)
	require.Len(t, d, l.Len())
	assert.Equal(t, float32(6), d[l.Index(0, 3, 3)])
	assert.Equal(t, float32(12), d[l.Index(3, 0, 0)])

	b := l.Buffer()
	assert.Len(t, b.Positions, 64)
	assert.Empty(t, b.Indices)
	assert.Empty(t, b.Normals)
	assert.NoError(t, b.Validate())
	assert.Equal(t, vec3.T{12, -2, 0}, b.Positions[l.Index(3, 1, 3)])
}

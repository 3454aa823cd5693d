// Package marching holds the marching-cubes edge table and a CPU isosurface
// extractor that consumes it.
//
// Cube convention: corner i sits at CornerOffsets[i] within a unit cell and
// contributes bit i to the mask; edge e joins EdgeCorners[e][0] and
// EdgeCorners[e][1]. A corner bit is set when its sample lies above the
// iso threshold.
package marching

// CornerOffsets are the cell-local lattice offsets of the eight corners.
var CornerOffsets = [8][3]int{
	{0, 0, 0},
	{1, 0, 0},
	{1, 1, 0},
	{0, 1, 0},
	{0, 0, 1},
	{1, 0, 1},
	{1, 1, 1},
	{0, 1, 1},
}

// EdgeCorners lists the two corners joined by each of the twelve edges.
var EdgeCorners = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// NumEdges is the number of cube edges an edge table entry can name.
const NumEdges = 12

// EdgeTableRow returns a copy of the row for mask. Edge indices come in
// triples (one triangle each) up to the first Sentinel.
func EdgeTableRow(mask uint8) [RowLen]int {
	return edgeTable[mask]
}

// Triangles decodes the row for mask into edge-index triples.
func Triangles(mask uint8) [][3]int {
	row := &edgeTable[mask]
	var tris [][3]int
	for i := 0; i+2 < RowLen && row[i] != Sentinel; i += 3 {
		tris = append(tris, [3]int{row[i], row[i+1], row[i+2]})
	}
	return tris
}

// TriangleCount returns how many triangles the row for mask produces.
func TriangleCount(mask uint8) int {
	row := &edgeTable[mask]
	n := 0
	for n < RowLen && row[n] != Sentinel {
		n++
	}
	return n / 3
}

// EdgeTable returns a copy of the whole table.
func EdgeTable() [256][RowLen]int {
	return edgeTable
}

// Flat32 returns the table as 256*RowLen int32 values, row-major, in the
// layout GPU stages upload as an integer texture or storage buffer.
func Flat32() []int32 {
	out := make([]int32, 0, 256*RowLen)
	for _, row := range edgeTable {
		for _, v := range row {
			out = append(out, int32(v))
		}
	}
	return out
}

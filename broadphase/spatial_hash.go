package broadphase

import "github.com/akmonengine/contact/geometry"

// hashedTable maps cells onto a fixed power-of-two array. Distinct cells
// may share a slot; callers box-test every id they read back.
type hashedTable struct {
	cells    [][]int
	cellMask int
}

func (t *hashedTable) reset(numBoxes int) {
	numCells := nextPowerOfTwo(max(16, 2*numBoxes))
	if len(t.cells) != numCells {
		t.cells = make([][]int, numCells)
	}
	for i := range t.cells {
		t.cells[i] = t.cells[i][:0]
	}
	t.cellMask = numCells - 1
}

// nextPowerOfTwo rounds n up to a power of two.
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

func (t *hashedTable) hashCell(key cellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & t.cellMask
}

func (t *hashedTable) insert(key cellKey, id int) {
	idx := t.hashCell(key)
	t.cells[idx] = append(t.cells[idx], id)
}

func (t *hashedTable) lookup(key cellKey) []int {
	return t.cells[t.hashCell(key)]
}

// SpatialHash is a hashed uniform grid with twice the median box extent as
// cell size.
type SpatialHash struct {
	base
	table hashedTable
}

func NewSpatialHash(opts ...Option) *SpatialHash {
	sh := &SpatialHash{}
	sh.init(MethodSpatialHash.String(), sh, opts)
	return sh
}

func (sh *SpatialHash) selfPairs(boxes []geometry.AABB) [][2]int {
	return gridPairs(sh.workers, gridCellSize(2, boxes), &sh.table, boxes, boxes, true)
}

func (sh *SpatialHash) crossPairs(a, b []geometry.AABB) [][2]int {
	return gridPairs(sh.workers, gridCellSize(2, a, b), &sh.table, a, b, false)
}

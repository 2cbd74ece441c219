package broadphase

import (
	"math"
	"slices"

	"github.com/akmonengine/contact/geometry"
	"github.com/akmonengine/contact/internal/parallel"
)

// maxCellsPerAxis bounds how finely a grid may divide the scene.
const maxCellsPerAxis = 64

type cellKey struct {
	X, Y, Z int
}

// cellTable stores box ids per grid cell.
type cellTable interface {
	reset(numBoxes int)
	insert(key cellKey, id int)
	lookup(key cellKey) []int
}

// medianExtent returns the median of the longest side over all boxes.
func medianExtent(sets ...[]geometry.AABB) float64 {
	var extents []float64
	for _, boxes := range sets {
		for _, box := range boxes {
			extents = append(extents, box.MaxExtent())
		}
	}
	if len(extents) == 0 {
		return 0
	}
	slices.Sort(extents)
	return extents[len(extents)/2]
}

// gridCellSize scales the median box extent, falling back to 1 when it is
// zero or not finite, and never lets the scene span more than
// maxCellsPerAxis cells.
func gridCellSize(scale float64, sets ...[]geometry.AABB) float64 {
	size := scale * medianExtent(sets...)
	if !(size > 0) || math.IsInf(size, 0) {
		size = 1
	}
	var all []geometry.AABB
	for _, boxes := range sets {
		all = append(all, boxes...)
	}
	if floor := geometry.Bounds(all).MaxExtent() / maxCellsPerAxis; size < floor {
		size = floor
	}
	return size
}

func worldToCell(cellSize float64, x, y, z float64) cellKey {
	return cellKey{
		X: int(math.Floor(x / cellSize)),
		Y: int(math.Floor(y / cellSize)),
		Z: int(math.Floor(z / cellSize)),
	}
}

func forEachCell(cellSize float64, box geometry.AABB, fn func(key cellKey)) {
	lo := worldToCell(cellSize, box.Min[0], box.Min[1], box.Min[2])
	hi := worldToCell(cellSize, box.Max[0], box.Max[1], box.Max[2])
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				fn(cellKey{x, y, z})
			}
		}
	}
}

// gridPairs inserts b into table and queries every box of a against it.
// With self set, a and b are the same slice and only pairs i < j are kept.
func gridPairs(workers int, cellSize float64, table cellTable, a, b []geometry.AABB, self bool) [][2]int {
	table.reset(len(b))
	for j, box := range b {
		forEachCell(cellSize, box, func(key cellKey) { table.insert(key, j) })
	}

	workers = parallel.Workers(workers)
	seen := make([][]bool, workers)
	touched := make([][]int, workers)
	return collectPairs(workers, len(a), func(worker, i int, pairs [][2]int) [][2]int {
		if seen[worker] == nil {
			seen[worker] = make([]bool, len(b))
		}
		forEachCell(cellSize, a[i], func(key cellKey) {
			for _, j := range table.lookup(key) {
				if (self && j <= i) || seen[worker][j] {
					continue
				}
				seen[worker][j] = true
				touched[worker] = append(touched[worker], j)
				if a[i].Overlaps(b[j]) {
					pairs = append(pairs, [2]int{i, j})
				}
			}
		})
		for _, j := range touched[worker] {
			seen[worker][j] = false
		}
		touched[worker] = touched[worker][:0]
		return pairs
	})
}

type mapTable map[cellKey][]int

func (t *mapTable) reset(numBoxes int) {
	*t = make(mapTable, numBoxes)
}

func (t *mapTable) insert(key cellKey, id int) {
	(*t)[key] = append((*t)[key], id)
}

func (t *mapTable) lookup(key cellKey) []int {
	return (*t)[key]
}

// HashGrid is a uniform grid stored sparsely, one entry per occupied cell.
// The cell size is the median box extent.
type HashGrid struct {
	base
}

func NewHashGrid(opts ...Option) *HashGrid {
	hg := &HashGrid{}
	hg.init(MethodHashGrid.String(), hg, opts)
	return hg
}

func (hg *HashGrid) selfPairs(boxes []geometry.AABB) [][2]int {
	table := mapTable{}
	return gridPairs(hg.workers, gridCellSize(1, boxes), &table, boxes, boxes, true)
}

func (hg *HashGrid) crossPairs(a, b []geometry.AABB) [][2]int {
	table := mapTable{}
	return gridPairs(hg.workers, gridCellSize(1, a, b), &table, a, b, false)
}

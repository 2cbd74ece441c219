package broadphase

import (
	"cmp"
	"slices"

	"github.com/akmonengine/contact/geometry"
)

type bvhNode struct {
	box         geometry.AABB
	left, right int
	// item is the box id of a leaf, -1 for inner nodes.
	item int
}

// bvhTree is a binary tree of boxes built top-down by splitting at the
// median centroid along the longest axis, one box per leaf.
type bvhTree struct {
	nodes []bvhNode
	root  int
}

func buildBVH(boxes []geometry.AABB) *bvhTree {
	t := &bvhTree{root: -1}
	if len(boxes) == 0 {
		return t
	}
	ids := make([]int, len(boxes))
	for i := range ids {
		ids[i] = i
	}
	t.nodes = make([]bvhNode, 0, 2*len(boxes)-1)
	t.root = t.build(boxes, ids)
	return t
}

func (t *bvhTree) build(boxes []geometry.AABB, ids []int) int {
	if len(ids) == 1 {
		t.nodes = append(t.nodes, bvhNode{box: boxes[ids[0]], left: -1, right: -1, item: ids[0]})
		return len(t.nodes) - 1
	}

	c := boxes[ids[0]].Center()
	centroids := geometry.NewAABB(c, c)
	for _, id := range ids[1:] {
		c := boxes[id].Center()
		centroids = centroids.Union(geometry.NewAABB(c, c))
	}
	extent := centroids.Extent()
	axis := 0
	for k := 1; k < 3; k++ {
		if extent[k] > extent[axis] {
			axis = k
		}
	}

	slices.SortFunc(ids, func(a, b int) int {
		return cmp.Or(cmp.Compare(boxes[a].Center()[axis], boxes[b].Center()[axis]), cmp.Compare(a, b))
	})
	mid := len(ids) / 2
	left := t.build(boxes, ids[:mid])
	right := t.build(boxes, ids[mid:])

	box := t.nodes[left].box.Union(t.nodes[right].box)
	t.nodes = append(t.nodes, bvhNode{box: box, left: left, right: right, item: -1})
	return len(t.nodes) - 1
}

// query calls visit with the id of every box overlapping box.
func (t *bvhTree) query(box geometry.AABB, stack []int, visit func(id int)) []int {
	if t.root < 0 {
		return stack
	}
	stack = append(stack[:0], t.root)
	for len(stack) > 0 {
		n := t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if !n.box.Overlaps(box) {
			continue
		}
		if n.item >= 0 {
			visit(n.item)
			continue
		}
		stack = append(stack, n.left, n.right)
	}
	return stack
}

// BVH queries every box against a bounding volume hierarchy.
type BVH struct {
	base
}

func NewBVH(opts ...Option) *BVH {
	bvh := &BVH{}
	bvh.init(MethodBVH.String(), bvh, opts)
	return bvh
}

func (bvh *BVH) selfPairs(boxes []geometry.AABB) [][2]int {
	return bvhPairs(bvh.workers, buildBVH(boxes), boxes, true)
}

func (bvh *BVH) crossPairs(a, b []geometry.AABB) [][2]int {
	return bvhPairs(bvh.workers, buildBVH(b), a, false)
}

func bvhPairs(workers int, tree *bvhTree, queries []geometry.AABB, self bool) [][2]int {
	stacks := make([][]int, max(1, workers))
	return collectPairs(workers, len(queries), func(worker, i int, pairs [][2]int) [][2]int {
		stacks[worker] = tree.query(queries[i], stacks[worker], func(j int) {
			if !self || j > i {
				pairs = append(pairs, [2]int{i, j})
			}
		})
		return pairs
	})
}

package broadphase

import "github.com/akmonengine/contact/geometry"

// BruteForce tests every pair of boxes.
type BruteForce struct {
	base
}

func NewBruteForce(opts ...Option) *BruteForce {
	bf := &BruteForce{}
	bf.init(MethodBruteForce.String(), bf, opts)
	return bf
}

func (bf *BruteForce) selfPairs(boxes []geometry.AABB) [][2]int {
	return collectPairs(bf.workers, len(boxes), func(_, i int, pairs [][2]int) [][2]int {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[i].Overlaps(boxes[j]) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
		return pairs
	})
}

func (bf *BruteForce) crossPairs(a, b []geometry.AABB) [][2]int {
	return collectPairs(bf.workers, len(a), func(_, i int, pairs [][2]int) [][2]int {
		for j := range b {
			if a[i].Overlaps(b[j]) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
		return pairs
	})
}

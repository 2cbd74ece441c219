package broadphase

import (
	"cmp"
	"slices"

	"github.com/akmonengine/contact/geometry"
)

// SweepAndPrune sorts boxes by their lower bound on the axis along which
// box centers vary most, then sweeps each box forward over the boxes that
// start before it ends.
type SweepAndPrune struct {
	base
}

func NewSweepAndPrune(opts ...Option) *SweepAndPrune {
	sap := &SweepAndPrune{}
	sap.init(MethodSweepAndPrune.String(), sap, opts)
	return sap
}

type sapInterval struct {
	min, max float64
	id       int
	// set is 0 for the first box list and 1 for the second.
	set int
}

func (sap *SweepAndPrune) selfPairs(boxes []geometry.AABB) [][2]int {
	return sweep(sap.workers, boxes, nil)
}

func (sap *SweepAndPrune) crossPairs(a, b []geometry.AABB) [][2]int {
	return sweep(sap.workers, a, b)
}

// sweepAxis returns the axis with the largest variance of box centers.
func sweepAxis(sets ...[]geometry.AABB) int {
	var n float64
	var sum, sumSq [3]float64
	for _, boxes := range sets {
		for _, box := range boxes {
			c := box.Center()
			for k := range 3 {
				sum[k] += c[k]
				sumSq[k] += c[k] * c[k]
			}
			n++
		}
	}
	axis, best := 0, -1.0
	if n == 0 {
		return axis
	}
	for k := range 3 {
		mean := sum[k] / n
		if v := sumSq[k]/n - mean*mean; v > best {
			axis, best = k, v
		}
	}
	return axis
}

// sweep returns overlapping pairs within a when b is nil, or between a and
// b otherwise.
func sweep(workers int, a, b []geometry.AABB) [][2]int {
	self := b == nil
	axis := sweepAxis(a, b)

	intervals := make([]sapInterval, 0, len(a)+len(b))
	for i, box := range a {
		intervals = append(intervals, sapInterval{box.Min[axis], box.Max[axis], i, 0})
	}
	for j, box := range b {
		intervals = append(intervals, sapInterval{box.Min[axis], box.Max[axis], j, 1})
	}
	slices.SortFunc(intervals, func(x, y sapInterval) int {
		return cmp.Or(cmp.Compare(x.min, y.min), cmp.Compare(x.set, y.set), cmp.Compare(x.id, y.id))
	})

	lookup := func(iv sapInterval) geometry.AABB {
		if iv.set == 0 {
			return a[iv.id]
		}
		return b[iv.id]
	}

	return collectPairs(workers, len(intervals), func(_, i int, pairs [][2]int) [][2]int {
		p := intervals[i]
		for _, q := range intervals[i+1:] {
			if q.min > p.max {
				break
			}
			if !self && p.set == q.set {
				continue
			}
			if !lookup(p).Overlaps(lookup(q)) {
				continue
			}
			switch {
			case self:
				pairs = append(pairs, [2]int{min(p.id, q.id), max(p.id, q.id)})
			case p.set == 0:
				pairs = append(pairs, [2]int{p.id, q.id})
			default:
				pairs = append(pairs, [2]int{q.id, p.id})
			}
		}
		return pairs
	})
}

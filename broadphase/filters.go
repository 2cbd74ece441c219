package broadphase

// The filters below reject pairs that share a vertex and pairs whose
// vertices are all mutually excluded by the interaction predicate.

func (b *base) canEdgeVertexCollide(ei, vi int) bool {
	e := b.edgeBoxes[ei].VertexIDs
	return vi != e[0] && vi != e[1] &&
		(b.canVerticesCollide(vi, e[0]) || b.canVerticesCollide(vi, e[1]))
}

func (b *base) canEdgesCollide(eai, ebi int) bool {
	ea, eb := b.edgeBoxes[eai].VertexIDs, b.edgeBoxes[ebi].VertexIDs
	if ea[0] == eb[0] || ea[0] == eb[1] || ea[1] == eb[0] || ea[1] == eb[1] {
		return false
	}
	return b.anyCollide(ea[:2], eb[:2])
}

func (b *base) canFaceVertexCollide(fi, vi int) bool {
	f := b.faceBoxes[fi].VertexIDs
	if vi == f[0] || vi == f[1] || vi == f[2] {
		return false
	}
	return b.anyCollide([]int{vi}, f[:])
}

func (b *base) canEdgeFaceCollide(ei, fi int) bool {
	e, f := b.edgeBoxes[ei].VertexIDs, b.faceBoxes[fi].VertexIDs
	if sharesVertex(e[:2], f[:]) {
		return false
	}
	return b.anyCollide(e[:2], f[:])
}

func (b *base) canFacesCollide(fai, fbi int) bool {
	fa, fb := b.faceBoxes[fai].VertexIDs, b.faceBoxes[fbi].VertexIDs
	if sharesVertex(fa[:], fb[:]) {
		return false
	}
	return b.anyCollide(fa[:], fb[:])
}

func sharesVertex(a, b []int) bool {
	for _, i := range a {
		for _, j := range b {
			if i == j {
				return true
			}
		}
	}
	return false
}

func (b *base) anyCollide(a, c []int) bool {
	for _, i := range a {
		for _, j := range c {
			if b.canVerticesCollide(i, j) {
				return true
			}
		}
	}
	return false
}

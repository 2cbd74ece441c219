package distance

// PointEdgeType identifies which feature of an edge is closest to a point.
type PointEdgeType uint8

const (
	// PointEdgeAuto classifies the configuration on every evaluation.
	PointEdgeAuto PointEdgeType = iota
	// PointEdgeToE0 means the point is closest to the first endpoint.
	PointEdgeToE0
	// PointEdgeToE1 means the point is closest to the second endpoint.
	PointEdgeToE1
	// PointEdgeToEdge means the point projects inside the edge.
	PointEdgeToEdge
)

func (t PointEdgeType) String() string {
	switch t {
	case PointEdgeAuto:
		return "auto"
	case PointEdgeToE0:
		return "P_E0"
	case PointEdgeToE1:
		return "P_E1"
	case PointEdgeToEdge:
		return "P_E"
	}
	return "unknown"
}

// PointTriangleType identifies which feature of a triangle is closest to a point.
// Triangle edges are E0 = (t0, t1), E1 = (t1, t2) and E2 = (t2, t0).
type PointTriangleType uint8

const (
	PointTriangleAuto PointTriangleType = iota
	PointTriangleToT0
	PointTriangleToT1
	PointTriangleToT2
	PointTriangleToE0
	PointTriangleToE1
	PointTriangleToE2
	PointTriangleToTriangle
)

func (t PointTriangleType) String() string {
	switch t {
	case PointTriangleAuto:
		return "auto"
	case PointTriangleToT0:
		return "P_T0"
	case PointTriangleToT1:
		return "P_T1"
	case PointTriangleToT2:
		return "P_T2"
	case PointTriangleToE0:
		return "P_E0"
	case PointTriangleToE1:
		return "P_E1"
	case PointTriangleToE2:
		return "P_E2"
	case PointTriangleToTriangle:
		return "P_T"
	}
	return "unknown"
}

// EdgeEdgeType identifies the closest features of two edges A and B. EA0EB
// reads "endpoint 0 of A against the interior of B".
type EdgeEdgeType uint8

const (
	EdgeEdgeAuto EdgeEdgeType = iota
	EdgeEdgeEA0EB0
	EdgeEdgeEA0EB1
	EdgeEdgeEA1EB0
	EdgeEdgeEA1EB1
	EdgeEdgeEA0EB
	EdgeEdgeEA1EB
	EdgeEdgeEAEB0
	EdgeEdgeEAEB1
	EdgeEdgeEAEB
)

func (t EdgeEdgeType) String() string {
	switch t {
	case EdgeEdgeAuto:
		return "auto"
	case EdgeEdgeEA0EB0:
		return "EA0_EB0"
	case EdgeEdgeEA0EB1:
		return "EA0_EB1"
	case EdgeEdgeEA1EB0:
		return "EA1_EB0"
	case EdgeEdgeEA1EB1:
		return "EA1_EB1"
	case EdgeEdgeEA0EB:
		return "EA0_EB"
	case EdgeEdgeEA1EB:
		return "EA1_EB"
	case EdgeEdgeEAEB0:
		return "EA_EB0"
	case EdgeEdgeEAEB1:
		return "EA_EB1"
	case EdgeEdgeEAEB:
		return "EA_EB"
	}
	return "unknown"
}

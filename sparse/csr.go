// Package sparse provides the compressed sparse row matrix produced by
// Hessian assembly. CSR implements gonum's mat.Matrix so results can be fed
// to any gonum routine.
package sparse

import (
	"cmp"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Triplet is one (row, col, value) contribution.
type Triplet struct {
	Row, Col int
	Value    float64
}

func compareTriplets(a, b Triplet) int {
	return cmp.Or(cmp.Compare(a.Row, b.Row), cmp.Compare(a.Col, b.Col))
}

// Combine stable-sorts triplets by (row, col) and sums duplicates in their
// original order. The input slice is reordered and reused.
func Combine(triplets []Triplet) []Triplet {
	slices.SortStableFunc(triplets, compareTriplets)
	out := triplets[:0]
	for _, t := range triplets {
		if n := len(out); n > 0 && out[n-1].Row == t.Row && out[n-1].Col == t.Col {
			out[n-1].Value += t.Value
			continue
		}
		out = append(out, t)
	}
	return out
}

// CSR is an immutable compressed sparse row matrix.
type CSR struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

var _ mat.Matrix = (*CSR)(nil)

// NewCSR builds a rows×cols matrix from triplets, summing duplicates. It
// panics when a triplet lies outside the matrix.
func NewCSR(rows, cols int, triplets []Triplet) *CSR {
	combined := Combine(triplets)
	m := &CSR{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, len(combined)),
		data:    make([]float64, len(combined)),
	}
	for k, t := range combined {
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			panic(mat.ErrIndexOutOfRange)
		}
		m.indptr[t.Row+1]++
		m.indices[k] = t.Col
		m.data[k] = t.Value
	}
	for i := range rows {
		m.indptr[i+1] += m.indptr[i]
	}
	return m
}

// FromDense converts the non-zero entries of a dense matrix.
func FromDense(d mat.Matrix) *CSR {
	rows, cols := d.Dims()
	var triplets []Triplet
	for i := range rows {
		for j := range cols {
			if v := d.At(i, j); v != 0 {
				triplets = append(triplets, Triplet{i, j, v})
			}
		}
	}
	return NewCSR(rows, cols, triplets)
}

func (m *CSR) Dims() (int, int) { return m.rows, m.cols }

func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	lo, hi := m.indptr[i], m.indptr[i+1]
	k := lo + sort.SearchInts(m.indices[lo:hi], j)
	if k < hi && m.indices[k] == j {
		return m.data[k]
	}
	return 0
}

func (m *CSR) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int { return len(m.data) }

// DoNonZero calls fn for every stored entry in row-major order.
func (m *CSR) DoNonZero(fn func(i, j int, v float64)) {
	for i := range m.rows {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			fn(i, m.indices[k], m.data[k])
		}
	}
}

// MulVec returns m·x.
func (m *CSR) MulVec(x []float64) []float64 {
	if len(x) != m.cols {
		panic(mat.ErrShape)
	}
	y := make([]float64, m.rows)
	m.DoNonZero(func(i, j int, v float64) { y[i] += v * x[j] })
	return y
}

// ToDense returns a dense copy, or an empty matrix for a 0×0 CSR.
func (m *CSR) ToDense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(m.rows, m.cols, nil)
	m.DoNonZero(func(i, j int, v float64) { d.Set(i, j, v) })
	return d
}

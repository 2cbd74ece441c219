package potential

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var ErrUnknownProjection = errors.New("potential: unknown psd projection")

// PSDProjection selects how local Hessians are made positive semi-definite.
type PSDProjection uint8

const (
	// PSDNone leaves Hessians untouched.
	PSDNone PSDProjection = iota
	// PSDClamp clamps negative eigenvalues to zero.
	PSDClamp
	// PSDAbs flips negative eigenvalues to their absolute value.
	PSDAbs
)

func (p PSDProjection) String() string {
	switch p {
	case PSDNone:
		return "none"
	case PSDClamp:
		return "clamp"
	case PSDAbs:
		return "abs"
	}
	return fmt.Sprintf("PSDProjection(%d)", uint8(p))
}

func ParsePSDProjection(name string) (PSDProjection, error) {
	switch name {
	case "none":
		return PSDNone, nil
	case "clamp":
		return PSDClamp, nil
	case "abs":
		return PSDAbs, nil
	}
	return PSDNone, fmt.Errorf("%q: %w", name, ErrUnknownProjection)
}

// ProjectToPSD returns the projection of the symmetric part of h selected
// by policy. A matrix whose eigen decomposition fails projects to zero.
func ProjectToPSD(h *mat.Dense, policy PSDProjection) *mat.Dense {
	if policy == PSDNone {
		return h
	}
	n, _ := h.Dims()
	if n == 0 {
		return h
	}

	sym := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(h.At(i, j)+h.At(j, i)))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return mat.NewDense(n, n, nil)
	}
	values := eig.Values(nil)
	if allNonNegative(values) {
		return mat.DenseCopyOf(sym)
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	out := mat.NewDense(n, n, nil)
	for k, lambda := range values {
		if policy == PSDAbs {
			lambda = math.Abs(lambda)
		}
		if lambda <= 0 {
			continue
		}
		for i := range n {
			vik := lambda * vectors.At(i, k)
			if vik == 0 {
				continue
			}
			for j := range n {
				out.Set(i, j, out.At(i, j)+vik*vectors.At(j, k))
			}
		}
	}
	return out
}

func allNonNegative(values []float64) bool {
	for _, v := range values {
		if v < 0 {
			return false
		}
	}
	return true
}

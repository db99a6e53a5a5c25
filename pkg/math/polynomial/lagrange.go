package polynomial

import (
	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
	"github.com/taurusgroup/bls-dkg/pkg/party"
)

// Lagrange returns the Lagrange coefficients at 0 for all parties in the interpolation domain.
//
// Each party.ID is interpreted as its evaluation point id + 1.
func Lagrange(group curve.Curve, interpolationDomain []party.ID) map[party.ID]curve.Scalar {
	points := make(map[party.ID]curve.Scalar, len(interpolationDomain))
	// numerator = x₀ * … * xₖ
	numerator := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
	for _, id := range interpolationDomain {
		x := id.Scalar(group)
		points[id] = x
		numerator.Mul(x)
	}

	coefficients := make(map[party.ID]curve.Scalar, len(points))
	for j := range points {
		coefficients[j] = lagrange(group, points, numerator, j)
	}
	return coefficients
}

// lagrange returns the Lagrange coefficient lⱼ(0), for j in the interpolation domain.
//
//	                         x₀ ⋅⋅⋅ xₖ
//	lⱼ(0) = --------------------------------------------------
//	        xⱼ⋅(x₀ - xⱼ)⋅⋅⋅(xⱼ₋₁ - xⱼ)⋅(xⱼ₊₁ - xⱼ)⋅⋅⋅(xₖ - xⱼ)
func lagrange(group curve.Curve, points map[party.ID]curve.Scalar, numerator curve.Scalar, j party.ID) curve.Scalar {
	xJ := points[j]
	tmp := group.NewScalar()

	denominator := group.NewScalar().Set(xJ)
	for i, xI := range points {
		if i == j {
			continue
		}
		// tmp = xᵢ - xⱼ
		tmp.Set(xI).Sub(xJ)
		denominator.Mul(tmp)
	}

	return denominator.Invert().Mul(numerator)
}

// Interpolate returns f(0) for the polynomial f with f(id + 1) = shares[id].
//
// The result is only meaningful when the number of shares exceeds the degree of f.
func Interpolate(group curve.Curve, shares map[party.ID]curve.Scalar) curve.Scalar {
	ids := make([]party.ID, 0, len(shares))
	for id := range shares {
		ids = append(ids, id)
	}
	result := group.NewScalar()
	for id, l := range Lagrange(group, ids) {
		result.Add(l.Mul(shares[id]))
	}
	return result
}

// InterpolateExponent returns F(0) for the polynomial in the exponent with F(id + 1) = points[id].
func InterpolateExponent(group curve.Curve, points map[party.ID]curve.Point) curve.Point {
	ids := make([]party.ID, 0, len(points))
	for id := range points {
		ids = append(ids, id)
	}
	result := group.NewPoint()
	for id, l := range Lagrange(group, ids) {
		result = result.Add(l.Act(points[id]))
	}
	return result
}

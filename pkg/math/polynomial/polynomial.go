package polynomial

import (
	"io"

	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
	"github.com/taurusgroup/bls-dkg/pkg/math/sample"
)

// Polynomial represents f(X) = a₀ + a₁⋅X + … + aₜ⋅Xᵗ.
type Polynomial struct {
	group        curve.Curve
	coefficients []curve.Scalar
}

// Random samples a Polynomial with the given number of coefficients, and degree exactly
// size - 1.
//
// The leading coefficient is resampled until it is non-zero.
func Random(rand io.Reader, group curve.Curve, size int) (*Polynomial, error) {
	if size <= 0 {
		panic("polynomial: at least one coefficient is required")
	}
	coefficients := make([]curve.Scalar, size)
	for i := 0; i < size-1; i++ {
		c, err := sample.Scalar(rand, group)
		if err != nil {
			return nil, err
		}
		coefficients[i] = c
	}
	leading, err := sample.ScalarUnit(rand, group)
	if err != nil {
		return nil, err
	}
	coefficients[size-1] = leading
	return &Polynomial{group: group, coefficients: coefficients}, nil
}

// NewPolynomial returns the Polynomial with the given coefficients, constant first.
//
// The coefficients are copied.
func NewPolynomial(group curve.Curve, coefficients []curve.Scalar) *Polynomial {
	p := &Polynomial{
		group:        group,
		coefficients: make([]curve.Scalar, len(coefficients)),
	}
	for i, c := range coefficients {
		p.coefficients[i] = group.NewScalar().Set(c)
	}
	return p
}

// Evaluate evaluates the polynomial at x using Horner's method:
// https://en.wikipedia.org/wiki/Horner%27s_method
func (p *Polynomial) Evaluate(x curve.Scalar) curve.Scalar {
	if x.IsZero() {
		panic("attempt to leak secret")
	}

	result := p.group.NewScalar()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// bₙ₋₁ = bₙ * x + aₙ₋₁
		result.Mul(x).Add(p.coefficients[i])
	}
	return result
}

// Constant returns a reference to the constant coefficient of the polynomial.
func (p *Polynomial) Constant() curve.Scalar {
	return p.coefficients[0]
}

// Degree is the highest power of the Polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Size returns the number of coefficients.
func (p *Polynomial) Size() int {
	return len(p.coefficients)
}

// Group returns the group of the coefficients.
func (p *Polynomial) Group() curve.Curve {
	return p.group
}

// Erase overwrites every coefficient with 0, and releases them.
//
// The polynomial must not be used afterwards.
func (p *Polynomial) Erase() {
	for _, c := range p.coefficients {
		c.Zero()
	}
	p.coefficients = nil
}

// Erased returns true if Erase was called.
func (p *Polynomial) Erased() bool {
	return p.coefficients == nil
}

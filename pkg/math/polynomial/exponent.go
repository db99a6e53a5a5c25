package polynomial

import (
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
)

// Exponent represents a polynomial whose coefficients are points on an elliptic curve.
//
// It is the public commitment F(X) = f(X)•G to a Polynomial f.
type Exponent struct {
	group        curve.Curve
	coefficients []curve.Point
}

// NewPolynomialExponent returns the commitment [a₀]G, [a₁]G, …, [aₜ]G to polynomial.
func NewPolynomialExponent(polynomial *Polynomial) *Exponent {
	p := &Exponent{
		group:        polynomial.group,
		coefficients: make([]curve.Point, len(polynomial.coefficients)),
	}
	for i, c := range polynomial.coefficients {
		p.coefficients[i] = c.ActOnBase()
	}
	return p
}

// NewExponent returns the Exponent with the given coefficients, constant first.
func NewExponent(group curve.Curve, coefficients []curve.Point) *Exponent {
	p := &Exponent{
		group:        group,
		coefficients: make([]curve.Point, len(coefficients)),
	}
	for i, c := range coefficients {
		p.coefficients[i] = group.NewPoint().Set(c)
	}
	return p
}

// EmptyExponent creates an empty Exponent with a fixed group, ready for unmarshalling.
func EmptyExponent(group curve.Curve) *Exponent {
	return &Exponent{group: group}
}

// Evaluate returns F(x) using Horner's method.
func (p *Exponent) Evaluate(x curve.Scalar) curve.Point {
	result := p.group.NewPoint()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// Bₙ₋₁ = [x]Bₙ + Aₙ₋₁
		result = x.Act(result).Add(p.coefficients[i])
	}
	return result
}

// evaluateClassic returns F(x) = ∑ [xⁱ]Aᵢ.
func (p *Exponent) evaluateClassic(x curve.Scalar) curve.Point {
	power := p.group.NewScalar().Set(x)
	result := p.group.NewPoint().Set(p.coefficients[0])
	for i := 1; i < len(p.coefficients); i++ {
		result = result.Add(power.Act(p.coefficients[i]))
		power.Mul(x)
	}
	return result
}

// Degree is the highest power of the Exponent.
func (p *Exponent) Degree() int {
	return len(p.coefficients) - 1
}

// Size returns the number of coefficients.
func (p *Exponent) Size() int {
	return len(p.coefficients)
}

// Constant returns the constant coefficient of the polynomial 'in the exponent'.
func (p *Exponent) Constant() curve.Point {
	return p.coefficients[0]
}

// Coefficients returns the coefficients, constant first.
func (p *Exponent) Coefficients() []curve.Point {
	return p.coefficients
}

func (p *Exponent) add(q *Exponent) error {
	if len(p.coefficients) != len(q.coefficients) {
		return errors.New("q is not the same length as p")
	}
	for i := range p.coefficients {
		p.coefficients[i] = p.coefficients[i].Add(q.coefficients[i])
	}
	return nil
}

// Sum creates a new Polynomial in the Exponent, by summing a slice of existing ones.
func Sum(polynomials []*Exponent) (*Exponent, error) {
	if len(polynomials) == 0 {
		return nil, errors.New("polynomial.Sum: no polynomials")
	}
	summed := polynomials[0].Copy()
	for j := 1; j < len(polynomials); j++ {
		if err := summed.add(polynomials[j]); err != nil {
			return nil, fmt.Errorf("polynomial.Sum: %w", err)
		}
	}
	return summed, nil
}

func (p *Exponent) Copy() *Exponent {
	return NewExponent(p.group, p.coefficients)
}

// Equal returns true if both polynomials have the same coefficients.
func (p *Exponent) Equal(other *Exponent) bool {
	if len(p.coefficients) != len(other.coefficients) {
		return false
	}
	for i := range p.coefficients {
		if !p.coefficients[i].Equal(other.coefficients[i]) {
			return false
		}
	}
	return true
}

// MarshalBinary returns the encodings of the coefficients, concatenated in order.
//
// Every point has the same fixed width, so the number of coefficients is implied by the
// length of the output.
func (p *Exponent) MarshalBinary() ([]byte, error) {
	width := p.group.PointBytes()
	out := make([]byte, 0, width*len(p.coefficients))
	for i, c := range p.coefficients {
		data, err := c.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("polynomial.Exponent: coefficient %d: %w", i, err)
		}
		if len(data) != width {
			return nil, fmt.Errorf("polynomial.Exponent: coefficient %d: invalid length %d", i, len(data))
		}
		out = append(out, data...)
	}
	return out, nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
//
// The Exponent must have been created with EmptyExponent.
func (p *Exponent) UnmarshalBinary(data []byte) error {
	if p.group == nil {
		return errors.New("polynomial.Exponent: must be initialized using EmptyExponent")
	}
	width := p.group.PointBytes()
	if len(data) == 0 || len(data)%width != 0 {
		return fmt.Errorf("polynomial.Exponent: invalid length %d", len(data))
	}
	coefficients := make([]curve.Point, len(data)/width)
	for i := range coefficients {
		c := p.group.NewPoint()
		if err := c.UnmarshalBinary(data[i*width : (i+1)*width]); err != nil {
			return fmt.Errorf("polynomial.Exponent: coefficient %d: %w", i, err)
		}
		coefficients[i] = c
	}
	p.coefficients = coefficients
	return nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *Exponent) WriteTo(w io.Writer) (int64, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*Exponent) Domain() string {
	return "Exponent"
}

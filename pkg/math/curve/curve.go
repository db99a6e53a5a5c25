package curve

import (
	"encoding"
	"fmt"

	"github.com/cronokirby/saferith"
)

// Curve represents the group used for verification vectors and public keys.
//
// The only implementation is BN254, whose points live in the G2 subgroup of
// alt_bn128, and whose scalars are elements of the prime order field Fr.
type Curve interface {
	// NewPoint returns the identity element.
	NewPoint() Point
	// NewBasePoint returns the generator of the group.
	NewBasePoint() Point
	// NewScalar returns the scalar 0.
	NewScalar() Scalar
	// Name returns a unique identifier for the group.
	Name() string
	// ScalarBits returns the number of significant bits in a scalar.
	ScalarBits() int
	// SafeScalarBytes returns the number of random bytes needed to sample a
	// scalar through modular reduction.
	SafeScalarBytes() int
	// Order returns the order of the group.
	Order() *saferith.Modulus
	// ScalarBytes returns the length of an encoded scalar.
	ScalarBytes() int
	// PointBytes returns the length of an encoded point.
	PointBytes() int
}

// Scalar represents an element of the field of integers modulo the group order.
//
// Arithmetic methods modify the receiver and return it, so calls can be chained:
//
//	group.NewScalar().Set(a).Mul(b).Add(c)
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	// Curve returns the group this scalar belongs to.
	Curve() Curve
	// Add sets s = s + that, and returns s.
	Add(Scalar) Scalar
	// Sub sets s = s - that, and returns s.
	Sub(Scalar) Scalar
	// Negate sets s = -s, and returns s.
	Negate() Scalar
	// Mul sets s = s * that, and returns s.
	Mul(Scalar) Scalar
	// Invert sets s = 1/s, and returns s. The inverse of 0 is 0.
	Invert() Scalar
	// Equal returns true if both scalars are the same.
	Equal(Scalar) bool
	// IsZero returns true if the scalar is 0.
	IsZero() bool
	// Set sets s = that, and returns s.
	Set(Scalar) Scalar
	// SetNat sets s = x mod q, and returns s.
	SetNat(*saferith.Nat) Scalar
	// Zero overwrites the scalar with 0.
	Zero()
	// Act returns s • P.
	Act(Point) Point
	// ActOnBase returns s • G.
	ActOnBase() Point
}

// Point represents an element of the group.
//
// Unlike scalars, points are never modified in place: every operation returns a new
// point.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	fmt.Stringer
	// Curve returns the group this point belongs to.
	Curve() Curve
	// Add returns P + Q.
	Add(Point) Point
	// Sub returns P - Q.
	Sub(Point) Point
	// Negate returns -P.
	Negate() Point
	// Set sets P = Q, and returns P.
	Set(Point) Point
	// Equal returns true if both points are the same.
	Equal(Point) bool
	// IsIdentity returns true if P is the identity element.
	IsIdentity() bool
}

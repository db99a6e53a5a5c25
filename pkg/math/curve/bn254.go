package curve

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/cronokirby/saferith"
)

const (
	// BN254ScalarBytes is the size of an encoded BN254Scalar.
	BN254ScalarBytes = fr.Bytes
	// BN254CoordinateBytes is the size of a single encoded base field element.
	BN254CoordinateBytes = fp.Bytes
	// BN254PointBytes is the size of an encoded BN254Point: X.c0 ‖ X.c1 ‖ Y.c0 ‖ Y.c1.
	BN254PointBytes = 4 * BN254CoordinateBytes
)

var (
	bn254BaseG2 bn254.G2Jac
	bn254Order  *saferith.Modulus
)

func init() {
	_, bn254BaseG2, _, _ = bn254.Generators()
	bn254Order = saferith.ModulusFromBytes(fr.Modulus().Bytes())
}

// BN254 is the G2 group of the alt_bn128 pairing-friendly curve.
type BN254 struct{}

func (BN254) NewPoint() Point {
	p := new(BN254Point)
	p.setIdentity()
	return p
}

func (BN254) NewBasePoint() Point {
	out := new(BN254Point)
	out.value.Set(&bn254BaseG2)
	return out
}

func (BN254) NewScalar() Scalar {
	return new(BN254Scalar)
}

func (BN254) Name() string {
	return "bn254/G2"
}

func (BN254) ScalarBits() int {
	return fr.Bits
}

func (BN254) SafeScalarBytes() int {
	// 128 extra bits make the modular bias negligible
	return (fr.Bits + 128 + 7) / 8
}

func (BN254) Order() *saferith.Modulus {
	return bn254Order
}

func (BN254) ScalarBytes() int {
	return BN254ScalarBytes
}

func (BN254) PointBytes() int {
	return BN254PointBytes
}

// BN254Scalar is an element of the scalar field Fr of alt_bn128.
type BN254Scalar struct {
	value fr.Element
}

func bn254CastScalar(generic Scalar) *BN254Scalar {
	out, ok := generic.(*BN254Scalar)
	if !ok {
		panic(fmt.Sprintf("failed to convert to BN254Scalar: %T", generic))
	}
	return out
}

func (*BN254Scalar) Curve() Curve {
	return BN254{}
}

// MarshalBinary returns the 32-byte big-endian canonical encoding of the scalar.
func (s *BN254Scalar) MarshalBinary() ([]byte, error) {
	data := s.value.Bytes()
	return data[:], nil
}

// UnmarshalBinary expects exactly 32 bytes encoding an integer strictly smaller than the
// group order.
func (s *BN254Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != BN254ScalarBytes {
		return fmt.Errorf("invalid length for bn254 scalar: %d", len(data))
	}
	var value fr.Element
	if err := value.SetBytesCanonical(data); err != nil {
		return errors.New("invalid bytes for bn254 scalar: value >= q")
	}
	s.value.Set(&value)
	return nil
}

func (s *BN254Scalar) Add(that Scalar) Scalar {
	other := bn254CastScalar(that)
	s.value.Add(&s.value, &other.value)
	return s
}

func (s *BN254Scalar) Sub(that Scalar) Scalar {
	other := bn254CastScalar(that)
	s.value.Sub(&s.value, &other.value)
	return s
}

func (s *BN254Scalar) Mul(that Scalar) Scalar {
	other := bn254CastScalar(that)
	s.value.Mul(&s.value, &other.value)
	return s
}

func (s *BN254Scalar) Invert() Scalar {
	s.value.Inverse(&s.value)
	return s
}

func (s *BN254Scalar) Negate() Scalar {
	s.value.Neg(&s.value)
	return s
}

func (s *BN254Scalar) Equal(that Scalar) bool {
	other := bn254CastScalar(that)
	return s.value.Equal(&other.value)
}

func (s *BN254Scalar) IsZero() bool {
	return s.value.IsZero()
}

func (s *BN254Scalar) Set(that Scalar) Scalar {
	other := bn254CastScalar(that)
	s.value.Set(&other.value)
	return s
}

func (s *BN254Scalar) SetNat(x *saferith.Nat) Scalar {
	s.value.SetBigInt(x.Big())
	return s
}

func (s *BN254Scalar) Zero() {
	s.value.SetZero()
}

func (s *BN254Scalar) bigInt() *big.Int {
	return s.value.BigInt(new(big.Int))
}

func (s *BN254Scalar) Act(that Point) Point {
	other := bn254CastPoint(that)
	out := new(BN254Point)
	out.value.ScalarMultiplication(&other.value, s.bigInt())
	return out
}

func (s *BN254Scalar) ActOnBase() Point {
	out := new(BN254Point)
	out.value.ScalarMultiplication(&bn254BaseG2, s.bigInt())
	return out
}

// String does not print the value of the scalar, since scalars mostly hold secrets.
func (s *BN254Scalar) String() string {
	return "BN254Scalar{…}"
}

// BN254Point is an element of the G2 subgroup of alt_bn128.
type BN254Point struct {
	value bn254.G2Jac
}

func bn254CastPoint(generic Point) *BN254Point {
	out, ok := generic.(*BN254Point)
	if !ok {
		panic(fmt.Sprintf("failed to convert to BN254Point: %T", generic))
	}
	return out
}

func (p *BN254Point) setIdentity() {
	p.value.X.SetOne()
	p.value.Y.SetOne()
	p.value.Z.SetZero()
}

func (p *BN254Point) affine() bn254.G2Affine {
	var a bn254.G2Affine
	a.FromJacobian(&p.value)
	return a
}

func (*BN254Point) Curve() Curve {
	return BN254{}
}

// MarshalBinary returns the affine coordinates X.c0 ‖ X.c1 ‖ Y.c0 ‖ Y.c1, each as a
// 32-byte big-endian integer. The identity is encoded as 128 zero bytes.
func (p *BN254Point) MarshalBinary() ([]byte, error) {
	a := p.affine()
	out := make([]byte, BN254PointBytes)
	if a.IsInfinity() {
		return out, nil
	}
	coordinates := [4]*fp.Element{&a.X.A0, &a.X.A1, &a.Y.A0, &a.Y.A1}
	for i, c := range coordinates {
		b := c.Bytes()
		copy(out[i*BN254CoordinateBytes:], b[:])
	}
	return out, nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
//
// Every coordinate must be canonical, and the resulting point must lie on the curve and
// in the prime order subgroup; otherwise an error is returned and p is unchanged.
func (p *BN254Point) UnmarshalBinary(data []byte) error {
	if len(data) != BN254PointBytes {
		return fmt.Errorf("invalid length for bn254 point: %d", len(data))
	}
	var a bn254.G2Affine
	coordinates := [4]*fp.Element{&a.X.A0, &a.X.A1, &a.Y.A0, &a.Y.A1}
	for i, c := range coordinates {
		if err := c.SetBytesCanonical(data[i*BN254CoordinateBytes : (i+1)*BN254CoordinateBytes]); err != nil {
			return fmt.Errorf("bn254 point: coordinate %d out of range", i)
		}
	}
	if a.IsInfinity() {
		p.setIdentity()
		return nil
	}
	if !a.IsOnCurve() {
		return errors.New("bn254 point: not on curve")
	}
	if !a.IsInSubGroup() {
		return errors.New("bn254 point: not in prime order subgroup")
	}
	p.value.FromAffine(&a)
	return nil
}

func (p *BN254Point) Add(that Point) Point {
	other := bn254CastPoint(that)
	out := new(BN254Point)
	out.value.Set(&p.value)
	out.value.AddAssign(&other.value)
	return out
}

func (p *BN254Point) Sub(that Point) Point {
	other := bn254CastPoint(that)
	out := new(BN254Point)
	out.value.Set(&p.value)
	out.value.SubAssign(&other.value)
	return out
}

func (p *BN254Point) Negate() Point {
	out := new(BN254Point)
	out.value.Neg(&p.value)
	return out
}

func (p *BN254Point) Set(that Point) Point {
	other := bn254CastPoint(that)
	p.value.Set(&other.value)
	return p
}

func (p *BN254Point) Equal(that Point) bool {
	other := bn254CastPoint(that)
	a, b := p.affine(), other.affine()
	return a.Equal(&b)
}

func (p *BN254Point) IsIdentity() bool {
	return p.value.Z.IsZero()
}

// String implements fmt.Stringer.
func (p *BN254Point) String() string {
	if p.IsIdentity() {
		return "BN254Point{Identity}"
	}
	a := p.affine()
	return fmt.Sprintf("BN254Point{X: %s, Y: %s}", a.X.String(), a.Y.String())
}

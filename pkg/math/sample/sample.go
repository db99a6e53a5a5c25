package sample

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
)

const maxIterations = 255

// ErrEntropy is returned when the source of randomness could not provide enough bytes.
var ErrEntropy = errors.New("sample: failed to read randomness")

// ErrMaxIterations is returned when no acceptable value was produced, which only happens
// with a broken source of randomness.
var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func readBits(rand io.Reader, buf []byte) error {
	if _, err := io.ReadFull(rand, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return nil
}

// ModN samples an element of ℤₙ by rejection sampling.
func ModN(rand io.Reader, n *saferith.Modulus) (*saferith.Nat, error) {
	out := new(saferith.Nat)
	buf := make([]byte, (n.BitLen()+7)/8)
	// clear the bits above the size of n, to make rejections rare
	mask := byte(0xff >> (8*len(buf) - n.BitLen()))
	for i := 0; i < maxIterations; i++ {
		if err := readBits(rand, buf); err != nil {
			return nil, err
		}
		buf[0] &= mask
		out.SetBytes(buf)
		if _, _, lt := out.CmpMod(n); lt == 1 {
			return out, nil
		}
	}
	return nil, ErrMaxIterations
}

// Scalar returns a uniformly random scalar of the group.
//
// Enough bytes are read so that the bias of the modular reduction is negligible.
func Scalar(rand io.Reader, group curve.Curve) (curve.Scalar, error) {
	buf := make([]byte, group.SafeScalarBytes())
	if err := readBits(rand, buf); err != nil {
		return nil, err
	}
	n := new(saferith.Nat).SetBytes(buf)
	for i := range buf {
		buf[i] = 0
	}
	return group.NewScalar().SetNat(n), nil
}

// ScalarUnit returns a uniformly random non-zero scalar.
func ScalarUnit(rand io.Reader, group curve.Curve) (curve.Scalar, error) {
	for i := 0; i < maxIterations; i++ {
		s, err := Scalar(rand, group)
		if err != nil {
			return nil, err
		}
		if !s.IsZero() {
			return s, nil
		}
	}
	return nil, ErrMaxIterations
}

// ScalarPointPair returns a random scalar x together with x•G.
func ScalarPointPair(rand io.Reader, group curve.Curve) (curve.Scalar, curve.Point, error) {
	s, err := Scalar(rand, group)
	if err != nil {
		return nil, nil, err
	}
	return s, s.ActOnBase(), nil
}

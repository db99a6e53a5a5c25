// Package dkg implements a threshold distributed key generation for BLS keys.
//
// Every participant samples a polynomial of degree t - 1, publishes the commitment to its
// coefficients in G2 (its verification vector), and sends the evaluation of the polynomial
// at every other participant's index, encrypted for that participant. The secret key share
// of a participant is the sum of the evaluations it received, and the common public key is
// the sum of the constant terms of all verification vectors.
package dkg

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
	"github.com/taurusgroup/bls-dkg/pkg/math/polynomial"
	"github.com/taurusgroup/bls-dkg/pkg/party"
)

// DKG holds the public parameters of a key generation, and implements its pure operations.
type DKG struct {
	group     curve.Curve
	threshold int
	n         int
	rand      io.Reader
}

// New returns a DKG where any threshold out of n shares are required to use the key.
//
// If rand is nil, crypto/rand is used.
func New(group curve.Curve, threshold, n int, rand io.Reader) (*DKG, error) {
	if n < 1 || n > party.MaxParties {
		return nil, fmt.Errorf("dkg.New: %w: n = %d", ErrInvalidThreshold, n)
	}
	if threshold < 1 || threshold > n {
		return nil, fmt.Errorf("dkg.New: %w: t = %d, n = %d", ErrInvalidThreshold, threshold, n)
	}
	if rand == nil {
		rand = defaultRand
	}
	return &DKG{group: group, threshold: threshold, n: n, rand: rand}, nil
}

var defaultRand io.Reader = rand.Reader

func (d *DKG) Group() curve.Curve { return d.group }
func (d *DKG) Threshold() int     { return d.threshold }
func (d *DKG) N() int             { return d.n }

// GeneratePolynomial samples the secret polynomial of this participant, with threshold
// coefficients and a non-zero leading coefficient.
func (d *DKG) GeneratePolynomial() (*polynomial.Polynomial, error) {
	poly, err := polynomial.Random(d.rand, d.group, d.threshold)
	if err != nil {
		return nil, fmt.Errorf("dkg.GeneratePolynomial: %w", err)
	}
	return poly, nil
}

// Evaluate returns the share of poly for participant index, poly(index + 1).
func (d *DKG) Evaluate(poly *polynomial.Polynomial, index party.ID) (curve.Scalar, error) {
	if !index.Valid(d.n) {
		return nil, fmt.Errorf("dkg.Evaluate: %w: %s", ErrInvalidIndex, index)
	}
	if poly.Erased() {
		return nil, fmt.Errorf("dkg.Evaluate: %w: polynomial erased", ErrPrecondition)
	}
	return poly.Evaluate(index.Scalar(d.group)), nil
}

// VerificationVector returns the commitment to the coefficients of poly.
func (d *DKG) VerificationVector(poly *polynomial.Polynomial) *polynomial.Exponent {
	return polynomial.NewPolynomialExponent(poly)
}

// DecodeVerificationVector decodes a verification vector received from a peer.
//
// The vector must contain exactly threshold valid points.
func (d *DKG) DecodeVerificationVector(data []byte) (*polynomial.Exponent, error) {
	if expected := d.threshold * d.group.PointBytes(); len(data) != expected {
		return nil, fmt.Errorf("dkg.DecodeVerificationVector: expected %d bytes, got %d", expected, len(data))
	}
	vv := polynomial.EmptyExponent(d.group)
	if err := vv.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("dkg.DecodeVerificationVector: %w", err)
	}
	return vv, nil
}

// SecretKeyContribution returns the shares of poly for every participant, in index order.
func (d *DKG) SecretKeyContribution(poly *polynomial.Polynomial) ([]curve.Scalar, error) {
	shares := make([]curve.Scalar, d.n)
	for _, id := range party.Range(d.n) {
		share, err := d.Evaluate(poly, id)
		if err != nil {
			return nil, err
		}
		shares[id] = share
	}
	return shares, nil
}

// Verify returns true if share•G = ∑ vv[k]•(index + 1)ᵏ.
//
// It never fails: a zero share, a vector of the wrong size, or an index out of range
// all return false.
func (d *DKG) Verify(index party.ID, share curve.Scalar, vv *polynomial.Exponent) bool {
	if !index.Valid(d.n) || share == nil || vv == nil {
		return false
	}
	if vv.Size() != d.threshold || share.IsZero() {
		return false
	}
	expected := vv.Evaluate(index.Scalar(d.group))
	return share.ActOnBase().Equal(expected)
}

// SecretKeyShareCreate sums the n verified shares received by a participant.
func (d *DKG) SecretKeyShareCreate(shares []curve.Scalar) (curve.Scalar, error) {
	if len(shares) != d.n {
		return nil, fmt.Errorf("dkg.SecretKeyShareCreate: %w: expected %d shares, got %d", ErrPrecondition, d.n, len(shares))
	}
	sum := d.group.NewScalar()
	for i, s := range shares {
		if s == nil {
			return nil, fmt.Errorf("dkg.SecretKeyShareCreate: %w: missing share %d", ErrPrecondition, i)
		}
		sum.Add(s)
	}
	if sum.IsZero() {
		return nil, fmt.Errorf("dkg.SecretKeyShareCreate: %w: zero secret key share", ErrVerification)
	}
	return sum, nil
}

// PublicKeyFromSecretKey returns sk•G.
func PublicKeyFromSecretKey(sk curve.Scalar) curve.Point {
	return sk.ActOnBase()
}

// CommonPublicKey returns the public key of the group, ∑ vvⱼ[0].
func (d *DKG) CommonPublicKey(vvs []*polynomial.Exponent) (curve.Point, error) {
	summed, err := d.sum(vvs)
	if err != nil {
		return nil, fmt.Errorf("dkg.CommonPublicKey: %w", err)
	}
	return summed.Constant(), nil
}

// PublicKeyShare returns the public key matching the secret key share of index,
// ∑ vvⱼ(index + 1), computed only from the verification vectors.
func (d *DKG) PublicKeyShare(index party.ID, vvs []*polynomial.Exponent) (curve.Point, error) {
	if !index.Valid(d.n) {
		return nil, fmt.Errorf("dkg.PublicKeyShare: %w: %s", ErrInvalidIndex, index)
	}
	summed, err := d.sum(vvs)
	if err != nil {
		return nil, fmt.Errorf("dkg.PublicKeyShare: %w", err)
	}
	return summed.Evaluate(index.Scalar(d.group)), nil
}

func (d *DKG) sum(vvs []*polynomial.Exponent) (*polynomial.Exponent, error) {
	if len(vvs) != d.n {
		return nil, fmt.Errorf("%w: expected %d verification vectors, got %d", ErrPrecondition, d.n, len(vvs))
	}
	for i, vv := range vvs {
		if vv == nil || vv.Size() != d.threshold {
			return nil, fmt.Errorf("%w: invalid verification vector %d", ErrPrecondition, i)
		}
	}
	return polynomial.Sum(vvs)
}

package dkg

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/bls-dkg/pkg/ecdh"
	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
	"github.com/taurusgroup/bls-dkg/pkg/math/polynomial"
	"github.com/taurusgroup/bls-dkg/pkg/math/sample"
	"github.com/taurusgroup/bls-dkg/pkg/party"
)

var group = curve.BN254{}

func newDKG(t *testing.T, threshold, n int) *DKG {
	d, err := New(group, threshold, n, nil)
	require.NoError(t, err)
	return d
}

func TestNew(t *testing.T) {
	for _, tc := range []struct{ threshold, n int }{
		{0, 3}, {4, 3}, {1, 0}, {-1, 2}, {1, party.MaxParties + 1},
	} {
		_, err := New(group, tc.threshold, tc.n, nil)
		assert.ErrorIs(t, err, ErrInvalidThreshold, "t = %d, n = %d", tc.threshold, tc.n)
	}
	d := newDKG(t, 1, 1)
	assert.Equal(t, 1, d.N())
	assert.Equal(t, 1, d.Threshold())
}

func TestGeneratePolynomial(t *testing.T) {
	d := newDKG(t, 3, 5)
	poly, err := d.GeneratePolynomial()
	require.NoError(t, err)
	assert.Equal(t, 2, poly.Degree())

	failing, err := New(group, 3, 5, failingReader{})
	require.NoError(t, err)
	_, err = failing.GeneratePolynomial()
	assert.ErrorIs(t, err, ErrEntropy)
}

func TestEvaluate(t *testing.T) {
	d := newDKG(t, 2, 3)
	poly, err := d.GeneratePolynomial()
	require.NoError(t, err)

	_, err = d.Evaluate(poly, 3)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	share, err := d.Evaluate(poly, 0)
	require.NoError(t, err)
	assert.True(t, share.Equal(poly.Evaluate(party.ID(0).Scalar(group))))
	assert.False(t, share.Equal(poly.Constant()), "index 0 must not evaluate the secret")
}

func TestVerify_Consistency(t *testing.T) {
	for _, tc := range []struct{ threshold, n int }{{1, 1}, {1, 2}, {2, 3}, {3, 5}, {5, 5}} {
		d := newDKG(t, tc.threshold, tc.n)
		poly, err := d.GeneratePolynomial()
		require.NoError(t, err)
		vv := d.VerificationVector(poly)

		shares, err := d.SecretKeyContribution(poly)
		require.NoError(t, err)
		require.Len(t, shares, tc.n)
		for _, id := range party.Range(tc.n) {
			assert.True(t, d.Verify(id, shares[id], vv), "t = %d, n = %d, index %d", tc.threshold, tc.n, id)
		}
	}
}

func TestVerify_Rejects(t *testing.T) {
	d := newDKG(t, 3, 4)
	poly, err := d.GeneratePolynomial()
	require.NoError(t, err)
	vv := d.VerificationVector(poly)
	shares, err := d.SecretKeyContribution(poly)
	require.NoError(t, err)

	assert.False(t, d.Verify(1, shares[2], vv), "share of another index")
	assert.False(t, d.Verify(4, shares[0], vv), "index out of range")
	assert.False(t, d.Verify(0, group.NewScalar(), vv), "zero share")
	assert.False(t, d.Verify(0, nil, vv))
	assert.False(t, d.Verify(0, shares[0], nil))

	short := polynomial.NewExponent(group, vv.Coefficients()[:2])
	assert.False(t, d.Verify(0, shares[0], short), "vector of the wrong size")

	other, err := d.GeneratePolynomial()
	require.NoError(t, err)
	assert.False(t, d.Verify(0, shares[0], d.VerificationVector(other)))
}

func TestVerify_BitFlip(t *testing.T) {
	d := newDKG(t, 2, 3)
	poly, err := d.GeneratePolynomial()
	require.NoError(t, err)
	vv := d.VerificationVector(poly)
	share, err := d.Evaluate(poly, 1)
	require.NoError(t, err)
	data, err := share.MarshalBinary()
	require.NoError(t, err)

	for bit := 0; bit < 8*len(data); bit++ {
		flipped := append([]byte{}, data...)
		flipped[bit/8] ^= 1 << (bit % 8)
		tampered := group.NewScalar()
		if err = tampered.UnmarshalBinary(flipped); err != nil {
			continue
		}
		assert.False(t, d.Verify(1, tampered, vv), "bit %d", bit)
	}
}

func TestDecodeVerificationVector(t *testing.T) {
	d := newDKG(t, 3, 4)
	poly, err := d.GeneratePolynomial()
	require.NoError(t, err)
	vv := d.VerificationVector(poly)
	data, err := vv.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 3*curve.BN254PointBytes)

	decoded, err := d.DecodeVerificationVector(data)
	require.NoError(t, err)
	assert.True(t, vv.Equal(decoded))

	_, err = d.DecodeVerificationVector(data[:2*curve.BN254PointBytes])
	assert.Error(t, err)
	_, err = newDKG(t, 4, 4).DecodeVerificationVector(data)
	assert.Error(t, err)

	data[curve.BN254PointBytes+7] ^= 0x10
	_, err = d.DecodeVerificationVector(data)
	assert.Error(t, err)
}

func TestSecretKeyShareCreate(t *testing.T) {
	d := newDKG(t, 2, 3)
	a, err := sample.ScalarUnit(rand.Reader, group)
	require.NoError(t, err)

	_, err = d.SecretKeyShareCreate([]curve.Scalar{a, a})
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = d.SecretKeyShareCreate([]curve.Scalar{a, nil, a})
	assert.ErrorIs(t, err, ErrPrecondition)

	negated := group.NewScalar().Set(a).Negate()
	_, err = d.SecretKeyShareCreate([]curve.Scalar{a, negated, group.NewScalar()})
	assert.Error(t, err, "zero sum")

	sum, err := d.SecretKeyShareCreate([]curve.Scalar{a, a, a})
	require.NoError(t, err)
	three := group.NewScalar().Set(a).Add(a).Add(a)
	assert.True(t, sum.Equal(three))
	assert.True(t, PublicKeyFromSecretKey(sum).Equal(three.ActOnBase()))
}

// dealAll runs the share generation of every participant without encryption, and returns
// the verification vectors, and the aggregated secret key share of each participant.
func dealAll(t *testing.T, d *DKG) ([]*polynomial.Exponent, []*polynomial.Polynomial, []curve.Scalar) {
	n := d.N()
	polys := make([]*polynomial.Polynomial, n)
	vvs := make([]*polynomial.Exponent, n)
	received := make([][]curve.Scalar, n)
	for i := range received {
		received[i] = make([]curve.Scalar, n)
	}
	for dealer := 0; dealer < n; dealer++ {
		poly, err := d.GeneratePolynomial()
		require.NoError(t, err)
		polys[dealer] = poly
		vvs[dealer] = d.VerificationVector(poly)
		shares, err := d.SecretKeyContribution(poly)
		require.NoError(t, err)
		for j, share := range shares {
			require.True(t, d.Verify(party.ID(j), share, vvs[dealer]))
			received[j][dealer] = share
		}
	}
	secrets := make([]curve.Scalar, n)
	for j := range secrets {
		sk, err := d.SecretKeyShareCreate(received[j])
		require.NoError(t, err)
		secrets[j] = sk
	}
	return vvs, polys, secrets
}

func TestThresholdCorrectness(t *testing.T) {
	threshold, n := 3, 5
	d := newDKG(t, threshold, n)
	vvs, polys, secrets := dealAll(t, d)

	secret := group.NewScalar()
	for _, poly := range polys {
		secret.Add(poly.Constant())
	}
	common, err := d.CommonPublicKey(vvs)
	require.NoError(t, err)
	assert.True(t, common.Equal(secret.ActOnBase()))

	subset := func(ids ...party.ID) map[party.ID]curve.Scalar {
		out := make(map[party.ID]curve.Scalar, len(ids))
		for _, id := range ids {
			out[id] = secrets[id]
		}
		return out
	}
	assert.True(t, polynomial.Interpolate(group, subset(0, 1, 2)).Equal(secret))
	assert.True(t, polynomial.Interpolate(group, subset(4, 2, 0)).Equal(secret))
	assert.True(t, polynomial.Interpolate(group, subset(0, 1, 2, 3, 4)).Equal(secret))
	assert.False(t, polynomial.Interpolate(group, subset(1, 3)).Equal(secret))

	for _, id := range party.Range(n) {
		share, err := d.PublicKeyShare(id, vvs)
		require.NoError(t, err)
		assert.True(t, share.Equal(PublicKeyFromSecretKey(secrets[id])))
	}
	_, err = d.PublicKeyShare(party.ID(n), vvs)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = d.CommonPublicKey(vvs[1:])
	assert.ErrorIs(t, err, ErrPrecondition)
}

// TestTwoParties runs the key generation between two participants, with t = 1.
func TestTwoParties(t *testing.T) {
	d := newDKG(t, 1, 2)
	keyA, err := ecdh.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keyB, err := ecdh.GenerateKey(rand.Reader)
	require.NoError(t, err)

	polyA, err := d.GeneratePolynomial()
	require.NoError(t, err)
	vvA := d.VerificationVector(polyA)
	sharesA, err := d.SecretKeyContribution(polyA)
	require.NoError(t, err)

	polyB, err := d.GeneratePolynomial()
	require.NoError(t, err)
	vvB := d.VerificationVector(polyB)
	sharesB, err := d.SecretKeyContribution(polyB)
	require.NoError(t, err)

	// A seals its share for B, and B its share for A.
	forB, err := SealShare(rand.Reader, keyB.PublicKey(), sharesA[1])
	require.NoError(t, err)
	forA, err := SealShare(rand.Reader, keyA.PublicKey(), sharesB[0])
	require.NoError(t, err)

	fromB, err := OpenShare(group, forA[:], keyA)
	require.NoError(t, err)
	assert.True(t, d.Verify(0, fromB, vvB))
	fromA, err := OpenShare(group, forB[:], keyB)
	require.NoError(t, err)
	assert.True(t, d.Verify(1, fromA, vvA))

	skA, err := d.SecretKeyShareCreate([]curve.Scalar{sharesA[0], fromB})
	require.NoError(t, err)
	skB, err := d.SecretKeyShareCreate([]curve.Scalar{fromA, sharesB[1]})
	require.NoError(t, err)

	// with t = 1 the polynomials are constant, so both shares are the common secret
	common := vvA.Constant().Add(vvB.Constant())
	assert.True(t, PublicKeyFromSecretKey(skA).Equal(common))
	assert.True(t, PublicKeyFromSecretKey(skB).Equal(common))
	computed, err := d.CommonPublicKey([]*polynomial.Exponent{vvA, vvB})
	require.NoError(t, err)
	assert.True(t, computed.Equal(common))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, assert.AnError
}

package sample

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("no entropy")
}

func TestModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11 * 65519)
	for i := 0; i < 100; i++ {
		x, err := ModN(rand.Reader, n)
		require.NoError(t, err)
		_, _, lt := x.CmpMod(n)
		assert.Equal(t, saferith.Choice(1), lt, "ModN generated a number >= n")
	}
}

func TestScalar(t *testing.T) {
	group := curve.BN254{}
	a, err := Scalar(rand.Reader, group)
	require.NoError(t, err)
	b, err := Scalar(rand.Reader, group)
	require.NoError(t, err)
	assert.False(t, a.Equal(b))

	data, err := a.MarshalBinary()
	require.NoError(t, err)
	assert.NoError(t, group.NewScalar().UnmarshalBinary(data))
}

func TestScalarUnit(t *testing.T) {
	// an all zero stream can only ever produce the zero scalar
	_, err := ScalarUnit(bytes.NewReader(make([]byte, 1<<16)), curve.BN254{})
	assert.ErrorIs(t, err, ErrMaxIterations)

	s, err := ScalarUnit(rand.Reader, curve.BN254{})
	require.NoError(t, err)
	assert.False(t, s.IsZero())
}

func TestEntropyFailure(t *testing.T) {
	group := curve.BN254{}
	_, err := Scalar(failingReader{}, group)
	assert.ErrorIs(t, err, ErrEntropy)

	_, err = ScalarUnit(failingReader{}, group)
	assert.ErrorIs(t, err, ErrEntropy)

	_, _, err = ScalarPointPair(bytes.NewReader([]byte{1, 2, 3}), group)
	assert.ErrorIs(t, err, ErrEntropy)

	_, err = ModN(failingReader{}, group.Order())
	assert.ErrorIs(t, err, ErrEntropy)
}

func TestScalarPointPair(t *testing.T) {
	s, p, err := ScalarPointPair(rand.Reader, curve.BN254{})
	require.NoError(t, err)
	assert.True(t, s.ActOnBase().Equal(p))
}

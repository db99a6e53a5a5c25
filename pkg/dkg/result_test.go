package dkg

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/bls-dkg/pkg/party"
)

func newResults(t *testing.T, threshold, n int) []*Result {
	sessions := newSessions(t, threshold, n, nil)
	generateAll(t, sessions)
	exchangeVectors(t, sessions)
	exchangeShares(t, sessions)
	return finalizeAll(t, sessions)
}

func TestResult_Marshal(t *testing.T) {
	r := newResults(t, 2, 3)[1]

	data, err := cbor.Marshal(r)
	require.NoError(t, err)

	r2 := EmptyResult(group)
	require.NoError(t, cbor.Unmarshal(data, r2))
	assert.Equal(t, r.ID, r2.ID)
	assert.Equal(t, r.Threshold, r2.Threshold)
	assert.Equal(t, r.SSID, r2.SSID)
	assert.True(t, r.SecretKeyShare.Equal(r2.SecretKeyShare))
	assert.True(t, r.PublicKey.Equal(r2.PublicKey))
	assert.True(t, r.CommonPublicKey.Equal(r2.CommonPublicKey))
	require.Len(t, r2.PublicKeyShares, 3)
	for i := range r.PublicKeyShares {
		assert.True(t, r.PublicKeyShares[i].Equal(r2.PublicKeyShares[i]))
	}

	assert.Error(t, new(Result).UnmarshalBinary(data))
}

func TestResult_UnmarshalRejectsInconsistent(t *testing.T) {
	results := newResults(t, 2, 3)
	r := *results[0]
	r.SecretKeyShare = results[1].SecretKeyShare
	data, err := r.MarshalBinary()
	require.NoError(t, err)
	assert.Error(t, EmptyResult(group).UnmarshalBinary(data))
}

func TestResult_InterpolatePublicKey(t *testing.T) {
	results := newResults(t, 3, 5)
	r := results[4]

	for _, ids := range [][]party.ID{{0, 1, 2}, {4, 2, 3}, {0, 1, 2, 3, 4}} {
		public, err := r.InterpolatePublicKey(ids)
		require.NoError(t, err)
		assert.True(t, public.Equal(r.CommonPublicKey))
	}

	_, err := r.InterpolatePublicKey([]party.ID{0, 1})
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = r.InterpolatePublicKey([]party.ID{0, 1, 1})
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = r.InterpolatePublicKey([]party.ID{0, 1, 5})
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

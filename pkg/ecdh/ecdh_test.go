package ecdh

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestECDH(t *testing.T) {
	a, err := GenerateKey(rand.Reader)
	require.NoError(t, err)
	b, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	ab, err := a.ECDH(b.PublicKey())
	require.NoError(t, err)
	ba, err := b.ECDH(a.PublicKey())
	require.NoError(t, err)
	assert.Len(t, ab, SharedSecretSize)
	assert.Equal(t, ab, ba)

	_, err = a.ECDH(nil)
	assert.Error(t, err)
}

func TestGenerateKeyEntropy(t *testing.T) {
	_, err := GenerateKey(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestNewPrivateKey(t *testing.T) {
	a, err := GenerateKey(rand.Reader)
	require.NoError(t, err)
	b, err := NewPrivateKey(a.key.Serialize())
	require.NoError(t, err)
	assert.True(t, a.PublicKey().IsEqual(b.PublicKey()))

	_, err = NewPrivateKey(make([]byte, PrivateKeySize))
	assert.Error(t, err)
	_, err = NewPrivateKey(bytes.Repeat([]byte{0xff}, PrivateKeySize))
	assert.Error(t, err)
	_, err = NewPrivateKey([]byte{1})
	assert.Error(t, err)
}

func TestPublicKeyEncoding(t *testing.T) {
	a, err := GenerateKey(rand.Reader)
	require.NoError(t, err)
	data := MarshalPublicKey(a.PublicKey())
	require.Len(t, data, PublicKeySize)

	pk, err := ParsePublicKey(data)
	require.NoError(t, err)
	assert.True(t, pk.IsEqual(a.PublicKey()))

	_, err = ParsePublicKey(a.PublicKey().SerializeCompressed())
	assert.Error(t, err)
	_, err = ParsePublicKey(make([]byte, PublicKeySize))
	assert.Error(t, err)

	bad := append([]byte{}, data...)
	bad[PublicKeySize-1] ^= 1
	_, err = ParsePublicKey(bad)
	assert.Error(t, err, "point must be on the curve")
}

func TestZero(t *testing.T) {
	a, err := GenerateKey(rand.Reader)
	require.NoError(t, err)
	a.Zero()
	assert.Equal(t, make([]byte, PrivateKeySize), a.key.Serialize())

	b := []byte{1, 2, 3}
	Zeroize(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
}

func TestBtcecWalletKey(t *testing.T) {
	wallet, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	peer, err := GenerateKey(rand.Reader)
	require.NoError(t, err)

	k := FromSecp256k1(wallet)
	assert.True(t, k.PublicKey().IsEqual(wallet.PubKey()))

	secret, err := k.ECDH(peer.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, btcec.GenerateSharedSecret(wallet, peer.PublicKey()), secret)

	var agreement KeyAgreement = k
	other, err := peer.ECDH(agreement.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, secret, other)
}

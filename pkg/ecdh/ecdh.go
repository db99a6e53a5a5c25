// Package ecdh provides the secp256k1 key agreement used to encrypt shares between
// participants.
package ecdh

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	// PublicKeySize is the length of an uncompressed public key: 0x04 ‖ X ‖ Y.
	PublicKeySize = secp256k1.PubKeyBytesLenUncompressed
	// PrivateKeySize is the length of an encoded private key.
	PrivateKeySize = secp256k1.PrivKeyBytesLen
	// SharedSecretSize is the length of the output of ECDH.
	SharedSecretSize = 32
)

// PublicKey is a point on secp256k1.
type PublicKey = secp256k1.PublicKey

// KeyAgreement is the capability to derive a shared secret with a remote public key.
//
// Long-term keys are owned by an external key manager, which only needs to expose
// this interface.
type KeyAgreement interface {
	// PublicKey returns the public key matching the secret held by this KeyAgreement.
	PublicKey() *PublicKey
	// ECDH returns the x coordinate of the Diffie-Hellman point with remote.
	ECDH(remote *PublicKey) ([]byte, error)
}

// PrivateKey is a secp256k1 secret key implementing KeyAgreement.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GenerateKey samples a fresh private key from rand.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKeyFromRand(rand)
	if err != nil {
		return nil, fmt.Errorf("ecdh: generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// NewPrivateKey decodes a 32-byte big-endian secret, which must be in [1, N).
func NewPrivateKey(data []byte) (*PrivateKey, error) {
	if len(data) != PrivateKeySize {
		return nil, fmt.Errorf("ecdh: invalid private key length %d", len(data))
	}
	var k secp256k1.ModNScalar
	if overflow := k.SetByteSlice(data); overflow || k.IsZero() {
		k.Zero()
		return nil, errors.New("ecdh: private key out of range")
	}
	return &PrivateKey{key: secp256k1.NewPrivateKey(&k)}, nil
}

// FromSecp256k1 wraps an existing secp256k1 key, such as a wallet key.
//
// The key is shared, not copied: Zero erases the caller's key as well.
func FromSecp256k1(key *secp256k1.PrivateKey) *PrivateKey {
	return &PrivateKey{key: key}
}

// PublicKey implements KeyAgreement.
func (k *PrivateKey) PublicKey() *PublicKey {
	return k.key.PubKey()
}

// ECDH implements KeyAgreement.
func (k *PrivateKey) ECDH(remote *PublicKey) ([]byte, error) {
	if remote == nil {
		return nil, errors.New("ecdh: nil public key")
	}
	if !remote.IsOnCurve() {
		return nil, errors.New("ecdh: public key not on curve")
	}
	return secp256k1.GenerateSharedSecret(k.key, remote), nil
}

// Zero overwrites the secret.
func (k *PrivateKey) Zero() {
	k.key.Zero()
}

// ParsePublicKey decodes an uncompressed public key.
func ParsePublicKey(data []byte) (*PublicKey, error) {
	if len(data) != PublicKeySize || data[0] != secp256k1.PubKeyFormatUncompressed {
		return nil, errors.New("ecdh: expected an uncompressed public key")
	}
	pk, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}
	return pk, nil
}

// MarshalPublicKey returns the uncompressed encoding of pk.
func MarshalPublicKey(pk *PublicKey) []byte {
	return pk.SerializeUncompressed()
}

// Zeroize overwrites b with zeros.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

package dkg

import (
	"fmt"
	"io"

	"github.com/taurusgroup/bls-dkg/internal/hash"
	"github.com/taurusgroup/bls-dkg/pkg/ecdh"
	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
	"golang.org/x/crypto/chacha20"
)

const (
	// CiphertextSize is the length of an encrypted share.
	CiphertextSize = 32
	// EnvelopeSize is the length of an Envelope: ciphertext ‖ ephemeral public key.
	EnvelopeSize = CiphertextSize + ecdh.PublicKeySize

	envelopeKDFContext = "bls-dkg share envelope"
)

// Envelope is a share encrypted for a single recipient.
//
// The first CiphertextSize bytes are the encrypted share, and the rest is the uncompressed
// ephemeral public key of the sender. An all zero Envelope marks the slot of the sender
// itself in a broadcast.
type Envelope [EnvelopeSize]byte

// IsEmpty returns true if e is all zeros.
func (e *Envelope) IsEmpty() bool {
	var acc byte
	for _, b := range e {
		acc |= b
	}
	return acc == 0
}

// SealShare encrypts share for the owner of recipient.
//
// A fresh ephemeral key is sampled for every call and erased before returning, so the
// derived key encrypts exactly one share.
func SealShare(rand io.Reader, recipient *ecdh.PublicKey, share curve.Scalar) (*Envelope, error) {
	if share.Curve().ScalarBytes() != CiphertextSize {
		return nil, fmt.Errorf("dkg.SealShare: unsupported scalar size %d", share.Curve().ScalarBytes())
	}
	ephemeral, err := ecdh.GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("dkg.SealShare: %w: %v", ErrEntropy, err)
	}
	defer ephemeral.Zero()

	secret, err := ephemeral.ECDH(recipient)
	if err != nil {
		return nil, fmt.Errorf("dkg.SealShare: %w", err)
	}
	defer ecdh.Zeroize(secret)

	plaintext, err := share.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("dkg.SealShare: %w", err)
	}
	defer ecdh.Zeroize(plaintext)

	var out Envelope
	ephemeralPublic := ecdh.MarshalPublicKey(ephemeral.PublicKey())
	copy(out[CiphertextSize:], ephemeralPublic)
	if err = xorKeyStream(out[:CiphertextSize], plaintext, secret, ephemeralPublic, ecdh.MarshalPublicKey(recipient)); err != nil {
		return nil, fmt.Errorf("dkg.SealShare: %w", err)
	}
	return &out, nil
}

// OpenShare decrypts an envelope with the recipient's long-term key.
//
// Any failure is reported as ErrDecryption, and should be blamed on the sender.
func OpenShare(group curve.Curve, envelope []byte, key ecdh.KeyAgreement) (curve.Scalar, error) {
	if len(envelope) != EnvelopeSize {
		return nil, fmt.Errorf("dkg.OpenShare: %w: invalid length %d", ErrDecryption, len(envelope))
	}
	ephemeralPublic := envelope[CiphertextSize:]
	ephemeral, err := ecdh.ParsePublicKey(ephemeralPublic)
	if err != nil {
		return nil, fmt.Errorf("dkg.OpenShare: %w: ephemeral key: %v", ErrDecryption, err)
	}

	secret, err := key.ECDH(ephemeral)
	if err != nil {
		return nil, fmt.Errorf("dkg.OpenShare: %w: %v", ErrDecryption, err)
	}
	defer ecdh.Zeroize(secret)

	plaintext := make([]byte, CiphertextSize)
	defer ecdh.Zeroize(plaintext)
	if err = xorKeyStream(plaintext, envelope[:CiphertextSize], secret, ephemeralPublic, ecdh.MarshalPublicKey(key.PublicKey())); err != nil {
		return nil, fmt.Errorf("dkg.OpenShare: %w: %v", ErrDecryption, err)
	}

	share := group.NewScalar()
	if err = share.UnmarshalBinary(plaintext); err != nil {
		return nil, fmt.Errorf("dkg.OpenShare: %w: invalid share", ErrDecryption)
	}
	return share, nil
}

// xorKeyStream sets dst = src ⊕ ChaCha20(k), where k is derived from the ECDH secret and
// both public keys.
func xorKeyStream(dst, src, secret, ephemeralPublic, recipientPublic []byte) error {
	key := make([]byte, chacha20.KeySize)
	defer ecdh.Zeroize(key)
	hash.DeriveKey(envelopeKDFContext, key, secret, ephemeralPublic, recipientPublic)

	var nonce [chacha20.NonceSize]byte
	cipher, err := chacha20.NewUnauthenticatedCipher(key, nonce[:])
	if err != nil {
		return err
	}
	cipher.XORKeyStream(dst, src)
	return nil
}

// EncodeEnvelopes concatenates envelopes in index order. A nil entry is encoded as an
// empty envelope.
func EncodeEnvelopes(envelopes []*Envelope) []byte {
	out := make([]byte, 0, len(envelopes)*EnvelopeSize)
	var empty Envelope
	for _, e := range envelopes {
		if e == nil {
			e = &empty
		}
		out = append(out, e[:]...)
	}
	return out
}

// DecodeEnvelopes splits a broadcast into n envelopes.
func DecodeEnvelopes(data []byte, n int) ([]*Envelope, error) {
	if len(data) != n*EnvelopeSize {
		return nil, fmt.Errorf("dkg.DecodeEnvelopes: %w: expected %d bytes, got %d", ErrDecryption, n*EnvelopeSize, len(data))
	}
	out := make([]*Envelope, n)
	for i := range out {
		e := new(Envelope)
		copy(e[:], data[i*EnvelopeSize:])
		out[i] = e
	}
	return out, nil
}

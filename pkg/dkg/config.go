package dkg

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/bls-dkg/internal/hash"
	"github.com/taurusgroup/bls-dkg/pkg/ecdh"
	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
	"github.com/taurusgroup/bls-dkg/pkg/party"
	"github.com/taurusgroup/bls-dkg/pkg/pool"
)

// ProtocolID identifies this key generation in session identifiers and messages.
const ProtocolID = "bls-dkg/feldman"

// Config contains the parameters of a Session, from the perspective of one participant.
type Config struct {
	// ID is the index of this participant, in [0, len(PublicKeys)).
	ID party.ID
	// Threshold is the number of shares required to use the key.
	Threshold int
	// PrivateKey is the long-term key of this participant, used to decrypt shares.
	PrivateKey ecdh.KeyAgreement
	// PublicKeys are the long-term keys of all participants, in index order.
	PublicKeys []*ecdh.PublicKey
	// Group defaults to curve.BN254.
	Group curve.Curve
	// Rand defaults to crypto/rand.
	Rand io.Reader
	// Pool is optional, and parallelizes sealing and verification.
	Pool *pool.Pool
	// Logger defaults to zerolog.Nop().
	Logger *zerolog.Logger
	// SessionID is optional context, which must be the same for all participants.
	SessionID []byte
}

// N returns the number of participants.
func (c *Config) N() int {
	return len(c.PublicKeys)
}

// Validate checks that the Config describes a consistent session.
func (c *Config) Validate() error {
	n := c.N()
	if n < 1 || n > party.MaxParties {
		return fmt.Errorf("dkg.Config: %w: n = %d", ErrInvalidThreshold, n)
	}
	if c.Threshold < 1 || c.Threshold > n {
		return fmt.Errorf("dkg.Config: %w: t = %d, n = %d", ErrInvalidThreshold, c.Threshold, n)
	}
	if !c.ID.Valid(n) {
		return fmt.Errorf("dkg.Config: %w: %s", ErrInvalidIndex, c.ID)
	}
	if c.PrivateKey == nil {
		return errors.New("dkg.Config: missing private key")
	}
	seen := make(map[string]party.ID, n)
	for i, pk := range c.PublicKeys {
		if pk == nil {
			return fmt.Errorf("dkg.Config: missing public key %d", i)
		}
		key := string(ecdh.MarshalPublicKey(pk))
		if j, ok := seen[key]; ok {
			return fmt.Errorf("dkg.Config: parties %s and %d share a public key", j, i)
		}
		seen[key] = party.ID(i)
	}
	if own := c.PrivateKey.PublicKey(); own == nil || !own.IsEqual(c.PublicKeys[c.ID]) {
		return errors.New("dkg.Config: private key does not match own public key")
	}
	return nil
}

func (c *Config) group() curve.Curve {
	if c.Group == nil {
		return curve.BN254{}
	}
	return c.Group
}

// SSID returns the identifier of the session described by c.
//
// It binds the protocol, the group, the threshold, and the long-term keys of every
// participant, so that messages from a different session are never mixed in.
func (c *Config) SSID() []byte {
	h := hash.New(
		hash.BytesWithDomain{TheDomain: "Protocol ID", Bytes: []byte(ProtocolID)},
		hash.BytesWithDomain{TheDomain: "Group Name", Bytes: []byte(c.group().Name())},
	)
	_ = h.WriteAny(c.Threshold, c.N())
	for _, pk := range c.PublicKeys {
		_ = h.WriteAny(hash.BytesWithDomain{TheDomain: "Public Key", Bytes: ecdh.MarshalPublicKey(pk)})
	}
	_ = h.WriteAny(hash.BytesWithDomain{TheDomain: "Session ID", Bytes: c.SessionID})
	return h.Sum()
}

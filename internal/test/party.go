package test

import (
	"crypto/rand"

	"github.com/taurusgroup/bls-dkg/pkg/dkg"
	"github.com/taurusgroup/bls-dkg/pkg/ecdh"
	"github.com/taurusgroup/bls-dkg/pkg/party"
	"github.com/taurusgroup/bls-dkg/pkg/pool"
)

// Keys generates n long-term key pairs.
func Keys(n int) ([]*ecdh.PrivateKey, []*ecdh.PublicKey) {
	secrets := make([]*ecdh.PrivateKey, n)
	publics := make([]*ecdh.PublicKey, n)
	for i := range secrets {
		sk, err := ecdh.GenerateKey(rand.Reader)
		if err != nil {
			panic(err)
		}
		secrets[i] = sk
		publics[i] = sk.PublicKey()
	}
	return secrets, publics
}

// Configs returns the configuration of every participant in a session of n parties with the given threshold.
// pl may be nil.
func Configs(threshold, n int, pl *pool.Pool) []dkg.Config {
	secrets, publics := Keys(n)
	configs := make([]dkg.Config, n)
	for _, id := range party.Range(n) {
		configs[id] = dkg.Config{
			ID:         id,
			Threshold:  threshold,
			PrivateKey: secrets[id],
			PublicKeys: publics,
			Pool:       pl,
			SessionID:  []byte("test"),
		}
	}
	return configs
}

package main

import (
	"errors"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/bls-dkg/internal/test"
	"github.com/taurusgroup/bls-dkg/pkg/dkg"
	"github.com/taurusgroup/bls-dkg/pkg/party"
	"github.com/taurusgroup/bls-dkg/pkg/pool"
	"github.com/taurusgroup/bls-dkg/pkg/protocol"
)

func Keygen(config dkg.Config, n *test.Network) (*dkg.Result, error) {
	h, err := protocol.NewHandler(config)
	if err != nil {
		return nil, err
	}
	test.HandlerLoop(config.ID, h, n)
	r, err := h.Result()
	if err != nil {
		return nil, err
	}
	data, err := r.MarshalBinary()
	if err != nil {
		return nil, err
	}
	h.Log.Info().
		Int("size", len(data)).
		Stringer("public key", r.PublicKey).
		Msg("key share")
	return r, nil
}

func All(config dkg.Config, n *test.Network) (*dkg.Result, error) {
	r, err := Keygen(config, n)
	if err != nil {
		return nil, err
	}
	// any threshold sized subset recovers the common key
	signers := party.Range(len(config.PublicKeys))[:config.Threshold]
	public, err := r.InterpolatePublicKey(signers)
	if err != nil {
		return nil, err
	}
	if !public.Equal(r.CommonPublicKey) {
		return nil, errors.New("interpolated public key mismatch")
	}
	return r, nil
}

func main() {
	threshold, N := 3, 5
	ids := party.Range(N)

	logger := zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	pl := pool.NewPool(0)
	defer pl.TearDown()

	configs := test.Configs(threshold, N, pl)
	for i := range configs {
		configs[i].Logger = &logger
	}

	n := test.NewNetwork(ids, nil)
	results := make([]*dkg.Result, N)
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id party.ID) {
			defer wg.Done()
			r, err := All(configs[id], n)
			if err != nil {
				logger.Error().Err(err).Stringer("party", id).Msg("keygen failed")
				return
			}
			results[id] = r
		}(id)
	}
	wg.Wait()

	for _, r := range results {
		if r == nil || !r.CommonPublicKey.Equal(results[0].CommonPublicKey) {
			logger.Error().Msg("parties disagree on the common public key")
			os.Exit(1)
		}
	}
	logger.Info().Stringer("common public key", results[0].CommonPublicKey).Msg("done")
}

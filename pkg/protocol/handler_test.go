package protocol_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/bls-dkg/internal/test"
	"github.com/taurusgroup/bls-dkg/pkg/dkg"
	"github.com/taurusgroup/bls-dkg/pkg/party"
	"github.com/taurusgroup/bls-dkg/pkg/pool"
	"github.com/taurusgroup/bls-dkg/pkg/protocol"
)

func run(t *testing.T, configs []dkg.Config, rule test.Rule) []*protocol.Handler {
	n := len(configs)
	ids := party.Range(n)
	network := test.NewNetwork(ids, rule)
	handlers := make([]*protocol.Handler, n)
	for _, id := range ids {
		h, err := protocol.NewHandler(configs[id])
		require.NoError(t, err)
		handlers[id] = h
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id party.ID) {
			defer wg.Done()
			test.HandlerLoop(id, handlers[id], network)
		}(id)
	}
	wg.Wait()
	return handlers
}

func TestHandler(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	for _, tc := range []struct{ threshold, n int }{{1, 1}, {1, 2}, {2, 3}, {3, 5}} {
		handlers := run(t, test.Configs(tc.threshold, tc.n, pl), nil)

		results := make([]*dkg.Result, tc.n)
		for i, h := range handlers {
			r, err := h.Result()
			require.NoError(t, err, "t = %d, n = %d", tc.threshold, tc.n)
			require.NoError(t, r.Validate())
			results[i] = r
		}
		for _, r := range results[1:] {
			assert.True(t, r.CommonPublicKey.Equal(results[0].CommonPublicKey))
			assert.Equal(t, results[0].SSID, r.SSID)
		}
		ids := party.Range(tc.n)[tc.n-tc.threshold:]
		public, err := results[0].InterpolatePublicKey(ids)
		require.NoError(t, err)
		assert.True(t, public.Equal(results[0].CommonPublicKey))
	}
}

func TestHandler_CheatingDealer(t *testing.T) {
	const cheater party.ID = 1
	threshold, n := 2, 4

	// the cheater sends a fresh, unrelated vector to every peer
	other := test.Configs(threshold, n, nil)
	decoy, err := dkg.NewSession(other[0])
	require.NoError(t, err)
	require.NoError(t, decoy.GeneratePolynomial())
	fake, err := decoy.VerificationVector()
	require.NoError(t, err)

	rule := test.RuleFunc(func(from, _ party.ID, round protocol.RoundNumber, data []byte) []byte {
		if from == cheater && round == protocol.RoundVerificationVector {
			return fake
		}
		return data
	})
	handlers := run(t, test.Configs(threshold, n, nil), rule)

	for _, id := range party.Range(n) {
		if id == cheater {
			continue
		}
		_, err := handlers[id].Result()
		require.Error(t, err)
		var protocolErr protocol.Error
		require.ErrorAs(t, err, &protocolErr)
		assert.Equal(t, []party.ID{cheater}, protocolErr.Culprits, "party %s", id)
		assert.ErrorIs(t, err, dkg.ErrVerification)
	}
}

func TestHandler_Validate(t *testing.T) {
	configs := test.Configs(2, 3, nil)
	h, err := protocol.NewHandler(configs[0])
	require.NoError(t, err)

	first := <-h.Listen()
	require.NotNil(t, first)
	assert.Equal(t, protocol.RoundVerificationVector, first.RoundNumber)
	assert.Equal(t, party.ID(0), first.From)
	assert.Len(t, first.Hash(), 32)

	peer, err := protocol.NewHandler(configs[1])
	require.NoError(t, err)
	msg := <-peer.Listen()
	require.True(t, h.CanAccept(msg))

	for name, modify := range map[string]func(m *protocol.Message){
		"ssid":     func(m *protocol.Message) { m.SSID = []byte("other") },
		"protocol": func(m *protocol.Message) { m.Protocol = "cmp" },
		"round":    func(m *protocol.Message) { m.RoundNumber = 3 },
		"sender":   func(m *protocol.Message) { m.From = 3 },
		"self":     func(m *protocol.Message) { m.From = 0 },
		"empty":    func(m *protocol.Message) { m.Data = nil },
	} {
		m := *msg
		modify(&m)
		assert.False(t, h.CanAccept(&m), name)
		assert.Error(t, h.Update(&m), name)
	}
	assert.False(t, h.CanAccept(nil))

	require.NoError(t, h.Update(msg))
	assert.ErrorIs(t, h.Update(msg), dkg.ErrDuplicate)

	_, err = h.Result()
	assert.Error(t, err, "not finished")

	h.Stop()
	_, ok := <-h.Listen()
	assert.False(t, ok)
	_, err = h.Result()
	assert.Error(t, err)
	assert.False(t, h.CanAccept(msg))
}

func TestHandler_MalformedContribution(t *testing.T) {
	configs := test.Configs(2, 3, nil)
	h, err := protocol.NewHandler(configs[0])
	require.NoError(t, err)
	first := <-h.Listen()

	// the contribution of a peer may arrive before its vector
	bad := &protocol.Message{
		SSID:        first.SSID,
		From:        2,
		Protocol:    dkg.ProtocolID,
		RoundNumber: protocol.RoundSecretKeyContribution,
		Data:        []byte{1, 2, 3},
	}
	err = h.Update(bad)
	var protocolErr protocol.Error
	require.ErrorAs(t, err, &protocolErr)
	assert.Equal(t, []party.ID{2}, protocolErr.Culprits)
	assert.ErrorIs(t, err, dkg.ErrDecryption)

	_, err = h.Result()
	assert.Error(t, err)
}

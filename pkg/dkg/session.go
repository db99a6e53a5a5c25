package dkg

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/bls-dkg/pkg/ecdh"
	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
	"github.com/taurusgroup/bls-dkg/pkg/math/polynomial"
	"github.com/taurusgroup/bls-dkg/pkg/party"
	"github.com/taurusgroup/bls-dkg/pkg/pool"
)

// Session runs the key generation for one participant.
//
// The session moves through
//
//	init → polynomial generated → vectors exchanged → shares exchanged → all verified → finalized
//
// and enters the faulted state as soon as a peer sends an invalid vector or share.
// Payloads from peers may be delivered concurrently and in any order; the state is
// re-evaluated after each of them.
type Session struct {
	dkg   *DKG
	self  party.ID
	key   ecdh.KeyAgreement
	peers []*ecdh.PublicKey
	pool  *pool.Pool
	rand  io.Reader
	ssid  []byte
	log   zerolog.Logger

	slots []*slot

	mtx          sync.Mutex
	state        State
	fault        *FaultError
	poly         *polynomial.Polynomial
	vector       []byte
	contribution []byte
	result       *Result
}

// NewSession validates config and returns a Session in the init state.
func NewSession(config Config) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	rand := config.Rand
	if rand == nil {
		rand = defaultRand
	}
	d, err := New(config.group(), config.Threshold, config.N(), rand)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}
	ssid := config.SSID()

	s := &Session{
		dkg:   d,
		self:  config.ID,
		key:   config.PrivateKey,
		peers: append([]*ecdh.PublicKey{}, config.PublicKeys...),
		pool:  config.Pool,
		rand:  pool.NewLockedReader(rand),
		ssid:  ssid,
		slots: make([]*slot, d.N()),
		log: logger.With().
			Str("protocol", ProtocolID).
			Stringer("party", config.ID).
			Int("n", d.N()).
			Int("t", d.Threshold()).
			Hex("ssid", ssid[:8]).
			Logger(),
	}
	for i := range s.slots {
		s.slots[i] = &slot{}
	}
	s.log.Debug().Msg("session created")
	return s, nil
}

// SSID returns the identifier shared by all participants of this session.
func (s *Session) SSID() []byte { return s.ssid }

// ID returns the index of this participant.
func (s *Session) ID() party.ID { return s.self }

// DKG returns the parameters of the session.
func (s *Session) DKG() *DKG { return s.dkg }

// State returns the current state.
func (s *Session) State() State {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.state
}

// Err returns the fault that ended the session, if any.
func (s *Session) Err() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.fault == nil {
		return nil
	}
	return s.fault
}

// GeneratePolynomial samples the secret polynomial, and records this participant's own
// verification vector and share.
func (s *Session) GeneratePolynomial() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.fault != nil {
		return s.fault
	}
	if s.state != StateInit {
		return fmt.Errorf("dkg.GeneratePolynomial: %w: state %s", ErrPrecondition, s.state)
	}

	poly, err := s.dkg.GeneratePolynomial()
	if err != nil {
		return err
	}
	vv := s.dkg.VerificationVector(poly)
	data, err := vv.MarshalBinary()
	if err != nil {
		return fmt.Errorf("dkg.GeneratePolynomial: %w", err)
	}
	share, err := s.dkg.Evaluate(poly, s.self)
	if err != nil {
		return err
	}

	own := s.slots[s.self]
	own.mtx.Lock()
	own.vector = vv
	own.share = share
	own.tag = SlotVerified
	own.mtx.Unlock()

	s.poly = poly
	s.vector = data
	s.setState(StatePolynomialGenerated)
	s.advance()
	return nil
}

// VerificationVector returns the encoding of this participant's verification vector, to be
// broadcast to every peer.
func (s *Session) VerificationVector() ([]byte, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.vector == nil {
		return nil, fmt.Errorf("dkg.VerificationVector: %w: no polynomial", ErrPrecondition)
	}
	return append([]byte{}, s.vector...), nil
}

// SecretKeyContribution returns the n envelopes to broadcast, each containing the share
// of one peer. The slot of this participant is left empty.
//
// The envelopes are sealed once, later calls return the same payload.
func (s *Session) SecretKeyContribution() ([]byte, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.contribution != nil {
		return append([]byte{}, s.contribution...), nil
	}
	if s.fault != nil {
		return nil, s.fault
	}
	if s.poly == nil || s.poly.Erased() {
		return nil, fmt.Errorf("dkg.SecretKeyContribution: %w: no polynomial", ErrPrecondition)
	}

	shares, err := s.dkg.SecretKeyContribution(s.poly)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, share := range shares {
			share.Zero()
		}
	}()

	sealed := s.pool.Parallelize(len(shares), func(i int) interface{} {
		if party.ID(i) == s.self {
			return nil
		}
		envelope, err := SealShare(s.rand, s.peers[i], shares[i])
		if err != nil {
			return err
		}
		return envelope
	})

	envelopes := make([]*Envelope, len(sealed))
	for i, r := range sealed {
		switch r := r.(type) {
		case error:
			return nil, fmt.Errorf("dkg.SecretKeyContribution: party %d: %w", i, r)
		case *Envelope:
			envelopes[i] = r
		}
	}
	s.contribution = EncodeEnvelopes(envelopes)
	s.log.Debug().Msg("shares sealed")
	return append([]byte{}, s.contribution...), nil
}

// ReceiveVerificationVector records the verification vector broadcast by from.
//
// An invalid vector faults the session, with from as the culprit.
func (s *Session) ReceiveVerificationVector(from party.ID, data []byte) error {
	if err := s.checkPeer(from); err != nil {
		return err
	}
	vv, err := s.dkg.DecodeVerificationVector(data)
	if err != nil {
		return s.blame(from, err)
	}

	sl := s.slots[from]
	sl.mtx.Lock()
	if sl.vector != nil {
		sl.mtx.Unlock()
		return fmt.Errorf("dkg.ReceiveVerificationVector: %w: party %s", ErrDuplicate, from)
	}
	sl.vector = vv
	sl.mtx.Unlock()

	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.log.Debug().Stringer("from", from).Msg("verification vector received")
	s.advance()
	return nil
}

// ReceiveSecretKeyContribution decrypts the share addressed to this participant in the
// broadcast of from.
//
// A malformed broadcast, or an envelope which does not decrypt, faults the session.
func (s *Session) ReceiveSecretKeyContribution(from party.ID, data []byte) error {
	if err := s.checkPeer(from); err != nil {
		return err
	}
	envelopes, err := DecodeEnvelopes(data, s.dkg.N())
	if err != nil {
		return s.blame(from, err)
	}
	share, err := OpenShare(s.dkg.Group(), envelopes[s.self][:], s.key)
	if err != nil {
		return s.blame(from, err)
	}

	sl := s.slots[from]
	sl.mtx.Lock()
	if sl.tag != SlotEmpty {
		sl.mtx.Unlock()
		share.Zero()
		return fmt.Errorf("dkg.ReceiveSecretKeyContribution: %w: party %s", ErrDuplicate, from)
	}
	sl.share = share
	sl.tag = SlotReceived
	sl.mtx.Unlock()

	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.log.Debug().Stringer("from", from).Msg("share received")
	s.advance()
	return nil
}

// Verify checks the share received from a participant against its verification vector.
//
// A false result faults the session. An error is returned only when the vector or the
// share of from has not been received yet.
func (s *Session) Verify(from party.ID) (bool, error) {
	if !from.Valid(s.dkg.N()) {
		return false, fmt.Errorf("dkg.Verify: %w: %s", ErrInvalidIndex, from)
	}
	if err := s.Err(); err != nil {
		return false, err
	}
	ok, err := s.verifySlot(from)
	if err != nil {
		return false, fmt.Errorf("dkg.Verify: %w", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.advance()
	return ok, nil
}

// VerifyAll verifies every received share, and returns a *FaultError naming the lowest
// participant whose share is invalid.
func (s *Session) VerifyAll() error {
	if err := s.Err(); err != nil {
		return err
	}

	type verification struct {
		ok  bool
		err error
	}
	results := s.pool.Parallelize(s.dkg.N(), func(i int) interface{} {
		ok, err := s.verifySlot(party.ID(i))
		return verification{ok: ok, err: err}
	})

	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.advance()
	if s.fault != nil {
		return s.fault
	}
	for _, r := range results {
		if v := r.(verification); v.err != nil {
			return fmt.Errorf("dkg.VerifyAll: %w", v.err)
		}
	}
	return nil
}

func (s *Session) verifySlot(from party.ID) (bool, error) {
	sl := s.slots[from]
	sl.mtx.Lock()
	defer sl.mtx.Unlock()

	switch sl.tag {
	case SlotVerified:
		return true, nil
	case SlotRejected:
		return false, nil
	case SlotEmpty:
		return false, fmt.Errorf("%w: no share from party %s", ErrPrecondition, from)
	}
	if sl.vector == nil {
		return false, fmt.Errorf("%w: no verification vector from party %s", ErrPrecondition, from)
	}

	if s.dkg.Verify(s.self, sl.share, sl.vector) {
		sl.tag = SlotVerified
		return true, nil
	}
	sl.tag = SlotRejected
	sl.share.Zero()
	return false, nil
}

// Finalize aggregates the verified shares into this participant's secret key share.
//
// It may only be called once every share has been verified. The polynomial and the
// received shares are erased, and later calls return the same Result.
func (s *Session) Finalize() (*Result, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	switch {
	case s.state == StateFinalized:
		return s.result, nil
	case s.fault != nil:
		return nil, s.fault
	case s.state != StateAllVerified:
		return nil, fmt.Errorf("dkg.Finalize: %w: state %s", ErrPrecondition, s.state)
	}

	n := s.dkg.N()
	shares := make([]curve.Scalar, n)
	vectors := make([]*polynomial.Exponent, n)
	for i, sl := range s.slots {
		sl.mtx.Lock()
		shares[i], vectors[i] = sl.share, sl.vector
		sl.mtx.Unlock()
	}

	secret, err := s.dkg.SecretKeyShareCreate(shares)
	if err != nil {
		return nil, err
	}
	summed, err := s.dkg.sum(vectors)
	if err != nil {
		return nil, fmt.Errorf("dkg.Finalize: %w", err)
	}
	group := s.dkg.Group()
	publicShares := make([]curve.Point, n)
	for i, p := range s.pool.Parallelize(n, func(i int) interface{} {
		return summed.Evaluate(party.ID(i).Scalar(group))
	}) {
		publicShares[i] = p.(curve.Point)
	}

	public := PublicKeyFromSecretKey(secret)
	if !public.Equal(publicShares[s.self]) {
		secret.Zero()
		return nil, fmt.Errorf("dkg.Finalize: %w: public key share mismatch", ErrVerification)
	}

	s.result = &Result{
		ID:              s.self,
		Threshold:       s.dkg.Threshold(),
		SecretKeyShare:  secret,
		PublicKey:       public,
		CommonPublicKey: summed.Constant(),
		PublicKeyShares: publicShares,
		SSID:            append([]byte{}, s.ssid...),
	}

	s.poly.Erase()
	for _, sl := range s.slots {
		sl.erase()
	}
	s.setState(StateFinalized)
	return s.result, nil
}

func (s *Session) checkPeer(from party.ID) error {
	if !from.Valid(s.dkg.N()) || from == s.self {
		return fmt.Errorf("dkg: %w: unexpected sender %s", ErrInvalidIndex, from)
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.fault != nil {
		return s.fault
	}
	if s.state == StateFinalized {
		return fmt.Errorf("dkg: %w: session finalized", ErrPrecondition)
	}
	return nil
}

// blame faults the session because of from, and returns the resulting error.
func (s *Session) blame(from party.ID, err error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.setFault(from, err)
	return s.fault
}

// setFault must be called with s.mtx held. Only the first fault is kept.
func (s *Session) setFault(culprit party.ID, err error) {
	if s.fault != nil || s.state == StateFinalized {
		return
	}
	s.fault = &FaultError{Culprit: culprit, Err: err}
	s.log.Warn().Stringer("culprit", culprit).Err(err).Msg("peer fault")
	s.setState(StateFaulted)
}

func (s *Session) setState(next State) {
	s.log.Info().Stringer("from", s.state).Stringer("to", next).Msg("state advanced")
	s.state = next
}

// advance must be called with s.mtx held, after any slot was written.
//
// It reads every slot, and moves forward one state at a time for as long as the
// requirements of the next state are met.
func (s *Session) advance() {
	for {
		if s.state == StateFaulted || s.state == StateFinalized {
			return
		}
		views := make([]slotView, len(s.slots))
		for i, sl := range s.slots {
			views[i] = sl.view()
			if views[i].tag == SlotRejected {
				s.setFault(party.ID(i), ErrVerification)
				return
			}
		}

		var ready func(slotView) bool
		switch s.state {
		case StatePolynomialGenerated:
			ready = func(v slotView) bool { return v.hasVector }
		case StateVectorsExchanged:
			ready = func(v slotView) bool { return v.tag != SlotEmpty }
		case StateSharesExchanged:
			ready = func(v slotView) bool { return v.tag == SlotVerified }
		default:
			// leaving init and all verified requires an explicit call
			return
		}
		for _, v := range views {
			if !ready(v) {
				return
			}
		}
		s.setState(s.state + 1)
	}
}

package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/bls-dkg/pkg/dkg"
	"github.com/taurusgroup/bls-dkg/pkg/party"
)

// Handler represents an execution of the key generation for one participant.
// It provides a simple interface for the user to receive/deliver protocol messages.
//
// Messages of both rounds may be delivered in any order, the underlying dkg.Session
// buffers payloads which arrive early.
type Handler struct {
	session *dkg.Session
	n       int
	mtx     sync.Mutex

	Log zerolog.Logger

	done bool

	outChan chan *Message
	round   RoundNumber
	result  *dkg.Result
	err     error
}

// NewHandler creates the session described by config, generates the polynomial, and
// queues the first message.
func NewHandler(config dkg.Config) (*Handler, error) {
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}
	config.Logger = &logger

	session, err := dkg.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to create session: %w", err)
	}
	h := &Handler{
		session: session,
		n:       config.N(),
		outChan: make(chan *Message, int(FinalRoundNumber)),
		Log: logger.With().
			Str("protocol", dkg.ProtocolID).
			Stringer("party", config.ID).
			Logger(),
	}
	h.Log.Info().Msg("start")

	h.mtx.Lock()
	defer h.mtx.Unlock()
	if err = session.GeneratePolynomial(); err != nil {
		h.abort(err)
		return nil, h.err
	}
	data, err := session.VerificationVector()
	if err != nil {
		h.abort(err)
		return nil, h.err
	}
	h.send(RoundVerificationVector, data)
	h.progress()
	return h, nil
}

// Listen returns a channel with outgoing messages that must be sent to other parties.
// Every message must be _reliably_ broadcast.
// The channel is closed when either the protocol finishes, or an error occurs.
func (h *Handler) Listen() <-chan *Message {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.outChan
}

// Result returns the protocol result if the protocol completed successfully. Otherwise an error is returned.
func (h *Handler) Result() (*dkg.Result, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.result != nil {
		return h.result, nil
	}
	if h.err != nil {
		return nil, h.err
	}
	return nil, errors.New("protocol: not finished")
}

// Update performs the following:
//   - Check header information about msg and make sure we can accept it in this protocol execution
//   - Deliver the payload to the session
//   - Send the next message, or finalize, once the session has advanced far enough.
//
// This function may be called concurrently from different threads but may block until all previous calls have finished.
func (h *Handler) Update(msg *Message) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.done {
		return h.err
	}

	if err := h.validate(msg); err != nil {
		h.Log.Warn().Err(err).Msg("failed to validate")
		return err
	}
	h.Log.Debug().Stringer("msg", msg).Msg("got new message")

	var err error
	switch msg.RoundNumber {
	case RoundVerificationVector:
		err = h.session.ReceiveVerificationVector(msg.From, msg.Data)
	case RoundSecretKeyContribution:
		err = h.session.ReceiveSecretKeyContribution(msg.From, msg.Data)
	}
	if errors.Is(err, dkg.ErrDuplicate) {
		h.Log.Warn().Err(err).Stringer("msg", msg).Msg("duplicate message")
		return err
	}
	if err != nil {
		h.Log.Error().Err(err).Stringer("msg", msg).Msg("failed to handle")
		h.abort(err)
		return h.err
	}

	h.progress()
	return h.err
}

// CanAccept returns true if msg belongs to this execution, and could be delivered with Update.
func (h *Handler) CanAccept(msg *Message) bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return !h.done && h.validate(msg) == nil
}

// Stop cancels the current execution of the protocol, and alerts the other users.
func (h *Handler) Stop() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.done {
		return
	}
	h.err = Error{
		RoundNumber: h.round,
		Err:         errors.New("aborted by user"),
	}
	h.stop()
}

func (h *Handler) validate(msg *Message) error {
	if err := msg.Validate(h.n); err != nil {
		return err
	}
	if !msg.IsFor(h.session.ID()) {
		return ErrMessageFromSelf
	}
	if !bytes.Equal(h.session.SSID(), msg.SSID) {
		return ErrMessageWrongSSID
	}
	if msg.Protocol != dkg.ProtocolID {
		return ErrMessageWrongProtocolID
	}
	return nil
}

// progress sends the secret key contribution once every verification vector is known, and
// finalizes once every share has arrived.
func (h *Handler) progress() {
	state := h.session.State()

	if h.round == RoundVerificationVector && state >= dkg.StateVectorsExchanged && state != dkg.StateFaulted {
		data, err := h.session.SecretKeyContribution()
		if err != nil {
			h.abort(err)
			return
		}
		h.send(RoundSecretKeyContribution, data)
		state = h.session.State()
	}

	if h.round != RoundSecretKeyContribution {
		return
	}
	if state != dkg.StateSharesExchanged && state != dkg.StateAllVerified {
		return
	}
	if err := h.session.VerifyAll(); err != nil {
		h.abort(err)
		return
	}
	result, err := h.session.Finalize()
	if err != nil {
		h.abort(err)
		return
	}
	h.result = result
	h.Log.Info().Msg("finished")
	h.stop()
}

func (h *Handler) send(round RoundNumber, data []byte) {
	h.round = round
	h.Log.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Int("round", int(round))
	})
	h.Log.Debug().Msg("round advanced")
	// only two messages are ever sent, so the buffer never fills up
	h.outChan <- &Message{
		SSID:        h.session.SSID(),
		From:        h.session.ID(),
		Protocol:    dkg.ProtocolID,
		RoundNumber: round,
		Data:        data,
	}
}

// abort records err and stops the handler. A dkg.FaultError names the culprit.
func (h *Handler) abort(err error) {
	var culprits []party.ID
	var fault *dkg.FaultError
	if errors.As(err, &fault) {
		culprits = []party.ID{fault.Culprit}
	}
	h.err = Error{
		RoundNumber: h.round,
		Culprits:    culprits,
		Err:         err,
	}
	h.Log.Error().Err(h.err).Msg("abort")
	h.stop()
}

func (h *Handler) stop() {
	if h.done {
		return
	}
	h.done = true
	close(h.outChan)
}

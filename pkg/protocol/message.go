package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/bls-dkg/internal/hash"
	"github.com/taurusgroup/bls-dkg/pkg/party"
)

// RoundNumber is the index of the round a message belongs to.
type RoundNumber uint16

// WriteTo implements io.WriterTo.
func (r RoundNumber) WriteTo(w io.Writer) (int64, error) {
	return party.ID(r).WriteTo(w)
}

// Domain implements hash.WriterToWithDomain.
func (RoundNumber) Domain() string {
	return "Round Number"
}

const (
	// RoundVerificationVector carries the verification vector of the sender.
	RoundVerificationVector RoundNumber = 1
	// RoundSecretKeyContribution carries the encrypted shares of the sender.
	RoundSecretKeyContribution RoundNumber = 2
	// FinalRoundNumber is the last round with messages.
	FinalRoundNumber = RoundSecretKeyContribution
)

// Message is broadcast by a participant to all others.
type Message struct {
	// SSID is a byte string which uniquely identifies the session this message belongs to.
	SSID []byte
	// From is the party.ID of the sender
	From party.ID
	// Protocol identifies the protocol this message belongs to
	Protocol string
	// RoundNumber is the index of the round this message belongs to
	RoundNumber RoundNumber
	// Data is the payload consumed by the session.
	Data []byte
}

// String implements fmt.Stringer.
func (m Message) String() string {
	return fmt.Sprintf("message: round %d, from: %s, protocol: %s", m.RoundNumber, m.From, m.Protocol)
}

// Broadcast returns true if the message should be reliably broadcast to all participants
// in the protocol. This is always the case for key generation messages.
func (m Message) Broadcast() bool {
	return true
}

// IsFor returns true if the message is intended for the designated party.
func (m Message) IsFor(id party.ID) bool {
	return m.From != id
}

// Hash returns a 32 byte digest of the message content, including the headers.
// Can be used to produce a signature for the message, or to compare broadcasts.
func (m Message) Hash() []byte {
	h := hash.New(
		hash.BytesWithDomain{TheDomain: "SSID", Bytes: m.SSID},
		m.From,
		hash.BytesWithDomain{TheDomain: "Protocol", Bytes: []byte(m.Protocol)},
		m.RoundNumber,
		hash.BytesWithDomain{TheDomain: "Content", Bytes: m.Data},
	)
	return h.Sum()
}

var (
	ErrMessageNil                = errors.New("message: nil")
	ErrMessageWrongSSID          = errors.New("message: SSID mismatch")
	ErrMessageWrongProtocolID    = errors.New("message: wrong protocol ID")
	ErrMessageInvalidRoundNumber = errors.New("message: invalid round number")
	ErrMessageUnknownSender      = errors.New("message: unknown sender")
	ErrMessageFromSelf           = errors.New("message: sent by self")
	ErrMessageEmpty              = errors.New("message: empty content")
)

// Validate checks that the message is well formed for a session of n participants.
func (m *Message) Validate(n int) error {
	if m == nil {
		return ErrMessageNil
	}
	if m.RoundNumber < RoundVerificationVector || m.RoundNumber > FinalRoundNumber {
		return ErrMessageInvalidRoundNumber
	}
	if !m.From.Valid(n) {
		return ErrMessageUnknownSender
	}
	if len(m.Data) == 0 {
		return ErrMessageEmpty
	}
	return nil
}

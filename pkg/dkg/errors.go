package dkg

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/bls-dkg/pkg/math/sample"
	"github.com/taurusgroup/bls-dkg/pkg/party"
)

var (
	// ErrEntropy is returned when the source of randomness fails. It is fatal.
	ErrEntropy = sample.ErrEntropy
	// ErrInvalidIndex is returned for a participant index outside [0, n).
	ErrInvalidIndex = errors.New("dkg: invalid participant index")
	// ErrInvalidThreshold is returned when 1 ≤ t ≤ n does not hold.
	ErrInvalidThreshold = errors.New("dkg: invalid threshold")
	// ErrDecryption is returned for a malformed envelope, or one that does not decrypt
	// to a valid share.
	ErrDecryption = errors.New("dkg: failed to decrypt share")
	// ErrVerification is returned when a share does not match its verification vector.
	ErrVerification = errors.New("dkg: share does not match verification vector")
	// ErrPrecondition is returned when an operation is called out of order.
	ErrPrecondition = errors.New("dkg: precondition violated")
	// ErrDuplicate is returned when a peer sends the same payload twice.
	ErrDuplicate = errors.New("dkg: duplicate message")
)

// FaultError identifies the participant responsible for a failed session.
type FaultError struct {
	// Culprit is the index of the misbehaving participant.
	Culprit party.ID
	// Err is the underlying error, usually ErrDecryption or ErrVerification.
	Err error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("dkg: party %s: %s", e.Culprit, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

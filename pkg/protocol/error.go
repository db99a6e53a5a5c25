package protocol

import (
	"fmt"

	"github.com/taurusgroup/bls-dkg/pkg/party"
)

// Error is a custom error for protocols which contains information about the responsible
// round in which it occurred, and the party responsible.
type Error struct {
	// RoundNumber where the error occurred
	RoundNumber RoundNumber
	// Culprits is empty if the identity of the misbehaving party cannot be known
	Culprits []party.ID
	// Err is the underlying error
	Err error
}

func (e Error) Error() string {
	if len(e.Culprits) == 0 {
		return fmt.Sprintf("round %d: %s", e.RoundNumber, e.Err)
	}
	return fmt.Sprintf("round %d: culprits: %v: %s", e.RoundNumber, e.Culprits, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

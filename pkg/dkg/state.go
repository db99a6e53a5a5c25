package dkg

import (
	"sync"

	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
	"github.com/taurusgroup/bls-dkg/pkg/math/polynomial"
)

// State is the progress of a Session.
type State int

const (
	StateInit State = iota
	StatePolynomialGenerated
	StateVectorsExchanged
	StateSharesExchanged
	StateAllVerified
	StateFinalized
	// StateFaulted is terminal, and is entered as soon as a peer is caught cheating.
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StatePolynomialGenerated:
		return "polynomial generated"
	case StateVectorsExchanged:
		return "vectors exchanged"
	case StateSharesExchanged:
		return "shares exchanged"
	case StateAllVerified:
		return "all verified"
	case StateFinalized:
		return "finalized"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// SlotTag tracks the share received from a single participant.
type SlotTag int

const (
	SlotEmpty SlotTag = iota
	SlotReceived
	SlotVerified
	SlotRejected
)

func (t SlotTag) String() string {
	switch t {
	case SlotEmpty:
		return "empty"
	case SlotReceived:
		return "received"
	case SlotVerified:
		return "verified"
	case SlotRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// slot holds what was received from one participant.
//
// Writes to different slots are independent; each slot is guarded by its own mutex.
type slot struct {
	mtx    sync.Mutex
	vector *polynomial.Exponent
	share  curve.Scalar
	tag    SlotTag
}

type slotView struct {
	hasVector bool
	tag       SlotTag
}

func (s *slot) view() slotView {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return slotView{hasVector: s.vector != nil, tag: s.tag}
}

// erase overwrites the received share.
func (s *slot) erase() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.share != nil {
		s.share.Zero()
	}
}

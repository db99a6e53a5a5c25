package test

import (
	"fmt"

	"github.com/taurusgroup/bls-dkg/pkg/dkg"
	"github.com/taurusgroup/bls-dkg/pkg/party"
	"github.com/taurusgroup/bls-dkg/pkg/protocol"
	"golang.org/x/sync/errgroup"
)

// Rule describes a hook that can be applied to a protocol execution.
type Rule interface {
	// ModifyContent returns the payload delivered to `to`, in place of data.
	ModifyContent(from, to party.ID, round protocol.RoundNumber, data []byte) []byte
}

// RuleFunc implements Rule with a function.
type RuleFunc func(from, to party.ID, round protocol.RoundNumber, data []byte) []byte

func (f RuleFunc) ModifyContent(from, to party.ID, round protocol.RoundNumber, data []byte) []byte {
	return f(from, to, round, data)
}

// Rounds drives the sessions directly, without handlers: each round is computed by all sessions
// concurrently, and its payloads then delivered concurrently.
//
// The returned slice contains the result of every session which finalized, and the error is the first failure.
func Rounds(sessions []*dkg.Session, rule Rule) ([]*dkg.Result, error) {
	var errGroup errgroup.Group
	n := len(sessions)

	vectors := make([][]byte, n)
	for i, s := range sessions {
		i, s := i, s
		errGroup.Go(func() error {
			if err := s.GeneratePolynomial(); err != nil {
				return err
			}
			data, err := s.VerificationVector()
			vectors[i] = data
			return err
		})
	}
	if err := errGroup.Wait(); err != nil {
		return nil, err
	}
	// a faulted session does not stop the others
	deliverErr := deliver(sessions, vectors, protocol.RoundVerificationVector, rule)

	contributions := make([][]byte, n)
	for i, s := range sessions {
		i, s := i, s
		if s.Err() != nil {
			continue
		}
		errGroup.Go(func() error {
			data, err := s.SecretKeyContribution()
			contributions[i] = data
			return err
		})
	}
	if err := errGroup.Wait(); err != nil {
		return nil, err
	}
	if err := deliver(sessions, contributions, protocol.RoundSecretKeyContribution, rule); err != nil && deliverErr == nil {
		deliverErr = err
	}

	results := make([]*dkg.Result, n)
	for i, s := range sessions {
		i, s := i, s
		if s.Err() != nil {
			continue
		}
		errGroup.Go(func() error {
			if err := s.VerifyAll(); err != nil {
				return fmt.Errorf("party %s: %w", s.ID(), err)
			}
			r, err := s.Finalize()
			results[i] = r
			return err
		})
	}
	if err := errGroup.Wait(); err != nil {
		return results, err
	}
	return results, deliverErr
}

func deliver(sessions []*dkg.Session, payloads [][]byte, round protocol.RoundNumber, rule Rule) error {
	var errGroup errgroup.Group
	for from := range payloads {
		if payloads[from] == nil {
			continue
		}
		for _, s := range sessions {
			from, s := party.ID(from), s
			if from == s.ID() || s.Err() != nil {
				continue
			}
			data := append([]byte{}, payloads[from]...)
			if rule != nil {
				data = rule.ModifyContent(from, s.ID(), round, data)
			}
			errGroup.Go(func() error {
				var err error
				switch round {
				case protocol.RoundVerificationVector:
					err = s.ReceiveVerificationVector(from, data)
				case protocol.RoundSecretKeyContribution:
					err = s.ReceiveSecretKeyContribution(from, data)
				}
				if err != nil {
					return fmt.Errorf("party %s: %w", s.ID(), err)
				}
				return nil
			})
		}
	}
	return errGroup.Wait()
}

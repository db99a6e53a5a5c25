package dkg

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
	"github.com/taurusgroup/bls-dkg/pkg/math/polynomial"
	"github.com/taurusgroup/bls-dkg/pkg/party"
)

// Result contains all the information produced after key generation, from the perspective
// of a single participant.
//
// When unmarshalling, EmptyResult needs to be called to set the group, before
// calling cbor.Unmarshal, or equivalent methods.
type Result struct {
	// ID is the index of this participant.
	ID party.ID
	// Threshold is the number of shares required to use the key.
	Threshold int
	// SecretKeyShare is the fraction of the secret key owned by this participant.
	SecretKeyShare curve.Scalar
	// PublicKey is SecretKeyShare•G.
	PublicKey curve.Point
	// CommonPublicKey is the public key shared by all participants.
	CommonPublicKey curve.Point
	// PublicKeyShares contains the public key of every participant's share, in index order.
	//
	// Any Threshold of them interpolate to CommonPublicKey.
	PublicKeyShares []curve.Point
	// SSID identifies the session which produced this result.
	SSID []byte
}

// EmptyResult creates an empty Result with a specific group.
//
// This needs to be called before unmarshalling, instead of just using new(Result).
// This is to allow points and scalars to be correctly unmarshalled.
func EmptyResult(group curve.Curve) *Result {
	return &Result{
		SecretKeyShare:  group.NewScalar(),
		PublicKey:       group.NewPoint(),
		CommonPublicKey: group.NewPoint(),
	}
}

// Curve returns the group of the keys.
func (r *Result) Curve() curve.Curve {
	return r.CommonPublicKey.Curve()
}

// N returns the number of participants.
func (r *Result) N() int {
	return len(r.PublicKeyShares)
}

// Validate checks that the keys in r are consistent.
func (r *Result) Validate() error {
	if r.Threshold < 1 || r.Threshold > r.N() {
		return fmt.Errorf("dkg.Result: %w: t = %d, n = %d", ErrInvalidThreshold, r.Threshold, r.N())
	}
	if !r.ID.Valid(r.N()) {
		return fmt.Errorf("dkg.Result: %w: %s", ErrInvalidIndex, r.ID)
	}
	if r.SecretKeyShare.IsZero() {
		return errors.New("dkg.Result: zero secret key share")
	}
	if !r.SecretKeyShare.ActOnBase().Equal(r.PublicKey) {
		return errors.New("dkg.Result: public key does not match secret key share")
	}
	if !r.PublicKeyShares[r.ID].Equal(r.PublicKey) {
		return errors.New("dkg.Result: public key share does not match public key")
	}
	ids := party.Range(r.N())[:r.Threshold]
	public, err := r.InterpolatePublicKey(ids)
	if err != nil {
		return err
	}
	if !public.Equal(r.CommonPublicKey) {
		return errors.New("dkg.Result: public key shares do not interpolate to the common public key")
	}
	return nil
}

// InterpolatePublicKey recovers the common public key from the public key shares of ids.
//
// At least Threshold distinct participants are required.
func (r *Result) InterpolatePublicKey(ids []party.ID) (curve.Point, error) {
	set := party.NewIDSlice(ids)
	if len(set) < r.Threshold {
		return nil, fmt.Errorf("dkg.Result: %w: %d participants, threshold is %d", ErrPrecondition, len(set), r.Threshold)
	}
	if !set.Valid(r.N()) {
		return nil, fmt.Errorf("dkg.Result: %w", ErrInvalidIndex)
	}
	points := make(map[party.ID]curve.Point, len(set))
	for _, id := range set {
		points[id] = r.PublicKeyShares[id]
	}
	return polynomial.InterpolateExponent(r.Curve(), points), nil
}

type resultMarshal struct {
	ID              party.ID
	Threshold       int
	SecretKeyShare  []byte
	PublicKey       []byte
	CommonPublicKey []byte
	PublicKeyShares [][]byte
	SSID            []byte
}

func (r *Result) MarshalBinary() ([]byte, error) {
	rm := &resultMarshal{
		ID:              r.ID,
		Threshold:       r.Threshold,
		PublicKeyShares: make([][]byte, len(r.PublicKeyShares)),
		SSID:            r.SSID,
	}
	var err error
	if rm.SecretKeyShare, err = r.SecretKeyShare.MarshalBinary(); err != nil {
		return nil, err
	}
	if rm.PublicKey, err = r.PublicKey.MarshalBinary(); err != nil {
		return nil, err
	}
	if rm.CommonPublicKey, err = r.CommonPublicKey.MarshalBinary(); err != nil {
		return nil, err
	}
	for i, p := range r.PublicKeyShares {
		if rm.PublicKeyShares[i], err = p.MarshalBinary(); err != nil {
			return nil, err
		}
	}
	return cbor.Marshal(rm)
}

func (r *Result) UnmarshalBinary(data []byte) error {
	if r.CommonPublicKey == nil || r.SecretKeyShare == nil || r.PublicKey == nil {
		return errors.New("dkg.Result: must be initialized using EmptyResult")
	}
	group := r.CommonPublicKey.Curve()

	var rm resultMarshal
	if err := cbor.Unmarshal(data, &rm); err != nil {
		return fmt.Errorf("dkg.Result: %w", err)
	}
	if err := r.SecretKeyShare.UnmarshalBinary(rm.SecretKeyShare); err != nil {
		return fmt.Errorf("dkg.Result: secret key share: %w", err)
	}
	if err := r.PublicKey.UnmarshalBinary(rm.PublicKey); err != nil {
		return fmt.Errorf("dkg.Result: public key: %w", err)
	}
	if err := r.CommonPublicKey.UnmarshalBinary(rm.CommonPublicKey); err != nil {
		return fmt.Errorf("dkg.Result: common public key: %w", err)
	}
	r.PublicKeyShares = make([]curve.Point, len(rm.PublicKeyShares))
	for i, data := range rm.PublicKeyShares {
		p := group.NewPoint()
		if err := p.UnmarshalBinary(data); err != nil {
			return fmt.Errorf("dkg.Result: public key share %d: %w", i, err)
		}
		r.PublicKeyShares[i] = p
	}
	r.ID = rm.ID
	r.Threshold = rm.Threshold
	r.SSID = rm.SSID
	return r.Validate()
}

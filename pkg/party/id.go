package party

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/bls-dkg/pkg/math/curve"
)

// ByteSize is the number of bytes used to encode an ID.
const ByteSize = 2

// MaxParties is the largest number of participants an ID can address.
const MaxParties = 1<<(8*ByteSize) - 1

// ID is the index of a participant, in the range [0, n).
//
// A participant's shares are polynomial evaluations at ID + 1, so that no index
// ever evaluates the constant term.
type ID uint16

// Scalar returns the evaluation point of this participant, ID + 1.
func (id ID) Scalar(group curve.Curve) curve.Scalar {
	return group.NewScalar().SetNat(new(saferith.Nat).SetUint64(uint64(id) + 1))
}

// Valid returns true if the ID addresses one of n participants.
func (id ID) Valid(n int) bool {
	return int(id) < n
}

// String returns a base 10 representation of ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// WriteTo implements io.WriterTo, and writes the ID as 2 big-endian bytes.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	var buf [ByteSize]byte
	binary.BigEndian.PutUint16(buf[:], uint16(id))
	n, err := w.Write(buf[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ID) Domain() string {
	return "ID"
}

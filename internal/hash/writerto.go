package hash

import (
	"encoding/binary"
	"io"
)

// WriterToWithDomain represents a type writing itself, and knowing its domain.
//
// Providing a domain string lets us distinguish the output of different types
// implementing this same interface.
type WriterToWithDomain interface {
	io.WriterTo

	// Domain returns a context string, which should be unique for each implementor
	Domain() string
}

// writeWithDomain writes out `(<len(domain)><domain><data>)`.
func writeWithDomain(w io.Writer, object WriterToWithDomain) error {
	domain := object.Domain()
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(domain)))
	if _, err := w.Write([]byte("(")); err != nil {
		return err
	}
	if _, err := w.Write(length[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte(domain)); err != nil {
		return err
	}
	if _, err := object.WriteTo(w); err != nil {
		return err
	}
	if _, err := w.Write([]byte(")")); err != nil {
		return err
	}
	return nil
}

// BytesWithDomain is a useful wrapper to annotate some chunk of data with a domain.
//
// The data is prefixed by its length, so that two consecutive chunks can't be
// confused with a single one.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

// WriteTo implements io.WriterTo.
func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(b.Bytes)))
	n0, err := w.Write(length[:])
	if err != nil {
		return int64(n0), err
	}
	n1, err := w.Write(b.Bytes)
	return int64(n0 + n1), err
}

// Domain implements WriterToWithDomain.
func (b BytesWithDomain) Domain() string {
	return b.TheDomain
}

package hash

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the length of the output of Sum.
const DigestLengthBytes = 32

// Hash is the hash function used for session identifiers and message digests.
//
// Internally, this is a wrapper around blake3.Hasher, and every piece of data
// written is annotated with a domain, so that different concatenations never collide.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash, and writes the initial data to it.
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{h: blake3.New()}
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

// Digest returns a reader for the current output of the function.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - int
//   - hash.WriterToWithDomain
//   - encoding.BinaryMarshaler
//
// WriterToWithDomain types choose their own domain, the others are given one by this function.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var err error
		switch t := d.(type) {
		case []byte:
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "[]byte", Bytes: t})
		case string:
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "string", Bytes: []byte(t)})
		case int:
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], uint64(t))
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "int", Bytes: buf[:]})
		case WriterToWithDomain:
			err = writeWithDomain(hash.h, t)
		case encoding.BinaryMarshaler:
			var b []byte
			if b, err = t.MarshalBinary(); err != nil {
				return fmt.Errorf("hash.Hash: marshal %T: %w", t, err)
			}
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: fmt.Sprintf("%T", t), Bytes: b})
		default:
			return fmt.Errorf("hash.Hash: unsupported type %T", t)
		}
		if err != nil {
			return fmt.Errorf("hash.Hash: write %T: %w", d, err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// DeriveKey fills out with key material derived from parts, in the given context.
//
// Every part is prefixed by its length, so that the parts can be recovered unambiguously.
// The context string should be hardcoded, globally unique, and application-specific.
func DeriveKey(context string, out []byte, parts ...[]byte) {
	h := blake3.NewDeriveKey(context)
	var length [4]byte
	for _, p := range parts {
		binary.BigEndian.PutUint32(length[:], uint32(len(p)))
		_, _ = h.Write(length[:])
		_, _ = h.Write(p)
	}
	if _, err := io.ReadFull(h.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.DeriveKey: internal hash failure: %v", err))
	}
	h.Reset()
}

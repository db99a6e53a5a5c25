package party

import (
	"encoding/binary"
	"io"
	"sort"
)

type IDSlice []ID

// Range returns the IDs 0, 1, …, n-1.
func Range(n int) IDSlice {
	ids := make(IDSlice, n)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// NewIDSlice returns a sorted copy of ids, without duplicates.
func NewIDSlice(ids []ID) IDSlice {
	out := make(IDSlice, 0, len(ids))
	seen := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	out.sort()
	return out
}

func (ids IDSlice) sort() {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// Contains returns true if id is in ids, which must be sorted.
func (ids IDSlice) Contains(id ID) bool {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	return i < len(ids) && ids[i] == id
}

// Remove returns a copy of ids without id.
func (ids IDSlice) Remove(id ID) IDSlice {
	out := make(IDSlice, 0, len(ids))
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

// Valid returns true if ids is sorted, without duplicates, and every ID is below n.
func (ids IDSlice) Valid(n int) bool {
	for i, id := range ids {
		if !id.Valid(n) {
			return false
		}
		if i > 0 && ids[i-1] >= id {
			return false
		}
	}
	return true
}

// WriteTo implements io.WriterTo. The length is written first, followed by each ID.
func (ids IDSlice) WriteTo(w io.Writer) (int64, error) {
	var total int64
	if err := binary.Write(w, binary.BigEndian, uint32(len(ids))); err != nil {
		return 0, err
	}
	total += 4
	for _, id := range ids {
		n, err := id.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (IDSlice) Domain() string {
	return "IDSlice"
}

package encio

import (
	"fmt"
	"io"
)

const (
	maxSingleUint = 255 - 8
)

// Uvarint reads and writes uint64s in a variable-length format.
// Values below 247 take a single byte, larger values a size byte followed by little-endian bytes.
type Uvarint [9]byte

// Encode writes n to w.
func (buff *Uvarint) Encode(w io.Writer, n uint64) error {
	return Write(buff.Append(buff[:0], n), w)
}

// Append appends the encoded form of n to dst.
func (buff *Uvarint) Append(dst []byte, n uint64) []byte {
	if n < maxSingleUint {
		return append(dst, uint8(n))
	}
	size := uint8(0)
	for m := n; m > 0; m >>= 8 {
		size++
	}
	dst = append(dst, maxSingleUint+size-1)
	for ; n > 0; n >>= 8 {
		dst = append(dst, uint8(n))
	}
	return dst
}

// Decode reads a uint64 from r.
// It returns io.EOF untouched if r is exhausted before the first byte.
func (buff *Uvarint) Decode(r io.Reader) (uint64, error) {
	if err := Read(buff[:1], r); err != nil {
		return 0, err
	}
	if buff[0] < maxSingleUint {
		return uint64(buff[0]), nil
	}
	size := buff[0] - maxSingleUint + 1
	if size > 8 {
		return 0, NewIOError(ErrMalformed, r, fmt.Sprintf("varint header %v is out of range", buff[0]), 0)
	}
	if err := Read(buff[:size], r); err != nil {
		if err == io.EOF {
			err = NewIOError(io.ErrUnexpectedEOF, r, "varint truncated", 0)
		}
		return 0, err
	}
	n := uint64(0)
	for i := uint8(0); i < size; i++ {
		n |= uint64(buff[i]) << (i * 8)
	}
	return n, nil
}

// Length reads a length prefix from r and checks it against TooBig.
func (buff *Uvarint) Length(r io.Reader) (int, error) {
	n, err := buff.Decode(r)
	if err != nil {
		return 0, err
	}
	if n > TooBig {
		return 0, NewIOError(ErrMalformed, r, fmt.Sprintf("length %v is too big", n), 0)
	}
	return int(n), nil
}

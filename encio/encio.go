// Package encio provides the io helpers and error types shared by the token sinks, the wire codec
// and the decoder.
package encio

import (
	"errors"
	"fmt"
	"io"
)

// TooBig is a byte count used for sanity checking lengths decoded from readers before allocating.
// ErrMalformed is returned if a length exceeds it.
//
// By default it is 32MB on 32bit machines, and 128MB on 64bit machines.
var TooBig = uint64(1 << (25 + ((^uint(0) >> 32) & 2)))

// Read reads from r, completely filling buff.
// If the reader reports the whole buffer is read, returned errors are ignored.
func Read(buff []byte, r io.Reader) error {
	n, err := r.Read(buff)
	if n == len(buff) {
		return nil
	}

	end := n
	for end < len(buff) && err == nil && n > 0 {
		n, err = r.Read(buff[end:])
		end += n
	}

	if end == len(buff) {
		return nil
	}

	switch {
	case end > len(buff):
		return NewIOError(
			errors.New("bad io.Reader implementation"),
			r,
			fmt.Sprintf("reported %v bytes read, but buffer is only %v bytes", end, len(buff)),
			1,
		)
	case errors.Is(err, io.EOF) && end == 0:
		return io.EOF
	case errors.Is(err, io.EOF):
		return NewIOError(
			io.ErrUnexpectedEOF,
			r,
			fmt.Sprintf("want %v bytes but only got %v", len(buff), end),
			1,
		)
	case err != nil:
		return NewIOError(err, r, "", 1)
	default:
		return NewIOError(
			io.ErrNoProgress,
			r,
			fmt.Sprintf("want %v bytes but only got %v", len(buff), end),
			1,
		)
	}
}

// Write writes buff to w, retrying writers that write short without an error.
func Write(buff []byte, w io.Writer) error {
	n, err := w.Write(buff)
	if n == len(buff) {
		if err != nil {
			return NewIOError(err, w, "", 1)
		}
		return nil
	}

	end := n
	for end < len(buff) && err == nil && n > 0 {
		Warnf("%T is a bad io.Writer implementation. It wrote short (given %v bytes but reported only %v written) yet returned no error. Will call it again...", w, len(buff)-(end-n), n)
		n, err = w.Write(buff[end:])
		end += n
	}

	if end == len(buff) {
		return nil
	}

	switch {
	case end > len(buff):
		return NewIOError(
			errors.New("bad io.Writer implementation"),
			w,
			fmt.Sprintf("Write() reported %v bytes written, but was only given %v bytes", end, len(buff)),
			1,
		)
	case err == nil:
		return NewIOError(
			io.ErrShortWrite,
			w,
			fmt.Sprintf("want %v bytes but only wrote %v bytes", len(buff), end),
			1,
		)
	default:
		return NewIOError(
			err,
			w,
			fmt.Sprintf("want %v bytes but wrote %v bytes", len(buff), end),
			1,
		)
	}
}

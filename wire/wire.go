// Package wire is the binary form of token streams.
//
// Each token is its tag byte, then, for tags carrying a payload, the payload's length and big-endian magnitude bytes,
// then the length and UTF-8 bytes of its type name. Lengths are encio.Uvarints.
//
// A stream written by NewWriter starts with a header of Magic and a flags byte.
// With FlagChecksum set, every Encode call is one encio.ChecksumWriter block.
// Streams may be zstd compressed as a whole; Open and NewReader detect it.
package wire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"github.com/klauspost/compress/zstd"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
)

// Magic opens every stream written by NewWriter.
const Magic = "CTP"

// Header flags.
const (
	FlagChecksum byte = 1 << iota
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// NewEncoder returns an Encoder writing bare tokens to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// NewWriter writes a stream header to w and returns an Encoder for the tokens following it.
func NewWriter(w io.Writer, checksum bool) (*Encoder, error) {
	flags := byte(0)
	if checksum {
		flags |= FlagChecksum
	}
	if err := encio.Write(append([]byte(Magic), flags), w); err != nil {
		return nil, err
	}
	if checksum {
		w = encio.NewChecksumWriter(w, nil)
	}
	return NewEncoder(w), nil
}

// Encoder writes tokens.
// It is not safe for concurrent use.
type Encoder struct {
	w    io.Writer
	buff []byte
	uv   encio.Uvarint
}

// Encode writes tokens with a single call to the underlying writer.
func (e *Encoder) Encode(tokens ...token.Token) error {
	if len(tokens) == 0 {
		return nil
	}

	e.buff = e.buff[:0]
	for _, t := range tokens {
		if !t.Tag.Valid() {
			return encio.NewError(encio.ErrBadType, fmt.Sprintf("cannot encode %v", t.Tag), 0)
		}
		e.buff = append(e.buff, byte(t.Tag))

		if t.Tag.HasPayload() {
			if t.Payload == nil || t.Payload.Sign() < 0 {
				return encio.NewError(encio.ErrBadType, fmt.Sprintf("%v needs a non-negative payload", t.Tag), 0)
			}
			b := t.Payload.Bytes()
			e.buff = e.uv.Append(e.buff, uint64(len(b)))
			e.buff = append(e.buff, b...)
		}

		e.buff = e.uv.Append(e.buff, uint64(len(t.Type)))
		e.buff = append(e.buff, t.Type...)
	}

	return encio.Write(e.buff, e.w)
}

// NewDecoder returns a Decoder reading bare tokens from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// NewReader returns a Decoder for a stream written by NewWriter, optionally zstd compressed.
// Close the Decoder to release the decompressor.
func NewReader(r io.Reader) (*Decoder, error) {
	rc, err := Open(r)
	if err != nil {
		return nil, err
	}

	header := make([]byte, len(Magic)+1)
	if err := encio.Read(header, rc); err != nil {
		rc.Close()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, encio.NewIOError(encio.ErrMalformed, r, "stream ends inside its header", 0)
		}
		return nil, err
	}
	if string(header[:len(Magic)]) != Magic {
		rc.Close()
		return nil, encio.NewIOError(encio.ErrMalformed, r, fmt.Sprintf("bad stream header %q", header), 0)
	}

	flags := header[len(Magic)]
	if flags&^FlagChecksum != 0 {
		rc.Close()
		return nil, encio.NewIOError(encio.ErrMalformed, r, fmt.Sprintf("unknown stream flags %#x", flags), 0)
	}

	var src io.Reader = rc
	if flags&FlagChecksum != 0 {
		src = encio.NewChecksumReader(rc, nil)
	}

	d := NewDecoder(src)
	d.closer = rc
	return d, nil
}

// Decoder reads tokens.
// It is not safe for concurrent use.
type Decoder struct {
	r      io.Reader
	closer io.Closer
	tag    [1]byte
	buff   []byte
	uv     encio.Uvarint
}

// Decode reads the next token.
// It returns io.EOF at a clean end of the stream, and an error wrapping encio.ErrMalformed for corrupt input.
func (d *Decoder) Decode() (token.Token, error) {
	if err := encio.Read(d.tag[:], d.r); err != nil {
		return token.Token{}, err
	}

	t := token.Token{Tag: token.Tag(d.tag[0])}
	if !t.Tag.Valid() {
		return token.Token{}, encio.NewIOError(encio.ErrMalformed, d.r, fmt.Sprintf("unknown tag %v", d.tag[0]), 0)
	}

	if t.Tag.HasPayload() {
		b, err := d.bytes()
		if err != nil {
			return token.Token{}, err
		}
		t.Payload = new(apd.BigInt).SetBytes(b)
	}

	name, err := d.bytes()
	if err != nil {
		return token.Token{}, err
	}
	if !utf8.Valid(name) {
		return token.Token{}, encio.NewIOError(encio.ErrMalformed, d.r, fmt.Sprintf("type name %q is not UTF-8", name), 0)
	}
	t.Type = string(name)

	return t, nil
}

// DecodeAll reads tokens until the end of the stream.
func (d *Decoder) DecodeAll() ([]token.Token, error) {
	var tokens []token.Token
	for {
		t, err := d.Decode()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, t)
	}
}

// Close releases the decompressor of a Decoder returned by NewReader.
func (d *Decoder) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// bytes reads a length-prefixed byte string. The result is only valid until the next call.
func (d *Decoder) bytes() ([]byte, error) {
	n, err := d.uv.Length(d.r)
	if err != nil {
		return nil, truncated(err, d.r)
	}
	if cap(d.buff) < n {
		d.buff = make([]byte, n)
	}
	d.buff = d.buff[:n]
	if err := encio.Read(d.buff, d.r); err != nil {
		return nil, truncated(err, d.r)
	}
	return d.buff, nil
}

// truncated reports a stream ending inside a token as malformed.
func truncated(err error, r io.Reader) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return encio.NewIOError(encio.ErrMalformed, r, "stream ends inside a token", 1)
	}
	return err
}

// Open returns a reader for r, decompressing it if it starts with the zstd magic number.
func Open(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, encio.NewIOError(err, r, "sniffing compression", 0)
	}

	if bytes.Equal(magic, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, encio.NewIOError(err, r, "opening zstd stream", 0)
		}
		return dec.IOReadCloser(), nil
	}

	return io.NopCloser(br), nil
}

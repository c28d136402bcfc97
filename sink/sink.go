// Package sink holds the emission channels a Printer appends token frames to.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
	"github.com/Viatorus/compile-time-printer/wire"
)

// Sink is an append-only token channel.
// A single Append call carries one whole frame; implementations must not split it.
type Sink interface {
	Append(tokens ...token.Token) error
}

// Checker is implemented by sinks that can report up front whether they are usable.
type Checker interface {
	Check() error
}

// Discard accepts and drops every token.
var Discard Sink = discard{}

type discard struct{}

func (discard) Append(...token.Token) error { return nil }

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return new(Memory)
}

// Memory collects tokens in memory. It is safe for concurrent use.
type Memory struct {
	mutex  sync.Mutex
	tokens []token.Token
}

// Append implements Sink.
func (m *Memory) Append(tokens ...token.Token) error {
	m.mutex.Lock()
	m.tokens = append(m.tokens, tokens...)
	m.mutex.Unlock()
	return nil
}

// Tokens returns a copy of the appended tokens.
func (m *Memory) Tokens() []token.Token {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]token.Token(nil), m.tokens...)
}

// Reset drops all appended tokens.
func (m *Memory) Reset() {
	m.mutex.Lock()
	m.tokens = nil
	m.mutex.Unlock()
}

// NewText returns a sink writing one Token.String line per token to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Text writes tokens in their text form. It is safe for concurrent use.
type Text struct {
	mutex sync.Mutex
	w     io.Writer
	buff  []byte
}

// Append implements Sink. The frame is written with a single call to the underlying writer.
func (t *Text) Append(tokens ...token.Token) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.buff = t.buff[:0]
	for _, tok := range tokens {
		t.buff = append(t.buff, tok.String()...)
		t.buff = append(t.buff, '\n')
	}
	return encio.Write(t.buff, t.w)
}

// Check implements Checker.
func (t *Text) Check() error {
	if t.w == nil {
		return encio.NewError(encio.ErrNilPointer, "text sink has no writer", 0)
	}
	return nil
}

// Options configures binary sinks.
type Options struct {
	// Checksum wraps every frame in a CRC32 checked block.
	Checksum bool

	// Compress zstd compresses the stream. Create also compresses paths ending in ".zst".
	Compress bool
}

// NewWriter writes a wire stream header to w and returns a sink encoding frames after it.
// If opts.Compress is set, Close must be called to flush the compressed stream.
func NewWriter(w io.Writer, opts *Options) (*Writer, error) {
	if opts == nil {
		opts = new(Options)
	}

	s := &Writer{}
	if opts.Compress {
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, encio.NewIOError(err, w, "opening zstd stream", 0)
		}
		s.closers = append(s.closers, zw)
		w = zw
	}

	enc, err := wire.NewWriter(w, opts.Checksum)
	if err != nil {
		return nil, err
	}
	s.enc = enc
	return s, nil
}

// Writer writes frames in the binary wire format. It is safe for concurrent use.
type Writer struct {
	mutex   sync.Mutex
	enc     *wire.Encoder
	closers []io.Closer
	closed  bool
}

// Append implements Sink.
func (s *Writer) Append(tokens ...token.Token) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return encio.NewIOError(os.ErrClosed, s, "appending to closed sink", 0)
	}
	return s.enc.Encode(tokens...)
}

// Check implements Checker.
func (s *Writer) Check() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return encio.NewIOError(os.ErrClosed, s, "", 0)
	}
	return nil
}

// Close flushes and closes everything the sink opened, innermost first.
// It does not close a writer passed to NewWriter.
func (s *Writer) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = encio.NewIOError(err, c, "closing sink", 0)
		}
	}
	return first
}

// Create creates the file at path and returns a binary sink writing to it.
func Create(path string, opts *Options) (*Writer, error) {
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if filepath.Ext(path) == ".zst" {
		o.Compress = true
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, encio.NewIOError(err, nil, fmt.Sprintf("creating %v", path), 0)
	}
	bw := bufio.NewWriter(f)

	s, err := NewWriter(bw, &o)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closers = append(s.closers, flusher{bw}, f)
	return s, nil
}

type flusher struct {
	*bufio.Writer
}

func (f flusher) Close() error {
	return f.Flush()
}

package ctp

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/encode"
	"github.com/Viatorus/compile-time-printer/sink"
	"github.com/Viatorus/compile-time-printer/token"
)

// FileDescriptor selects the destination of a frame.
// Stdout and Stderr are the only destinations a decoder knows; any other value is sent to Stdout.
type FileDescriptor struct {
	Value int
}

// Destinations.
var (
	Stdout = FileDescriptor{1}
	Stderr = FileDescriptor{2}
)

func (fd FileDescriptor) String() string {
	switch fd {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return fmt.Sprintf("fd(%v)", fd.Value)
	}
}

var fileDescriptorType = reflect.TypeOf(FileDescriptor{})

// New returns a Printer appending frames to s.
//
// config may be nil, in which case defaults are used. The formatter registry in use is frozen.
// If s is nil, or implements sink.Checker and fails its check, New returns a quiet Printer
// and an error wrapping encio.ErrBadConfig; nothing is appended to s.
// Otherwise the Version handshake is appended unless config.DeadQuiet is set.
func New(s sink.Sink, config *Config) (*Printer, error) {
	c := config.copyAndFill()
	c.Registry.Freeze()

	p := &Printer{
		sink:   s,
		config: c,
	}

	if err := check(s); err != nil {
		p.config.Quiet = true
		p.config.DeadQuiet = true
		return p, err
	}

	if c.DeadQuiet {
		return p, nil
	}
	return p, p.handshake()
}

func check(s sink.Sink) error {
	if s == nil {
		return encio.NewError(encio.ErrBadConfig, "nil sink; printer is quiet", 1)
	}
	if c, ok := s.(sink.Checker); ok {
		if err := c.Check(); err != nil {
			return encio.NewError(encio.ErrBadConfig, fmt.Sprintf("sink failed its check; printer is quiet: %v", err), 1)
		}
	}
	return nil
}

// Printer encodes calls into token frames.
// It is safe for concurrent use; frames from concurrent or nested calls never interleave.
type Printer struct {
	mutex   sync.Mutex
	sink    sink.Sink
	config  *Config
	version sync.Once
	verErr  error
}

// Config returns a copy of the configuration in use.
func (p *Printer) Config() Config {
	return *p.config
}

// Quiet returns true if p appends no frames.
func (p *Printer) Quiet() bool {
	return p.config.Quiet
}

func (p *Printer) handshake() error {
	p.version.Do(func() {
		p.mutex.Lock()
		defer p.mutex.Unlock()
		p.verErr = p.sink.Append(token.VersionToken())
	})
	return p.verErr
}

// Print appends a raw frame of args.
// If the first argument is a FileDescriptor it selects the destination and is not encoded.
//
// It returns the first encoded argument, or nil if there is none.
// If any argument can't be encoded, nothing is appended and an error is returned.
func (p *Printer) Print(args ...any) (any, error) {
	fd := Stdout
	if len(args) > 0 {
		if d, ok := args[0].(FileDescriptor); ok {
			fd, args = d, args[1:]
		}
	}
	return p.emit(fd, false, args)
}

// Printf appends a formatted frame; the template followed by args.
// The template is encoded as an ordinary string; placeholders are substituted by the decoder.
func (p *Printer) Printf(template string, args ...any) (any, error) {
	return p.emit(Stdout, true, prepend(template, args))
}

// Fprint is Print with an explicit destination.
func (p *Printer) Fprint(fd FileDescriptor, args ...any) (any, error) {
	return p.emit(fd, false, args)
}

// Fprintf is Printf with an explicit destination.
func (p *Printer) Fprintf(fd FileDescriptor, template string, args ...any) (any, error) {
	return p.emit(fd, true, prepend(template, args))
}

func prepend(template string, args []any) []any {
	return append([]any{template}, args...)
}

func (p *Printer) emit(fd FileDescriptor, formatted bool, args []any) (any, error) {
	if fd != Stdout && fd != Stderr {
		encio.Warnf("%v is neither stdout nor stderr; sending to stdout", fd)
	}

	encs := make([]encode.Encodable, len(args))
	for i, arg := range args {
		ty := reflect.TypeOf(arg)
		if ty == fileDescriptorType {
			return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("argument %v is a FileDescriptor; only the first argument selects the destination", i), 2)
		}

		enc, err := encode.Resolve(p.config.Source, ty)
		if err != nil {
			return nil, fmt.Errorf("argument %v: %w", i, err)
		}
		encs[i] = enc
	}

	var first any
	if len(args) > 0 {
		first = args[0]
	}

	if p.config.Quiet {
		return first, nil
	}

	// Formatters may print while the frame is built; it is appended in one piece.
	s := encode.NewStream(p.config.MaxDepth)
	s.Emit(token.New(token.StartTag(fd == Stderr, formatted)))
	for i, arg := range args {
		if err := encs[i].Encode(reflect.ValueOf(arg), s); err != nil {
			return nil, fmt.Errorf("argument %v: %w", i, err)
		}
	}
	s.Emit(token.New(token.End))

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if err := p.sink.Append(s.Tokens()...); err != nil {
		return first, err
	}
	return first, nil
}

// Close closes the sink if it is an io.Closer.
func (p *Printer) Close() error {
	if c, ok := p.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

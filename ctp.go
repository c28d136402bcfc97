// Package ctp encodes Go values into a stream of protocol tokens, to be decoded and printed
// by an observer reading the stream; the ctp command, or the decode package.
//
// Each call to Print or Printf appends one frame to the Printer's sink:
// a Start token naming the destination and mode, the tokens of every argument in order, and an End token.
// The encoding of an argument depends only on its type, and every argument's type is resolved before
// anything is appended, so a call either appends a whole frame or nothing.
//
// Scalars are encoded as integer and float tokens, strings as bracketed runes,
// arrays, slices, maps and view.Views as arrays, and structs, complex numbers and types.Tuple as tuples.
// types.For and types.Of print type names instead of values, and types.Noise prints nothing.
// Types registered with a formatter, or implementing formatter.Formattable,
// are printed as the formatter's template with its fields substituted.
package ctp

import (
	"os"
	"sync"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/formatter"
	"github.com/Viatorus/compile-time-printer/sink"
)

// DefaultRegistry is the formatter registry used when Config.Registry is nil.
// It is frozen when the first Printer using it is created.
var DefaultRegistry = formatter.NewRegistry()

// Register registers fn as the formatter of T in DefaultRegistry.
func Register[T any](fn func(T) (template string, fields []any)) error {
	return formatter.Register(DefaultRegistry, fn)
}

var (
	defaultOnce    sync.Once
	defaultPrinter *Printer
)

// Default returns the Printer used by the package-level functions, creating it on first use.
//
// Its configuration is read from the file named by CTP_CONFIG, if any, and the environment.
// It writes a binary stream to Config.Output if set, and text tokens to os.Stderr otherwise.
// Problems are reported to encio.Warnings; they never stop the program.
func Default() *Printer {
	defaultOnce.Do(func() {
		config, err := LoadConfig(os.Getenv(EnvConfig))
		if err != nil {
			encio.Warnf("%v; using the default configuration", err)
			config = new(Config)
		}

		var s sink.Sink = sink.NewText(os.Stderr)
		if config.Output != "" {
			w, err := sink.Create(config.Output, &sink.Options{
				Checksum: config.Checksum,
				Compress: config.Compress,
			})
			if err != nil {
				encio.Warnf("%v; writing text to stderr instead", err)
			} else {
				s = w
			}
		}

		defaultPrinter, err = New(s, config)
		if err != nil {
			encio.Warnf("%v", err)
		}
	})
	return defaultPrinter
}

// Print calls Print on the default Printer.
func Print(args ...any) (any, error) {
	return Default().Print(args...)
}

// Printf calls Printf on the default Printer.
func Printf(template string, args ...any) (any, error) {
	return Default().Printf(template, args...)
}

// Fprint calls Fprint on the default Printer.
func Fprint(fd FileDescriptor, args ...any) (any, error) {
	return Default().Fprint(fd, args...)
}

// Fprintf calls Fprintf on the default Printer.
func Fprintf(fd FileDescriptor, template string, args ...any) (any, error) {
	return Default().Fprintf(fd, template, args...)
}

// Close flushes and closes the default Printer's sink.
func Close() error {
	return Default().Close()
}

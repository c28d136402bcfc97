package cmd

import (
	"io"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/Viatorus/compile-time-printer/decode"
)

// Flag names.
const (
	flagText          = "text"
	flagNoColor       = "no-color"
	flagTokens        = "tokens"
	flagRemove        = "remove"
	flagCaptureRemove = "capture-remove"
	flagHideLog       = "hide-log"
	flagTimePoint     = "time-point"
)

// outputFlags configure how statements are printed.
type outputFlags struct {
	noColor       bool
	tokens        bool
	remove        []string
	captureRemove []string
	hideLog       bool
	timePoint     bool
}

func (f *outputFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.noColor, flagNoColor, false, "do not color statements printed to stderr")
	fs.BoolVar(&f.tokens, flagTokens, false, "print the tokens instead of the statements")
	fs.StringArrayVarP(&f.remove, flagRemove, "r", nil, "remove matches of this regular expression from type names")
	fs.StringArrayVar(&f.captureRemove, flagCaptureRemove, nil,
		"replace matches of this regular expression in type names with its first capture group")
	fs.BoolVar(&f.hideLog, flagHideLog, false, "do not copy lines that are not tokens to stderr")
	fs.BoolVar(&f.timePoint, flagTimePoint, false, "prefix statements with the time since decoding started")
}

func (f *outputFlags) options() (*decode.Options, error) {
	p, err := decode.NewPrettifier(f.remove, f.captureRemove)
	if err != nil {
		return nil, err
	}
	return &decode.Options{Prettifier: p}, nil
}

// log returns where lines that are not tokens go.
func (f *outputFlags) log(c *Command) io.Writer {
	if f.hideLog {
		return io.Discard
	}
	return c.ErrOrStderr()
}

// color returns true if statements to stderr are colored.
func (f *outputFlags) color(c *Command) bool {
	if f.noColor {
		return false
	}
	file, ok := c.ErrOrStderr().(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

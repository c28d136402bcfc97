package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Viatorus/compile-time-printer/decode"
	"github.com/Viatorus/compile-time-printer/wire"
)

func newDecodeCmd(c *Command) *cobra.Command {
	var (
		flags outputFlags
		text  bool
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "print the statements of a token stream",
		Long: `decode prints the statements of a token stream read from file, or stdin.

Binary streams may be zstd compressed. With --text, the stream is read as one
token per line, and lines that are not tokens are copied to stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: mkRunE(c, func(c *Command, args []string) error {
			in, err := openInput(c, args)
			if err != nil {
				return err
			}
			defer in.Close()

			src, closer, err := tokenSource(in, text, flags.log(c))
			if err != nil {
				return err
			}
			defer closer.Close()

			return printStatements(c, src, &flags)
		}),
	}

	cmd.Flags().BoolVar(&text, flagText, false, "read tokens in their text form")
	flags.register(cmd.Flags())
	return cmd
}

// tokenSource returns a TokenSource reading r as a binary or text stream.
func tokenSource(r io.Reader, text bool, log io.Writer) (decode.TokenSource, io.Closer, error) {
	if text {
		rc, err := wire.Open(r)
		if err != nil {
			return nil, nil, err
		}
		return decode.NewTextSource(rc, log), rc, nil
	}

	dec, err := wire.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return dec, dec, nil
}

// printStatements prints every statement of src, or its tokens.
func printStatements(c *Command, src decode.TokenSource, flags *outputFlags) error {
	stdout, stderr := c.OutOrStdout(), c.ErrOrStderr()

	if flags.tokens {
		for {
			t, err := src.Decode()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(stdout, t); err != nil {
				return err
			}
		}
	}

	opts, err := flags.options()
	if err != nil {
		return err
	}
	color := flags.color(c)
	start := time.Now()

	d := decode.NewDecoder(src, opts)
	for {
		s, err := d.Next()
		switch {
		case err == io.EOF:
			return nil
		case errors.Is(err, decode.ErrNoOutput):
			_, err = io.WriteString(stderr, "No CTP output found.\n")
			return err
		case err != nil:
			return err
		}

		msg, err := s.Message()
		if err != nil {
			return err
		}
		if flags.timePoint {
			msg = fmt.Sprintf("%v - %v", time.Since(start).Round(time.Microsecond), msg)
		}

		w := stdout
		if s.Destination == decode.Stderr {
			w = stderr
			if color {
				msg = "\033[1;31m" + msg + "\033[0m"
			}
		}
		if _, err := io.WriteString(w, msg); err != nil {
			return err
		}
	}
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Viatorus/compile-time-printer/decode"
	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
)

func newCheckCmd(c *Command) *cobra.Command {
	var text bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "check that a token stream is well formed",
		Long: `check reads a token stream from file, or stdin, and reports the first token
that breaks the protocol. Streams written by a newer protocol version are rejected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: mkRunE(c, func(c *Command, args []string) error {
			in, err := openInput(c, args)
			if err != nil {
				return err
			}
			defer in.Close()

			src, closer, err := tokenSource(in, text, io.Discard)
			if err != nil {
				return err
			}
			defer closer.Close()

			frames, tokens, err := check(src)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(c.OutOrStdout(), "ok: %v frames, %v tokens\n", frames, tokens)
			return err
		}),
	}

	cmd.Flags().BoolVar(&text, flagText, false, "read tokens in their text form")
	return cmd
}

// check validates every token of src and counts frames and tokens.
func check(src decode.TokenSource) (frames, tokens int, err error) {
	v := token.Validator{Shared: true}
	for {
		t, err := src.Decode()
		if err == io.EOF {
			return frames, tokens, v.Finish()
		}
		if err != nil {
			return frames, tokens, err
		}

		if err := v.Next(t); err != nil {
			return frames, tokens, err
		}
		tokens++

		switch {
		case t.Tag == token.Version:
			if !t.Payload.IsInt64() || t.Payload.Int64() != token.ProtocolVersion {
				return frames, tokens, encio.NewError(
					decode.ErrVersionMismatch,
					fmt.Sprintf("token %v has version %v, want %v", tokens-1, t.Payload, token.ProtocolVersion),
					0,
				)
			}
		case t.Tag.IsStart():
			frames++
		}
	}
}

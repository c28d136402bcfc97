// Package cmd implements the ctp command line tool.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type runFunction func(cmd *Command, args []string) error

func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return f(c, args)
	}
}

// Command is the ctp tool.
type Command struct {
	// The currently active command.
	*cobra.Command

	root *cobra.Command
}

func newRootCmd() *Command {
	cmd := &cobra.Command{
		Use:   "ctp",
		Short: "ctp prints the values a program encoded with the ctp package.",
		Long: `ctp reads the token stream written by printers of the ctp package,
and prints every statement in it to stdout or stderr, as the program asked.

A program using the default printer writes text tokens to its stderr:

	ctp run -- go test ./...

Printers configured with an output file write a binary stream, optionally
checksummed and zstd compressed:

	ctp decode trace.ctp.zst`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &Command{Command: cmd, root: cmd}

	for _, sub := range []*cobra.Command{
		newDecodeCmd(c),
		newRunCmd(c),
		newCheckCmd(c),
		newVersionCmd(c),
	} {
		cmd.AddCommand(sub)
	}

	return c
}

// New returns the ctp tool, ready to run with args.
func New(args []string) *Command {
	c := newRootCmd()
	c.root.SetArgs(args)
	return c
}

// Run executes the command.
func (c *Command) Run(ctx context.Context) error {
	return c.root.ExecuteContext(ctx)
}

// ExitError is returned by run when the program exits unsuccessfully.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("program exited with code %v", e.Code)
}

// Main runs the ctp tool and returns the code for passing to os.Exit.
func Main() int {
	err := New(os.Args[1:]).Run(context.Background())

	var exitErr *ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		fmt.Fprintln(os.Stderr, "ctp:", err)
		return 1
	}
}

// openInput opens the file named by args, or stdin if there is none or it is "-".
func openInput(c *Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(c.InOrStdin()), nil
	}
	return os.Open(args[0])
}

package cmd

import (
	"errors"
	"io"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/Viatorus/compile-time-printer/decode"
)

func newRunCmd(c *Command) *cobra.Command {
	var flags outputFlags

	cmd := &cobra.Command{
		Use:   "run -- program [args...]",
		Short: "run a program and print the statements it writes to stderr",
		Long: `run starts program and decodes the text tokens it writes to stderr.

Lines of its stderr that are not tokens are copied to stderr, unless --hide-log
is given. Its stdout is passed through. ctp exits with the program's exit code.`,
		Args: cobra.MinimumNArgs(1),
		RunE: mkRunE(c, func(c *Command, args []string) error {
			prog := exec.CommandContext(c.Context(), args[0], args[1:]...)
			prog.Stdin = c.InOrStdin()
			prog.Stdout = c.OutOrStdout()

			stderr, err := prog.StderrPipe()
			if err != nil {
				return err
			}
			if err := prog.Start(); err != nil {
				return err
			}

			err = printStatements(c, decode.NewTextSource(stderr, flags.log(c)), &flags)
			if err != nil {
				// Wait must not be called before the pipe is drained.
				_, _ = io.Copy(io.Discard, stderr)
			}

			waitErr := prog.Wait()
			if err != nil {
				return err
			}

			var exitErr *exec.ExitError
			if errors.As(waitErr, &exitErr) {
				return &ExitError{Code: exitErr.ExitCode()}
			}
			return waitErr
		}),
	}

	flags.register(cmd.Flags())
	return cmd
}

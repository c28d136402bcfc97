package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Viatorus/compile-time-printer/token"
)

func newVersionCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the ctp version",
		Args:  cobra.NoArgs,
		RunE: mkRunE(c, func(c *Command, args []string) error {
			version := "(devel)"
			if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
				version = bi.Main.Version
			}

			_, err := fmt.Fprintf(c.OutOrStdout(), "ctp version %v\nprotocol version %v\n", version, token.ProtocolVersion)
			return err
		}),
	}
}

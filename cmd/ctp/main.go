// Command ctp decodes and checks the token streams written by printers of the ctp package.
package main

import (
	"os"

	"github.com/Viatorus/compile-time-printer/cmd/ctp/cmd"
)

func main() {
	os.Exit(cmd.Main())
}

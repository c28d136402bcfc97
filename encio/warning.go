package encio

import (
	"fmt"
	"io"
	"os"
)

// Warnings is where warnings are sent to.
// ctp keeps working through many oddities, like a file descriptor that is neither stdout nor stderr,
// but I don't want to silently put up with things that seem worrying.
var Warnings io.Writer = os.Stderr

// Warnf writes a formatted warning line to Warnings.
func Warnf(format string, args ...any) {
	fmt.Fprintf(Warnings, "ctp: "+format+"\n", args...)
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/avmtools/avm/internal/tool"
)

// Exit codes. A cancelled operation exits 0: the user asked for it to stop.
const (
	ExitSuccess   = 0
	ExitGeneral   = 1
	ExitCancelled = 0
)

// reportError writes err and, for a *tool.Error, its suggestion to stderr.
func reportError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)

	var toolErr *tool.Error
	if errors.As(err, &toolErr) {
		if suggestion := toolErr.Suggestion(); suggestion != "" {
			fmt.Fprintln(os.Stderr, "  "+suggestion)
		}
	}
}

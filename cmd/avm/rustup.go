package main

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// newRustupCmd builds the rustup passthrough: spawn the configured binary
// with the caller's arguments and wait. No argument interpretation.
func newRustupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "rustup",
		Short:              "Rustup (Rust toolchain manager) delegate",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rustupPath := paths.rustupPath
			if rustupPath == "" {
				rustupPath = "rustup"
			}

			c := exec.CommandContext(rootCtx, rustupPath, args...)
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					os.Exit(exitErr.ExitCode())
				}
				return err
			}
			return nil
		},
	}
	return cmd
}

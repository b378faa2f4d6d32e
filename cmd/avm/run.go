package main

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/tool"
)

// newRunCmd executes a tag's tool binary, forwarding everything after "--"
// as arguments and the caller's stdio.
func newRunCmd(adapter tool.Adapter) *cobra.Command {
	return &cobra.Command{
		Use:                "run <tag> [-- args...]",
		Short:              "Run the tool executable from a tag",
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return cmd.Usage()
			}
			tag := args[0]
			rest := args[1:]

			var passthrough []string
			for i, a := range rest {
				if a == "--" {
					passthrough = rest[i+1:]
					break
				}
			}
			if passthrough == nil {
				passthrough = rest
			}

			store := storeFor(adapter)
			tagDir, err := store.GetTagPath(tag)
			if err != nil {
				return err
			}
			exePath := adapter.ExePath(tagDir)

			c := exec.CommandContext(rootCtx, exePath, passthrough...)
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
}

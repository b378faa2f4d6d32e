package main

import (
	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/tool"
)

// newCleanCmd removes scratch directories left behind by interrupted
// installs and aliases that point at a tag which no longer exists.
func newCleanCmd(adapter tool.Adapter) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove stale scratch directories and dangling aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := storeFor(adapter)
			return store.Clean()
		},
	}
}

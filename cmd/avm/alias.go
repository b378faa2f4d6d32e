package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/tool"
)

// newAliasCmd points an alias tag (commonly "default") at a concrete tag.
func newAliasCmd(adapter tool.Adapter) *cobra.Command {
	return &cobra.Command{
		Use:   "alias <src-tag> <alias-tag>",
		Short: "Point an alias tag at an installed tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := storeFor(adapter)
			if err := store.Alias(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("%s -> %s\n", args[1], args[0])
			return nil
		},
	}
}

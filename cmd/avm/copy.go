package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/tool"
)

// newCopyCmd duplicates an installed tag's directory under a new tag name.
func newCopyCmd(adapter tool.Adapter) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <src-tag> <dest-tag>",
		Short: "Copy an installed tag to a new tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := storeFor(adapter)
			if err := store.Copy(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("copied %s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

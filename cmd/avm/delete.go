package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/tool"
)

// newDeleteCmd removes one or more tags. --allow-dangling also deletes a
// tag that is currently an alias target, leaving the alias dangling.
func newDeleteCmd(adapter tool.Adapter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <tag>...",
		Short: "Delete one or more installed tags",
		Args:  cobra.MinimumNArgs(1),
	}
	allowDangling := cmd.Flags().Bool("allow-dangling", false, "Allow deleting a tag that is an alias target, create a dangling alias tag")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		store := storeFor(adapter)
		if err := store.Delete(args, *allowDangling); err != nil {
			return err
		}
		for _, tag := range args {
			fmt.Printf("deleted %s\n", tag)
		}
		return nil
	}
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/tagstore"
	"github.com/avmtools/avm/internal/tool"
)

// newListCmd prints every installed tag, marking aliases with their target.
func newListCmd(adapter tool.Adapter) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := storeFor(adapter)
			entries, err := store.List(tagstore.ScratchPrefix)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.Target != "" {
					fmt.Printf("%s -> %s\n", e.Name, e.Target)
				} else {
					fmt.Println(e.Name)
				}
			}
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/tool"
)

// newPathCmd prints a tag's install directory. The tag defaults to
// defaultTag when omitted.
func newPathCmd(adapter tool.Adapter) *cobra.Command {
	return &cobra.Command{
		Use:   "path [tag]",
		Short: "Print the install directory of a tag",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := defaultTag
			if len(args) > 0 {
				tag = args[0]
			}
			store := storeFor(adapter)
			tagDir, err := store.GetTagPath(tag)
			if err != nil {
				return err
			}
			fmt.Println(tagDir)
			return nil
		},
	}
}

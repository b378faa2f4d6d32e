package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/tool"
)

// newExePathCmd prints the path of the tool's main executable within a tag.
// The tag defaults to defaultTag when omitted.
func newExePathCmd(adapter tool.Adapter) *cobra.Command {
	return &cobra.Command{
		Use:   "exe-path [tag]",
		Short: "Print the path of the tool executable within a tag",
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
			fmt.Println(adapter.ExePath(tagDir))
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/tool"
)

// newGetDownURLCmd is a thinner sibling of get-downinfo: it prints only the
// resolved URL, for scripting against a release without invoking the
// hash/extract machinery.
func newGetDownURLCmd(adapter tool.Adapter, info tool.Info) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-downurl",
		Short: "Get the download link for a specific version",
	}
	exactVersion := cmd.Flags().String("version", "", "Specific version to resolve")
	major, lts := addMajorLTSFlags(cmd)
	platform := addPlatformFlag(cmd, info)
	flavor := addFlavorFlag(cmd, info)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var exactPtr *string
		if *exactVersion != "" {
			exactPtr = exactVersion
		}
		filter, err := buildFilter(major, lts, exactPtr)
		if err != nil {
			return err
		}

		down, err := adapter.GetDownInfo(rootCtx, *platform, *flavor, filter)
		if err != nil {
			return &tool.Error{Kind: tool.ErrKindNetwork, Op: "get-downurl", Err: err}
		}
		fmt.Println(down.URL)
		return nil
	}
	return cmd
}

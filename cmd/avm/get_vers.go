package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/tool"
)

func newGetVersCmd(adapter tool.Adapter, info tool.Info) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-vers",
		Short: "Get available versions",
	}
	platform := addPlatformFlag(cmd, info)
	flavor := addFlavorFlag(cmd, info)
	major, lts := addMajorLTSFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		filter, err := buildFilter(major, lts, nil)
		if err != nil {
			return err
		}

		versions, err := adapter.FetchVersions(rootCtx, *platform, *flavor, filter)
		if err != nil {
			return &tool.Error{Kind: tool.ErrKindNetwork, Op: "get-vers", Err: err}
		}
		for _, v := range versions {
			suffix := ""
			if v.IsLTS {
				suffix = " [LTS]"
			}
			fmt.Printf("%d: %s%s\n", v.MajorVersion, v.Raw, suffix)
		}
		return nil
	}
	return cmd
}

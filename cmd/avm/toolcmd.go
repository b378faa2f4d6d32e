package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/log"
	"github.com/avmtools/avm/internal/tagstore"
	"github.com/avmtools/avm/internal/tool"
	"github.com/avmtools/avm/internal/version"
)

// newToolCommand builds one tool's subcommand tree: get-vers, get-downinfo,
// get-downurl, install, install-local, alias, copy, delete, list, path,
// exe-path, run, clean.
func newToolCommand(adapter tool.Adapter) *cobra.Command {
	info := adapter.Info()
	cmd := &cobra.Command{
		Use:   info.Name,
		Short: info.Description,
	}

	cmd.AddCommand(newGetVersCmd(adapter, info))
	cmd.AddCommand(newGetDownInfoCmd(adapter, info))
	cmd.AddCommand(newGetDownURLCmd(adapter, info))
	cmd.AddCommand(newInstallCmd(adapter, info))
	cmd.AddCommand(newInstallLocalCmd(adapter, info))
	cmd.AddCommand(newAliasCmd(adapter))
	cmd.AddCommand(newCopyCmd(adapter))
	cmd.AddCommand(newDeleteCmd(adapter))
	cmd.AddCommand(newListCmd(adapter))
	cmd.AddCommand(newPathCmd(adapter))
	cmd.AddCommand(newExePathCmd(adapter))
	cmd.AddCommand(newRunCmd(adapter))
	cmd.AddCommand(newCleanCmd(adapter))
	return cmd
}

// addPlatformFlag registers --platform when the tool has a closed platform
// set, defaulting to the tool's detected-current platform if any.
func addPlatformFlag(cmd *cobra.Command, info tool.Info) *string {
	platform := new(string)
	if len(info.Platforms) == 0 {
		return platform
	}
	help := fmt.Sprintf("Platform to use (one of: %s)", strings.Join(info.Platforms, ", "))
	cmd.Flags().StringVar(platform, "platform", info.DefaultPlatform, help)
	return platform
}

// addFlavorFlag registers --flavor when the tool has a closed flavor set.
func addFlavorFlag(cmd *cobra.Command, info tool.Info) *string {
	flavor := new(string)
	if len(info.Flavors) == 0 {
		return flavor
	}
	help := fmt.Sprintf("Flavor to use (one of: %s)", strings.Join(info.Flavors, ", "))
	cmd.Flags().StringVar(flavor, "flavor", info.DefaultFlavor, help)
	return flavor
}

func addMajorLTSFlags(cmd *cobra.Command) (*string, *bool) {
	major := cmd.Flags().String("major", "", "Major version filter")
	lts := cmd.Flags().Bool("lts", false, "Only show LTS versions")
	return major, lts
}

// buildFilter parses the shared --major/--lts/(optional exact version)
// flags into a version.Filter conjunction.
func buildFilter(major *string, lts *bool, exactVersion *string) (version.Filter, error) {
	f := version.Filter{}
	if lts != nil {
		f.LTSOnly = *lts
	}
	if major != nil && *major != "" {
		m, err := strconv.Atoi(*major)
		if err != nil {
			return version.Filter{}, &tool.Error{Kind: tool.ErrKindInvalidInput, Op: "filter", Err: fmt.Errorf("--major %q is not an integer: %w", *major, err)}
		}
		f.MajorVersion = &m
	}
	if exactVersion != nil && *exactVersion != "" {
		f.ExactVersion = exactVersion
	}
	return f, nil
}

func storeFor(adapter tool.Adapter) *tagstore.Store {
	return tagstore.New(toolDir(adapter.Info().Name), log.Default())
}
